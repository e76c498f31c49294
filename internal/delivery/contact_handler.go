package delivery

import (
	"net/http"

	"github.com/SparshM8/Farm-Technology/internal/domain"
	"github.com/SparshM8/Farm-Technology/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ContactHandler struct {
	useCase usecase.ContactUseCase
	log     *logrus.Logger
}

func NewContactHandler(uc usecase.ContactUseCase, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{useCase: uc, log: logger}
}

func (h *ContactHandler) RegisterRoutes(public, admin gin.IRouter) {
	public.POST("/contact", h.Submit)
	admin.GET("/contacts", h.ListMessages)
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var msg domain.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "All fields are required.")
		return
	}
	// server assigns these
	msg.ID, msg.ReceivedAt = 0, 0

	if _, err := h.useCase.Submit(c.Request.Context(), &msg); err != nil {
		respondError(c, h.log, err, "submit contact message", "Contact")
		return
	}
	OKResponse(c, nil)
}

func (h *ContactHandler) ListMessages(c *gin.Context) {
	messages, err := h.useCase.ListMessages(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "list contact messages", "Contacts")
		return
	}
	if messages == nil {
		messages = []domain.ContactMessage{}
	}
	c.JSON(http.StatusOK, messages)
}
