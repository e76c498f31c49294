package delivery

import (
	"net/http"

	"github.com/SparshM8/Farm-Technology/internal/domain"
	"github.com/SparshM8/Farm-Technology/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type newsRequest struct {
	Title   string `json:"title" binding:"required,max=300"`
	Excerpt string `json:"excerpt"`
	Link    string `json:"link" binding:"omitempty,url"`
	Date    string `json:"date"`
}

type NewsHandler struct {
	useCase usecase.NewsUseCase
	log     *logrus.Logger
}

func NewNewsHandler(uc usecase.NewsUseCase, logger *logrus.Logger) *NewsHandler {
	return &NewsHandler{useCase: uc, log: logger}
}

func (h *NewsHandler) RegisterRoutes(public, admin gin.IRouter) {
	public.GET("/news", h.ListNews)
	admin.POST("/news", h.UpsertNews)
}

func (h *NewsHandler) ListNews(c *gin.Context) {
	items, err := h.useCase.ListNews(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "list news", "News")
		return
	}
	if items == nil {
		items = []domain.NewsItem{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *NewsHandler) UpsertNews(c *gin.Context) {
	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	saved, err := h.useCase.UpsertNews(c.Request.Context(), &domain.NewsItem{
		Title:   req.Title,
		Excerpt: req.Excerpt,
		Link:    req.Link,
		Date:    req.Date,
	})
	if err != nil {
		respondError(c, h.log, err, "save news", "News")
		return
	}
	OKResponse(c, gin.H{"item": saved})
}
