package delivery

import (
	"errors"
	"net/http"

	"github.com/SparshM8/Farm-Technology/internal/domain"
	"github.com/SparshM8/Farm-Technology/internal/middleware"
	"github.com/SparshM8/Farm-Technology/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	auth     usecase.AdminAuthUseCase
	importer usecase.ImportUseCase
	limit    gin.HandlerFunc
	log      *logrus.Logger
}

func NewAdminHandler(auth usecase.AdminAuthUseCase, importer usecase.ImportUseCase, loginLimit gin.HandlerFunc, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		auth:     auth,
		importer: importer,
		limit:    loginLimit,
		log:      logger,
	}
}

func (h *AdminHandler) RegisterRoutes(public, admin gin.IRouter) {
	public.POST("/admin/login", h.limit, h.Login)
	public.POST("/admin/logout", h.Logout)
	public.GET("/admin/status", h.Status)

	admin.POST("/admin/import-products", h.ImportProducts)
}

func (h *AdminHandler) Login(c *gin.Context) {
	var body struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.log.Warnf("Handler: Admin login from %s without password", c.ClientIP())
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.auth.Authenticate(body.Password); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			h.log.Warnf("Handler: Failed admin login from %s", c.ClientIP())
		}
		respondError(c, h.log, err, "admin login", "Admin")
		return
	}

	if err := middleware.SetAdmin(c); err != nil {
		h.log.Errorf("Handler: Could not save admin session: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.log.Infof("Handler: Admin logged in from %s", c.ClientIP())
	OKResponse(c, nil)
}

func (h *AdminHandler) Logout(c *gin.Context) {
	if err := middleware.ClearAdmin(c); err != nil {
		h.log.Warnf("Handler: Could not clear admin session: %v", err)
	}
	OKResponse(c, nil)
}

func (h *AdminHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"isAdmin": middleware.IsAdmin(c)})
}

func (h *AdminHandler) ImportProducts(c *gin.Context) {
	result, err := h.importer.ImportManifest(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "import products", "Products manifest")
		return
	}
	h.log.Infof("Handler: Import finished: %d added, %d updated", result.Added, result.Updated)
	OKResponse(c, gin.H{"added": result.Added, "updated": result.Updated})
}
