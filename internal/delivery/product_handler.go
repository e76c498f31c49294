package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/SparshM8/Farm-Technology/internal/domain"
	"github.com/SparshM8/Farm-Technology/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type productRequest struct {
	Title       string              `json:"title" binding:"required,max=200"`
	Image       string              `json:"image" binding:"max=500"`
	Price       string              `json:"price" binding:"max=50"`
	PriceValue  decimal.NullDecimal `json:"price_value"`
	Description string              `json:"description"`
}

type ProductHandler struct {
	useCase usecase.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(public, admin gin.IRouter) {
	public.GET("/products", h.ListProducts)
	public.GET("/products/:id", h.GetProductByID)

	products := admin.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.useCase.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "list products", "Products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.log.Warnf("Handler: Invalid product ID parameter: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.useCase.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "get product", "Product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Handler: Failed to bind JSON for create product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	created, err := h.useCase.CreateProduct(c.Request.Context(), &domain.Product{
		Title:       req.Title,
		Image:       req.Image,
		Price:       req.Price,
		PriceValue:  req.PriceValue,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.log, err, "create product", "Product")
		return
	}

	h.log.Infof("Handler: Product created: ID %d, title %q", created.ID, created.Title)
	OKResponse(c, gin.H{"item": created})
}

// productUpdates converts a raw JSON object into the typed partial update
// the repository accepts. Unknown keys are ignored.
func productUpdates(raw map[string]json.RawMessage) (map[string]any, error) {
	updates := make(map[string]any, len(raw))
	for key, value := range raw {
		switch key {
		case "title", "image", "price", "description":
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, err
			}
			updates[key] = s
		case "price_value":
			var v decimal.NullDecimal
			if err := json.Unmarshal(value, &v); err != nil {
				return nil, err
			}
			if v.Valid {
				updates[key] = v.Decimal
			} else {
				updates[key] = nil
			}
		}
	}
	return updates, nil
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.log.Warnf("Handler: Invalid product ID parameter for update: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.log.Warnf("Handler: Failed to bind JSON for update product ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	updates, err := productUpdates(raw)
	if err != nil {
		h.log.Warnf("Handler: Bad field type in update for product ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(updates) == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: no fields provided for update")
		return
	}

	updated, err := h.useCase.UpdateProduct(c.Request.Context(), id, updates)
	if err != nil {
		respondError(c, h.log, err, "update product", "Product")
		return
	}

	h.log.Infof("Handler: Product updated: ID %d", updated.ID)
	OKResponse(c, gin.H{"item": updated})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.log.Warnf("Handler: Invalid product ID parameter for delete: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if err := h.useCase.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err, "delete product", "Product")
		return
	}

	h.log.Infof("Handler: Product deleted: ID %d", id)
	OKResponse(c, nil)
}
