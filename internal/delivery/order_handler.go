package delivery

import (
	"net/http"
	"strconv"

	"github.com/SparshM8/Farm-Technology/internal/domain"
	"github.com/SparshM8/Farm-Technology/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	useCase usecase.OrderUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc usecase.OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *OrderHandler) RegisterRoutes(_, admin gin.IRouter) {
	orders := admin.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrderByID)
		orders.PUT("/:id/status", h.UpdateOrderStatus)
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.useCase.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "list orders", "Orders")
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.log.Warnf("Handler: Invalid order ID parameter: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	order, err := h.useCase.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "get order", "Order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.log.Warnf("Handler: Invalid order ID parameter for status update: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var body struct {
		Status *domain.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Status == nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid status")
		return
	}

	order, err := h.useCase.UpdateOrderStatus(c.Request.Context(), id, *body.Status)
	if err != nil {
		respondError(c, h.log, err, "update order status", "Order")
		return
	}

	h.log.Infof("Handler: Order %d status set to %s", order.ID, order.Status)
	OKResponse(c, gin.H{"order": order})
}
