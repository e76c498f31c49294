package delivery

import (
	"net/http"

	"github.com/SparshM8/Farm-Technology/internal/pricing"
	"github.com/SparshM8/Farm-Technology/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// checkoutItem is what the cart sends. Price and title fields, if present,
// are ignored: only the id and quantity are read. The storefront sends ids as
// strings.
type checkoutItem struct {
	ID  pricing.ProductID `json:"id"`
	Qty int               `json:"qty"`
}

type checkoutRequest struct {
	CustomerName    string         `json:"customerName"`
	CustomerAddress string         `json:"customerAddress"`
	CustomerPhone   string         `json:"customerPhone"`
	Items           []checkoutItem `json:"items"`
}

type CheckoutHandler struct {
	useCase usecase.CheckoutUseCase
	limit   gin.HandlerFunc
	log     *logrus.Logger
}

func NewCheckoutHandler(uc usecase.CheckoutUseCase, limit gin.HandlerFunc, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		useCase: uc,
		limit:   limit,
		log:     logger,
	}
}

func (h *CheckoutHandler) RegisterRoutes(public, _ gin.IRouter) {
	public.POST("/checkout", h.limit, h.Checkout)
}

func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var body checkoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.log.Warnf("Handler: Failed to bind checkout body: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Missing required order information.")
		return
	}

	req := usecase.CheckoutRequest{
		CustomerName:    body.CustomerName,
		CustomerAddress: body.CustomerAddress,
		CustomerPhone:   body.CustomerPhone,
		Items:           make([]pricing.RequestedItem, 0, len(body.Items)),
	}
	for _, it := range body.Items {
		req.Items = append(req.Items, pricing.RequestedItem{ProductID: int64(it.ID), Quantity: it.Qty})
	}

	order, err := h.useCase.Checkout(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err, "checkout", "Order")
		return
	}

	h.log.Infof("Handler: Checkout accepted, order %d total %s", order.ID, order.Total)
	OKResponse(c, gin.H{"orderId": order.ID})
}
