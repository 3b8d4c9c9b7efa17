package transport

import (
	"net/http"

	"github.com/ds124wfegd/eventhub/internal/entity"
	"github.com/ds124wfegd/eventhub/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentHandler answers with {success, message, ...} instead of the
// common envelope, which is what payment widgets expect.
type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) CreatePaymentOrder(c *gin.Context) {
	var req service.PaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	order, err := h.paymentService.CreatePaymentOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Order created",
		"order_id": order.OrderID,
		"amount":   order.Amount,
		"currency": order.Currency,
		"status":   order.Status,
	})
}

func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req service.PaymentVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	result, err := h.paymentService.VerifyPayment(c.Request.Context(), userID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}

func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req service.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	order, err := h.paymentService.CreateOrder(c.Request.Context(), userID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Order created", order)
}

func (h *PaymentHandler) ListOrders(c *gin.Context) {
	orders, err := h.paymentService.ListOrders(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if orders == nil {
		orders = []*entity.Order{}
	}
	respond(c, http.StatusOK, "Orders", orders)
}

func (h *PaymentHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.paymentService.GetOrder(c.Request.Context(), orderID, userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Order", order)
}
