package handlers

import (
	"net/http"

	"service-shop-delivery/internal/apperr"
	"service-shop-delivery/internal/logx"
)

// OrderHandler serves courier actions on orders.
type OrderHandler struct {
	usecase orderUsecase
	logger  logx.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(logger logx.Logger, uc orderUsecase) *OrderHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &OrderHandler{usecase: uc, logger: logger}
}

// Approve handles POST /delivery/approve.
func (h *OrderHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req approveOrderRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}

	err := h.usecase.ApproveOrder(r.Context(), req.OrderID, req.CustomerID, req.CourierID)
	if err == nil {
		writeJSON(h.logger, w, r, http.StatusOK, messageResponse{Message: "Order approved and notifications sent."})
		return
	}
	switch apperr.KindOf(err) {
	case apperr.KindExternal:
		// The order is committed at this point.
		h.logger.Error("order approved, notification failed",
			logx.String("order_id", req.OrderID),
			logx.Err(err),
		)
		writeError(h.logger, w, r, http.StatusBadGateway, "order approved but notification delivery failed")
	default:
		writeAppError(h.logger, w, r, err, "Order not found")
	}
}
