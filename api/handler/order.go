package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/orderdesk/api/transport"
	"github.com/fastygo/orderdesk/domain"
	"github.com/fastygo/orderdesk/pkg/httpcontext"
	orderUC "github.com/fastygo/orderdesk/usecase/order"
)

type OrderHandler struct {
	baseHandler
	uc *orderUC.UseCase
}

func NewOrderHandler(uc *orderUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List orders
// @Tags orders
// @Router /api/v1/orders [get]
func (h *OrderHandler) ListOrders(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	orders, err := h.uc.ListOrders(stdCtx)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondList(ctx, orders, len(orders))
}

// @Summary List orders of one customer
// @Tags orders
// @Router /api/v1/orders/customer/{name} [get]
func (h *OrderHandler) ListByCustomer(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	orders, err := h.uc.ListOrdersByCustomer(stdCtx, pathParam(ctx, "name"))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondList(ctx, orders, len(orders))
}

// @Summary Get order
// @Tags orders
// @Router /api/v1/orders/{cid} [get]
func (h *OrderHandler) GetOrder(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.uc.GetOrder(stdCtx, pathParam(ctx, "cid"))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, order)
}

// @Summary Create order
// @Tags orders
// @Router /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.decodeOrder(ctx)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	created, err := h.uc.CreateOrder(stdCtx, order)
	h.respondMutation(stdCtx, ctx, http.StatusCreated, created, err)
}

// @Summary Update order
// @Tags orders
// @Router /api/v1/orders/{cid} [put]
func (h *OrderHandler) UpdateOrder(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.decodeOrder(ctx)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	cid := pathParam(ctx, "cid")
	if order.CID != "" && order.CID != cid {
		h.respondError(stdCtx, ctx, domain.Invalidf("cid in body %q does not match path %q", order.CID, cid))
		return
	}
	order.CID = cid

	updated, err := h.uc.UpdateOrder(stdCtx, order)
	h.respondMutation(stdCtx, ctx, http.StatusOK, updated, err)
}

// @Summary Delete order
// @Tags orders
// @Param reason query string true "why the order is removed"
// @Router /api/v1/orders/{cid} [delete]
func (h *OrderHandler) DeleteOrder(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	cid := pathParam(ctx, "cid")
	reason := string(ctx.QueryArgs().Peek("reason"))

	err := h.uc.DeleteOrder(stdCtx, cid, reason)
	h.respondMutation(stdCtx, ctx, http.StatusOK, map[string]string{"cid": cid, "reason": reason}, err)
}

func (h *OrderHandler) decodeOrder(ctx *fasthttp.RequestCtx) (*domain.Order, error) {
	var req transport.OrderRequest
	if err := h.decodeJSON(ctx, &req); err != nil {
		return nil, err
	}
	return req.ToDomain()
}
