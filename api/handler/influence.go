package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/orderdesk/api/transport"
	"github.com/fastygo/orderdesk/domain"
	"github.com/fastygo/orderdesk/pkg/httpcontext"
	influenceUC "github.com/fastygo/orderdesk/usecase/influence"
)

type InfluenceHandler struct {
	baseHandler
	uc *influenceUC.UseCase
}

func NewInfluenceHandler(uc *influenceUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *InfluenceHandler {
	return &InfluenceHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List influence events
// @Tags influences
// @Router /api/v1/influences [get]
func (h *InfluenceHandler) ListInfluences(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	events, err := h.uc.ListInfluences(stdCtx)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondList(ctx, events, len(events))
}

// @Summary List influence events of one type
// @Tags influences
// @Router /api/v1/influences/type/{type} [get]
func (h *InfluenceHandler) ListByType(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	events, err := h.uc.ListInfluencesByType(stdCtx, pathParam(ctx, "type"))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondList(ctx, events, len(events))
}

// @Summary Get influence event
// @Tags influences
// @Router /api/v1/influences/{id} [get]
func (h *InfluenceHandler) GetInfluence(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	event, err := h.uc.GetInfluence(stdCtx, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, event)
}

// @Summary Create influence event
// @Tags influences
// @Router /api/v1/influences [post]
func (h *InfluenceHandler) CreateInfluence(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	event, err := h.decodeInfluence(ctx)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	created, err := h.uc.CreateInfluence(stdCtx, event)
	h.respondMutation(stdCtx, ctx, http.StatusCreated, created, err)
}

// @Summary Update influence event
// @Tags influences
// @Router /api/v1/influences/{id} [put]
func (h *InfluenceHandler) UpdateInfluence(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	event, err := h.decodeInfluence(ctx)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	id := pathParam(ctx, "id")
	if event.ID != "" && event.ID != id {
		h.respondError(stdCtx, ctx, domain.Invalidf("id in body %q does not match path %q", event.ID, id))
		return
	}
	event.ID = id

	updated, err := h.uc.UpdateInfluence(stdCtx, event)
	h.respondMutation(stdCtx, ctx, http.StatusOK, updated, err)
}

// @Summary Delete influence event
// @Tags influences
// @Router /api/v1/influences/{id} [delete]
func (h *InfluenceHandler) DeleteInfluence(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id := pathParam(ctx, "id")
	err := h.uc.DeleteInfluence(stdCtx, id)
	h.respondMutation(stdCtx, ctx, http.StatusOK, map[string]string{"id": id}, err)
}

func (h *InfluenceHandler) decodeInfluence(ctx *fasthttp.RequestCtx) (*domain.InfluenceEvent, error) {
	var req transport.InfluenceRequest
	if err := h.decodeJSON(ctx, &req); err != nil {
		return nil, err
	}
	return req.ToDomain()
}
