package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/orderdesk/api/transport"
	"github.com/fastygo/orderdesk/internal/infrastructure/monitor"
	"github.com/fastygo/orderdesk/pkg/httpcontext"
)

// PendingTables reports tables whose in-memory changes are not yet stored.
type PendingTables interface {
	Dirty() []string
}

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
	pending PendingTables
}

func NewHealthHandler(mon *monitor.Monitor, pending PendingTables, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		pending:     pending,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	pending := []string{}
	if h.pending != nil {
		pending = append(pending, h.pending.Dirty()...)
	}
	payload := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"storage": map[string]interface{}{
			"driver":     status.Driver,
			"online":     status.Storage,
			"error":      status.Error,
			"last_check": status.LastCheck,
			"pending":    pending,
		},
		"records": status.Records,
	}

	if status.Storage {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "storage unreachable", payload))
}
