package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/orderdesk/api/handler"
	"github.com/fastygo/orderdesk/internal/middleware"
)

type Handlers struct {
	Order     *apiHandler.OrderHandler
	Influence *apiHandler.InfluenceHandler
	Health    *apiHandler.HealthHandler
	// Metrics is optional.
	Metrics fasthttp.RequestHandler
}

// New registers the API routes. Reads are open; authMiddleware wraps the
// mutating routes.
func New(handlers Handlers, authMiddleware middleware.Middleware) *router.Router {
	if authMiddleware == nil {
		authMiddleware = middleware.Passthrough
	}
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	if handlers.Metrics != nil {
		r.GET("/metrics", handlers.Metrics)
	}

	// Orders
	r.GET("/api/v1/orders", handlers.Order.ListOrders)
	r.GET("/api/v1/orders/customer/{name}", handlers.Order.ListByCustomer)
	r.GET("/api/v1/orders/{cid}", handlers.Order.GetOrder)
	r.POST("/api/v1/orders", authMiddleware(handlers.Order.CreateOrder))
	r.PUT("/api/v1/orders/{cid}", authMiddleware(handlers.Order.UpdateOrder))
	r.DELETE("/api/v1/orders/{cid}", authMiddleware(handlers.Order.DeleteOrder))

	// Influence events
	r.GET("/api/v1/influences", handlers.Influence.ListInfluences)
	r.GET("/api/v1/influences/type/{type}", handlers.Influence.ListByType)
	r.GET("/api/v1/influences/{id}", handlers.Influence.GetInfluence)
	r.POST("/api/v1/influences", authMiddleware(handlers.Influence.CreateInfluence))
	r.PUT("/api/v1/influences/{id}", authMiddleware(handlers.Influence.UpdateInfluence))
	r.DELETE("/api/v1/influences/{id}", authMiddleware(handlers.Influence.DeleteInfluence))

	return r
}
