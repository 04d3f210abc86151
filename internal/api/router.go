package api

import (
	"net/http"
	"time"

	"relytailors-be/internal/logger"
	"relytailors-be/internal/metrics"
	"relytailors-be/internal/middleware"
	"relytailors-be/internal/order"
	"relytailors-be/internal/product"
	"relytailors-be/internal/user"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const requestTimeout = 15 * time.Second

type Deps struct {
	Orders   order.Service
	Users    user.Service
	Products product.Service

	Auth    *middleware.Authenticator
	Limiter *middleware.RateLimiter
	Metrics *metrics.Metrics

	NotificationBackend string
	CORSOrigin          string
	TokenTTL            time.Duration
	SecureCookies       bool
}

type handler struct {
	orders   order.Service
	users    user.Service
	products product.Service

	metrics             *metrics.Metrics
	notificationBackend string
	tokenTTL            time.Duration
	secureCookies       bool
}

func NewRouter(d Deps) http.Handler {
	h := &handler{
		orders:              d.Orders,
		users:               d.Users,
		products:            d.Products,
		metrics:             d.Metrics,
		notificationBackend: d.NotificationBackend,
		tokenTTL:            d.TokenTTL,
		secureCookies:       d.SecureCookies,
	}
	if h.metrics == nil {
		h.metrics = metrics.New()
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Instrument(h.metrics))
	r.Use(middleware.CORS(d.CORSOrigin))
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, r, http.StatusNotFound, "Route not found")
	})

	// Limiting runs per group so protected routes see the authenticated
	// user and bucket by account instead of by IP.
	limit := func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}
	}

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			limit(r)

			r.Post("/auth/register", h.register)
			r.Post("/auth/login", h.login)

			r.Get("/products", h.listProducts)
			r.Get("/products/{id}", h.getProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Protect)
			limit(r)

			r.Post("/orders", h.createOrder)
			r.Get("/orders/myorders", h.myOrders)
			r.Get("/orders/{id}", h.getOrder)

			r.Route("/admin/orders", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/", h.listAllOrders)
				r.Get("/{id}", h.getOrderAdmin)
				r.Put("/{id}/status", h.setOrderStatus)
				r.Put("/{id}/confirm", h.confirmOrder)
				r.Put("/{id}/cancel", h.cancelOrder)
				r.Delete("/{id}", h.deleteOrder)
			})
		})
	})

	return r
}
