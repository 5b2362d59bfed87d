package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"service-shop-delivery/internal/domain"
	"service-shop-delivery/internal/http/handlers"
	"service-shop-delivery/internal/http/middleware"
	"service-shop-delivery/internal/logx"
)

const requestTimeout = 15 * time.Second

// accountRoutes maps URL prefixes to account kinds.
var accountRoutes = []struct {
	prefix string
	kind   domain.AccountKind
}{
	{"/users", domain.KindCustomer},
	{"/delivery", domain.KindCourier},
}

// Deps are the router's collaborators. Metrics and Throttle are optional.
type Deps struct {
	Logger   logx.Logger
	Base     *handlers.Handlers
	Accounts *handlers.AccountHandler
	Orders   *handlers.OrderHandler
	Metrics  *middleware.HTTPMetrics
	// Throttle wraps the routes that issue verification codes.
	Throttle func(http.Handler) http.Handler
}

// New constructs the chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Observability(d.Logger, d.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	throttle := d.Throttle
	if throttle == nil {
		throttle = func(next http.Handler) http.Handler { return next }
	}

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))

	for _, ar := range accountRoutes {
		kind := ar.kind
		r.Route(ar.prefix, func(r chi.Router) {
			r.Post("/signup", d.Accounts.Signup(kind))
			r.Post("/login", d.Accounts.Login(kind))
			r.Post("/verifycode", d.Accounts.VerifyCode(kind))
			r.Post("/checkverifycode", d.Accounts.CheckVerifyCode(kind))
			r.Post("/resetpassword", d.Accounts.ResetPassword(kind))

			r.With(throttle).Post("/checkemail", d.Accounts.CheckEmail(kind))
			r.With(throttle).Post("/resend", d.Accounts.Resend(kind))

			if kind == domain.KindCourier {
				r.Post("/approve", d.Orders.Approve)
			}
		})
	}

	r.NotFound(http.HandlerFunc(d.Base.NotFound))
	return r
}
