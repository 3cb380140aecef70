package zenibo

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/zenibo-dev/zenibo/internal/http/handlers/auth/login"
	"github.com/zenibo-dev/zenibo/internal/http/handlers/auth/me"
	"github.com/zenibo-dev/zenibo/internal/http/handlers/auth/register"
	"github.com/zenibo-dev/zenibo/internal/http/handlers/auth/subscribe"
	"github.com/zenibo-dev/zenibo/internal/http/handlers/auth/unsubscribe"
	bookcreate "github.com/zenibo-dev/zenibo/internal/http/handlers/book/create"
	booklist "github.com/zenibo-dev/zenibo/internal/http/handlers/book/list"
	bookread "github.com/zenibo-dev/zenibo/internal/http/handlers/book/read"
	bookremove "github.com/zenibo-dev/zenibo/internal/http/handlers/book/remove"
	bookupdate "github.com/zenibo-dev/zenibo/internal/http/handlers/book/update"
	"github.com/zenibo-dev/zenibo/internal/http/handlers/closing/exportcsv"
	closingread "github.com/zenibo-dev/zenibo/internal/http/handlers/closing/read"
	couponcreate "github.com/zenibo-dev/zenibo/internal/http/handlers/coupon/create"
	couponlist "github.com/zenibo-dev/zenibo/internal/http/handlers/coupon/list"
	"github.com/zenibo-dev/zenibo/internal/http/handlers/coupon/redemptions"
	couponremove "github.com/zenibo-dev/zenibo/internal/http/handlers/coupon/remove"
	"github.com/zenibo-dev/zenibo/internal/http/handlers/coupon/stats"
	couponupdate "github.com/zenibo-dev/zenibo/internal/http/handlers/coupon/update"
	couponvalidate "github.com/zenibo-dev/zenibo/internal/http/handlers/coupon/validate"
	"github.com/zenibo-dev/zenibo/internal/http/handlers/health"
	"github.com/zenibo-dev/zenibo/internal/http/handlers/receipt/attach"
	"github.com/zenibo-dev/zenibo/internal/http/handlers/receipt/detach"
	"github.com/zenibo-dev/zenibo/internal/http/handlers/recipient/assign"
	recipientcreate "github.com/zenibo-dev/zenibo/internal/http/handlers/recipient/create"
	recipientlist "github.com/zenibo-dev/zenibo/internal/http/handlers/recipient/list"
	recipientremove "github.com/zenibo-dev/zenibo/internal/http/handlers/recipient/remove"
	recipientupdate "github.com/zenibo-dev/zenibo/internal/http/handlers/recipient/update"
	"github.com/zenibo-dev/zenibo/internal/http/handlers/stub"
	subaccountcreate "github.com/zenibo-dev/zenibo/internal/http/handlers/subaccount/create"
	subaccountremove "github.com/zenibo-dev/zenibo/internal/http/handlers/subaccount/remove"
	subjectcreate "github.com/zenibo-dev/zenibo/internal/http/handlers/subject/create"
	subjectlist "github.com/zenibo-dev/zenibo/internal/http/handlers/subject/list"
	subjectremove "github.com/zenibo-dev/zenibo/internal/http/handlers/subject/remove"
	txcreate "github.com/zenibo-dev/zenibo/internal/http/handlers/transaction/create"
	txlist "github.com/zenibo-dev/zenibo/internal/http/handlers/transaction/list"
	txremove "github.com/zenibo-dev/zenibo/internal/http/handlers/transaction/remove"
	txupdate "github.com/zenibo-dev/zenibo/internal/http/handlers/transaction/update"
	"github.com/zenibo-dev/zenibo/internal/http/middlewarectx"
	"github.com/zenibo-dev/zenibo/internal/lib/jwt"
	authservice "github.com/zenibo-dev/zenibo/internal/services/auth"
	bookservice "github.com/zenibo-dev/zenibo/internal/services/book"
	closingservice "github.com/zenibo-dev/zenibo/internal/services/closing"
	couponservice "github.com/zenibo-dev/zenibo/internal/services/coupon"
	recipientservice "github.com/zenibo-dev/zenibo/internal/services/recipient"
	subjectservice "github.com/zenibo-dev/zenibo/internal/services/subject"
	transactionservice "github.com/zenibo-dev/zenibo/internal/services/transaction"
)

// Services bundles the business-logic layer handed to the router.
type Services struct {
	Auth        *authservice.AuthService
	Book        *bookservice.BookService
	Transaction *transactionservice.TransactionService
	Subject     *subjectservice.SubjectService
	Recipient   *recipientservice.RecipientService
	Closing     *closingservice.ClosingService
	Coupon      *couponservice.CouponService
	Health      health.Checker
}

// RegisterRoutes mounts every endpoint of the API.
func RegisterRoutes(r chi.Router, logger *slog.Logger, maker jwt.Maker, s *Services) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health.New(logger, s.Health).ServeHTTP)
		r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		r.Post("/coupons/validate", couponvalidate.New(logger, s.Coupon).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/auth/me", me.New(logger, s.Auth).ServeHTTP)
			r.Post("/auth/subscribe", subscribe.New(logger, s.Auth).ServeHTTP)
			r.Post("/auth/unsubscribe", unsubscribe.New(logger, s.Auth).ServeHTTP)

			r.Post("/books", bookcreate.New(logger, s.Book).ServeHTTP)
			r.Get("/books", booklist.New(logger, s.Book).ServeHTTP)
			r.Get("/books/{id}", bookread.New(logger, s.Book).ServeHTTP)
			r.Put("/books/{id}", bookupdate.New(logger, s.Book).ServeHTTP)
			r.Delete("/books/{id}", bookremove.New(logger, s.Book).ServeHTTP)

			r.Post("/books/{id}/transactions", txcreate.New(logger, s.Transaction).ServeHTTP)
			r.Get("/books/{id}/transactions", txlist.New(logger, s.Transaction).ServeHTTP)
			r.Put("/transactions/{id}", txupdate.New(logger, s.Transaction).ServeHTTP)
			r.Delete("/transactions/{id}", txremove.New(logger, s.Transaction).ServeHTTP)
			r.Post("/transactions/{id}/receipt", attach.New(logger, s.Transaction).ServeHTTP)
			r.Delete("/transactions/{id}/receipt", detach.New(logger, s.Transaction).ServeHTTP)

			r.Post("/books/{id}/subjects", subjectcreate.New(logger, s.Subject).ServeHTTP)
			r.Get("/books/{id}/subjects", subjectlist.New(logger, s.Subject).ServeHTTP)
			r.Delete("/subjects/{id}", subjectremove.New(logger, s.Subject).ServeHTTP)
			r.Post("/subjects/{id}/subaccounts", subaccountcreate.New(logger, s.Subject).ServeHTTP)
			r.Delete("/subaccounts/{id}", subaccountremove.New(logger, s.Subject).ServeHTTP)

			r.Post("/recipients", recipientcreate.New(logger, s.Recipient).ServeHTTP)
			r.Get("/recipients", recipientlist.New(logger, s.Recipient).ServeHTTP)
			r.Put("/recipients/{id}", recipientupdate.New(logger, s.Recipient).ServeHTTP)
			r.Delete("/recipients/{id}", recipientremove.New(logger, s.Recipient).ServeHTTP)
			r.Put("/recipients/{id}/books", assign.New(logger, s.Recipient).ServeHTTP)

			r.Get("/books/{id}/closing/{month}", closingread.New(logger, s.Closing).ServeHTTP)
			r.Get("/books/{id}/export", exportcsv.New(logger, s.Closing).ServeHTTP)

			r.Post("/coupons", couponcreate.New(logger, s.Coupon).ServeHTTP)
			r.Get("/coupons", couponlist.New(logger, s.Coupon).ServeHTTP)
			r.Put("/coupons/{id}", couponupdate.New(logger, s.Coupon).ServeHTTP)
			r.Delete("/coupons/{id}", couponremove.New(logger, s.Coupon).ServeHTTP)
			r.Get("/coupons/{id}/stats", stats.New(logger, s.Coupon).ServeHTTP)
			r.Get("/coupons/{id}/redemptions", redemptions.New(logger, s.Coupon).ServeHTTP)
		})

		// Integrations that are routed ahead of their providers.
		r.Post("/stripe/checkout", stub.New(logger, "stripe-checkout").ServeHTTP)
		r.Post("/stripe/webhook", stub.New(logger, "stripe-webhook").ServeHTTP)
		r.Post("/email/send", stub.New(logger, "email-send").ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
