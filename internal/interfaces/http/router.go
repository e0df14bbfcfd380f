package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/rs/zerolog"

	"github.com/jhoicas/billing-api/internal/application/analytics"
	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/pkg/jwt"
)

// Pinger comprueba la base de datos para /health (lo implementa *pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Metrics lo que el router necesita del registro Prometheus.
type Metrics interface {
	linkObserver
	sweepObserver
	ObserveHTTP(route, method string, status int, elapsed time.Duration)
	Handler() http.Handler
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ContactUC       *billing.ContactUseCase
	QuoteUC         *billing.QuoteUseCase
	InvoiceUC       *billing.InvoiceUseCase
	ConversionUC    *billing.ConversionUseCase
	SweepUC         *billing.SweepUseCase
	PDFUC           *billing.PDFUseCase
	AnalyticsUC     *analytics.DashboardUseCase
	Links           linkChecker
	DB              Pinger
	Metrics         Metrics // opcional
	JWTSecret       string
	PublicRateLimit int // peticiones por minuto e IP en /public; 0 = sin límite
	Log             zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	var linkObs linkObserver
	var sweepObs sweepObserver
	if deps.Metrics != nil {
		app.Use(requestMetrics(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
		linkObs, sweepObs = deps.Metrics, deps.Metrics
	}

	app.Get("/health", healthHandler(deps.DB))

	// Documentos públicos (enlace firmado, sin token)
	public := app.Group("/public")
	if deps.PublicRateLimit > 0 {
		public.Use(limiter.New(limiter.Config{
			Max:        deps.PublicRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiadas peticiones"})
			},
		}))
	}
	publicHandler := NewPublicHandler(deps.PDFUC)
	public.Get("/:kind/:id/pdf", SignedLink(deps.Links, linkObs, deps.Log), publicHandler.PDF)

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), RequireRole(jwt.RoleAdmin, jwt.RoleStaff))

	contacts := api.Group("/contacts")
	contactHandler := NewContactHandler(deps.ContactUC)
	contacts.Post("/", contactHandler.Create)
	contacts.Get("/:id", contactHandler.GetByID)

	quotes := api.Group("/quotes")
	quoteHandler := NewQuoteHandler(deps.QuoteUC, deps.ConversionUC)
	quotes.Post("/", quoteHandler.Create)
	quotes.Get("/:id", quoteHandler.GetByID)
	quotes.Patch("/:id", quoteHandler.Update)
	quotes.Post("/:id/send", quoteHandler.Send)
	quotes.Post("/:id/accept", quoteHandler.Accept)
	quotes.Post("/:id/reject", quoteHandler.Reject)
	quotes.Get("/:id/link", quoteHandler.Link)

	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Post("/from-quote", invoiceHandler.CreateFromQuote)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Patch("/:id", invoiceHandler.Update)
	invoices.Post("/:id/mark-paid", invoiceHandler.MarkPaid)
	invoices.Post("/:id/cancel", invoiceHandler.Cancel)
	invoices.Get("/:id/link", invoiceHandler.Link)

	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsUC)
	api.Get("/analytics/dashboard", analyticsHandler.Dashboard)

	sweepHandler := NewSweepHandler(deps.SweepUC, sweepObs)
	api.Post("/sweep", RequireRole(jwt.RoleAdmin), sweepHandler.Run)
}

func healthHandler(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := dto.HealthResponse{Status: "ok", Database: "ok"}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				resp.Status, resp.Database = "degraded", "unreachable"
				return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
			}
		}
		return c.JSON(resp)
	}
}

// requestMetrics registra código y latencia por ruta registrada (no por path concreto).
func requestMetrics(m Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.ObserveHTTP(c.Route().Path, c.Method(), status, time.Since(start))
		return err
	}
}
