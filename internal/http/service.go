package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/polybooks/polybooks/internal/config"
	"github.com/polybooks/polybooks/internal/http/metric"
	"github.com/polybooks/polybooks/internal/http/middleware"
	"github.com/polybooks/polybooks/internal/http/swagger"
	"github.com/polybooks/polybooks/internal/service"
	"github.com/polybooks/polybooks/internal/storage/db"
	"github.com/polybooks/polybooks/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	healthChecker db.HealthChecker

	authSvc        service.AuthService
	productSvc     service.ProductService
	inventorySvc   service.InventoryService
	transactionSvc service.TransactionService
	partySvc       service.PartyService
	reportSvc      service.ReportService

	res *responder
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	healthChecker db.HealthChecker,
	authSvc service.AuthService,
	productSvc service.ProductService,
	inventorySvc service.InventoryService,
	transactionSvc service.TransactionService,
	partySvc service.PartyService,
	reportSvc service.ReportService,
) (*Service, error) {
	validate, err := validator.NewDefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	logger := log.With(slog.String("service", "http"))

	return &Service{
		cfg:            cfg,
		logger:         logger,
		metrics:        metric.New(),
		healthChecker:  healthChecker,
		authSvc:        authSvc,
		productSvc:     productSvc,
		inventorySvc:   inventorySvc,
		transactionSvc: transactionSvc,
		partySvc:       partySvc,
		reportSvc:      reportSvc,
		res: &responder{
			logger:   logger,
			validate: validate,
		},
	}, nil
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
		middleware.Auth(s.authSvc),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	authHandler := newAuthHandler(s.authSvc, s.res)
	productHandler := newProductHandler(s.productSvc, s.inventorySvc, s.res)
	inventoryHandler := newInventoryHandler(s.inventorySvc, s.res)
	transactionHandler := newTransactionHandler(s.transactionSvc, s.res)
	partyHandler := newPartyHandler(s.partySvc, s.res)
	reportHandler := newReportHandler(s.reportSvc, s.res)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/me", authHandler.Me)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Post("/", productHandler.Create)
			r.Get("/sku/{sku}", productHandler.GetBySku)
			r.Route("/{productID}", func(r chi.Router) {
				r.Get("/", productHandler.Get)
				r.Put("/", productHandler.Update)
				r.Delete("/", productHandler.Delete)
				r.Get("/inventory", productHandler.ListInventory)
			})
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/", inventoryHandler.Add)
			r.Get("/recount-due", inventoryHandler.ListDueForRecount)
			r.Put("/{itemID}/quantity", inventoryHandler.SetQuantity)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", transactionHandler.List)
			r.Post("/", transactionHandler.Create)
			r.Get("/reference/{reference}", transactionHandler.GetByReference)
			r.Get("/{transactionID}", transactionHandler.Get)
			r.Patch("/{transactionID}/status", transactionHandler.UpdateStatus)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", partyHandler.ListCustomers)
			r.Post("/", partyHandler.CreateCustomer)
			r.Get("/{customerID}", partyHandler.GetCustomer)
		})

		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", partyHandler.ListVendors)
			r.Post("/", partyHandler.CreateVendor)
			r.Get("/{vendorID}", partyHandler.GetVendor)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/inventory", reportHandler.Inventory)
			r.Get("/sales", reportHandler.Sales)
		})
	})

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

func (s *Service) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.healthChecker.IsHealthy(r.Context()); err != nil {
		s.res.writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}

	s.res.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
