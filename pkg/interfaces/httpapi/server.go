// Package httpapi exposes the yard workflows over a JSON HTTP API
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vsinha/baleyard/pkg/application/services"
	"github.com/vsinha/baleyard/pkg/domain/entities"
	"github.com/vsinha/baleyard/pkg/domain/repositories"
	"github.com/vsinha/baleyard/pkg/infrastructure/metrics"
)

// Options wires the server's collaborators
type Options struct {
	Runtime  services.Runtime
	Gatherer prometheus.Gatherer
	// Recorder refreshes the stock gauges before each scrape when set
	Recorder *metrics.Recorder
	Logger   *zap.Logger
}

// Server routes HTTP requests to the application services
type Server struct {
	store      repositories.Store
	logger     *zap.Logger
	gatherer   prometheus.Gatherer
	recorder   *metrics.Recorder
	intake     *services.IntakeService
	storage    *services.StorageService
	processing *services.ProcessingService
	suppliers  *services.SupplierService
	alerts     *services.AlertService
	settings   *services.SettingsService
	dashboard  *services.DashboardService
	trace      *services.TraceService
}

// NewServer creates a server over the runtime's store
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rt := opts.Runtime
	if rt.Logger == nil {
		rt.Logger = logger
	}
	clock := rt.Clock
	if clock == nil {
		clock = time.Now
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Server{
		store:      rt.Store,
		logger:     logger,
		gatherer:   gatherer,
		recorder:   opts.Recorder,
		intake:     services.NewIntakeService(rt),
		storage:    services.NewStorageService(rt),
		processing: services.NewProcessingService(rt),
		suppliers:  services.NewSupplierService(rt),
		alerts:     services.NewAlertService(rt),
		settings:   services.NewSettingsService(rt),
		dashboard:  services.NewDashboardService(rt.Store, services.Clock(clock)),
		trace:      services.NewTraceService(rt.Store),
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	registerValidations()

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.logger))

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", s.handleMetrics())

	v1 := router.Group("/api/v1")
	v1.Use(s.actorMiddleware())
	{
		trucks := v1.Group("/trucks")
		{
			trucks.GET("", s.listTrucks)
			trucks.GET("/:id", s.getTruck)
			trucks.POST("", s.require(entities.PermCheckIn), s.checkIn)
			trucks.POST("/register", s.require(entities.PermManageTrucks), s.registerTruck)
			trucks.POST("/:id/advance", s.require(entities.PermManageTrucks), s.advanceTruck)
			trucks.POST("/:id/bales", s.require(entities.PermPerformQA), s.recordBale)
		}

		v1.GET("/bales", s.listBales)
		v1.GET("/bales/:id", s.getBale)
		v1.POST("/bales/:id/place", s.require(entities.PermManageStorage), s.placeBale)

		pyramids := v1.Group("/pyramids")
		{
			pyramids.GET("", s.listPyramids)
			pyramids.GET("/:id", s.getPyramid)
			pyramids.POST("", s.require(entities.PermManageStorage), s.addPyramid)
			pyramids.PATCH("/:id/status", s.require(entities.PermManageStorage), s.setPyramidStatus)
		}

		processing := v1.Group("/processing")
		{
			processing.GET("/fefo", s.suggestFEFO)
			processing.GET("/batches", s.listBatches)
			processing.POST("/batches", s.require(entities.PermManageStorage), s.createBatch)
			processing.POST("/batches/:id/complete", s.require(entities.PermManageStorage), s.completeBatch)
		}

		suppliers := v1.Group("/suppliers")
		{
			suppliers.GET("", s.listSuppliers)
			suppliers.GET("/:id", s.getSupplier)
			suppliers.POST("", s.require(entities.PermManageSuppliers), s.addSupplier)
			suppliers.PUT("/:id", s.require(entities.PermManageSuppliers), s.updateSupplier)
			suppliers.POST("/recompute", s.require(entities.PermManageSuppliers), s.recomputeAll)
			suppliers.POST("/:id/recompute", s.require(entities.PermManageSuppliers), s.recompute)
			suppliers.PATCH("/:id/tier-override", s.require(entities.PermManageSuppliers), s.setTierOverride)
		}

		alerts := v1.Group("/alerts")
		{
			alerts.GET("", s.listAlerts)
			alerts.POST("", s.require(entities.PermClearAlerts), s.raiseAlert)
			alerts.POST("/evaluate", s.require(entities.PermClearAlerts), s.evaluateAlerts)
			alerts.POST("/:id/clear", s.require(entities.PermClearAlerts), s.clearAlert)
		}

		v1.GET("/dashboard", s.getDashboard)
		v1.GET("/events", s.listEvents)
		v1.GET("/trace/:kind/:term", s.traceRecords)

		v1.GET("/config", s.getConfig)
		v1.PATCH("/config", s.require(entities.PermModifySettings), s.patchConfig)
		v1.GET("/session", s.getSession)
		v1.PUT("/session", s.require(entities.PermModifySettings), s.putSession)
	}

	return router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// within shutdownTimeout
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleMetrics() gin.HandlerFunc {
	h := promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		if s.recorder != nil {
			s.recorder.UpdateGauges(s.store.Snapshot())
		}
		h.ServeHTTP(c.Writer, c.Request)
	}
}

var validationsOnce sync.Once

// registerValidations adds the domain tags to gin's validator and reports
// fields by their JSON names
func registerValidations() {
	validationsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
			return entities.Grade(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("baletype", func(fl validator.FieldLevel) bool {
			return entities.BaleType(fl.Field().String()).Known()
		})
	})
}
