package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "go-listings/internal/common/api"
	"go-listings/internal/config"
	"go-listings/internal/database"
	"go-listings/internal/features/integration"
	"go-listings/internal/features/property"
	"go-listings/internal/features/retention"
	"go-listings/internal/features/scheduler"
	"go-listings/internal/features/sync"
	"go-listings/internal/logger"
	"go-listings/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d route groups\n", len(routes))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, propertyRepo property.PropertyRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := propertyRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure property indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repositories
			integration.NewIntegrationRepository,
			property.NewPropertyRepository,
			sync.NewSyncLogRepository,

			// Initialize Services
			sync.NewFetcher,
			retention.NewArchiver,
			retention.NewRetentionService,
			sync.NewSyncService,
			integration.NewIntegrationService,
			scheduler.NewSchedulerService,

			// Interface Adapters to satisfy Fx
			func(f *sync.Fetcher) sync.RecordFetcher { return f },
			func(f *sync.Fetcher) integration.ConnectionProber { return f },
			func(s retention.RetentionService) sync.UnseenRetirer { return s },

			// Initialize Controllers
			integration.NewIntegrationController,
			property.NewPropertyController,
			sync.NewSyncController,
			retention.NewRetentionController,

			// Initialize API Routes
			AsRoute(integration.NewIntegrationApi),
			AsRoute(property.NewPropertyApi),
			AsRoute(sync.NewSyncApi),
			AsRoute(retention.NewRetentionApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			InitializeIndexes,
			func(lc fx.Lifecycle, schedulerService scheduler.SchedulerService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return schedulerService.InitializeScheduler(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return schedulerService.StopScheduler()
					},
				})
			},
		),
	)

	app.Run()
}
