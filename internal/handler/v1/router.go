package v1

import (
	"net/http"

	"github.com/docease/docease-api/internal/config"
	"github.com/docease/docease-api/internal/domain"
	"github.com/docease/docease-api/pkg/auth"
	"github.com/docease/docease-api/pkg/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDeps carries everything route registration needs.
type RouterDeps struct {
	Config       *config.Config
	Logger       *zap.Logger
	JWTManager   *auth.JWTManager
	Metrics      *metrics.Collector
	Auth         *AuthHandler
	Availability *AvailabilityHandler
	Appointments *AppointmentHandler
	Admin        *AdminHandler
}

// NewRouter builds the gin engine with middleware and all v1 routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:  deps.Config.CORS.AllowedOrigins,
		AllowMethods:  deps.Config.CORS.AllowedMethods,
		AllowHeaders:  deps.Config.CORS.AllowedHeaders,
		MaxAge:        deps.Config.CORS.MaxAge,
		AllowWildcard: true,
	}))

	limiter := NewRateLimiter(deps.Config.RateLimit)
	engine.Use(RateLimit(limiter))
	engine.Use(Tracing(deps.Config.App.Name))
	engine.Use(Metrics(deps.Metrics))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Config.App.Name,
			"version": deps.Config.App.Version,
		})
	})
	engine.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := engine.Group("/api/v1")

	authn := RequireAuth(deps.JWTManager)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", deps.Auth.Register)
		authGroup.POST("/login", deps.Auth.Login)
	}

	// The GET wildcard is a doctor id, the PUT/DELETE one a window id; gin
	// requires a single name per position.
	availability := api.Group("/availability")
	{
		availability.GET("/:id", deps.Availability.ListByDoctor)
		availability.POST("", authn, RequireRole(domain.RoleDoctor), deps.Availability.Create)
		availability.PUT("/:id", authn, RequireRole(domain.RoleDoctor), deps.Availability.Update)
		availability.DELETE("/:id", authn, RequireRole(domain.RoleDoctor), deps.Availability.Delete)
	}

	appointments := api.Group("/appointments", authn)
	{
		appointments.POST("/book", RequireRole(domain.RolePatient), deps.Appointments.Book)
		appointments.GET("/mine", RequireRole(domain.RolePatient), deps.Appointments.ListMine)
		appointments.GET("/doctor", RequireRole(domain.RoleDoctor), deps.Appointments.ListForDoctor)
		appointments.PATCH("/cancel/:appointmentId", RequireRole(domain.RolePatient), deps.Appointments.Cancel)
		appointments.PATCH("/reschedule/:appointmentId", RequireRole(domain.RolePatient), deps.Appointments.Reschedule)
		appointments.PATCH("/doctor/:appointmentId", RequireRole(domain.RoleDoctor), deps.Appointments.UpdateByDoctor)
	}

	admin := api.Group("/admin", authn, RequireRole(domain.RoleAdmin))
	{
		admin.GET("/doctors", deps.Admin.ListDoctors)
		admin.GET("/patients", deps.Admin.ListPatients)
		admin.GET("/appointments", deps.Admin.ListAppointments)
		admin.GET("/dashboard-stats", deps.Admin.DashboardStats)
		admin.PATCH("/doctors/:appointmentId/cancel", deps.Admin.CancelAppointment)
		admin.PATCH("/doctors/:appointmentId/reschedule", deps.Admin.RescheduleAppointment)
		admin.DELETE("/users/:userId", deps.Admin.DeleteUser)
	}

	deps.Logger.Info("routes registered",
		zap.Int("route_count", len(engine.Routes())),
	)

	return engine
}
