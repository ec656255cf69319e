package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/config"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/pkg/auth"
	"github.com/pbvieira/bsam-gestao-associacao-sub001/pkg/metrics"
)

type RouterDeps struct {
	Config     *config.Config
	Log        *zap.Logger
	Collector  *metrics.Collector
	JWTManager *auth.JWTManager
	DB         *gorm.DB

	Auth         *AuthHandler
	Residents    *ResidentHandler
	Medications  *MedicationHandler
	Rounds       *RoundHandler
	Appointments *AppointmentHandler
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestID(),
		RequestLogger(deps.Log),
		Metrics(deps.Collector),
		RateLimit(deps.Config.RateLimit),
	)

	r.GET("/healthz", healthz(deps.DB))
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth", AuthRateLimit(deps.Config.RateLimit))
	{
		authGroup.POST("/login", deps.Auth.Login)
		authGroup.POST("/refresh", deps.Auth.Refresh)
	}

	protected := api.Group("", Authenticate(deps.JWTManager))
	{
		protected.POST("/auth/password", deps.Auth.ChangePassword)

		manage := RequireRole(domain.RoleAdmin, domain.RoleCoordinator)

		residents := protected.Group("/residents")
		{
			residents.GET("", deps.Residents.List)
			residents.GET("/:id", deps.Residents.Get)
			residents.POST("", manage, deps.Residents.Create)
			residents.PATCH("/:id", manage, deps.Residents.Update)
			residents.DELETE("/:id", manage, deps.Residents.Deactivate)
		}

		prescribe := RequireRole(domain.RoleAdmin, domain.RoleCoordinator, domain.RoleNurse)

		medications := protected.Group("/medications")
		{
			medications.GET("", deps.Medications.List)
			medications.GET("/:id", deps.Medications.Get)
			medications.POST("", prescribe, deps.Medications.Create)
			medications.DELETE("/:id", prescribe, deps.Medications.Deactivate)
		}

		rounds := protected.Group("/rounds")
		{
			rounds.GET("", deps.Rounds.Sheet)
			rounds.POST("/done", deps.Rounds.MarkDone)
			rounds.POST("/not-done", deps.Rounds.MarkNotDone)
			rounds.POST("/undo", deps.Rounds.Undo)
		}

		appointments := protected.Group("/appointments")
		{
			appointments.GET("", deps.Appointments.List)
			appointments.GET("/tracking", deps.Appointments.Tracking)
			appointments.GET("/:id", deps.Appointments.Get)
			appointments.POST("", manage, deps.Appointments.Create)
			appointments.POST("/attendance/attended", deps.Appointments.MarkAttended)
			appointments.POST("/attendance/missed", deps.Appointments.MarkMissed)
			appointments.POST("/attendance/undo", deps.Appointments.UndoAttendance)
		}
	}

	return r
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
