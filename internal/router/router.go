package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stemsi/classbook-backend/internal/config"
	"github.com/stemsi/classbook-backend/internal/handler"
	"github.com/stemsi/classbook-backend/internal/metrics"
	"github.com/stemsi/classbook-backend/internal/middleware"
	"github.com/stemsi/classbook-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Records   *handler.Records
	Catalog   *handler.CatalogHandler
	Grade     *handler.GradeHandler
	Dashboard *handler.DashboardHandler
	Timetable *handler.TimetableHandler
	Transfer  *handler.TransferHandler
	Seating   *handler.SeatingHandler
	WS        *handler.WSHandler
	System    *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// Background upkeep of the middlewares stops when ctx is cancelled.
func SetupRouter(ctx context.Context, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(metrics.Middleware())
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality: middleware.DefaultBrotliConfig.Quality,
		Skipper: middleware.SkipCompressed,
	}))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.NoStore())

	// ─── 1. Records ────────────────────────────────────────────────────
	r := handlers.Records
	r.Classes.Register(api.Group("/classes"))
	r.Students.Register(api.Group("/students"))
	r.Groups.Register(api.Group("/groups"))
	r.Evaluations.Register(api.Group("/evaluations"))
	r.Grades.Register(api.Group("/grades"))
	r.Absences.Register(api.Group("/absences"))
	r.Rooms.Register(api.Group("/rooms"))
	r.SeatingCharts.Register(api.Group("/seating-charts"))
	r.TimetableSlots.Register(api.Group("/timetable/slots"))
	r.TimetableLessons.Register(api.Group("/timetable/lessons"))
	r.Skills.Register(api.Group("/skills"))
	r.AcquisitionLevels.Register(api.Group("/acquisition-levels"))

	// ─── 2. Catalogs & Settings ────────────────────────────────────────
	catalogs := api.Group("/catalogs")
	{
		catalogs.GET("/:name", handlers.Catalog.ListValues)
		catalogs.POST("/:name", handlers.Catalog.AddValue)
		catalogs.PUT("/:name/:index", handlers.Catalog.RenameValue)
		catalogs.DELETE("/:name/:index", handlers.Catalog.RemoveValue)
	}
	api.GET("/settings/ical-url", handlers.Catalog.GetICalURL)
	api.PUT("/settings/ical-url", handlers.Catalog.SetICalURL)

	// ─── 3. Grades ─────────────────────────────────────────────────────
	api.GET("/grade-table", handlers.Grade.GetTable)
	api.PUT("/grade-entries", handlers.Grade.SaveGrade)
	api.GET("/grade-exports/notes.xlsx", handlers.Grade.ExportWorkbook)

	// ─── 4. Dashboard & Timetable ──────────────────────────────────────
	api.GET("/dashboard", handlers.Dashboard.GetDashboard)
	api.GET("/timetable/week", handlers.Timetable.GetWeek)

	// Imports replace whole collections; limit them per IP.
	importLimiter := middleware.NewRateLimiter(cfg.ImportPerMin, time.Minute)
	go importLimiter.Run(ctx)
	api.POST("/timetable/lessons-import", importLimiter.Middleware(), handlers.Timetable.ImportLessons)

	// ─── 5. Backup ─────────────────────────────────────────────────────
	api.GET("/data/export", handlers.Transfer.Export)
	api.POST("/data/import", importLimiter.Middleware(), handlers.Transfer.Import)

	// ─── 6. Seating ────────────────────────────────────────────────────
	api.GET("/seating-charts/:id/layout", handlers.Seating.GetLayout)
	sessions := api.Group("/seating-sessions")
	{
		sessions.POST("", handlers.Seating.OpenSession)
		sessions.GET("/:id", handlers.Seating.GetSession)
		sessions.POST("/:id/select", handlers.Seating.SelectDesk)
		sessions.POST("/:id/assign", handlers.Seating.AssignStudent)
		sessions.POST("/:id/save", handlers.Seating.SaveSession)
		sessions.DELETE("/:id", handlers.Seating.CloseSession)
	}

	ws := router.Group("/ws/v1")
	{
		ws.GET("/seating-sessions/:id", handlers.WS.SeatingSessionStream)
	}

	// ─── 7. System ─────────────────────────────────────────────────────
	api.GET("/system/status", handlers.System.GetStatus)
	api.POST("/system/save", handlers.System.SaveNow)

	return router
}
