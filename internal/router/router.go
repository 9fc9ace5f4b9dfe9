package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"examportal/internal/config"
	"examportal/internal/handler"
	"examportal/internal/middleware"
	"examportal/internal/response"
	"examportal/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	Question      *handler.QuestionHandler
	Exam          *handler.ExamHandler
	Results       *handler.ResultsHandler
	Dashboard     *handler.DashboardHandler
	Setting       *handler.SettingHandler
	Media         *handler.MediaHandler
	User          *handler.UserHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	adminService *service.AdminService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve uploaded question media statically with aggressive caching (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for credential endpoints (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Auth group: public, rate limited.
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.UserLogin)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)

		// Authenticated profile routes.
		auth.GET("/me", middleware.RequireUserJWT(authService), handlers.Auth.GetUserProfile)
		auth.POST("/logout", middleware.RequireUserJWT(authService), handlers.Auth.Logout)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
		auth.POST("/admin/logout", middleware.RequireAdminJWT(authService), handlers.Auth.Logout)
		auth.POST("/admin/change-password", middleware.RequireAdminJWT(authService), handlers.Auth.ChangeAdminPassword)
	}

	// Student group: user JWT plus active-session check.
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireUserJWT(authService),
		middleware.CheckActiveSession(authService),
	)
	{
		studentAPI.GET("/exam/active", handlers.StudentPortal.GetActiveExam)
		studentAPI.POST("/exam/:id/start", handlers.StudentPortal.StartExam)
		studentAPI.GET("/exam/:id/state", handlers.StudentPortal.GetSessionState)
		studentAPI.GET("/exam/:id/rankings", handlers.StudentPortal.GetRankings)
		studentAPI.POST("/session/:id/submit", handlers.StudentPortal.SubmitExam)
		studentAPI.GET("/session/:id/result", handlers.StudentPortal.GetResult)
		studentAPI.GET("/session/:id/review", handlers.StudentPortal.ReviewSession)
		studentAPI.GET("/history", handlers.StudentPortal.GetHistory)
		studentAPI.GET("/leaderboard", handlers.StudentPortal.GetLeaderboard)
	}

	// Admin group: admin JWT, session check, and a gate that forces a
	// password change after a reset before anything else works.
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(
		middleware.RequireAdminJWT(authService),
		middleware.CheckActiveSession(authService),
		middleware.RequireFreshPassword(adminService),
	)
	{
		adminAPI.GET("/dashboard", handlers.Dashboard.Get)

		adminAPI.GET("/questions", handlers.Question.List)
		adminAPI.GET("/questions/categories", handlers.Question.CategoryCounts)
		adminAPI.GET("/questions/:id", handlers.Question.Get)
		adminAPI.POST("/questions", handlers.Question.Create)
		adminAPI.PUT("/questions/:id", handlers.Question.Update)
		adminAPI.DELETE("/questions/:id", handlers.Question.Delete)

		adminAPI.GET("/exams", handlers.Exam.List)
		adminAPI.GET("/exams/:id", handlers.Exam.Get)
		adminAPI.POST("/exams", handlers.Exam.Create)
		adminAPI.PUT("/exams/:id", handlers.Exam.Update)
		adminAPI.DELETE("/exams/:id", handlers.Exam.Delete)
		adminAPI.POST("/exams/:id/activate", handlers.Exam.Activate)
		adminAPI.POST("/exams/:id/deactivate", handlers.Exam.Deactivate)

		adminAPI.GET("/results", handlers.Results.List)
		adminAPI.GET("/results/exam/:id/standings", handlers.Results.Standings)
		adminAPI.GET("/results/exam/:id/stats", handlers.Results.Stats)
		adminAPI.POST("/results/repair", handlers.Results.RepairScores)

		adminAPI.GET("/users", handlers.User.List)

		adminAPI.GET("/controls", handlers.Setting.GetControls)
		adminAPI.PUT("/controls", handlers.Setting.UpdateControls)

		adminAPI.POST("/media/upload", handlers.Media.Upload)
	}

	return router
}
