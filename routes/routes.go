package routes

import (
	"os"
	"strings"
	"time"

	"jobport/handlers"
	"jobport/middleware"
	"jobport/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func allowedOrigins() []string {
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		parts := strings.Split(env, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		return origins
	}
	return []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"}
}

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Jobport API is running",
			"time":    time.Now().Unix(),
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Public routes
	authLimiter := middleware.NewIPRateLimiter(20, time.Minute)
	router.POST("/api/signup", middleware.RateLimit(authLimiter), handlers.Signup)
	router.POST("/api/login", middleware.RateLimit(authLimiter), handlers.Login)
	router.GET("/api/vapid-public-key", handlers.GetVapidPublicKey)

	// Job browsing is public
	router.GET("/api/jobs", handlers.GetJobs)
	router.GET("/api/jobs/search", handlers.SearchJobs)
	router.GET("/api/jobs/:id", handlers.GetJobByID)

	// Protected routes
	protected := router.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware())

	recruiterOnly := middleware.RequireRole(models.RoleRecruiter)
	seekerOnly := middleware.RequireRole(models.RoleSeeker)

	// Jobs
	protected.POST("/jobs", recruiterOnly, handlers.CreateJob)
	protected.PATCH("/jobs/:id", recruiterOnly, handlers.UpdateJob)
	protected.DELETE("/jobs/:id", recruiterOnly, handlers.DeleteJob)
	protected.GET("/jobs/recruiter/:recruiterId", recruiterOnly, handlers.GetRecruiterJobs)
	protected.POST("/jobs/:id/apply", seekerOnly, handlers.ApplyForJobByID)
	protected.GET("/jobs/:id/applications", recruiterOnly, handlers.GetJobApplications)
	protected.PATCH("/jobs/application/:appId/status", recruiterOnly, handlers.UpdateApplicationStatus)

	// Applications
	protected.POST("/applications", seekerOnly, handlers.ApplyForJob)
	protected.GET("/applications", recruiterOnly, handlers.GetApplications)
	protected.GET("/applications/:appId", handlers.GetApplicationByID)
	protected.PATCH("/applications/:appId/status", recruiterOnly, handlers.UpdateApplicationStatus)
	protected.DELETE("/applications/:appId/withdraw", seekerOnly, handlers.WithdrawApplication)

	// Users
	protected.POST("/users/profile", handlers.CreateProfile)
	protected.GET("/users/profile/:userId", handlers.GetUserProfile)
	protected.PATCH("/users/profile/:userId", handlers.UpdateUserProfile)
	protected.GET("/users/seeker/:userId/applications", seekerOnly, handlers.GetSeekerApplications)
	protected.GET("/users/seeker/:userId/stats", seekerOnly, handlers.GetSeekerStats)
	protected.GET("/users/recruiter/:userId/analytics", recruiterOnly, handlers.GetRecruiterAnalytics)
	protected.GET("/users/recruiter/:userId/applicants", recruiterOnly, handlers.GetRecruiterApplicants)
	protected.GET("/users/recruiter/job/:jobId/applicants", recruiterOnly, handlers.GetJobApplicants)

	// Push subscriptions
	protected.POST("/subscribe", handlers.SubscribePush)

	// JSON 404 for unknown API routes
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(404, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
