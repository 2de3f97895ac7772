package routes

import (
	"os"
	"strings"
	"time"

	"mindtype/handlers"
	"mindtype/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func corsOrigins() []string {
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		return strings.Split(env, ",")
	}
	return []string{"http://localhost:3000", "http://localhost:5173"}
}

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "MindType API is running!",
			"time":    time.Now().Unix(),
		})
	})

	// Auth
	auth := router.Group("/api/auth")
	auth.POST("/register", handlers.Register)
	auth.POST("/login", handlers.Login)
	auth.GET("/me", middleware.JWTAuthMiddleware(), handlers.Me)
	auth.POST("/logout", middleware.JWTAuthMiddleware(), handlers.Logout)

	// Posts: reads are public, writes require a session
	posts := router.Group("/api/posts")
	posts.GET("", handlers.GetPosts)
	posts.GET("/:id", handlers.GetPost)
	posts.GET("/user/:userId", handlers.GetUserPosts)
	posts.POST("", middleware.JWTAuthMiddleware(), handlers.CreatePost)
	posts.PUT("/:id", middleware.JWTAuthMiddleware(), handlers.UpdatePost)
	posts.DELETE("/:id", middleware.JWTAuthMiddleware(), handlers.DeletePost)
	posts.POST("/:id/like", middleware.JWTAuthMiddleware(), handlers.LikePost)
	posts.POST("/:id/comments", middleware.JWTAuthMiddleware(), handlers.AddComment)

	// Users
	users := router.Group("/api/users")
	users.GET("/:id", handlers.GetUser)
	users.GET("/:id/followers", handlers.GetFollowers)
	users.GET("/:id/following", handlers.GetFollowing)
	users.PUT("/profile", middleware.JWTAuthMiddleware(), handlers.UpdateProfile)
	users.POST("/avatar", middleware.JWTAuthMiddleware(), handlers.UploadAvatar)
	users.POST("/:id/follow", middleware.JWTAuthMiddleware(), handlers.FollowUser)

	// Contacts: public submission, admin triage
	contacts := router.Group("/api/contacts")
	contacts.POST("",
		middleware.RateLimitMiddleware(5, time.Minute),
		middleware.OptionalAuthMiddleware(),
		handlers.SubmitContact)
	admin := contacts.Group("", middleware.JWTAuthMiddleware(), middleware.AdminOnlyMiddleware())
	admin.GET("", handlers.GetContacts)
	admin.GET("/stats/overview", handlers.GetContactStats)
	admin.GET("/:id", handlers.GetContact)
	admin.PUT("/:id", handlers.UpdateContact)
	admin.DELETE("/:id", handlers.DeleteContact)

	// AI blog generation proxy, rate-limited like the upstream service
	router.POST("/api/generate",
		middleware.RateLimitMiddleware(5, time.Minute),
		handlers.GeneratePost)

	// Push notifications
	router.GET("/api/push/vapid-public-key", handlers.GetVapidPublicKey)
	router.POST("/api/push/subscribe", middleware.JWTAuthMiddleware(), handlers.SubscribePush)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"message": "Route not found"})
	})

	return router
}
