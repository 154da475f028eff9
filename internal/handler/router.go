package handler

import (
	"net/http"
	"time"

	"automarket/chat/internal/auth"
	"automarket/chat/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterOptions carries the HTTP-level settings of the gateway.
type RouterOptions struct {
	AllowedOrigins []string
	MessageLimiter *middleware.LimiterStore
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) == 0 || (len(opts.AllowedOrigins) == 1 && opts.AllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	authRequired := auth.AuthMiddleware(h.db, h.tokens)
	staffOnly := auth.StaffMiddleware()

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", h.RegisterUser)
			authRoutes.POST("/login", h.LoginUser)
		}

		userRoutes := apiV1.Group("/users")
		userRoutes.Use(authRequired)
		{
			userRoutes.GET("/me", h.GetMe)
		}

		roomRoutes := apiV1.Group("/rooms")
		roomRoutes.Use(authRequired)
		{
			roomRoutes.GET("", h.ListRooms)
			roomRoutes.GET("/stats", h.RoomStats) // Must be before /:id
			roomRoutes.POST("/private", h.CreatePrivateRoom)
			roomRoutes.POST("/group", staffOnly, h.CreateGroupRoom)
			roomRoutes.POST("/general", h.JoinGeneralRoom)
			roomRoutes.GET("/:id", h.GetRoom)

			sends := []gin.HandlerFunc{h.SendMessage}
			if opts.MessageLimiter != nil {
				sends = append([]gin.HandlerFunc{middleware.RateLimit(opts.MessageLimiter)}, sends...)
			}
			roomRoutes.GET("/:id/messages", h.ListMessages)
			roomRoutes.POST("/:id/messages", sends...)
			roomRoutes.POST("/:id/read", h.MarkRead)
			roomRoutes.GET("/:id/unread", h.UnreadCount)
			roomRoutes.GET("/:id/events", h.StreamRoomEvents)

			roomRoutes.POST("/:id/members", staffOnly, h.AddMember)
			roomRoutes.DELETE("/:id/members/:userID", staffOnly, h.RemoveMember)
		}

		apiV1.GET("/ws", authRequired, h.Websocket)

		// Admin routes (protected by auth and staff check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(authRequired, staffOnly)
		{
			adminRoutes.GET("/users", h.ListUsers)
			adminRoutes.POST("/users/:id/approve", h.ApproveUser)
			adminRoutes.DELETE("/users/:id", h.DeleteUser)
			adminRoutes.PUT("/rooms/:id/active", h.SetRoomActive)
			adminRoutes.DELETE("/rooms/:id", h.DeleteRoom)
		}
	}

	return router
}
