package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/agrimeme/backend/internal/auth"
	"github.com/agrimeme/backend/internal/comments"
	"github.com/agrimeme/backend/internal/config"
	"github.com/agrimeme/backend/internal/database"
	"github.com/agrimeme/backend/internal/handlers"
	"github.com/agrimeme/backend/internal/middleware"
	"github.com/agrimeme/backend/internal/repository"
)

type Server struct {
	cfg     *config.Config
	db      database.Service
	tokens  *auth.TokenManager
	handler *handlers.Handler
}

// NewServer wires repositories, the comment service and handlers, and returns
// the configured HTTP server.
func NewServer(cfg *config.Config, db database.Service, cache comments.Cache, publisher comments.Publisher) (*http.Server, error) {
	policy, err := comments.PolicyByName(cfg.CommentPolicy)
	if err != nil {
		return nil, err
	}

	gormDB := db.GetDB()
	postRepo := repository.NewPostRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)

	commentSvc := comments.NewService(
		repository.NewCommentRepository(gormDB),
		postRepo,
		userRepo,
		policy,
		comments.WithCache(cache),
		comments.WithPublisher(publisher),
	)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	newServer := &Server{
		cfg:    cfg,
		db:     db,
		tokens: tokens,
		handler: handlers.NewHandler(handlers.Deps{
			Users:    userRepo,
			Posts:    postRepo,
			Votes:    repository.NewVoteRepository(gormDB),
			Comments: commentSvc,
			Cache:    cache,
			Tokens:   tokens,
		}),
	}

	router := newServer.RegisterRoutes()

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      otelhttp.NewHandler(router, "http.server"),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s (comment policy: %s)\n", cfg.Port, cfg.CommentPolicy)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server, nil
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()
	r.Use(middleware.Metrics())

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !allowsAnyOrigin(s.cfg.CORSOrigins),
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		stats := s.db.Health()
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Public reads
		api.GET("/posts", s.handler.Post.GetPosts)
		api.GET("/posts/:postId", s.handler.Post.GetPost)
		api.GET("/posts/:postId/comments", s.handler.Comment.GetComments)
		api.GET("/comments", s.handler.Comment.GetAllComments)
		api.GET("/users/:userId", s.handler.User.GetUserProfile)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(s.tokens))
		{
			protected.GET("/me", s.handler.Auth.GetMe)

			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.DELETE("/posts/:postId", s.handler.Post.DeletePost)
			protected.POST("/posts/:postId/vote", s.handler.Post.VotePost)

			protected.POST("/posts/:postId/comments", s.handler.Comment.CreateComment)
			protected.PUT("/posts/:postId/comments/:commentId", s.handler.Comment.UpdateComment)
			protected.DELETE("/posts/:postId/comments/:commentId", s.handler.Comment.DeleteComment)
			protected.POST("/posts/:postId/comments/recount", s.handler.Comment.RecountComments)
		}
	}

	return r
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
