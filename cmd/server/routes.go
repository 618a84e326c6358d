package main

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"syncchat.backend/internal/config"
	"syncchat.backend/internal/interfaces/http/handlers"
	"syncchat.backend/internal/interfaces/http/middleware"
	"syncchat.backend/pkg/metrics"
)

const (
	serviceName    = "syncchat-backend"
	serviceVersion = "1.0.0"
)

type routeDeps struct {
	authHandler    *handlers.AuthHandler
	profileHandler *handlers.ProfileHandler
	authMiddleware gin.HandlerFunc
}

// newRouter builds the engine with the middleware chain and every route
func newRouter(cfg *config.Config, d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	if cfg.Storage.Driver == config.StorageDriverLocal {
		registerUploadsRoute(r, cfg.Storage.LocalDir)
	}
	registerAuthRoutes(r, d)
	return r
}

func registerAuthRoutes(r *gin.Engine, d routeDeps) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", d.authHandler.Signup)
		auth.POST("/login", d.authHandler.Login)
		auth.POST("/logout", d.authHandler.Logout)

		gated := auth.Group("", d.authMiddleware)
		gated.GET("/user-info", d.authHandler.GetUserInfo)
		gated.POST("/verify-email", d.authHandler.VerifyEmail)
		gated.POST("/resend-verification", d.authHandler.ResendVerification)
		gated.POST("/update-profile", d.profileHandler.UpdateProfile)
		gated.POST("/add-profile-image", d.profileHandler.AddProfileImage)
		gated.DELETE("/remove-profile-image", d.profileHandler.RemoveProfileImage)
	}
}

// applyCORSMiddleware lets the configured browser origins call the API with
// credentials. The session cookie is cross-site, so the origin is echoed
// rather than answered with a wildcard.
func applyCORSMiddleware(r *gin.Engine, allowedOrigins []string) {
	allowAny := slices.Contains(allowedOrigins, "*")
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAny || slices.Contains(allowedOrigins, origin)) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", strings.Join([]string{
				http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
			}, ", "))
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// registerUploadsRoute serves locally stored avatars read-only. Browsers must
// not sniff or execute anything under /uploads.
func registerUploadsRoute(r *gin.Engine, dir string) {
	uploads := r.Group("/uploads", func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Content-Security-Policy", "default-src 'none'; img-src 'self'; sandbox")
		c.Next()
	})
	uploads.Static("/", dir)
}
