package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "facevote.io/application/appErrors"
	"facevote.io/application/controller"
	"facevote.io/infrastructure/config"
	"facevote.io/infrastructure/logger"
	middlewares "facevote.io/infrastructure/middleware"
	ratelimit "facevote.io/infrastructure/ratelimit"
	webRoutev1 "facevote.io/infrastructure/routes/ginRouter/web/v1"
	server_response "facevote.io/infrastructure/serverResponse"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type serverInterface interface {
	Start() error
	Shutdown(ctx context.Context) error
}

type ginServer struct {
	cfg                   config.ServerConfig
	recognitionController *controller.RecognitionController
	httpServer            *http.Server
}

// NewRouter builds the gin engine with every middleware and route mounted.
func NewRouter(cfg config.ServerConfig, recognitionController *controller.RecognitionController) *gin.Engine {
	server := gin.New()
	server.Use(gin.Recovery())

	if len(cfg.CORSOrigins) > 0 {
		corsConfig := cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Origin", "Content-Type", middlewares.RequestIDHeader, "User-Agent"},
			ExposeHeaders:    []string{"Content-Length", middlewares.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
		server.Use(cors.New(corsConfig))
	}
	server.Use(ratelimit.TokenBucketPerIP(cfg.RateLimit))
	server.MaxMultipartMemory = cfg.MaxUploadMB << 20

	server.Use(middlewares.RequestContextMiddleware())
	server.Use(logger.RequestMetricMonitor.RequestMetricMiddleware().(func(*gin.Context)))

	webRoutev1.MiscRouter(&server.RouterGroup)
	webRoutev1.RecognitionRouter(server.Group("/api"), recognitionController, cfg.MaxUploadMB)

	server.GET("/ping", func(ctx *gin.Context) {
		server_response.Responder.Respond(ctx, http.StatusOK, true, "pong!", nil, nil)
	})

	server.NoRoute(func(ctx *gin.Context) {
		apperrors.NotFoundError(ctx, fmt.Sprintf("%s %s does not exist", ctx.Request.Method, ctx.Request.URL))
	})
	return server
}

func (s *ginServer) Start() error {
	if s.cfg.GinMode != gin.DebugMode && s.cfg.GinMode != gin.ReleaseMode {
		return fmt.Errorf("invalid gin mode used - %s", s.cfg.GinMode)
	}
	gin.SetMode(s.cfg.GinMode)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Port),
		Handler:           NewRouter(s.cfg, s.recognitionController),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info(fmt.Sprintf("Server starting on PORT %s", s.cfg.Port))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *ginServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
