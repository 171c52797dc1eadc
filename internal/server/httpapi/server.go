// Package httpapi exposes the Tijori services as a cookie-authenticated
// JSON API built on gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tijori/tijori/internal/logging"
	"github.com/tijori/tijori/internal/server/config"
)

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address     string
	engine      *gin.Engine
	users       UserService
	collections CollectionService
	files       FileService
	logger      logging.Logger

	production bool
	corsOrigin string
	uploadDir  string
	maxUpload  int64
}

// NewHTTPServer wires the routes. uploadDir must exist; multipart uploads
// are staged there before being handed to the file service.
func NewHTTPServer(cfg *config.Config, uploadDir string, l logging.Logger, us UserService, cs CollectionService, fs FileService) *HTTPServer {
	s := &HTTPServer{
		address:     cfg.HTTPAddress,
		users:       us,
		collections: cs,
		files:       fs,
		logger:      l.With("module", "http_server"),
		production:  cfg.Production,
		corsOrigin:  cfg.CORSOrigin,
		uploadDir:   uploadDir,
		maxUpload:   cfg.MaxUploadSize,
	}

	s.engine = gin.New()
	s.engine.Use(s.recovery(), s.requestLogger(), s.cors())
	s.routes(s.engine)

	return s
}

func (s *HTTPServer) routes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/ping", s.ping)

	users := api.Group("/users")
	users.POST("/register", s.requireGuest, s.register)
	users.POST("/login", s.requireGuest, s.login)
	users.GET("/profile", s.authenticate, s.profile)
	users.POST("/logout", s.authenticate, s.logout)

	collections := api.Group("/collections", s.authenticate)
	collections.POST("/create", s.createCollection)
	collections.GET("", s.listCollections)
	collections.POST("", s.getCollection)
	collections.PUT("", s.renameCollection)
	collections.DELETE("", s.deleteCollection)

	files := api.Group("/files", s.authenticate)
	files.POST("/create", s.createFile)
	files.GET("", s.listFiles)
	files.POST("", s.getFile)
	files.PUT("", s.renameFile)
	files.PUT("/collections", s.setFileCollections)
	files.DELETE("", s.deleteFile)
}

// Handler returns the routed engine.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
