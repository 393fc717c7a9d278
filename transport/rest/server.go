package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/registry"
)

const shutdownTimeout = 5 * time.Second

type roomUseCase interface {
	CreateRoom(ctx context.Context, playerName string) (*registry.CreateResult, error)
	GetRoom(ctx context.Context, roomID string) (*entity.Room, error)
}

type Server struct {
	logger *slog.Logger
	rooms  roomUseCase
}

func New(logger *slog.Logger, rooms roomUseCase) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		rooms:  rooms,
	}
}

func (that *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), that.requestLogger())

	router.GET("/ping", that.handlePing)

	api := router.Group("/api")
	api.POST("/rooms", that.handleCreateRoom)
	api.GET("/rooms/:id", that.handleGetRoom)

	return router
}

// Start - serves the API until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

func (that *Server) requestLogger() gin.HandlerFunc {
	log := that.logger.With("method", "requestLogger")

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Debug("request served",
			"httpMethod", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
