package application

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/registry"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/service"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-rooms/transport/rest"
	"github.com/rocketscienceinc/tictactoe-rooms/transport/websocket"
)

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rooms := registry.New(logger,
		registry.WithRetention(conf.Rooms.Retention),
		registry.WithReconnectPolicy(reconnectPolicy(conf.Rooms.ReconnectPolicy)),
	)

	var snapshots repository.RoomRepository

	if conf.Redis.Enabled {
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		snapshots = repository.NewRoomRepository(redisStorage.Connection, conf.Rooms.Retention)
		log.Info("mirroring room snapshots to redis", "addr", conf.Redis.GetRedisAddr())
	}

	roomUseCase := usecase.NewRoomUseCase(logger, rooms, snapshots)
	janitor := service.NewJanitor(logger, roomUseCase, conf.Rooms.SweepInterval)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		janitor.Run(ctx)
		return nil
	})

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if err := rest.New(logger, roomUseCase).Start(ctx, conf.HTTPPort); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if err := websocket.New(logger, roomUseCase).Start(ctx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}
		return nil
	})

	err := group.Wait()

	log.Info("Application stopped")

	return err
}

// reconnectPolicy - the name is already validated by config.Load.
func reconnectPolicy(name string) registry.ReconnectPolicy {
	if name == config.RejectWhenFull {
		return registry.RejectWhenFull
	}

	return registry.ReconnectByName
}
