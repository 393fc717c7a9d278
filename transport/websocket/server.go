package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/registry"
)

const (
	maxMessageSize  = 4096
	shutdownTimeout = 5 * time.Second

	// DefaultPongWait is how long a silent socket is kept before it counts as disconnected.
	DefaultPongWait = 60 * time.Second
	// DefaultPingPeriod must stay below the pong wait.
	DefaultPingPeriod = DefaultPongWait * 9 / 10
)

type roomUseCase interface {
	CreateRoom(ctx context.Context, playerName string) (*registry.CreateResult, error)
	JoinRoom(ctx context.Context, roomID, playerName string) (*registry.JoinResult, error)
	MakeMove(ctx context.Context, roomID, playerID string, position int) (*entity.Room, error)
	Disconnect(ctx context.Context, roomID, playerID string, session uint64) (*entity.GameResult, *entity.Room)
}

type handlerFunc func(ctx context.Context, c *client, message *ClientMessage) error

type Server struct {
	logger *slog.Logger
	rooms  roomUseCase
	hub    *hub

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc

	pongWait   time.Duration
	pingPeriod time.Duration
}

type Option func(*Server)

// WithKeepAlive - pings every pingPeriod, a socket without a pong for pongWait is dropped.
func WithKeepAlive(pongWait, pingPeriod time.Duration) Option {
	return func(s *Server) {
		s.pongWait = pongWait
		s.pingPeriod = pingPeriod
	}
}

func New(logger *slog.Logger, rooms roomUseCase, opts ...Option) *Server {
	logger = logger.With("component", "websocket")

	server := &Server{
		logger: logger,
		rooms:  rooms,
		hub:    newHub(logger),

		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers: make(map[string]handlerFunc),

		pongWait:   DefaultPongWait,
		pingPeriod: DefaultPingPeriod,
	}

	for _, opt := range opts {
		opt(server)
	}

	server.handlers[typeCreateRoom] = server.handleCreateRoom
	server.handlers[typeJoinRoom] = server.handleJoinRoom
	server.handlers[typeMakeMove] = server.handleMakeMove

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.ServeWS)

	return mux
}

// Start - serves /ws until ctx is done, then shuts down and closes the open sockets.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	that.hub.closeAll()

	if err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

// ServeWS - upgrades the request and runs the read loop until the socket closes.
func (that *Server) ServeWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeWS")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Debug("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn)
	that.hub.track(c)

	log.Debug("websocket connection established", "remote", req.RemoteAddr)

	ctx := context.WithoutCancel(req.Context())

	defer func() {
		that.hub.untrack(c)
		that.leave(ctx, c)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)

	if err = conn.SetReadDeadline(time.Now().Add(that.pongWait)); err != nil {
		log.Debug("failed to set read deadline", "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(that.pongWait))
	})

	done := make(chan struct{})
	defer close(done)

	go c.keepAlive(that.pingPeriod, done)

	that.handleMessages(ctx, c)
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket closed unexpectedly", "error", err)
			}
			return
		}

		var message ClientMessage
		if err = json.Unmarshal(data, &message); err != nil {
			that.reply(c, errorMessage("invalid message format", apperror.CodeBadRequest))
			continue
		}

		handler, ok := that.handlers[message.Type]
		if !ok {
			that.reply(c, errorMessage("unknown message type", apperror.CodeBadRequest))
			continue
		}

		if err = handler(ctx, c, &message); err != nil {
			log.Debug("request rejected", "type", message.Type, "error", err)
			that.reply(c, errorMessage(apperror.Message(err), apperror.Code(err)))
		}
	}
}

func (that *Server) reply(c *client, message ServerMessage) {
	if err := c.send(message); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		that.logger.Debug("failed to send message", "type", message.Type, "error", err)
	}
}
