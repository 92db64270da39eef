package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"

	"github.com/gravitas-games/domino/internal/config"
	"github.com/gravitas-games/domino/internal/hex"
	"github.com/gravitas-games/domino/internal/storage"
)

// Server represents the board server
type Server struct {
	config       *config.Config
	layout       hex.Layout
	store        storage.Store
	upgrader     websocket.Upgrader
	httpSrv      *http.Server
	jwtValidator *JWTValidator
	redis        *redis.Client

	// Connection tracking
	connections map[*Connection]bool
	connMu      sync.RWMutex

	// Shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config) (*Server, error) {
	log.Println("Initializing server...")

	layout, err := layoutFromConfig(cfg.Grid)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	srv := &Server{
		config:      cfg,
		layout:      layout,
		connections: make(map[*Connection]bool),
		ctx:         ctx,
		cancel:      cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browsers send the token as a subprotocol and expect it echoed
			Subprotocols: []string{"access_token"},
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict to the configured host once the UI is served from a fixed origin
				return true
			},
		},
	}

	if cfg.UsesRedis() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Println("Connected to Redis")
		srv.redis = redisClient
	}

	switch cfg.Storage.Backend {
	case "redis":
		srv.store = storage.NewRedis(srv.redis, cfg.Storage.KeyPrefix)
	default:
		srv.store = storage.NewFS(cfg.Storage.Dir)
	}
	log.Printf("Board storage: %s", cfg.Storage.Backend)

	if cfg.JWT.Enabled {
		validator, err := NewJWTValidator(ctx, cfg, srv.redis)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to initialize JWT validator: %w", err)
		}
		srv.jwtValidator = validator
	} else {
		log.Println("Authentication disabled, editors connect anonymously")
	}

	log.Println("Server initialized successfully")
	return srv, nil
}

// newWithStore builds a server around an existing store without touching
// Redis or JWT. Used by tests.
func newWithStore(cfg *config.Config, store storage.Store) (*Server, error) {
	layout, err := layoutFromConfig(cfg.Grid)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config:      cfg,
		layout:      layout,
		store:       store,
		connections: make(map[*Connection]bool),
		ctx:         ctx,
		cancel:      cancel,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

func layoutFromConfig(g config.GridConfig) (hex.Layout, error) {
	return hex.NewLayout(
		hex.Size{W: g.CellWidth, H: g.CellHeight},
		hex.Size{W: g.SpacingH, H: g.SpacingV},
	)
}

// Start begins listening for connections
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("WebSocket endpoint: ws://%s/ws", addr)
	log.Printf("Health endpoint: http://%s/health", addr)

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	log.Println("Shutting down server...")

	// Cancel context to signal shutdown
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}

	// Closing the socket ends each read loop, which cleans up its own connection
	s.connMu.RLock()
	for conn := range s.connections {
		conn.ws.Close()
	}
	s.connMu.RUnlock()

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("Redis close error: %v", err)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}

// handleWebSocket handles WebSocket connection requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log.Printf("New WebSocket connection request from %s", r.RemoteAddr)

	editor, err := s.authenticate(r)
	if err != nil {
		log.Printf("Rejected connection from %s: %v", r.RemoteAddr, err)
		http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn := NewConnection(ws, s)
	session := NewSession(s.ctx, editor, s.config, s.layout, s.store, conn.SendMessage)
	conn.session = session

	s.connMu.Lock()
	s.connections[conn] = true
	s.connMu.Unlock()

	log.Printf("Session %s opened for %s (%s)", session.ID, editor.Username, r.RemoteAddr)

	// Handle connection (blocking)
	conn.Handle()

	s.connMu.Lock()
	delete(s.connections, conn)
	s.connMu.Unlock()

	log.Printf("Session %s closed for %s (%s)", session.ID, editor.Username, r.RemoteAddr)
}
