package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"

	"github.com/lox/blackjack/internal/auth"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/history"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/store"
)

// Server hosts one blackjack table per WebSocket connection.
type Server struct {
	cfg         *Config
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	runOnce     sync.Once

	validator  auth.Validator
	store      store.Store
	history    *history.Recorder
	clock      quartz.Clock
	stats      *Stats
	httpServer *http.Server
}

// Option configures optional Server behaviour. Used by tests to inject
// a mock clock or a prebuilt store.
type Option func(*Server)

// WithClock replaces the real clock, so tests can drive idle timeouts.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithStore replaces the store built from configuration.
func WithStore(st store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithValidator replaces the validator built from configuration.
func WithValidator(v auth.Validator) Option {
	return func(s *Server) { s.validator = v }
}

// WithHistory replaces the history recorder built from configuration.
func WithHistory(rec *history.Recorder) Option {
	return func(s *Server) { s.history = rec }
}

// NewServer creates a WebSocket server from a validated configuration.
func NewServer(cfg *Config, logger *log.Logger, opts ...Option) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		clock:       quartz.NewReal(),
		stats:       NewStats(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.validator == nil {
		v, err := buildValidator(cfg.Auth)
		if err != nil {
			cancel()
			return nil, err
		}
		s.validator = v
	}

	if s.store == nil {
		st, err := buildStore(cfg.Store)
		if err != nil {
			cancel()
			return nil, err
		}
		s.store = st
	}

	if s.history == nil && cfg.History.Enabled {
		s.history = history.NewRecorder(cfg.History.Path, logger)
	}

	return s, nil
}

func buildValidator(cfg *AuthSettings) (auth.Validator, error) {
	switch cfg.Mode {
	case "none":
		return auth.NewNoopValidator(), nil
	case "static":
		tokens := make(map[string]auth.Identity, len(cfg.Tokens))
		for token, name := range cfg.Tokens {
			tokens[token] = auth.Identity{PlayerID: name, PlayerName: name}
		}
		return auth.NewStaticValidator(tokens), nil
	case "http":
		return auth.NewHTTPValidator(cfg.Endpoint, cfg.AdminSecret), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}

func buildStore(cfg *StoreSettings) (store.Store, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "file":
		return store.NewFileStore(cfg.Dir)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ttl := time.Duration(cfg.RedisTTLHours) * time.Hour
		return store.NewRedisStore(client, ttl), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Handler returns the HTTP handler serving the WebSocket endpoint and
// the operational routes. It also starts the connection registry.
func (s *Server) Handler() http.Handler {
	s.runOnce.Do(func() { go s.run() })

	router := httprouter.New()
	router.GET("/ws", s.handleWebSocket)
	router.GET("/healthz", s.handleHealth)
	router.GET("/stats", s.handleStats)
	return router
}

// Start starts the WebSocket server and blocks until it stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    s.cfg.GetServerAddress(),
		Handler: s.Handler(),
	}

	s.logger.Info("Starting WebSocket server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops the WebSocket server and closes every connection.
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		session := conn.Session()
		if session != nil {
			session.Close()
		}
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			_, ok := s.connections[conn]
			if ok {
				delete(s.connections, conn)
			}
			total := len(s.connections)
			s.mu.Unlock()

			if ok {
				if session := conn.Session(); session != nil {
					session.Close()
					s.stats.SessionsClosed.Add(1)
				}
				_ = conn.Close()
				s.logger.Info("Client disconnected", "total", total)
			}

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s)
	s.register <- client
	client.Start()

	go func() {
		<-client.ctx.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// handleStats serves the server counters as JSON
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.stats.Snapshot()); err != nil {
		s.logger.Error("Failed to encode stats", "error", err)
	}
}

// handleHello authenticates the connection and seats it at a fresh
// table. A stored session ID resumes that session's bankroll.
func (s *Server) handleHello(c *Connection, data HelloData, requestID string) {
	if c.Session() != nil {
		c.sendError("already_joined", "Session already started", requestID)
		return
	}
	if data.PlayerName == "" {
		c.sendError("invalid_hello", "Player name required", requestID)
		return
	}

	identity, err := s.validator.Validate(c.ctx, data.Token)
	if err != nil {
		code := "auth_failed"
		if errors.Is(err, auth.ErrUnavailable) {
			code = "auth_unavailable"
		}
		s.logger.Warn("Rejected connection", "player", data.PlayerName, "error", err)
		c.sendError(code, err.Error(), requestID)
		return
	}

	player := data.PlayerName
	playerID := data.PlayerName
	if identity != nil {
		if identity.PlayerName != "" {
			player = identity.PlayerName
		}
		if identity.PlayerID != "" {
			playerID = identity.PlayerID
		}
	}

	if s.activeSessions() >= s.cfg.Session.MaxSessions {
		c.sendError("server_full", "No free tables", requestID)
		return
	}

	gameCfg := s.cfg.Table.GameConfig()
	sessionID := uuid.NewString()
	resumed := false
	if data.SessionID != "" {
		rec, err := s.store.Load(c.ctx, data.SessionID)
		switch {
		case err != nil:
			s.logger.Warn("Session lookup failed", "session", data.SessionID, "error", err)
		case rec != nil && rec.Balance >= gameCfg.MinBet:
			sessionID = data.SessionID
			gameCfg.InitialBalance = rec.Balance
			resumed = true
		}
	}

	session, err := s.startSession(c, sessionID, playerID, player, gameCfg)
	if err != nil {
		s.logger.Error("Failed to start session", "error", err)
		c.sendError("internal", "Failed to start table", requestID)
		return
	}
	c.setSession(session)
	s.stats.SessionsStarted.Add(1)

	welcome, err := NewMessage(MessageTypeWelcome, WelcomeData{
		SessionID:  sessionID,
		PlayerID:   playerID,
		PlayerName: player,
		Resumed:    resumed,
		Rules: TableRules{
			Decks:    gameCfg.DeckCount,
			MinBet:   gameCfg.MinBet,
			MaxBet:   gameCfg.MaxBet,
			MaxHands: gameCfg.MaxHands,
		},
	})
	if err != nil {
		s.logger.Error("Failed to create welcome message", "error", err)
		return
	}
	welcome.RequestID = requestID
	_ = c.SendMessage(welcome)

	// Relay events only from here on so no frame precedes the welcome.
	session.game.EventBus().Subscribe(session)
	session.SendState("")

	s.logger.Info("Session started",
		"session", sessionID,
		"player", player,
		"resumed", resumed,
	)
}

// startSession builds the engine and session for a connection.
func (s *Server) startSession(c *Connection, id, playerID, player string, cfg game.Config) (*Session, error) {
	rng := randutil.NewSecure()
	if s.cfg.Table.Seed != 0 {
		rng = randutil.New(s.cfg.Table.Seed)
	}

	g, err := game.NewGame(cfg, rng,
		game.WithLogger(s.logger.WithPrefix("game").With("session", id)),
	)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:          id,
		PlayerID:    playerID,
		Player:      player,
		conn:        c,
		game:        g,
		logger:      s.logger.WithPrefix("session").With("session", id, "player", player),
		store:       s.store,
		history:     s.history,
		stats:       s.stats,
		idleTimeout: time.Duration(s.cfg.Session.IdleTimeoutSeconds) * time.Second,
		createdAt:   time.Now(),
	}
	session.idleTimer = s.clock.AfterFunc(session.idleTimeout, session.expire)
	session.afterChange()

	return session, nil
}

func (s *Server) activeSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if conn.Session() != nil {
			count++
		}
	}
	return count
}
