package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/ndallagnol/go-tabletop/internal/config"
	"github.com/ndallagnol/go-tabletop/internal/database"
	"github.com/ndallagnol/go-tabletop/internal/server"
	"github.com/ndallagnol/go-tabletop/internal/state"
	"github.com/ndallagnol/go-tabletop/internal/stats"
	"github.com/teris-io/shortid"
)

type TabletopApp struct {
	log            *log.Logger
	db             database.TabletopRepository
	stateCh        state.Channel
	ts             *server.TableServer
	stats          stats.StatsProvider
	mux            *http.Server
	signingKey     []byte
	allowedOrigins []string

	// overridable for tests
	generateShortId func() (string, error)
}

func NewTabletopApp(mux *http.ServeMux, logger *log.Logger, ts *server.TableServer,
	db database.TabletopRepository, stateCh state.Channel, su stats.StatsProvider, cfg *config.Config) *TabletopApp {
	s := &TabletopApp{
		log:             logger,
		db:              db,
		stateCh:         stateCh,
		ts:              ts,
		stats:           su,
		signingKey:      cfg.SigningKey,
		allowedOrigins:  cfg.AllowedOrigins,
		generateShortId: shortid.Generate,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("POST /api/auth/anonymous", s.anonymousLogin)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.HandleFunc("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.HandleFunc("PUT /api/account/name", s.authMiddleware(s.updateDisplayName))
	mux.HandleFunc("POST /api/rooms", s.authMiddleware(s.createRoom))
	mux.HandleFunc("GET /api/rooms", s.authMiddleware(s.listRooms))
	mux.HandleFunc("DELETE /api/rooms", s.authMiddleware(s.deleteRoom))
	mux.HandleFunc("GET /ws", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *TabletopApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *TabletopApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
