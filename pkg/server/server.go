package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/robheffo79/SpinoDB/pkg/auth"
	"github.com/robheffo79/SpinoDB/pkg/database"
	gql "github.com/robheffo79/SpinoDB/pkg/graphql"
	"github.com/robheffo79/SpinoDB/pkg/server/handlers"
)

// Server is the HTTP façade over an embedded database
type Server struct {
	config    *Config
	db        *database.Database
	router    *chi.Mux
	httpSrv   *http.Server
	startTime time.Time
	stopSnap  chan struct{}
}

// New creates a server around an embedded database, loading the
// snapshot file when one exists.
func New(config *Config) (*Server, error) {
	if config.EnableTLS {
		if config.TLSCertFile == "" || config.TLSKeyFile == "" {
			return nil, fmt.Errorf("TLS enabled but certificate or key file not specified")
		}
		if _, err := os.Stat(config.TLSCertFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("TLS certificate file not found: %s", config.TLSCertFile)
		}
		if _, err := os.Stat(config.TLSKeyFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("TLS key file not found: %s", config.TLSKeyFile)
		}
	}

	db := database.New()
	if config.DataFile != "" {
		if _, err := os.Stat(config.DataFile); err == nil {
			if err := db.Load(config.DataFile); err != nil {
				return nil, fmt.Errorf("failed to load snapshot: %w", err)
			}
		}
	}

	srv := &Server{
		config:    config,
		db:        db,
		router:    chi.NewRouter(),
		startTime: time.Now(),
		stopSnap:  make(chan struct{}),
	}

	if err := srv.setupMiddleware(); err != nil {
		return nil, err
	}
	if err := srv.setupRoutes(); err != nil {
		return nil, err
	}

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      srv.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return srv, nil
}

// Database exposes the embedded database
func (s *Server) Database() *database.Database {
	return s.db
}

// Router exposes the configured router, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() error {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	if s.config.EnableLogging {
		s.router.Use(middleware.Logger)
	}

	if s.config.MaxRequestSize > 0 {
		s.router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)
				next.ServeHTTP(w, r)
			})
		})
	}

	if s.config.EnableCORS {
		s.router.Use(s.corsMiddleware)
	}

	if s.config.AuthUsername != "" || s.config.AuthPassword != "" {
		creds, err := auth.NewCredentials(s.config.AuthUsername, s.config.AuthPassword)
		if err != nil {
			return fmt.Errorf("failed to set up auth: %w", err)
		}
		s.router.Use(auth.Middleware(creds))
	}
	return nil
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowed := strings.Join(s.config.AllowedOrigins, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowed)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setupRoutes() error {
	h := handlers.New(s.db)

	s.router.Get("/health", h.Health)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/execute", h.Execute)
		r.Get("/stats", h.DatabaseStats)

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", h.ListCollections)

			r.Route("/{collection}", func(r chi.Router) {
				r.Delete("/", h.DropCollection)
				r.Get("/stats", h.CollectionStats)
				r.Get("/watch", h.WatchCollection)
				r.Get("/export", h.ExportCollection)
				r.Post("/import", h.ImportCollection)

				r.Post("/documents", h.AppendDocument)
				r.Get("/documents/{id}", h.GetDocument)
				r.Put("/documents/{id}", h.UpdateDocument)
				r.Delete("/documents/{id}", h.DeleteDocument)

				r.Post("/query/findone", h.FindOne)
				r.Post("/query/find", h.Find)
				r.Post("/query/update", h.UpdateByQuery)
				r.Post("/query/drop", h.DropByQuery)
				r.Post("/retention", h.DropOlderThan)

				r.Get("/indexes", h.ListIndexes)
				r.Post("/indexes", h.CreateIndex)
				r.Delete("/indexes/{field}", h.DropIndex)
			})
		})
	})

	if s.config.EnableGraphQL {
		gqlHandler, err := gql.Handler(s.db)
		if err != nil {
			return fmt.Errorf("failed to set up GraphQL: %w", err)
		}
		s.router.Post("/graphql", gqlHandler)
	}
	return nil
}

// Start runs the server until SIGINT/SIGTERM, saving the snapshot on
// the way down. Blocks until shutdown completes.
func (s *Server) Start() error {
	if s.config.DataFile != "" && s.config.SnapshotInterval > 0 {
		go s.snapshotLoop()
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.config.EnableTLS {
			err = s.httpSrv.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
		} else {
			err = s.httpSrv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	log.Printf("spinodb listening on %s", s.httpSrv.Addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("received %s, shutting down", sig)
	}

	return s.Shutdown()
}

// Shutdown stops the HTTP listener and writes a final snapshot
func (s *Server) Shutdown() error {
	close(s.stopSnap)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop http server: %w", err)
	}

	if s.config.DataFile != "" {
		if err := s.db.Save(s.config.DataFile); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
	}
	return nil
}

// snapshotLoop saves the database on a fixed interval
func (s *Server) snapshotLoop() {
	ticker := time.NewTicker(s.config.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.db.Save(s.config.DataFile); err != nil {
				log.Printf("snapshot failed: %v", err)
			}
		case <-s.stopSnap:
			return
		}
	}
}
