package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"restou/internal/admin"
	"restou/internal/app"
	"restou/internal/auth"
	"restou/internal/feedback"
	"restou/internal/menu"
	"restou/internal/metrics"
	"restou/internal/tracking"
)

// Scraper runs the menu scrape pipeline.
type Scraper interface {
	ScrapeMenus(ctx context.Context) (app.ScrapeReport, error)
}

// Deps are the services behind the HTTP API.
type Deps struct {
	Scraper  Scraper
	Menus    *menu.Repository
	Admins   *admin.Repository
	Feedback *feedback.Repository
	Tracking *tracking.Repository
	Metrics  *metrics.Store
	Issuer   *auth.Issuer
	DataPath string
}

// Server exposes the public and administration HTTP API.
type Server struct {
	Deps
}

// New creates a Server.
func New(d Deps) *Server {
	return &Server{Deps: d}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.Use(logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.MethodNotAllowedHandler = r.MethodNotAllowedHandler
	api.NotFoundHandler = r.NotFoundHandler
	api.HandleFunc("/menu", s.handleGetMenu).Methods(http.MethodGet)
	api.HandleFunc("/feedback", s.handleSubmitFeedback).Methods(http.MethodPost)
	api.HandleFunc("/feedback", s.handleListFeedback).Methods(http.MethodGet)
	api.HandleFunc("/track", s.handleTrack).Methods(http.MethodPost)

	api.HandleFunc("/admin/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/admin/logout", s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/admin/me", s.handleMe).Methods(http.MethodGet)

	staff := s.Issuer.RequireRole(admin.RoleAdmin, admin.RoleSuperadmin)
	api.Handle("/admin/menu/scrape", staff(http.HandlerFunc(s.handleScrape))).Methods(http.MethodPost)
	api.Handle("/admin/menu/update", staff(http.HandlerFunc(s.handleUpdateMenu))).Methods(http.MethodPut)
	api.Handle("/admin/menu", staff(http.HandlerFunc(s.handleCreateMenu))).Methods(http.MethodPost)
	api.Handle("/admin/menus", staff(http.HandlerFunc(s.handleListMenus))).Methods(http.MethodGet)
	api.Handle("/admin/feedback/export", staff(http.HandlerFunc(s.handleExportFeedback))).Methods(http.MethodGet)
	api.Handle("/admin/feedback", staff(http.HandlerFunc(s.handleListFeedback))).Methods(http.MethodGet)
	api.Handle("/admin/tracking", staff(http.HandlerFunc(s.handleListTracking))).Methods(http.MethodGet)

	super := s.Issuer.RequireRole(admin.RoleSuperadmin)
	api.Handle("/admin/users", super(http.HandlerFunc(s.handleListUsers))).Methods(http.MethodGet)
	api.Handle("/admin/users", super(http.HandlerFunc(s.handleCreateUser))).Methods(http.MethodPost)
	api.Handle("/admin/users", super(http.HandlerFunc(s.handleUpdateUser))).Methods(http.MethodPut)
	api.Handle("/admin/users", super(http.HandlerFunc(s.handleDeleteUser))).Methods(http.MethodDelete)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("Server exiting")
	return nil
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
