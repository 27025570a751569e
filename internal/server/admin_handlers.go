package server

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"restou/internal/admin"
	"restou/internal/app"
	"restou/internal/auth"
	"restou/internal/crous"
	"restou/internal/feedback"
	"restou/internal/menu"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username et password requis")
		return
	}

	a, err := s.Admins.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, admin.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Identifiants invalides")
			return
		}
		log.Printf("Error authenticating %q: %v", req.Username, err)
		writeError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	token, err := s.Issuer.Issue(*a)
	if err != nil {
		log.Printf("Error issuing token: %v", err)
		writeError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}
	s.Issuer.SetCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]any{"message": "Connexion réussie", "admin": a})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.Issuer.ClearCookie(w)
	writeMessage(w, "Déconnexion réussie")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, err := s.Issuer.FromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"admin": admin.Admin{ID: claims.ID, Username: claims.Username, Role: claims.Role},
	})
}

type scrapeResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	app.ScrapeReport
	DurationMS int64 `json:"duration_ms"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	report, err := s.Scraper.ScrapeMenus(r.Context())
	if err != nil {
		log.Printf("Error scraping menus: %v", err)
		if errors.Is(err, crous.ErrUpstreamFetch) {
			writeError(w, http.StatusInternalServerError, "Impossible d'accéder au site externe")
			return
		}
		writeJSON(w, http.StatusInternalServerError, scrapeResponse{
			Error:        "Erreur lors du scraping des menus: " + err.Error(),
			ScrapeReport: report,
			DurationMS:   report.Duration.Milliseconds(),
		})
		return
	}

	writeJSON(w, http.StatusOK, scrapeResponse{
		Message:      "Menus scrappés et mis à jour avec succès",
		ScrapeReport: report,
		DurationMS:   report.Duration.Milliseconds(),
	})
}

type createMenuRequest struct {
	Date           string          `json:"date"`
	MealPeriod     menu.MealPeriod `json:"mealPeriod"`
	Starters       []string        `json:"starters"`
	MainCourses    []string        `json:"mainCourses"`
	Desserts       []string        `json:"desserts"`
	Accompaniments []string        `json:"accompaniments"`
	Extra          *string         `json:"extra"`
}

func (req createMenuRequest) record() (menu.Record, error) {
	if req.Date == "" || req.MealPeriod == "" || req.Starters == nil || req.MainCourses == nil {
		return menu.Record{}, menu.ErrInvalidInput
	}
	if err := menu.ValidateDate(req.Date); err != nil {
		return menu.Record{}, err
	}
	period, err := menu.ParsePeriod(string(req.MealPeriod))
	if err != nil {
		return menu.Record{}, err
	}
	return menu.Record{
		Date:           req.Date,
		MealPeriod:     period,
		Starters:       cleanList(req.Starters),
		MainCourses:    cleanList(req.MainCourses),
		Desserts:       cleanList(req.Desserts),
		Accompaniments: cleanList(req.Accompaniments),
		Extra:          req.Extra,
	}, nil
}

func (s *Server) handleCreateMenu(w http.ResponseWriter, r *http.Request) {
	var req createMenuRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Tous les champs sont requis.")
		return
	}
	rec, err := req.record()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Tous les champs sont requis.")
		return
	}

	created, err := s.Menus.Create(r.Context(), rec)
	if err != nil {
		if errors.Is(err, menu.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "Un menu existe déjà pour cette date et ce service")
			return
		}
		log.Printf("Error creating menu: %v", err)
		writeError(w, http.StatusInternalServerError, "Erreur lors de l'ajout du menu")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Menu ajouté", "menu": created})
}

type updateMenuRequest struct {
	ID             int64    `json:"id"`
	MainCourses    []string `json:"mainCourses"`
	Accompaniments []string `json:"accompaniments"`
	Desserts       []string `json:"desserts"`
}

func (s *Server) handleUpdateMenu(w http.ResponseWriter, r *http.Request) {
	var req updateMenuRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ID == 0 || req.MainCourses == nil {
		writeError(w, http.StatusBadRequest, "Id et mainCourses sont requis")
		return
	}

	updated, err := s.Menus.UpdateCourses(r.Context(), req.ID, menu.CourseUpdate{
		MainCourses:    cleanList(req.MainCourses),
		Accompaniments: cleanList(req.Accompaniments),
		Desserts:       cleanList(req.Desserts),
	})
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Menu introuvable")
			return
		}
		log.Printf("Error updating menu %d: %v", req.ID, err)
		writeError(w, http.StatusInternalServerError, "Erreur lors de la mise à jour du menu")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Menu mis à jour", "menu": updated})
}

func (s *Server) handleListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := s.Menus.List(r.Context())
	if err != nil {
		log.Printf("Error listing menus: %v", err)
		writeError(w, http.StatusInternalServerError, "Erreur lors de la récupération des menus")
		return
	}
	writeJSON(w, http.StatusOK, menus)
}

func (s *Server) handleExportFeedback(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Feedback.List(r.Context())
	if err != nil {
		log.Printf("Error listing feedback: %v", err)
		writeError(w, http.StatusInternalServerError, "Erreur lors de la récupération des feedbacks")
		return
	}

	var buf bytes.Buffer
	if err := feedback.ExportXLSX(&buf, entries); err != nil {
		log.Printf("Error exporting feedback: %v", err)
		writeError(w, http.StatusInternalServerError, "Erreur lors de l'export des feedbacks")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="feedback.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Admins.List(r.Context())
	if err != nil {
		log.Printf("Error listing admins: %v", err)
		writeError(w, http.StatusInternalServerError, "Erreur lors de la récupération des utilisateurs")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type userRequest struct {
	ID       int64      `json:"id"`
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     admin.Role `json:"role"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Username == "" || req.Password == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "Les champs username, password et role sont requis")
		return
	}

	created, err := s.Admins.Create(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		s.writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Utilisateur créé", "user": created})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ID == 0 || req.Username == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "Les champs id, username et role sont requis")
		return
	}

	updated, err := s.Admins.Update(r.Context(), req.ID, req.Username, req.Password, req.Role)
	if err != nil {
		s.writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Utilisateur mis à jour", "user": updated})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Le paramètre id est requis")
		return
	}
	if claims, ok := auth.ClaimsFrom(r.Context()); ok && claims.ID == id {
		writeError(w, http.StatusBadRequest, "Impossible de supprimer votre propre compte")
		return
	}

	if err := s.Admins.Delete(r.Context(), id); err != nil {
		s.writeUserError(w, err)
		return
	}
	writeMessage(w, "Utilisateur supprimé")
}

func (s *Server) writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, admin.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Données utilisateur invalides")
	case errors.Is(err, admin.ErrNotFound):
		writeError(w, http.StatusNotFound, "Utilisateur introuvable")
	case errors.Is(err, admin.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "Ce nom d'utilisateur est déjà pris")
	default:
		log.Printf("Error managing admin accounts: %v", err)
		writeError(w, http.StatusInternalServerError, "Erreur lors de la gestion des utilisateurs")
	}
}

// cleanList trims items and drops blanks; nil stays nil.
func cleanList(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
