package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"restou/internal/feedback"
	"restou/internal/menu"
	"restou/internal/metrics"
)

func (s *Server) handleGetMenu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, rawPeriod := q.Get("date"), q.Get("mealPeriod")
	if date == "" || rawPeriod == "" {
		writeError(w, http.StatusBadRequest, "Date et mealPeriod sont requis")
		return
	}
	period, err := menu.ParsePeriod(rawPeriod)
	if err == nil {
		err = menu.ValidateDate(date)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.Menus.Get(r.Context(), date, period)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Aucun menu trouvé pour ces paramètres")
			return
		}
		log.Printf("Error getting menu %s/%s: %v", date, period, err)
		writeError(w, http.StatusInternalServerError, "Erreur lors de la récupération du menu")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// feedbackRequest mirrors the keys posted by the feedback page.
// chosen_main_dish carries the page's joined "dish, side" selection and is
// used when chosen_main_course is absent.
type feedbackRequest struct {
	MainDishRating           int     `json:"main_dish_rating"`
	MainDishTasteRating      int     `json:"main_dish_taste_rating"`
	AccompanimentRating      int     `json:"accompaniment_rating"`
	AccompanimentTasteRating int     `json:"accompaniment_taste_rating"`
	PortionRating            int     `json:"portion_rating"`
	FinishedPlate            bool    `json:"finished_plate"`
	NotEatenReason           *string `json:"not_eaten_reason"`
	Comment                  string  `json:"comment"`
	ChosenMainCourse         string  `json:"chosen_main_course"`
	ChosenMainDish           string  `json:"chosen_main_dish"`
	ChosenAccompaniment      string  `json:"chosen_accompaniment"`
	Date                     string  `json:"date"`
}

func (req feedbackRequest) feedback() (feedback.Feedback, error) {
	f := feedback.Feedback{
		MainDishRating:           req.MainDishRating,
		MainDishTasteRating:      req.MainDishTasteRating,
		AccompanimentRating:      req.AccompanimentRating,
		AccompanimentTasteRating: req.AccompanimentTasteRating,
		PortionRating:            req.PortionRating,
		FinishedPlate:            req.FinishedPlate,
		NotEatenReason:           req.NotEatenReason,
		Comment:                  req.Comment,
		ChosenMainCourse:         req.ChosenMainCourse,
		ChosenAccompaniment:      req.ChosenAccompaniment,
	}
	if f.ChosenMainCourse == "" {
		f.ChosenMainCourse = req.ChosenMainDish
	}
	if req.Date != "" {
		d, err := parseFeedbackDate(req.Date)
		if err != nil {
			return f, err
		}
		f.Date = d
	}
	return f, nil
}

func parseFeedbackDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(menu.DateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", feedback.ErrInvalidInput, s)
}

func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Feedback invalide")
		return
	}
	f, err := req.feedback()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.Feedback.Insert(r.Context(), f)
	if err != nil {
		if errors.Is(err, feedback.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Error inserting feedback: %v", err)
		writeError(w, http.StatusInternalServerError, "Erreur lors de l'insertion du feedback")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Feedback.List(r.Context())
	if err != nil {
		log.Printf("Error listing feedback: %v", err)
		writeError(w, http.StatusInternalServerError, "Erreur lors de la récupération des feedbacks")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if _, err := s.Tracking.Record(r.Context(), q.Get("page"), q.Get("variant"), q.Get("type")); err != nil {
		log.Printf("Error recording tracking event: %v", err)
		writeError(w, http.StatusInternalServerError, "Erreur lors de l'enregistrement de l'événement.")
		return
	}
	writeMessage(w, "Événement enregistré avec succès.")
}

func (s *Server) handleListTracking(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	if page == "" {
		writeError(w, http.StatusBadRequest, "Le paramètre page est requis")
		return
	}
	events, err := s.Tracking.List(r.Context(), page)
	if err != nil {
		log.Printf("Error listing tracking events for %s: %v", page, err)
		writeError(w, http.StatusInternalServerError, "Erreur lors de la récupération des événements")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type healthResponse struct {
	metrics.SysHealth
	LastScrape *metrics.ScrapeRun `json:"last_scrape,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{SysHealth: metrics.GetSysHealth(s.DataPath)}
	if s.Metrics != nil {
		runs, err := s.Metrics.Recent(r.Context(), 1)
		if err != nil {
			log.Printf("Error reading scrape runs: %v", err)
			resp.Status = "degraded"
		} else if len(runs) > 0 {
			resp.LastScrape = &runs[0]
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
