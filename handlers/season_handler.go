package handlers

import (
	"net/http"
	"time"

	"github.com/padeliga/league-system/models"
	"github.com/padeliga/league-system/repositories"
	"github.com/padeliga/league-system/services"
)

type SeasonHandler struct {
	seasonService services.SeasonService
}

func NewSeasonHandler(ss services.SeasonService) *SeasonHandler {
	return &SeasonHandler{seasonService: ss}
}

type createSeasonRequest struct {
	Name              string    `json:"name"`
	Description       *string   `json:"description"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	RegistrationEnd   time.Time `json:"registration_end"`
	DefaultCourtCount int       `json:"default_court_count"`
	DefaultTimeSlots  []string  `json:"default_time_slots"`
}

func (h *SeasonHandler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	var input createSeasonRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season, err := h.seasonService.CreateSeason(r.Context(), services.CreateSeasonInput{
		Name:              input.Name,
		Description:       input.Description,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		RegistrationEnd:   input.RegistrationEnd,
		DefaultCourtCount: input.DefaultCourtCount,
		DefaultTimeSlots:  input.DefaultTimeSlots,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"season": season}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) GetSeasonByID(w http.ResponseWriter, r *http.Request) {
	seasonID, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season, err := h.seasonService.GetSeasonByID(r.Context(), seasonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"season": season}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListSeasonsFilter{}
	if status := r.URL.Query().Get("status"); status != "" {
		s := models.SeasonStatus(status)
		filter.Status = &s
	}

	seasons, err := h.seasonService.ListSeasons(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"seasons": seasons}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateSeasonRequest struct {
	Name              models.Optional[string]    `json:"name"`
	Description       models.Optional[string]    `json:"description"`
	StartDate         models.Optional[time.Time] `json:"start_date"`
	EndDate           models.Optional[time.Time] `json:"end_date"`
	RegistrationEnd   models.Optional[time.Time] `json:"registration_end"`
	DefaultCourtCount models.Optional[int]       `json:"default_court_count"`
	DefaultTimeSlots  models.Optional[[]string]  `json:"default_time_slots"`
}

func (h *SeasonHandler) UpdateSeason(w http.ResponseWriter, r *http.Request) {
	seasonID, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updateSeasonRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season, err := h.seasonService.UpdateSeason(r.Context(), seasonID, services.UpdateSeasonInput{
		Name:              input.Name,
		Description:       input.Description,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		RegistrationEnd:   input.RegistrationEnd,
		DefaultCourtCount: input.DefaultCourtCount,
		DefaultTimeSlots:  input.DefaultTimeSlots,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"season": season}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateSeasonStatusRequest struct {
	Status models.SeasonStatus `json:"status"`
}

func (h *SeasonHandler) UpdateSeasonStatus(w http.ResponseWriter, r *http.Request) {
	seasonID, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updateSeasonStatusRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season, err := h.seasonService.UpdateSeasonStatus(r.Context(), seasonID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"season": season}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) DeleteSeason(w http.ResponseWriter, r *http.Request) {
	seasonID, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.seasonService.DeleteSeason(r.Context(), seasonID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SeasonHandler) ListMatchDayOverrides(w http.ResponseWriter, r *http.Request) {
	seasonID, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	overrides, err := h.seasonService.ListMatchDayOverrides(r.Context(), seasonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"overrides": overrides}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type matchDayOverrideRequest struct {
	MatchDayNumber int        `json:"matchday_number"`
	MatchDate      *time.Time `json:"match_date"`
	CourtCount     *int       `json:"court_count"`
	TimeSlots      []string   `json:"time_slots"`
}

func (h *SeasonHandler) SetMatchDayOverride(w http.ResponseWriter, r *http.Request) {
	seasonID, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input matchDayOverrideRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	override, err := h.seasonService.SetMatchDayOverride(r.Context(), seasonID, services.MatchDayOverrideInput{
		MatchDayNumber: input.MatchDayNumber,
		MatchDate:      input.MatchDate,
		CourtCount:     input.CourtCount,
		TimeSlots:      input.TimeSlots,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"override": override}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
