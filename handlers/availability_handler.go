package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/padeliga/league-system/services"
)

type AvailabilityHandler struct {
	availabilityService services.AvailabilityService
}

func NewAvailabilityHandler(as services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: as}
}

const availabilityDateLayout = "2006-01-02"

type setWeeklyAvailabilityRequest struct {
	SeasonID int                                `json:"season_id"`
	Weekly   []services.WeeklyAvailabilityInput `json:"weekly"`
}

func (h *AvailabilityHandler) SetWeeklyAvailability(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input setWeeklyAvailabilityRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.SeasonID <= 0 {
		badRequestResponse(w, r, errors.New("season_id is required"))
		return
	}

	weekly, err := h.availabilityService.SetWeeklyAvailability(r.Context(), playerID, input.SeasonID, input.Weekly)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"weekly": weekly}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type setOverrideRequest struct {
	SeasonID      int      `json:"season_id"`
	Date          string   `json:"date"`
	TimeSlots     []string `json:"time_slots"`
	IsUnavailable bool     `json:"is_unavailable"`
	Reason        *string  `json:"reason"`
}

func (h *AvailabilityHandler) SetOverride(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input setOverrideRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.SeasonID <= 0 {
		badRequestResponse(w, r, errors.New("season_id is required"))
		return
	}
	date, err := time.Parse(availabilityDateLayout, input.Date)
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid date format, expected YYYY-MM-DD: %q", input.Date))
		return
	}

	override, err := h.availabilityService.SetOverride(r.Context(), playerID, input.SeasonID, services.AvailabilityOverrideInput{
		Date:          date,
		TimeSlots:     input.TimeSlots,
		IsUnavailable: input.IsUnavailable,
		Reason:        input.Reason,
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

func (h *AvailabilityHandler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	seasonID, err := strconv.Atoi(query.Get("season_id"))
	if err != nil || seasonID <= 0 {
		badRequestResponse(w, r, errors.New("season_id query parameter is required"))
		return
	}
	date, err := time.Parse(availabilityDateLayout, query.Get("date"))
	if err != nil {
		badRequestResponse(w, r, errors.New("date query parameter is required (YYYY-MM-DD)"))
		return
	}

	if err := h.availabilityService.DeleteOverride(r.Context(), playerID, seasonID, date); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AvailabilityHandler) GetPlayerAvailability(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	seasonID, err := strconv.Atoi(r.URL.Query().Get("season_id"))
	if err != nil || seasonID <= 0 {
		badRequestResponse(w, r, errors.New("season_id query parameter is required"))
		return
	}

	availability, err := h.availabilityService.GetPlayerAvailability(r.Context(), playerID, seasonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"availability": availability}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CheckSlot — раскладка доступности игроков категории для слота-кандидата.
// GET /player-availability/check-slot?category_id&season_id&date&time_slot
func (h *AvailabilityHandler) CheckSlot(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	categoryID, err := strconv.Atoi(query.Get("category_id"))
	if err != nil || categoryID <= 0 {
		badRequestResponse(w, r, errors.New("category_id query parameter is required"))
		return
	}
	seasonID, err := strconv.Atoi(query.Get("season_id"))
	if err != nil || seasonID <= 0 {
		badRequestResponse(w, r, errors.New("season_id query parameter is required"))
		return
	}
	date, err := time.Parse(availabilityDateLayout, query.Get("date"))
	if err != nil {
		badRequestResponse(w, r, errors.New("date query parameter is required (YYYY-MM-DD)"))
		return
	}
	timeSlot := query.Get("time_slot")
	if timeSlot == "" {
		badRequestResponse(w, r, errors.New("time_slot query parameter is required"))
		return
	}

	check, err := h.availabilityService.CheckSlot(r.Context(), categoryID, seasonID, date, timeSlot)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"check": check}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
