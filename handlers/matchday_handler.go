package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/padeliga/league-system/models"
	"github.com/padeliga/league-system/services"
)

type MatchDayHandler struct {
	calendarService services.CalendarService
	scheduleService services.ScheduleService
}

func NewMatchDayHandler(cs services.CalendarService, ss services.ScheduleService) *MatchDayHandler {
	return &MatchDayHandler{
		calendarService: cs,
		scheduleService: ss,
	}
}

type generateCalendarRequest struct {
	NumMatchDays int `json:"num_matchdays"`
}

func (h *MatchDayHandler) GenerateCalendar(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input generateCalendarRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchDays, err := h.calendarService.GenerateCalendar(r.Context(), categoryID, input.NumMatchDays)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"matchdays": matchDays}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchDayHandler) ListMatchDays(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchDays, err := h.calendarService.ListMatchDays(r.Context(), categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"matchdays": matchDays}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchDayHandler) GetDayGroup(w http.ResponseWriter, r *http.Request) {
	dayGroupID, err := getIDFromURL(r, "dayGroupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	group, err := h.calendarService.GetDayGroup(r.Context(), dayGroupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"day_group": group}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type reassignSlotRequest struct {
	MatchDate models.Optional[string] `json:"match_date"`
	TimeSlot  models.Optional[string] `json:"time_slot"`
	CourtID   models.Optional[int]    `json:"court_id"`
}

// ReassignSlot — ручное назначение/перестановка/снятие слота одной четверки.
// PATCH /day-groups/{dayGroupID}/assignment
func (h *MatchDayHandler) ReassignSlot(w http.ResponseWriter, r *http.Request) {
	dayGroupID, err := getIDFromURL(r, "dayGroupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input reassignSlotRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchDate := models.Optional[time.Time]{Set: input.MatchDate.Set, Null: input.MatchDate.Null}
	if input.MatchDate.HasValue() {
		parsed, err := time.Parse("2006-01-02", input.MatchDate.Value)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("match_date must be in YYYY-MM-DD format: %w", err))
			return
		}
		matchDate.Value = parsed
	}

	result, err := h.scheduleService.ReassignSlot(r.Context(), dayGroupID, services.ReassignInput{
		MatchDate: matchDate,
		TimeSlot:  input.TimeSlot,
		CourtID:   input.CourtID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"success": true,
		"action":  result.Action,
		"group":   result.Group,
	}
	if result.DisplacedGroupID != nil {
		response["displaced_group_id"] = *result.DisplacedGroupID
		response["displaced_group_number"] = *result.DisplacedGroupNumber
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchDayHandler) RegenerateRotations(w http.ResponseWriter, r *http.Request) {
	dayGroupID, err := getIDFromURL(r, "dayGroupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rotations, alreadyExisted, err := h.calendarService.RegenerateRotations(r.Context(), dayGroupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"rotations":       rotations,
		"already_existed": alreadyExisted,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
