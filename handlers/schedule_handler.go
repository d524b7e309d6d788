package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/padeliga/league-system/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(ss services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss}
}

type autoScheduleRequest struct {
	MatchDayNumber int   `json:"matchday_number"`
	CategoryIDs    []int `json:"category_ids"`
	// category_id -> дата YYYY-MM-DD
	TargetDates           map[int]string `json:"target_dates"`
	RespectAvailability   *bool          `json:"respect_availability"`
	PreferTimeSlotVariety bool           `json:"prefer_time_slot_variety"`
	StrictMode            bool           `json:"strict_mode"`
}

// AutoSchedule — пакетное распределение четверок тура по слотам.
// POST /seasons/{seasonID}/schedule/auto
func (h *ScheduleHandler) AutoSchedule(w http.ResponseWriter, r *http.Request) {
	seasonID, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input autoScheduleRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	targetDates := make(map[int]time.Time, len(input.TargetDates))
	for categoryID, raw := range input.TargetDates {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid target date for category %d: %q", categoryID, raw))
			return
		}
		targetDates[categoryID] = date
	}

	result, err := h.scheduleService.AutoSchedule(r.Context(), seasonID, services.AutoScheduleInput{
		MatchDayNumber:        input.MatchDayNumber,
		CategoryIDs:           input.CategoryIDs,
		TargetDates:           targetDates,
		RespectAvailability:   input.RespectAvailability,
		PreferTimeSlotVariety: input.PreferTimeSlotVariety,
		StrictMode:            input.StrictMode,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"result": result}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
