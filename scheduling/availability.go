package scheduling

import (
	"time"

	"github.com/padeliga/league-system/models"
)

const dateLayout = "2006-01-02"

// CheckResult is the answer to "is player P available at (date, slot)?".
// Reason is only meaningful when Available is false.
type CheckResult struct {
	Available bool
	Reason    string
}

// Index answers availability questions for one season. It is built once per
// request from the season's weekly templates and date overrides and performs
// no I/O afterwards.
type Index struct {
	// weekly[playerID][dayOfWeek] -> set of available slots
	weekly map[int]map[int]map[string]struct{}
	// overrides[playerID][YYYY-MM-DD] -> override record
	overrides map[int]map[string]models.AvailabilityOverride
}

func NewIndex(weekly []models.WeeklyAvailability, overrides []models.AvailabilityOverride) *Index {
	ix := &Index{
		weekly:    make(map[int]map[int]map[string]struct{}),
		overrides: make(map[int]map[string]models.AvailabilityOverride),
	}
	for _, w := range weekly {
		byDay, ok := ix.weekly[w.PlayerID]
		if !ok {
			byDay = make(map[int]map[string]struct{})
			ix.weekly[w.PlayerID] = byDay
		}
		slots := make(map[string]struct{}, len(w.TimeSlots))
		for _, s := range w.TimeSlots {
			slots[s] = struct{}{}
		}
		byDay[w.DayOfWeek] = slots
	}
	for _, o := range overrides {
		byDate, ok := ix.overrides[o.PlayerID]
		if !ok {
			byDate = make(map[string]models.AvailabilityOverride)
			ix.overrides[o.PlayerID] = byDate
		}
		byDate[o.Date.Format(dateLayout)] = o
	}
	return ix
}

// Check resolves availability for one player at (date, slot). An override for
// the exact date fully replaces the weekly template. Without any record the
// player is considered unavailable (fail-closed).
func (ix *Index) Check(playerID int, date time.Time, slot string) CheckResult {
	if byDate, ok := ix.overrides[playerID]; ok {
		if o, ok := byDate[date.Format(dateLayout)]; ok {
			return checkOverride(o, slot)
		}
	}

	byDay, ok := ix.weekly[playerID]
	if !ok {
		return CheckResult{Available: false, Reason: "No availability set"}
	}
	// day_of_week uses 0=Sunday..6=Saturday, matching time.Weekday.
	slots, ok := byDay[int(date.Weekday())]
	if !ok {
		return CheckResult{Available: false, Reason: "No availability set"}
	}
	if _, ok := slots[slot]; !ok {
		return CheckResult{Available: false, Reason: "Not available at this time"}
	}
	return CheckResult{Available: true}
}

func checkOverride(o models.AvailabilityOverride, slot string) CheckResult {
	if o.IsUnavailable {
		reason := "Marked unavailable for this date"
		if o.Reason != nil && *o.Reason != "" {
			reason = *o.Reason
		}
		return CheckResult{Available: false, Reason: reason}
	}
	for _, s := range o.TimeSlots {
		if s == slot {
			return CheckResult{Available: true}
		}
	}
	return CheckResult{Available: false, Reason: "Not available at this time"}
}
