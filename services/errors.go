package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed          = errors.New("validation failed")
	ErrSeasonNameRequired        = errors.New("season name is required")
	ErrSeasonInvalidDateRange    = errors.New("season end date must be after start date")
	ErrSeasonInvalidRegDate      = errors.New("registration end must not be after season end date")
	ErrSeasonInvalidCourtCount   = errors.New("season default court count must be positive")
	ErrSeasonNoTimeSlots         = errors.New("season must define at least one time slot")
	ErrSeasonInvalidStatus       = errors.New("invalid season status provided")
	ErrCategoryNameRequired      = errors.New("category name is required")
	ErrCategoryInvalidCapacity   = errors.New("category max players must be positive")
	ErrPlayerNameRequired        = errors.New("player full name is required")
	ErrPlayerHasMatchHistory     = errors.New("player has match history and cannot be deleted")
	ErrCourtNameRequired         = errors.New("court name is required")
	ErrInvalidDayOfWeek          = errors.New("day of week must be between 0 (Sunday) and 6 (Saturday)")
	ErrEmptyTimeSlots            = errors.New("time slot list must not be empty")
	ErrCalendarAlreadyGenerated  = errors.New("calendar already generated for this category")
	ErrCalendarNotEnoughPlayers  = errors.New("category needs at least 4 confirmed players")
	ErrCalendarPlayerCount       = errors.New("confirmed player count must be divisible by 4")
	ErrCalendarInvalidRounds     = errors.New("number of matchdays must be positive")
	ErrNoActiveCourts            = errors.New("season has no active courts")
	ErrNoTimeSlots               = errors.New("no time slots configured for this matchday")
	ErrPartialSlotAssignment     = errors.New("match_date, time_slot and court_id must be provided together or all omitted")
	ErrSlotSelfConflict          = errors.New("day group is already assigned to this slot")
	ErrGroupIncomplete           = errors.New("day group does not have 4 players")

	// Ошибки конфликтов
	ErrSeasonNameConflict   = errors.New("season name already exists")
	ErrCategoryNameConflict = errors.New("category name already exists in this season")
	ErrCourtNameConflict    = errors.New("court name already exists in this season")
	ErrPlayerEmailConflict  = errors.New("player email is already registered in this category")

	// Ошибки, специфичные для сущностей (дают больше контекста, чем ErrNotFound)
	ErrSeasonNotFound   = errors.New("season not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrCourtNotFound    = errors.New("court not found")
	ErrMatchDayNotFound = errors.New("matchday not found")
	ErrDayGroupNotFound = errors.New("day group not found")
)
