package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/padeliga/league-system/models"
	"github.com/padeliga/league-system/repositories"
)

// In-memory fakes backing the service tests. Only behavior the services
// actually exercise is modeled; everything else returns zero values.

type fakeTxRunner struct {
	failWith error
}

func (f *fakeTxRunner) InTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	if f.failWith != nil {
		return f.failWith
	}
	return fn(nil)
}

type fakeDayGroupRepo struct {
	groups    map[int]*models.DayGroup
	updateErr error
}

func newFakeDayGroupRepo(groups ...*models.DayGroup) *fakeDayGroupRepo {
	repo := &fakeDayGroupRepo{groups: make(map[int]*models.DayGroup)}
	for _, g := range groups {
		repo.groups[g.ID] = g
	}
	return repo
}

func (f *fakeDayGroupRepo) Create(_ context.Context, _ repositories.SQLExecutor, group *models.DayGroup) error {
	group.ID = len(f.groups) + 1
	copied := *group
	f.groups[group.ID] = &copied
	return nil
}

func (f *fakeDayGroupRepo) GetByID(_ context.Context, id int) (*models.DayGroup, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, repositories.ErrDayGroupNotFound
	}
	copied := *g
	return &copied, nil
}

func (f *fakeDayGroupRepo) ListByMatchDayIDs(_ context.Context, ids []int) ([]models.DayGroup, error) {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return f.listBy(func(g *models.DayGroup) bool { return want[g.MatchDayID] }), nil
}

func (f *fakeDayGroupRepo) listBy(match func(*models.DayGroup) bool) []models.DayGroup {
	out := make([]models.DayGroup, 0)
	for _, g := range f.groups {
		if match(g) {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeDayGroupRepo) GetForUpdate(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.DayGroup, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeDayGroupRepo) FindBySlotForUpdate(_ context.Context, _ repositories.SQLExecutor, slot models.SlotRef) (*models.DayGroup, error) {
	for _, g := range f.groups {
		if current, ok := g.Slot(); ok && current == slot {
			copied := *g
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeDayGroupRepo) UpdateAssignment(_ context.Context, _ repositories.SQLExecutor, id int, slot models.SlotRef) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	g, ok := f.groups[id]
	if !ok {
		return repositories.ErrDayGroupNotFound
	}
	date, timeSlot, courtID := slot.MatchDate, slot.TimeSlot, slot.CourtID
	g.MatchDate = &date
	g.TimeSlot = &timeSlot
	g.CourtID = &courtID
	return nil
}

func (f *fakeDayGroupRepo) ClearAssignment(_ context.Context, _ repositories.SQLExecutor, id int) error {
	g, ok := f.groups[id]
	if !ok {
		return repositories.ErrDayGroupNotFound
	}
	g.MatchDate = nil
	g.TimeSlot = nil
	g.CourtID = nil
	return nil
}

type fakeMatchDayRepo struct {
	matchDays map[int]*models.MatchDay
	nextID    int
}

func newFakeMatchDayRepo(matchDays ...*models.MatchDay) *fakeMatchDayRepo {
	repo := &fakeMatchDayRepo{matchDays: make(map[int]*models.MatchDay)}
	for _, md := range matchDays {
		repo.matchDays[md.ID] = md
		if md.ID > repo.nextID {
			repo.nextID = md.ID
		}
	}
	return repo
}

func (f *fakeMatchDayRepo) Create(_ context.Context, _ repositories.SQLExecutor, matchDay *models.MatchDay) error {
	f.nextID++
	matchDay.ID = f.nextID
	copied := *matchDay
	f.matchDays[matchDay.ID] = &copied
	return nil
}

func (f *fakeMatchDayRepo) GetByID(_ context.Context, id int) (*models.MatchDay, error) {
	md, ok := f.matchDays[id]
	if !ok {
		return nil, repositories.ErrMatchDayNotFound
	}
	copied := *md
	return &copied, nil
}

func (f *fakeMatchDayRepo) ListByCategory(_ context.Context, categoryID int) ([]models.MatchDay, error) {
	out := make([]models.MatchDay, 0)
	for _, md := range f.matchDays {
		if md.CategoryID == categoryID {
			out = append(out, *md)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (f *fakeMatchDayRepo) ListBySeasonAndNumber(_ context.Context, _ int, number int, categoryIDs []int) ([]models.MatchDay, error) {
	filter := make(map[int]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		filter[id] = true
	}
	out := make([]models.MatchDay, 0)
	for _, md := range f.matchDays {
		if md.Number != number {
			continue
		}
		if len(filter) > 0 && !filter[md.CategoryID] {
			continue
		}
		out = append(out, *md)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMatchDayRepo) CountByCategory(_ context.Context, categoryID int) (int, error) {
	count := 0
	for _, md := range f.matchDays {
		if md.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (f *fakeMatchDayRepo) UpdateMatchDate(_ context.Context, id int, matchDate *time.Time) error {
	md, ok := f.matchDays[id]
	if !ok {
		return repositories.ErrMatchDayNotFound
	}
	md.MatchDate = matchDate
	return nil
}

type fakeRotationRepo struct {
	rotations map[int][]models.Rotation
	nextID    int
}

func newFakeRotationRepo() *fakeRotationRepo {
	return &fakeRotationRepo{rotations: make(map[int][]models.Rotation)}
}

func (f *fakeRotationRepo) Create(_ context.Context, _ repositories.SQLExecutor, rotation *models.Rotation) error {
	f.nextID++
	rotation.ID = f.nextID
	f.rotations[rotation.DayGroupID] = append(f.rotations[rotation.DayGroupID], *rotation)
	return nil
}

func (f *fakeRotationRepo) ExistsForGroup(_ context.Context, dayGroupID int) (bool, error) {
	return len(f.rotations[dayGroupID]) > 0, nil
}

func (f *fakeRotationRepo) ListByGroup(_ context.Context, dayGroupID int) ([]models.Rotation, error) {
	out := make([]models.Rotation, len(f.rotations[dayGroupID]))
	copy(out, f.rotations[dayGroupID])
	return out, nil
}

type fakePlayerRepo struct {
	players map[int]*models.Player
	history map[int]bool
	nextID  int
}

func newFakePlayerRepo(players ...*models.Player) *fakePlayerRepo {
	repo := &fakePlayerRepo{
		players: make(map[int]*models.Player),
		history: make(map[int]bool),
	}
	for _, p := range players {
		repo.players[p.ID] = p
		if p.ID > repo.nextID {
			repo.nextID = p.ID
		}
	}
	return repo
}

func (f *fakePlayerRepo) Create(_ context.Context, player *models.Player) error {
	f.nextID++
	player.ID = f.nextID
	copied := *player
	f.players[player.ID] = &copied
	return nil
}

func (f *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	p, ok := f.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakePlayerRepo) ListByCategory(_ context.Context, categoryID int, includeWaitingList bool) ([]models.Player, error) {
	out := make([]models.Player, 0)
	for _, p := range f.players {
		if p.CategoryID != categoryID {
			continue
		}
		if p.WaitingList && !includeWaitingList {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePlayerRepo) ListByIDs(_ context.Context, ids []int) ([]models.Player, error) {
	out := make([]models.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.players[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlayerRepo) Update(_ context.Context, player *models.Player) error {
	if _, ok := f.players[player.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	copied := *player
	f.players[player.ID] = &copied
	return nil
}

func (f *fakePlayerRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(f.players, id)
	return nil
}

func (f *fakePlayerRepo) CountActiveByCategory(_ context.Context, categoryID int) (int, error) {
	count := 0
	for _, p := range f.players {
		if p.CategoryID == categoryID && !p.WaitingList {
			count++
		}
	}
	return count, nil
}

func (f *fakePlayerRepo) HasMatchHistory(_ context.Context, playerID int) (bool, error) {
	return f.history[playerID], nil
}

type fakeCategoryRepo struct {
	categories map[int]*models.Category
}

func newFakeCategoryRepo(categories ...*models.Category) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{categories: make(map[int]*models.Category)}
	for _, c := range categories {
		repo.categories[c.ID] = c
	}
	return repo
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *models.Category) error {
	category.ID = len(f.categories) + 1
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id int) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, repositories.ErrCategoryNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCategoryRepo) ListBySeason(_ context.Context, seasonID int) ([]models.Category, error) {
	out := make([]models.Category, 0)
	for _, c := range f.categories {
		if c.SeasonID == seasonID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, category *models.Category) error {
	if _, ok := f.categories[category.ID]; !ok {
		return repositories.ErrCategoryNotFound
	}
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}

func (f *fakeCategoryRepo) UpdatePosterKey(_ context.Context, categoryID int, posterKey *string) error {
	c, ok := f.categories[categoryID]
	if !ok {
		return repositories.ErrCategoryNotFound
	}
	c.PosterKey = posterKey
	return nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.categories[id]; !ok {
		return repositories.ErrCategoryNotFound
	}
	delete(f.categories, id)
	return nil
}

type fakeSeasonRepo struct {
	seasons   map[int]*models.Season
	overrides map[int]map[int]*models.MatchDayOverride
}

func newFakeSeasonRepo(seasons ...*models.Season) *fakeSeasonRepo {
	repo := &fakeSeasonRepo{
		seasons:   make(map[int]*models.Season),
		overrides: make(map[int]map[int]*models.MatchDayOverride),
	}
	for _, s := range seasons {
		repo.seasons[s.ID] = s
	}
	return repo
}

func (f *fakeSeasonRepo) Create(_ context.Context, season *models.Season) error {
	season.ID = len(f.seasons) + 1
	copied := *season
	f.seasons[season.ID] = &copied
	return nil
}

func (f *fakeSeasonRepo) GetByID(_ context.Context, id int) (*models.Season, error) {
	s, ok := f.seasons[id]
	if !ok {
		return nil, repositories.ErrSeasonNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSeasonRepo) List(_ context.Context, _ repositories.ListSeasonsFilter) ([]models.Season, error) {
	out := make([]models.Season, 0, len(f.seasons))
	for _, s := range f.seasons {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSeasonRepo) Update(_ context.Context, season *models.Season) error {
	if _, ok := f.seasons[season.ID]; !ok {
		return repositories.ErrSeasonNotFound
	}
	copied := *season
	f.seasons[season.ID] = &copied
	return nil
}

func (f *fakeSeasonRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.SeasonStatus) error {
	s, ok := f.seasons[id]
	if !ok {
		return repositories.ErrSeasonNotFound
	}
	s.Status = status
	return nil
}

func (f *fakeSeasonRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.seasons[id]; !ok {
		return repositories.ErrSeasonNotFound
	}
	delete(f.seasons, id)
	return nil
}

func (f *fakeSeasonRepo) ListOverrides(_ context.Context, seasonID int) ([]models.MatchDayOverride, error) {
	out := make([]models.MatchDayOverride, 0)
	for _, o := range f.overrides[seasonID] {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchDayNumber < out[j].MatchDayNumber })
	return out, nil
}

func (f *fakeSeasonRepo) GetOverride(_ context.Context, seasonID, matchDayNumber int) (*models.MatchDayOverride, error) {
	o, ok := f.overrides[seasonID][matchDayNumber]
	if !ok {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

func (f *fakeSeasonRepo) UpsertOverride(_ context.Context, override *models.MatchDayOverride) error {
	if f.overrides[override.SeasonID] == nil {
		f.overrides[override.SeasonID] = make(map[int]*models.MatchDayOverride)
	}
	copied := *override
	f.overrides[override.SeasonID][override.MatchDayNumber] = &copied
	return nil
}

func (f *fakeSeasonRepo) GetSeasonsForAutoStatusUpdate(_ context.Context, _ repositories.SQLExecutor, currentTime time.Time) ([]*models.Season, error) {
	out := make([]*models.Season, 0)
	for _, s := range f.seasons {
		switch s.Status {
		case models.SeasonStatusRegistration:
			if !s.RegistrationEnd.After(currentTime) {
				out = append(out, s)
			}
		case models.SeasonStatusActive:
			if s.EndDate.Before(currentTime) {
				out = append(out, s)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeCourtRepo struct {
	courts map[int]*models.Court
}

func newFakeCourtRepo(courts ...*models.Court) *fakeCourtRepo {
	repo := &fakeCourtRepo{courts: make(map[int]*models.Court)}
	for _, c := range courts {
		repo.courts[c.ID] = c
	}
	return repo
}

func (f *fakeCourtRepo) Create(_ context.Context, court *models.Court) error {
	court.ID = len(f.courts) + 1
	copied := *court
	f.courts[court.ID] = &copied
	return nil
}

func (f *fakeCourtRepo) GetByID(_ context.Context, id int) (*models.Court, error) {
	c, ok := f.courts[id]
	if !ok {
		return nil, repositories.ErrCourtNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCourtRepo) ListBySeason(_ context.Context, seasonID int, onlyActive bool) ([]models.Court, error) {
	out := make([]models.Court, 0)
	for _, c := range f.courts {
		if c.SeasonID != seasonID {
			continue
		}
		if onlyActive && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeCourtRepo) Update(_ context.Context, court *models.Court) error {
	if _, ok := f.courts[court.ID]; !ok {
		return repositories.ErrCourtNotFound
	}
	copied := *court
	f.courts[court.ID] = &copied
	return nil
}

func (f *fakeCourtRepo) Deactivate(_ context.Context, id int) error {
	c, ok := f.courts[id]
	if !ok {
		return repositories.ErrCourtNotFound
	}
	c.IsActive = false
	return nil
}

type fakeAvailabilityRepo struct {
	weekly    []models.WeeklyAvailability
	overrides []models.AvailabilityOverride
}

func (f *fakeAvailabilityRepo) ReplaceWeekly(_ context.Context, playerID, seasonID int, rows []models.WeeklyAvailability) error {
	kept := f.weekly[:0]
	for _, w := range f.weekly {
		if w.PlayerID != playerID || w.SeasonID != seasonID {
			kept = append(kept, w)
		}
	}
	f.weekly = kept
	for _, w := range rows {
		w.PlayerID = playerID
		w.SeasonID = seasonID
		f.weekly = append(f.weekly, w)
	}
	return nil
}

func (f *fakeAvailabilityRepo) ListWeeklyForPlayer(_ context.Context, playerID, seasonID int) ([]models.WeeklyAvailability, error) {
	out := make([]models.WeeklyAvailability, 0)
	for _, w := range f.weekly {
		if w.PlayerID == playerID && w.SeasonID == seasonID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeAvailabilityRepo) ListWeeklyForSeason(_ context.Context, seasonID int) ([]models.WeeklyAvailability, error) {
	out := make([]models.WeeklyAvailability, 0)
	for _, w := range f.weekly {
		if w.SeasonID == seasonID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeAvailabilityRepo) UpsertOverride(_ context.Context, override *models.AvailabilityOverride) error {
	for i, o := range f.overrides {
		if o.PlayerID == override.PlayerID && o.SeasonID == override.SeasonID && o.Date.Equal(override.Date) {
			f.overrides[i] = *override
			return nil
		}
	}
	f.overrides = append(f.overrides, *override)
	return nil
}

func (f *fakeAvailabilityRepo) DeleteOverride(_ context.Context, playerID, seasonID int, date time.Time) error {
	for i, o := range f.overrides {
		if o.PlayerID == playerID && o.SeasonID == seasonID && o.Date.Equal(date) {
			f.overrides = append(f.overrides[:i], f.overrides[i+1:]...)
			return nil
		}
	}
	return repositories.ErrAvailabilityOverrideMissing
}

func (f *fakeAvailabilityRepo) ListOverridesForPlayer(_ context.Context, playerID, seasonID int) ([]models.AvailabilityOverride, error) {
	out := make([]models.AvailabilityOverride, 0)
	for _, o := range f.overrides {
		if o.PlayerID == playerID && o.SeasonID == seasonID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeAvailabilityRepo) ListOverridesForSeasonOnDates(_ context.Context, seasonID int, dates []time.Time) ([]models.AvailabilityOverride, error) {
	out := make([]models.AvailabilityOverride, 0)
	for _, o := range f.overrides {
		if o.SeasonID != seasonID {
			continue
		}
		for _, d := range dates {
			if o.Date.Equal(d) {
				out = append(out, o)
				break
			}
		}
	}
	return out, nil
}

type fakeBroadcaster struct {
	rooms    []string
	messages []interface{}
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	f.rooms = append(f.rooms, roomID)
	f.messages = append(f.messages, message)
}

var errFakeStorage = errors.New("storage unavailable")
