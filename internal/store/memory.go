package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AngelCh415/signups-report/internal/models"
)

// MemoryStore keeps every collection in process. It answers the same
// queries as Mongo and is used for tests and local runs.
type MemoryStore struct {
	mu            sync.RWMutex
	orgs          map[string]models.Organization
	users         map[string]models.User
	events        []models.UserEvent
	alerts        []models.Alert
	alertConfigs  []models.AlertConfig
	installations []models.Installation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orgs:  make(map[string]models.Organization),
		users: make(map[string]models.User),
	}
}

func (s *MemoryStore) UpsertOrganization(o models.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[o.ID] = o
}

func (s *MemoryStore) UpsertUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *MemoryStore) AddUserEvent(e models.UserEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *MemoryStore) AddAlert(a models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
}

func (s *MemoryStore) AddAlertConfig(c models.AlertConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alertConfigs = append(s.alertConfigs, c)
}

func (s *MemoryStore) AddInstallation(i models.Installation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.installations = append(s.installations, i)
}

func (s *MemoryStore) LatestOrganizations(ctx context.Context, limit int) ([]models.Organization, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("organizations.find", err)
	}
	s.mu.RLock()
	out := make([]models.Organization, 0, len(s.orgs))
	for _, o := range s.orgs {
		if o.ToBeSynced {
			out = append(out, o)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) CountEligibleOrganizations(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("organizations.count", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, o := range s.orgs {
		if o.ToBeSynced {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountInstallations(ctx context.Context, source string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("installations.count", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, i := range s.installations {
		if i.Source == source {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) AlertCounts(ctx context.Context, orgIDs []string) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("alerts.aggregate", err)
	}
	want := set(orgIDs)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]int64{}
	for _, a := range s.alerts {
		if _, ok := want[a.Org]; ok {
			out[a.Org]++
		}
	}
	return out, nil
}

func (s *MemoryStore) ActiveGoalCounts(ctx context.Context, orgIDs []string) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("alertconfigs.aggregate", err)
	}
	want := set(orgIDs)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]int64{}
	for _, c := range s.alertConfigs {
		if !c.IsActive {
			continue
		}
		if _, ok := want[c.Org]; ok {
			out[c.Org]++
		}
	}
	return out, nil
}

func (s *MemoryStore) DeveloperCounts(ctx context.Context, orgIDs []string) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("users.aggregate", err)
	}
	want := set(orgIDs)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]int64{}
	for _, u := range s.users {
		// a membership listed twice still counts the user once
		for org := range set(u.Organizations) {
			if _, ok := want[org]; ok {
				out[org]++
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) UsersByID(ctx context.Context, userIDs []string) (map[string]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("users.find", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]models.User{}
	for _, id := range userIDs {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *MemoryStore) UserActivity(ctx context.Context, userIDs []string) (map[string]models.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("userevents.aggregate", err)
	}
	want := set(userIDs)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]models.Activity{}
	for _, e := range s.events {
		if _, ok := want[e.User]; !ok {
			continue
		}
		a := out[e.User]
		a.Count++
		if e.CreatedAt.After(a.Last) {
			a.Last = e.CreatedAt
		}
		out[e.User] = a
	}
	return out, nil
}

func (s *MemoryStore) DailySignups(ctx context.Context, since time.Time) ([]models.DayCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("organizations.aggregate", err)
	}
	s.mu.RLock()
	byDay := map[time.Time]int64{}
	for _, o := range s.orgs {
		if !o.ToBeSynced || o.CreatedAt.Before(since) {
			continue
		}
		byDay[day(o.CreatedAt)]++
	}
	s.mu.RUnlock()

	out := make([]models.DayCount, 0, len(byDay))
	for d, n := range byDay {
		out = append(out, models.DayCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func set(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
