package report

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/signups-report/internal/models"
	"github.com/AngelCh415/signups-report/internal/store"
)

// Index holds the related-record lookups for one page of organizations.
// Lookups for ids outside the page return zero values.
type Index struct {
	alerts map[string]int64
	goals  map[string]int64
	devs   map[string]int64
	users  map[string]models.User
}

// BuildIndex issues one bulk query per related collection, concurrently.
// Any failure discards the whole index.
func BuildIndex(ctx context.Context, st store.Store, orgs []models.Organization) (*Index, error) {
	orgIDs := make([]string, 0, len(orgs))
	for _, o := range orgs {
		orgIDs = append(orgIDs, o.ID)
	}
	userIDs := installingUsers(orgs)

	idx := &Index{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		idx.alerts, err = st.AlertCounts(ctx, orgIDs)
		return err
	})
	g.Go(func() (err error) {
		idx.goals, err = st.ActiveGoalCounts(ctx, orgIDs)
		return err
	})
	g.Go(func() (err error) {
		idx.devs, err = st.DeveloperCounts(ctx, orgIDs)
		return err
	})
	g.Go(func() (err error) {
		idx.users, err = st.UsersByID(ctx, userIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (i *Index) AlertCount(orgID string) int64 { return i.alerts[orgID] }
func (i *Index) GoalsLive(orgID string) int64  { return i.goals[orgID] }
func (i *Index) DevCount(orgID string) int64   { return i.devs[orgID] }

func (i *Index) User(userID string) (models.User, bool) {
	if userID == "" {
		return models.User{}, false
	}
	u, ok := i.users[userID]
	return u, ok
}

// installingUsers returns the distinct installing-user ids in page order.
func installingUsers(orgs []models.Organization) []string {
	seen := make(map[string]struct{}, len(orgs))
	out := make([]string, 0, len(orgs))
	for _, o := range orgs {
		if o.InstallationUser == "" {
			continue
		}
		if _, ok := seen[o.InstallationUser]; ok {
			continue
		}
		seen[o.InstallationUser] = struct{}{}
		out = append(out, o.InstallationUser)
	}
	return out
}
