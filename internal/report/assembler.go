package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/signups-report/internal/models"
	"github.com/AngelCh415/signups-report/internal/store"
)

const NoOrganizations = "No organizations found."

// Assembler produces the company table for the latest eligible
// organizations.
type Assembler struct {
	st    store.Store
	log   *slog.Logger
	limit int
}

func NewAssembler(st store.Store, log *slog.Logger, limit int) *Assembler {
	return &Assembler{st: st, log: log, limit: limit}
}

// Companies fetches the latest organizations once and enriches exactly that
// page, in fetch order.
func (a *Assembler) Companies(ctx context.Context, now time.Time) (models.CompanyTable, error) {
	orgs, err := a.st.LatestOrganizations(ctx, a.limit)
	if err != nil {
		return models.CompanyTable{}, err
	}
	if len(orgs) == 0 {
		return models.CompanyTable{Rows: []models.ReportRow{}, Empty: true, Message: NoOrganizations}, nil
	}

	acts := newActivityLoader(ctx, a.st, orgs)
	var idx *Index
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		idx, err = BuildIndex(gctx, a.st, orgs)
		return err
	})
	g.Go(func() error {
		return acts.prime(gctx, orgs)
	})
	if err := g.Wait(); err != nil {
		return models.CompanyTable{}, err
	}

	rows := make([]models.ReportRow, 0, len(orgs))
	for _, o := range orgs {
		rows = append(rows, Enrich(o, idx, now, acts))
	}
	a.log.Debug("company table built", slog.Int("rows", len(rows)), slog.Int("users", acts.users))
	return models.CompanyTable{Rows: rows}, nil
}

// activityLoader answers the per-row activity lookups of one table. Every
// row's load lands in a single batch sized to the distinct installing users,
// so the page costs one user-events query.
type activityLoader struct {
	ctx    context.Context
	loader *dataloader.Loader[string, models.Activity]
	users  int
}

func newActivityLoader(ctx context.Context, st store.Store, orgs []models.Organization) *activityLoader {
	users := len(installingUsers(orgs))
	return &activityLoader{
		ctx:    ctx,
		loader: dataloader.NewBatchedLoader(activityBatch(st), dataloader.WithBatchCapacity[string, models.Activity](users)),
		users:  users,
	}
}

// prime loads every row's installing user and waits for the batch. Any
// failure fails the whole table.
func (l *activityLoader) prime(ctx context.Context, orgs []models.Organization) error {
	thunks := make([]dataloader.Thunk[models.Activity], 0, len(orgs))
	for _, o := range orgs {
		if o.InstallationUser == "" {
			continue
		}
		thunks = append(thunks, l.loader.Load(ctx, o.InstallationUser))
	}
	for _, thunk := range thunks {
		if _, err := thunk(); err != nil {
			return err
		}
	}
	return nil
}

// Activity reads from the loader cache filled by prime.
func (l *activityLoader) Activity(userID string) (models.Activity, bool) {
	if userID == "" {
		return models.Activity{}, false
	}
	act, err := l.loader.Load(l.ctx, userID)()
	if err != nil || act.Count == 0 {
		return models.Activity{}, false
	}
	return act, true
}

func activityBatch(st store.Store) dataloader.BatchFunc[string, models.Activity] {
	return func(ctx context.Context, ids []string) []*dataloader.Result[models.Activity] {
		acts, err := st.UserActivity(ctx, ids)
		results := make([]*dataloader.Result[models.Activity], len(ids))
		for i, id := range ids {
			if err != nil {
				results[i] = &dataloader.Result[models.Activity]{Error: err}
				continue
			}
			results[i] = &dataloader.Result[models.Activity]{Data: acts[id]}
		}
		return results
	}
}
