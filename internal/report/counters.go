package report

import (
	"context"
	"log/slog"
	"sync"

	"github.com/AngelCh415/signups-report/internal/metrics"
	"github.com/AngelCh415/signups-report/internal/models"
	"github.com/AngelCh415/signups-report/internal/store"
)

type CounterSpec struct {
	Name  string
	Label string
	Count func(ctx context.Context, st store.Store) (int64, error)
}

func installations(source string) func(context.Context, store.Store) (int64, error) {
	return func(ctx context.Context, st store.Store) (int64, error) {
		return st.CountInstallations(ctx, source)
	}
}

// DefaultCounters are the headline numbers of the dashboard, in display order.
var DefaultCounters = []CounterSpec{
	{Name: "signups", Label: "Total Signups", Count: func(ctx context.Context, st store.Store) (int64, error) {
		return st.CountEligibleOrganizations(ctx)
	}},
	{Name: "github", Label: "Github Integrations", Count: installations("github")},
	{Name: "gitlab", Label: "Gitlab Integrations", Count: installations("gitlab")},
	{Name: "bitbucket", Label: "Bitbucket Integrations", Count: installations("bitbucket")},
	{Name: "jira", Label: "Jira Integrations", Count: installations("jira")},
	{Name: "slack", Label: "Slack Integrations", Count: installations("slack")},
}

// Counters runs every spec concurrently. A failing counter is reported in
// its own slot and never affects the others.
func Counters(ctx context.Context, st store.Store, specs []CounterSpec, rec *metrics.Recorder, log *slog.Logger) []models.Counter {
	out := make([]models.Counter, len(specs))
	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		go func(i int, spec CounterSpec) {
			defer wg.Done()
			n, err := spec.Count(ctx, st)
			rec.Counter(spec.Name, n, err)
			c := models.Counter{Name: spec.Name, Label: spec.Label, Value: n}
			if err != nil {
				c.Value = 0
				c.Err = err.Error()
				log.Warn("counter failed", slog.String("counter", spec.Name), slog.String("err", err.Error()))
			}
			out[i] = c
		}(i, spec)
	}
	wg.Wait()
	return out
}
