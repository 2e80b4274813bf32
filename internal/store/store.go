package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AngelCh415/signups-report/internal/models"
)

// ErrUnavailable wraps every failure to reach or query the backing store,
// timeouts included.
var ErrUnavailable = errors.New("store unavailable")

// Store is the read-only query surface the report engine needs. Every bulk
// method issues a bounded number of queries regardless of the number of ids,
// and ids that match nothing are simply absent from the returned map.
type Store interface {
	LatestOrganizations(ctx context.Context, limit int) ([]models.Organization, error)
	CountEligibleOrganizations(ctx context.Context) (int64, error)
	CountInstallations(ctx context.Context, source string) (int64, error)

	AlertCounts(ctx context.Context, orgIDs []string) (map[string]int64, error)
	ActiveGoalCounts(ctx context.Context, orgIDs []string) (map[string]int64, error)
	DeveloperCounts(ctx context.Context, orgIDs []string) (map[string]int64, error)
	UsersByID(ctx context.Context, userIDs []string) (map[string]models.User, error)
	UserActivity(ctx context.Context, userIDs []string) (map[string]models.Activity, error)

	// DailySignups groups eligible organizations created at or after since
	// by UTC calendar day, ascending.
	DailySignups(ctx context.Context, since time.Time) ([]models.DayCount, error)

	Ping(ctx context.Context) error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
