package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AngelCh415/signups-report/internal/models"
)

const (
	colOrganizations = "organizations"
	colInstallations = "installations"
	colAlerts        = "alerts"
	colAlertConfigs  = "alertconfigs"
	colUserEvents    = "userevents"
	colUsers         = "users"
)

type orgDoc struct {
	ID               primitive.ObjectID  `bson:"_id"`
	CreatedAt        time.Time           `bson:"createdAt"`
	Name             string              `bson:"name"`
	UTMTag           string              `bson:"utmTag"`
	InstallationUser *primitive.ObjectID `bson:"installationUser,omitempty"`
	ToBeSynced       bool                `bson:"toBeSynced"`
}

type userDoc struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Login string             `bson:"login"`
	Email string             `bson:"email"`
}

type groupCount struct {
	ID    primitive.ObjectID `bson:"_id"`
	Count int64              `bson:"count"`
}

type activityDoc struct {
	ID    primitive.ObjectID `bson:"_id"`
	Count int64              `bson:"count"`
	Last  time.Time          `bson:"last"`
}

type dayDoc struct {
	ID    string `bson:"_id"`
	Count int64  `bson:"count"`
}

// Mongo answers Store queries against a MongoDB database. The client is
// owned by the caller.
type Mongo struct{ db *mongo.Database }

func NewMongo(db *mongo.Database) *Mongo { return &Mongo{db: db} }

// Connect opens a client for uri. It does not wait for the server; use
// Ping for that.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri).SetTimeout(timeout)
	cl, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, unavailable("connect", err)
	}
	return cl, nil
}

func (m *Mongo) LatestOrganizations(ctx context.Context, limit int) ([]models.Organization, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 1, "createdAt": 1, "name": 1, "utmTag": 1, "installationUser": 1, "toBeSynced": 1})
	cur, err := m.db.Collection(colOrganizations).Find(ctx, bson.M{"toBeSynced": true}, opts)
	if err != nil {
		return nil, unavailable("organizations.find", err)
	}
	var docs []orgDoc
	if err := decode(ctx, "organizations.find", cur, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Organization, 0, len(docs))
	for _, d := range docs {
		o := models.Organization{
			ID:         d.ID.Hex(),
			CreatedAt:  d.CreatedAt.UTC(),
			Name:       d.Name,
			UTMTag:     d.UTMTag,
			ToBeSynced: d.ToBeSynced,
		}
		if d.InstallationUser != nil && !d.InstallationUser.IsZero() {
			o.InstallationUser = d.InstallationUser.Hex()
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *Mongo) CountEligibleOrganizations(ctx context.Context) (int64, error) {
	n, err := m.db.Collection(colOrganizations).CountDocuments(ctx, bson.M{"toBeSynced": true})
	if err != nil {
		return 0, unavailable("organizations.count", err)
	}
	return n, nil
}

func (m *Mongo) CountInstallations(ctx context.Context, source string) (int64, error) {
	n, err := m.db.Collection(colInstallations).CountDocuments(ctx, bson.M{"source": source})
	if err != nil {
		return 0, unavailable(fmt.Sprintf("installations.count[%s]", source), err)
	}
	return n, nil
}

func (m *Mongo) AlertCounts(ctx context.Context, orgIDs []string) (map[string]int64, error) {
	return m.countGrouped(ctx, colAlerts, countByOrgPipeline(objectIDs(orgIDs), nil))
}

func (m *Mongo) ActiveGoalCounts(ctx context.Context, orgIDs []string) (map[string]int64, error) {
	return m.countGrouped(ctx, colAlertConfigs, countByOrgPipeline(objectIDs(orgIDs), bson.M{"isActive": true}))
}

func (m *Mongo) DeveloperCounts(ctx context.Context, orgIDs []string) (map[string]int64, error) {
	return m.countGrouped(ctx, colUsers, developerCountPipeline(objectIDs(orgIDs)))
}

func (m *Mongo) countGrouped(ctx context.Context, col string, p mongo.Pipeline) (map[string]int64, error) {
	out := map[string]int64{}
	cur, err := m.db.Collection(col).Aggregate(ctx, p)
	if err != nil {
		return nil, unavailable(col+".aggregate", err)
	}
	var rows []groupCount
	if err := decode(ctx, col+".aggregate", cur, &rows); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID.Hex()] = r.Count
	}
	return out, nil
}

func (m *Mongo) UsersByID(ctx context.Context, userIDs []string) (map[string]models.User, error) {
	out := map[string]models.User{}
	ids := objectIDs(userIDs)
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1, "login": 1, "email": 1})
	cur, err := m.db.Collection(colUsers).Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, unavailable("users.find", err)
	}
	var docs []userDoc
	if err := decode(ctx, "users.find", cur, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.ID.Hex()] = models.User{ID: d.ID.Hex(), Name: d.Name, Login: d.Login, Email: d.Email}
	}
	return out, nil
}

func (m *Mongo) UserActivity(ctx context.Context, userIDs []string) (map[string]models.Activity, error) {
	out := map[string]models.Activity{}
	ids := objectIDs(userIDs)
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := m.db.Collection(colUserEvents).Aggregate(ctx, activityPipeline(ids))
	if err != nil {
		return nil, unavailable("userevents.aggregate", err)
	}
	var rows []activityDoc
	if err := decode(ctx, "userevents.aggregate", cur, &rows); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID.Hex()] = models.Activity{Count: r.Count, Last: r.Last.UTC()}
	}
	return out, nil
}

func (m *Mongo) DailySignups(ctx context.Context, since time.Time) ([]models.DayCount, error) {
	cur, err := m.db.Collection(colOrganizations).Aggregate(ctx, dailySignupsPipeline(since))
	if err != nil {
		return nil, unavailable("organizations.aggregate", err)
	}
	var rows []dayDoc
	if err := decode(ctx, "organizations.aggregate", cur, &rows); err != nil {
		return nil, err
	}
	return dayCounts(rows)
}

func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.db.Client().Ping(ctx, nil); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// decode drains cur into v. Server and network failures while paging are
// unavailable; a document that does not fit v is a plain error.
func decode(ctx context.Context, op string, cur *mongo.Cursor, v any) error {
	err := cur.All(ctx, v)
	if err == nil {
		return nil
	}
	var srv mongo.ServerError
	if errors.As(err, &srv) || mongo.IsNetworkError(err) || mongo.IsTimeout(err) || ctx.Err() != nil {
		return unavailable(op, err)
	}
	return fmt.Errorf("%s: decode: %w", op, err)
}

func dayCounts(rows []dayDoc) ([]models.DayCount, error) {
	out := make([]models.DayCount, 0, len(rows))
	for _, r := range rows {
		d, err := time.Parse("2006-01-02", r.ID)
		if err != nil {
			return nil, fmt.Errorf("organizations.aggregate: bad day key %q: %w", r.ID, err)
		}
		out = append(out, models.DayCount{Date: d, Count: r.Count})
	}
	return out, nil
}
