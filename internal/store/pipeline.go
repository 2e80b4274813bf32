package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const dayFormat = "%Y-%m-%d"

// countByOrgPipeline counts documents of a collection per "org" reference,
// restricted to the given ids and any extra equality filters.
func countByOrgPipeline(orgIDs []primitive.ObjectID, extra bson.M) mongo.Pipeline {
	match := bson.M{"org": bson.M{"$in": orgIDs}}
	for k, v := range extra {
		match[k] = v
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$org", "count": bson.M{"$sum": 1}}}},
	}
}

// developerCountPipeline counts users per organization membership. The
// second match drops memberships outside the page after the unwind.
func developerCountPipeline(orgIDs []primitive.ObjectID) mongo.Pipeline {
	in := bson.M{"organizations": bson.M{"$in": orgIDs}}
	return mongo.Pipeline{
		{{Key: "$match", Value: in}},
		{{Key: "$project", Value: bson.M{"organizations": bson.M{"$setUnion": bson.A{"$organizations", bson.A{}}}}}},
		{{Key: "$unwind", Value: "$organizations"}},
		{{Key: "$match", Value: in}},
		{{Key: "$group", Value: bson.M{"_id": "$organizations", "count": bson.M{"$sum": 1}}}},
	}
}

func activityPipeline(userIDs []primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": bson.M{"$in": userIDs}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$user",
			"count": bson.M{"$sum": 1},
			"last":  bson.M{"$max": "$createdAt"},
		}}},
	}
}

func dailySignupsPipeline(since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"toBeSynced": true,
			"createdAt":  bson.M{"$gte": since.UTC()},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format":   dayFormat,
				"date":     "$createdAt",
				"timezone": "UTC",
			}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// objectIDs converts hex ids, skipping blanks, duplicates and malformed values.
func objectIDs(hex []string) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(hex))
	out := make([]primitive.ObjectID, 0, len(hex))
	for _, h := range hex {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
