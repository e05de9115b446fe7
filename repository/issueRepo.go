// Package repository implements the service store contracts on MongoDB.
package repository

import (
	"context"
	"errors"
	"time"

	"civicreport-be/geo"
	"civicreport-be/models"
	"civicreport-be/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IssueRepo is the MongoDB-backed IssueStore.
type IssueRepo struct {
	collection *mongo.Collection
}

func NewIssueRepo(collection *mongo.Collection) *IssueRepo {
	return &IssueRepo{collection: collection}
}

// EnsureIndexes creates the query indexes for issues.
func (r *IssueRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "latitude", Value: 1}, {Key: "longitude", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "reportedBy", Value: 1}}},
		{Keys: bson.D{{Key: "assignedTo", Value: 1}}},
	})
	return err
}

// GetByID returns the issue, or (nil, nil) when it does not exist.
func (r *IssueRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var issue models.Issue
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &issue, nil
}

// Insert stores a new issue at version 1.
func (r *IssueRepo) Insert(ctx context.Context, issue *models.Issue) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	issue.Version = 1
	_, err := r.collection.InsertOne(ctx, issue)
	return err
}

// Save replaces the stored document only if its version still matches the
// one the caller read, then bumps the version. A lost race returns
// services.ErrVersionConflict.
func (r *IssueRepo) Save(ctx context.Context, issue *models.Issue) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	readVersion := issue.Version
	issue.Version = readVersion + 1

	result, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": issue.ID, "version": readVersion},
		issue,
	)
	if err != nil {
		issue.Version = readVersion
		return err
	}
	if result.MatchedCount == 0 {
		issue.Version = readVersion
		return services.ErrVersionConflict
	}
	return nil
}

// FindInBoundingBox returns issues inside the lat/lon box, newest first,
// capped at limit. Legacy records without flat coordinates are matched on
// the nested GeoJSON point instead.
func (r *IssueRepo) FindInBoundingBox(ctx context.Context, box geo.Box, limit int64) ([]*models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"$or": []bson.M{
		{
			"latitude":  bson.M{"$gte": box.MinLat, "$lte": box.MaxLat},
			"longitude": bson.M{"$gte": box.MinLon, "$lte": box.MaxLon},
		},
		{
			"latitude":                  bson.M{"$exists": false},
			"coordinates.coordinates.1": bson.M{"$gte": box.MinLat, "$lte": box.MaxLat},
			"coordinates.coordinates.0": bson.M{"$gte": box.MinLon, "$lte": box.MaxLon},
		},
	}}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []*models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}
