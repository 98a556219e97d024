package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/fathima-sithara/cloud-media-platform/internal/apperr"
	"github.com/fathima-sithara/cloud-media-platform/internal/models"
)

type MediaRepository interface {
	Insert(ctx context.Context, m *models.Media) error
	// FindByID filters on owner as well as id, so a record owned by another
	// user is indistinguishable from a missing one.
	FindByID(ctx context.Context, userID, mediaID string) (*models.Media, error)
	ListByUser(ctx context.Context, userID, mediaType string, skip, limit int) ([]*models.Media, int64, error)
	Search(ctx context.Context, userID, query string, skip, limit int) ([]*models.Media, int64, error)
	Update(ctx context.Context, userID, mediaID string, set bson.M) (*models.Media, error)
	Delete(ctx context.Context, userID, mediaID string) error
}

type mongoMediaRepo struct {
	col *mongo.Collection
}

func NewMongoMediaRepo(db *mongo.Database, collection string, log *zap.SugaredLogger) MediaRepository {
	col := db.Collection(collection)
	_, err := col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "uploaded_at", Value: -1}}},
	})
	if err != nil {
		log.Warnw("create media indexes failed", "collection", collection, "err", err)
	}
	return &mongoMediaRepo{col: col}
}

func (r *mongoMediaRepo) Insert(ctx context.Context, m *models.Media) error {
	now := time.Now().UTC()
	if m.UploadedAt.IsZero() {
		m.UploadedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
	_, err := r.col.InsertOne(ctx, m)
	return err
}

func (r *mongoMediaRepo) FindByID(ctx context.Context, userID, mediaID string) (*models.Media, error) {
	var m models.Media
	err := r.col.FindOne(ctx, ownedFilter(userID, mediaID)).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mongoMediaRepo) ListByUser(ctx context.Context, userID, mediaType string, skip, limit int) ([]*models.Media, int64, error) {
	filter := bson.M{"user_id": userID}
	if mediaType != "" {
		filter["media_type"] = mediaType
	}
	return r.page(ctx, filter, skip, limit)
}

func (r *mongoMediaRepo) Search(ctx context.Context, userID, query string, skip, limit int) ([]*models.Media, int64, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"user_id": userID,
		"$or": bson.A{
			bson.M{"original_file_name": re},
			bson.M{"description": re},
			bson.M{"tags": re},
		},
	}
	return r.page(ctx, filter, skip, limit)
}

func (r *mongoMediaRepo) page(ctx context.Context, filter bson.M, skip, limit int) ([]*models.Media, int64, error) {
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "uploaded_at", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	items := make([]*models.Media, 0, limit)
	for cur.Next(ctx) {
		var m models.Media
		if err := cur.Decode(&m); err != nil {
			return nil, 0, err
		}
		items = append(items, &m)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *mongoMediaRepo) Update(ctx context.Context, userID, mediaID string, set bson.M) (*models.Media, error) {
	set["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m models.Media
	err := r.col.FindOneAndUpdate(ctx, ownedFilter(userID, mediaID), bson.M{"$set": set}, opts).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mongoMediaRepo) Delete(ctx context.Context, userID, mediaID string) error {
	res, err := r.col.DeleteOne(ctx, ownedFilter(userID, mediaID))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func ownedFilter(userID, mediaID string) bson.M {
	return bson.M{"_id": mediaID, "user_id": userID}
}
