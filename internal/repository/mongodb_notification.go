package repository

import (
	"context"
	"homeservice-booking/internal/model"
	"homeservice-booking/pkg/database"
	apperrors "homeservice-booking/pkg/errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongodbNotificationRepository implements NotificationRepository using MongoDB
type mongodbNotificationRepository struct {
	collection *mongo.Collection
}

// NewNotificationRepository creates a new MongoDB-based notification repository
func NewNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongodbNotificationRepository{
		collection: db.Collection(database.NotificationsCollection),
	}
}

func (r *mongodbNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

func (r *mongodbNotificationRepository) ListByUser(ctx context.Context, userID string, page, limit int64) ([]*model.Notification, error) {
	skip, limit := pageWindow(page, limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := make([]*model.Notification, 0)
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *mongodbNotificationRepository) MarkRead(ctx context.Context, id, userID string) (*model.Notification, error) {
	now := time.Now().UTC()
	var n model.Notification
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}
