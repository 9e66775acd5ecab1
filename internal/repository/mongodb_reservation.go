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

// mongodbReservationRepository implements ReservationRepository using MongoDB
type mongodbReservationRepository struct {
	collection *mongo.Collection
}

// NewReservationRepository creates a new MongoDB-based reservation repository
func NewReservationRepository(db *mongo.Database) ReservationRepository {
	return &mongodbReservationRepository{
		collection: db.Collection(database.CouponReservationsCollection),
	}
}

// CreateReservation creates a new reservation record
func (r *mongodbReservationRepository) CreateReservation(ctx context.Context, reservation *model.CouponReservation) error {
	_, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrReservationSettled
		}
		return err
	}

	return nil
}

// UpdateStatus moves a reservation between statuses
func (r *mongodbReservationRepository) UpdateStatus(ctx context.Context, id string, from, to model.ReservationStatus) error {
	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if n == 0 {
			return apperrors.ErrReservationNotFound
		}
		return apperrors.ErrReservationSettled
	}

	return nil
}

// ListStale returns reservations left in reserved past cutoff
func (r *mongodbReservationRepository) ListStale(ctx context.Context, cutoff time.Time, limit int64) ([]*model.CouponReservation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{
		"status":     model.ReservationReserved,
		"created_at": bson.M{"$lt": cutoff},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reservations []*model.CouponReservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, err
	}

	return reservations, nil
}

// ListByCoupon retrieves all confirmed reservations for a coupon
func (r *mongodbReservationRepository) ListByCoupon(ctx context.Context, couponID string) ([]*model.CouponReservation, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"coupon_id": couponID,
		"status":    model.ReservationConfirmed,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reservations []*model.CouponReservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, err
	}

	return reservations, nil
}
