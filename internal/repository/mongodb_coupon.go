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

// mongodbCouponRepository implements CouponRepository using MongoDB
type mongodbCouponRepository struct {
	collection *mongo.Collection
}

// NewCouponRepository creates a new MongoDB-based coupon repository
func NewCouponRepository(db *mongo.Database) CouponRepository {
	return &mongodbCouponRepository{
		collection: db.Collection(database.CouponsCollection),
	}
}

// CreateCoupon creates a new coupon
func (r *mongodbCouponRepository) CreateCoupon(ctx context.Context, coupon *model.Coupon) error {
	_, err := r.collection.InsertOne(ctx, coupon)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrCouponAlreadyExists
		}
		return err
	}

	return nil
}

// GetCouponByCode retrieves a coupon by its code
func (r *mongodbCouponRepository) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrCouponNotFound
		}
		return nil, err
	}

	return &coupon, nil
}

// IncrementUsage atomically consumes one use of a coupon
func (r *mongodbCouponRepository) IncrementUsage(ctx context.Context, couponID string) error {
	updateResult := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{
			"_id": couponID,
			// Only update while uncapped or usage_count < max_usage
			"$or": bson.A{
				bson.M{"max_usage": bson.M{"$lte": 0}},
				bson.M{"$expr": bson.M{"$lt": bson.A{"$usage_count", "$max_usage"}}},
			},
		},
		bson.M{
			"$inc": bson.M{"usage_count": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetUpsert(false),
	)

	if err := updateResult.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return r.missingOrExhausted(ctx, couponID)
		}
		return err
	}

	return nil
}

// DecrementUsage gives back one use of a coupon
func (r *mongodbCouponRepository) DecrementUsage(ctx context.Context, couponID string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": couponID, "usage_count": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"usage_count": -1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}

func (r *mongodbCouponRepository) missingOrExhausted(ctx context.Context, couponID string) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": couponID})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrCouponNotFound
	}
	return apperrors.ErrCouponExhausted
}
