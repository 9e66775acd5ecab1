package repository

import (
	"context"
	"homeservice-booking/internal/model"
	"homeservice-booking/pkg/database"
	apperrors "homeservice-booking/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongodbPaymentRepository implements PaymentRepository using MongoDB
type mongodbPaymentRepository struct {
	collection *mongo.Collection
}

// NewPaymentRepository creates a new MongoDB-based payment repository
func NewPaymentRepository(db *mongo.Database) PaymentRepository {
	return &mongodbPaymentRepository{
		collection: db.Collection(database.PaymentsCollection),
	}
}

func (r *mongodbPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	_, err := r.collection.InsertOne(ctx, payment)
	return err
}

func (r *mongodbPaymentRepository) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongodbPaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*model.Payment, error) {
	return r.findOne(ctx, bson.M{"booking_id": bookingID})
}

func (r *mongodbPaymentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Transition updates status only from an allowed prior status
func (r *mongodbPaymentRepository) Transition(ctx context.Context, id string, change model.PaymentChange) (*model.Payment, error) {
	set := bson.M{
		"status":     change.To,
		"updated_at": change.UpdatedAt,
	}
	if change.TransactionID != "" {
		set["transaction_id"] = change.TransactionID
	}
	if change.FailureReason != "" {
		set["failure_reason"] = change.FailureReason
	}
	if change.RefundID != "" {
		set["refund_id"] = change.RefundID
	}
	if change.RefundReason != "" {
		set["refund_reason"] = change.RefundReason
	}

	var payment model.Payment
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "status": bson.M{"$in": change.From}},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, apperrors.ErrPaymentStateConflict
		}
		return nil, err
	}
	return &payment, nil
}

func (r *mongodbPaymentRepository) ListByStatus(ctx context.Context, status model.PaymentStatus, limit int64) ([]*model.Payment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: 1}}).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []*model.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *mongodbPaymentRepository) findOne(ctx context.Context, filter bson.M) (*model.Payment, error) {
	var payment model.Payment
	if err := r.collection.FindOne(ctx, filter).Decode(&payment); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}
