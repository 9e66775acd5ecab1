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

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// mongodbBookingRepository implements BookingRepository using MongoDB
type mongodbBookingRepository struct {
	collection *mongo.Collection
	calendars  *mongo.Collection
}

// calendarSlot is one element of a worker_calendars document's slots array
type calendarSlot struct {
	BookingID string    `bson:"booking_id"`
	Start     string    `bson:"start"`
	End       string    `bson:"end"`
	HeldAt    time.Time `bson:"held_at"`
}

// NewBookingRepository creates a new MongoDB-based booking repository
func NewBookingRepository(db *mongo.Database) BookingRepository {
	return &mongodbBookingRepository{
		collection: db.Collection(database.BookingsCollection),
		calendars:  db.Collection(database.WorkerCalendarsCollection),
	}
}

func (r *mongodbBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	_, err := r.collection.InsertOne(ctx, booking)
	return err
}

func (r *mongodbBookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *mongodbBookingRepository) List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	query := bson.M{}
	if filter.CustomerID != "" {
		query["customer_id"] = filter.CustomerID
	}
	if filter.WorkerID != "" {
		query["worker_id"] = filter.WorkerID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	skip, limit := pageWindow(int64(filter.Page), int64(filter.Limit))
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bookings := make([]*model.Booking, 0)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *mongodbBookingRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// HasOverlap checks the worker's calendar for a conflicting slot
func (r *mongodbBookingRepository) HasOverlap(ctx context.Context, workerID string, date time.Time, slot model.TimeSlot) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{
		"worker_id":                 workerID,
		"booking_date":              date,
		"status":                    bson.M{"$ne": model.BookingCancelled},
		"scheduled_time_slot.start": bson.M{"$lt": slot.End},
		"scheduled_time_slot.end":   bson.M{"$gt": slot.Start},
	}).Err()

	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// calendarKey identifies the calendar document for a worker and day
func calendarKey(workerID string, date time.Time) string {
	return workerID + ":" + date.UTC().Format("2006-01-02")
}

// HoldSlot pushes the interval onto the day's calendar only if no element
// overlaps it. When the guard fails the upsert collides with the existing
// document's _id, which is reported as ErrSlotUnavailable. A duplicate key can
// also mean a concurrent first hold created the document, so it is retried once.
func (r *mongodbBookingRepository) HoldSlot(ctx context.Context, hold model.SlotHold) error {
	filter := bson.M{
		"_id": calendarKey(hold.WorkerID, hold.BookingDate),
		"slots": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"start": bson.M{"$lt": hold.End},
			"end":   bson.M{"$gt": hold.Start},
		}}},
	}
	update := bson.M{
		"$push": bson.M{"slots": calendarSlot{
			BookingID: hold.BookingID,
			Start:     hold.Start,
			End:       hold.End,
			HeldAt:    hold.HeldAt,
		}},
		"$setOnInsert": bson.M{
			"worker_id":    hold.WorkerID,
			"booking_date": hold.BookingDate,
		},
	}

	for attempt := 0; attempt < 2; attempt++ {
		_, err := r.calendars.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return err
		}
	}
	return apperrors.ErrSlotUnavailable
}

func (r *mongodbBookingRepository) ReleaseSlot(ctx context.Context, workerID string, date time.Time, bookingID string) error {
	_, err := r.calendars.UpdateOne(ctx,
		bson.M{"_id": calendarKey(workerID, date)},
		bson.M{"$pull": bson.M{"slots": bson.M{"booking_id": bookingID}}},
	)
	return err
}

func (r *mongodbBookingRepository) ListOrphanHolds(ctx context.Context, cutoff time.Time, limit int64) ([]model.SlotHold, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$slots"}},
		{{Key: "$match", Value: bson.M{"slots.held_at": bson.M{"$lt": cutoff}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.BookingsCollection,
			"localField":   "slots.booking_id",
			"foreignField": "_id",
			"as":           "booking",
		}}},
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"booking": bson.M{"$size": 0}},
			bson.M{"booking.status": model.BookingCancelled},
		}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{
			"_id":          0,
			"worker_id":    1,
			"booking_date": 1,
			"booking_id":   "$slots.booking_id",
			"start":        "$slots.start",
			"end":          "$slots.end",
			"held_at":      "$slots.held_at",
		}}},
	}

	cursor, err := r.calendars.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	holds := make([]model.SlotHold, 0)
	if err := cursor.All(ctx, &holds); err != nil {
		return nil, err
	}
	return holds, nil
}

// UpdateStatus is a compare-and-set on the status field
func (r *mongodbBookingRepository) UpdateStatus(ctx context.Context, id string, change model.StatusChange) (*model.Booking, error) {
	set := bson.M{
		"status":     change.To,
		"updated_at": change.UpdatedAt,
	}
	if change.CancelledBy != "" {
		set["cancelled_by"] = change.CancelledBy
	}
	if change.CancellationReason != "" {
		set["cancellation_reason"] = change.CancellationReason
	}
	if change.WorkerResponseTime != nil {
		set["worker_response_time"] = change.WorkerResponseTime
	}
	if change.StartedAt != nil {
		set["started_at"] = change.StartedAt
	}
	if change.CompletedAt != nil {
		set["completed_at"] = change.CompletedAt
	}

	var booking model.Booking
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "status": change.From},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, apperrors.ErrConcurrentModification
		}
		return nil, err
	}
	return &booking, nil
}

func (r *mongodbBookingRepository) SetPayment(ctx context.Context, id, paymentID string) error {
	return r.setFields(ctx, id, bson.M{"payment_id": paymentID})
}

func (r *mongodbBookingRepository) MarkPaid(ctx context.Context, id string) error {
	return r.setFields(ctx, id, bson.M{"is_paid": true})
}

func (r *mongodbBookingRepository) setFields(ctx context.Context, id string, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrBookingNotFound
	}
	return nil
}

// pageWindow converts 1-based page and limit into skip/limit
func pageWindow(page, limit int64) (int64, int64) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit, limit
}
