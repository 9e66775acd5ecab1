package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared by repositories and index setup
const (
	BookingsCollection           = "bookings"
	WorkerCalendarsCollection    = "worker_calendars"
	CouponsCollection            = "coupons"
	CouponReservationsCollection = "coupon_reservations"
	PaymentsCollection           = "payments"
	NotificationsCollection      = "notifications"
	WorkerServicesCollection     = "worker_services"
	AddressesCollection          = "addresses"
	UsersCollection              = "users"
)

// MongoDB wraps the MongoDB client and database
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect establishes a connection to MongoDB
func Connect(ctx context.Context, uri, dbName string) (*MongoDB, error) {
	clientOptions := options.Client().ApplyURI(uri)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	mongoDB := &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
	}

	if err := mongoDB.CreateIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return mongoDB, nil
}

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

// CreateIndexes creates all necessary indexes for the application
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	specs := []collectionIndexes{
		{
			collection: CouponsCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "code", Value: 1}},
					Options: options.Index().SetUnique(true).SetName("coupon_code_unique"),
				},
			},
		},
		{
			// one reservation per booking keeps redemption at most once per booking
			collection: CouponReservationsCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "booking_id", Value: 1}},
					Options: options.Index().SetUnique(true).SetName("reservation_booking_unique"),
				},
				{
					Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
					Options: options.Index().SetName("reservation_status_created"),
				},
				{
					Keys:    bson.D{{Key: "coupon_id", Value: 1}},
					Options: options.Index().SetName("reservation_coupon"),
				},
			},
		},
		{
			collection: BookingsCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "worker_id", Value: 1}, {Key: "booking_date", Value: 1}, {Key: "status", Value: 1}},
					Options: options.Index().SetName("booking_worker_date_status"),
				},
				{
					Keys:    bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}},
					Options: options.Index().SetName("booking_customer_created"),
				},
			},
		},
		{
			collection: PaymentsCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "booking_id", Value: 1}},
					Options: options.Index().SetUnique(true).SetName("payment_booking_unique"),
				},
				{
					Keys:    bson.D{{Key: "status", Value: 1}, {Key: "updated_at", Value: 1}},
					Options: options.Index().SetName("payment_status_updated"),
				},
			},
		},
		{
			collection: NotificationsCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
					Options: options.Index().SetName("notification_user_created"),
				},
			},
		},
	}

	for _, spec := range specs {
		if _, err := m.Database.Collection(spec.collection).Indexes().CreateMany(ctx, spec.models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", spec.collection, err)
		}
	}

	return nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
