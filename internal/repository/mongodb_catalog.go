package repository

import (
	"context"
	"homeservice-booking/internal/model"
	"homeservice-booking/pkg/database"
	apperrors "homeservice-booking/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// mongodbCatalogRepository implements CatalogRepository using MongoDB
type mongodbCatalogRepository struct {
	workerServices *mongo.Collection
	addresses      *mongo.Collection
	users          *mongo.Collection
}

// NewCatalogRepository creates a new MongoDB-based catalog repository
func NewCatalogRepository(db *mongo.Database) CatalogRepository {
	return &mongodbCatalogRepository{
		workerServices: db.Collection(database.WorkerServicesCollection),
		addresses:      db.Collection(database.AddressesCollection),
		users:          db.Collection(database.UsersCollection),
	}
}

func (r *mongodbCatalogRepository) GetWorkerService(ctx context.Context, id string) (*model.WorkerService, error) {
	var ws model.WorkerService
	if err := findByID(ctx, r.workerServices, id, &ws, apperrors.ErrWorkerServiceNotFound); err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *mongodbCatalogRepository) GetAddress(ctx context.Context, id string) (*model.Address, error) {
	var addr model.Address
	if err := findByID(ctx, r.addresses, id, &addr, apperrors.ErrAddressNotFound); err != nil {
		return nil, err
	}
	return &addr, nil
}

func (r *mongodbCatalogRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := findByID(ctx, r.users, id, &user, apperrors.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

func findByID(ctx context.Context, c *mongo.Collection, id string, out interface{}, notFound error) error {
	err := c.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if err == mongo.ErrNoDocuments {
		return notFound
	}
	return err
}
