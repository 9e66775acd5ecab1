package repository

import (
	"context"
	"homeservice-booking/internal/model"
)

// CatalogRepository reads the reference data a booking points at.
// These documents are owned by other parts of the platform.
type CatalogRepository interface {
	GetWorkerService(ctx context.Context, id string) (*model.WorkerService, error)
	GetAddress(ctx context.Context, id string) (*model.Address, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
}
