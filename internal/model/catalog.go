package model

// WorkerService is a worker's priced instance of a catalog service
type WorkerService struct {
	ID          string  `bson:"_id" json:"id"`
	WorkerID    string  `bson:"worker_id" json:"workerId"`
	ServiceID   string  `bson:"service_id" json:"serviceId"`
	CategoryID  string  `bson:"category_id" json:"categoryId"`
	Name        string  `bson:"name" json:"name"`
	CustomPrice float64 `bson:"custom_price" json:"customPrice"`
	IsActive    bool    `bson:"is_active" json:"isActive"`
}

// Address is a customer's saved service location
type Address struct {
	ID         string `bson:"_id" json:"id"`
	UserID     string `bson:"user_id" json:"userId"`
	Label      string `bson:"label" json:"label"`
	Line1      string `bson:"line1" json:"line1"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postal_code" json:"postalCode"`
}
