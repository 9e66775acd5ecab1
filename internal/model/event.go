package model

import "time"

// Recipient is one party an event is addressed to
type Recipient struct {
	UserID string
	Role   Role
}

// Event is a typed lifecycle event emitted by the booking engine
type Event struct {
	Type       NotificationType
	Booking    Booking
	Recipients []Recipient
	Reason     string
	OccurredAt time.Time
}

// CustomerOf addresses the booking's customer
func CustomerOf(b *Booking) Recipient {
	return Recipient{UserID: b.CustomerID, Role: RoleCustomer}
}

// WorkerOf addresses the booking's assigned worker
func WorkerOf(b *Booking) Recipient {
	return Recipient{UserID: b.WorkerID, Role: RoleWorker}
}
