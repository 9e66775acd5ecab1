package model

// CreateBookingRequest represents the request to book a worker service
type CreateBookingRequest struct {
	WorkerID        string        `json:"workerId" binding:"required"`
	WorkerServiceID string        `json:"workerServiceId" binding:"required"`
	AddressID       string        `json:"addressId" binding:"required"`
	BookingDate     string        `json:"bookingDate" binding:"required"`
	TimeSlot        string        `json:"timeSlot" binding:"required"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" binding:"required"`
	CouponCode      string        `json:"couponCode"`
}

// CreateBookingResult is returned once a booking is created
type CreateBookingResult struct {
	Booking        *Booking       `json:"booking"`
	Payment        *Payment       `json:"payment,omitempty"`
	PriceBreakdown PriceBreakdown `json:"priceBreakdown"`
}

// HandleRequestRequest is a worker's answer to a pending booking
type HandleRequestRequest struct {
	Action          string `json:"action" binding:"required,oneof=accept reject"`
	RejectionReason string `json:"rejectionReason"`
}

// UpdateStatusRequest moves a booking to a terminal state
type UpdateStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
	Reason string        `json:"reason"`
}

// CancelBookingRequest carries an optional cancellation reason
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}
