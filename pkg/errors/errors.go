package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidStateTransition
	KindCoupon
	KindConflict
	KindExternalService
)

// Error is the domain error carried across layers
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so wrapped copies still compare equal to their sentinel
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a domain error
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a cause to a sentinel, keeping its kind, code and message
func Wrap(base *Error, err error) error {
	if err == nil {
		return base
	}
	return &Error{Kind: base.Kind, Code: base.Code, Message: base.Message, Err: err}
}

// Validation builds a 400 error with a caller-facing message
func Validation(message string) error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: message}
}

// Domain errors for the booking engine
var (
	ErrUnauthorized = New(KindUnauthorized, "UNAUTHORIZED", "authentication required")
	ErrForbidden    = New(KindForbidden, "FORBIDDEN", "you are not allowed to perform this action")

	ErrBookingNotFound       = New(KindNotFound, "BOOKING_NOT_FOUND", "booking not found")
	ErrWorkerNotFound        = New(KindNotFound, "WORKER_NOT_FOUND", "worker not found")
	ErrWorkerServiceNotFound = New(KindNotFound, "WORKER_SERVICE_NOT_FOUND", "worker service not found")
	ErrAddressNotFound       = New(KindNotFound, "ADDRESS_NOT_FOUND", "address not found")
	ErrUserNotFound          = New(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrPaymentNotFound       = New(KindNotFound, "PAYMENT_NOT_FOUND", "payment not found")
	ErrNotificationNotFound  = New(KindNotFound, "NOTIFICATION_NOT_FOUND", "notification not found")
	ErrReservationNotFound   = New(KindNotFound, "RESERVATION_NOT_FOUND", "coupon reservation not found")

	ErrCouponNotFound       = New(KindCoupon, "COUPON_NOT_FOUND", "coupon not found or not currently valid")
	ErrCouponExhausted      = New(KindCoupon, "COUPON_EXHAUSTED", "coupon usage limit has been reached")
	ErrCouponMinOrderNotMet = New(KindCoupon, "COUPON_MIN_ORDER_NOT_MET", "order value is below the coupon minimum")
	ErrCouponNotApplicable  = New(KindCoupon, "COUPON_NOT_APPLICABLE", "coupon is not applicable to this service")
	ErrCouponAlreadyExists  = New(KindConflict, "COUPON_ALREADY_EXISTS", "coupon already exists")

	ErrInvalidStateTransition = New(KindInvalidStateTransition, "INVALID_STATE_TRANSITION", "booking status does not allow this action")
	ErrConcurrentModification = New(KindConflict, "CONCURRENT_MODIFICATION", "booking was modified by another request")
	ErrSlotUnavailable        = New(KindConflict, "SLOT_UNAVAILABLE", "worker already has a booking in this time slot")
	ErrPaymentStateConflict   = New(KindConflict, "PAYMENT_STATE_CONFLICT", "payment status does not allow this update")
	ErrReservationSettled     = New(KindConflict, "RESERVATION_SETTLED", "coupon reservation is already settled")

	ErrPaymentGateway = New(KindExternalService, "PAYMENT_GATEWAY_ERROR", "payment gateway request failed")
	ErrInternal       = New(KindInternal, "INTERNAL_ERROR", "internal server error")
)

// KindOf returns the kind of err, KindInternal for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps err to the response status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidStateTransition, KindCoupon:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Public returns the code and message safe to show a caller
func Public(err error) (code, message string) {
	var e *Error
	if stderrors.As(err, &e) && e.Kind != KindInternal {
		return e.Code, e.Message
	}
	return ErrInternal.Code, ErrInternal.Message
}
