package service

import (
	"homeservice-booking/internal/model"
	apperrors "homeservice-booking/pkg/errors"
	"slices"
)

// Action is a requested booking lifecycle move
type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// audience selects who is told about an applied transition
type audience int

const (
	notifyCustomer audience = iota
	notifyBoth
)

// transitionRule is one row of the lifecycle table: which statuses an actor
// may move a booking from, where it ends up and who hears about it
type transitionRule struct {
	from   []model.BookingStatus
	to     model.BookingStatus
	event  model.NotificationType
	notify audience
}

var nonTerminal = []model.BookingStatus{model.BookingPending, model.BookingConfirmed, model.BookingInProgress}

// transitions is keyed by action then actor role. A missing role means the
// actor may never perform the action.
var transitions = map[Action]map[model.Role]transitionRule{
	ActionAccept: {
		model.RoleWorker: {
			from:   []model.BookingStatus{model.BookingPending},
			to:     model.BookingConfirmed,
			event:  model.NotifyBookingConfirmed,
			notify: notifyCustomer,
		},
	},
	ActionReject: {
		model.RoleWorker: {
			from:   []model.BookingStatus{model.BookingPending},
			to:     model.BookingCancelled,
			event:  model.NotifyBookingCancelled,
			notify: notifyCustomer,
		},
	},
	ActionStart: {
		model.RoleWorker: {
			from:   []model.BookingStatus{model.BookingPending, model.BookingConfirmed},
			to:     model.BookingInProgress,
			event:  model.NotifyBookingUpdated,
			notify: notifyCustomer,
		},
	},
	ActionComplete: {
		model.RoleWorker: {
			from:   []model.BookingStatus{model.BookingInProgress},
			to:     model.BookingCompleted,
			event:  model.NotifyBookingCompleted,
			notify: notifyCustomer,
		},
		model.RoleAdmin: {
			from:   nonTerminal,
			to:     model.BookingCompleted,
			event:  model.NotifyBookingCompleted,
			notify: notifyBoth,
		},
	},
	ActionCancel: {
		model.RoleCustomer: {
			from:   []model.BookingStatus{model.BookingPending, model.BookingConfirmed},
			to:     model.BookingCancelled,
			event:  model.NotifyBookingCancelled,
			notify: notifyBoth,
		},
		// a worker cancelling is a rejection of a request not yet accepted
		model.RoleWorker: {
			from:   []model.BookingStatus{model.BookingPending},
			to:     model.BookingCancelled,
			event:  model.NotifyBookingCancelled,
			notify: notifyCustomer,
		},
		model.RoleAdmin: {
			from:   nonTerminal,
			to:     model.BookingCancelled,
			event:  model.NotifyBookingCancelled,
			notify: notifyBoth,
		},
	},
}

// resolveTransition authorizes p for action on b and returns the rule to apply.
// Actor checks run before status checks so a stranger never learns the state.
func resolveTransition(action Action, p model.Principal, b *model.Booking) (transitionRule, error) {
	byRole, ok := transitions[action]
	if !ok {
		return transitionRule{}, apperrors.Validation("unknown booking action")
	}
	rule, ok := byRole[p.Role]
	if !ok {
		return transitionRule{}, apperrors.ErrForbidden
	}
	switch p.Role {
	case model.RoleCustomer:
		if b.CustomerID != p.ID {
			return transitionRule{}, apperrors.ErrForbidden
		}
	case model.RoleWorker:
		if b.WorkerID != p.ID {
			return transitionRule{}, apperrors.ErrForbidden
		}
	}
	if !slices.Contains(rule.from, b.Status) {
		return transitionRule{}, apperrors.ErrInvalidStateTransition
	}
	return rule, nil
}

// recipients lists who is told about rule being applied to b
func (r transitionRule) recipients(b *model.Booking) []model.Recipient {
	if r.notify == notifyBoth {
		return []model.Recipient{model.CustomerOf(b), model.WorkerOf(b)}
	}
	return []model.Recipient{model.CustomerOf(b)}
}

// InitialStatus is the status a new booking starts in
func InitialStatus(method model.PaymentMethod) model.BookingStatus {
	if method == model.PaymentCash {
		return model.BookingConfirmed
	}
	return model.BookingPending
}

// cancelledBy maps the acting role onto cancellation metadata
func cancelledBy(role model.Role) model.CancelledBy {
	switch role {
	case model.RoleCustomer:
		return model.CancelledByCustomer
	case model.RoleWorker:
		return model.CancelledByWorker
	case model.RoleAdmin:
		return model.CancelledByAdmin
	}
	return model.CancelledByNone
}
