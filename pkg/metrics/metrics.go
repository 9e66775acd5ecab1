package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "homeservice"

var (
	once sync.Once

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Count of bookings created by payment method and initial status.",
		},
		[]string{"payment_method", "status"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Count of applied booking status transitions.",
		},
		[]string{"action", "status"},
	)

	couponRedemptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_redemptions_total",
			Help:      "Count of coupon reservation outcomes.",
		},
		[]string{"result"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Count of notification deliveries by channel and result.",
		},
		[]string{"channel", "result"},
	)

	refunds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_total",
			Help:      "Count of refund attempts by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingsCreated, bookingTransitions, couponRedemptions, notifications, refunds)
	})
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

func IncBookingCreated(paymentMethod, status string) {
	bookingsCreated.WithLabelValues(paymentMethod, status).Inc()
}

func IncBookingTransition(action, status string) {
	bookingTransitions.WithLabelValues(action, status).Inc()
}

func IncCouponRedemption(result string) {
	couponRedemptions.WithLabelValues(result).Inc()
}

func IncNotification(channel, result string) {
	notifications.WithLabelValues(channel, result).Inc()
}

func IncRefund(result string) {
	refunds.WithLabelValues(result).Inc()
}
