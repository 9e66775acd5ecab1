package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings read from the environment
type Config struct {
	AppEnv      string `envconfig:"APP_ENV" default:"production"`
	Port        string `envconfig:"PORT" default:"8080"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"homeservice-booking"`

	MongoURI string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB  string `envconfig:"MONGO_DB" default:"homeservice"`

	JWTSecret    string        `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireTTL time.Duration `envconfig:"JWT_EXPIRE_TTL" default:"24h"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	RedisAddr       string `envconfig:"REDIS_ADDR"`
	RedisPassword   string `envconfig:"REDIS_PASSWORD"`
	RedisDB         int    `envconfig:"REDIS_DB" default:"0"`
	RealtimeChannel string `envconfig:"REALTIME_CHANNEL_PREFIX" default:"notifications:"`

	RabbitURL       string `envconfig:"RABBIT_URL"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.events"`

	PaymentProvider string `envconfig:"PAYMENT_PROVIDER" default:"manual"`
	PaymentCurrency string `envconfig:"PAYMENT_CURRENCY" default:"thb"`
	OmisePublicKey  string `envconfig:"OMISE_PUBLIC_KEY"`
	OmiseSecretKey  string `envconfig:"OMISE_SECRET_KEY"`

	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `envconfig:"TWILIO_FROM_NUMBER"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	ServiceFeeRate           float64       `envconfig:"SERVICE_FEE_RATE" default:"0.15"`
	CouponReservationTTL     time.Duration `envconfig:"COUPON_RESERVATION_TTL" default:"10m"`
	ReservationSweepSchedule string        `envconfig:"RESERVATION_SWEEP_SCHEDULE" default:"@every 5m"`
	RefundSchedule           string        `envconfig:"REFUND_SCHEDULE" default:"@every 1m"`
	NotificationTimeout      time.Duration `envconfig:"NOTIFICATION_TIMEOUT" default:"10s"`
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether error detail may be exposed to callers
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// GetEnv returns the value of key or def when unset
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
