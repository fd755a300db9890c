package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// Slot inventory, fixed at startup.
	SlotCount int

	// Tariff.
	RatePerMinute float64
	MinimumCharge float64

	// Confidence voter tuning.
	VoteQuorum          int
	VoteTTL             time.Duration
	ConfidenceThreshold float64
	ConfirmCooldown     time.Duration
	PlateMinLength      int

	AWSRegion            string
	SQSDetectionQueueURL string
	IoTMQTTEndpoint      string
	GateEntryTopic       string
	GateExitTopic        string

	Development bool
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "parking"),
		DBPassword: getEnv("DB_PASSWORD", "parking"),
		DBName:     getEnv("DB_NAME", "parking_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		SlotCount: getEnvInt("SLOT_COUNT", 10),

		RatePerMinute: getEnvFloat("RATE_PER_MINUTE", 5.0),
		MinimumCharge: getEnvFloat("MIN_CHARGE", 10.0),

		VoteQuorum:          getEnvInt("VOTE_QUORUM", 2),
		VoteTTL:             getEnvSeconds("VOTE_TTL_SECONDS", 5*time.Second),
		ConfidenceThreshold: getEnvFloat("CONFIDENCE_THRESHOLD", 0.4),
		ConfirmCooldown:     getEnvSeconds("CONFIRM_COOLDOWN_SECONDS", 10*time.Second),
		PlateMinLength:      getEnvInt("PLATE_MIN_LENGTH", 4),

		AWSRegion:            getEnv("AWS_REGION", "ap-south-1"),
		SQSDetectionQueueURL: getEnv("SQS_DETECTION_QUEUE_URL", ""),
		IoTMQTTEndpoint:      getEnv("IOT_MQTT_ENDPOINT", ""),
		GateEntryTopic:       getEnv("GATE_ENTRY_TOPIC", "parking/gate/entry"),
		GateExitTopic:        getEnv("GATE_EXIT_TOPIC", "parking/gate/exit"),

		Development: getEnv("APP_ENV", "development") != "production",
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid integer env value, using fallback")
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid float env value, using fallback")
	}
	return fallback
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Second
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid duration env value, using fallback")
	}
	return fallback
}
