package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port             string
	MassiveAPIKey    string
	MassiveBaseURL   string
	YahooBaseURL     string
	FinnhubAPIKey    string
	PushSecret       string
	WireDataPath     string
	WireDataDevPath  string
	StateFile        string
	TradesFile       string
	StaticDir        string
	PayloadStore     string
	RedisURL         string
	RedisWireKey     string
	S3Bucket         string
	S3Key            string
	S3Region         string
	S3Endpoint       string
	S3PathStyle      bool
	AWSAccessKey     string
	AWSSecretKey     string
	InstrumentsFile  string
	RequestTimeout   time.Duration
	AvgDvolWorkers   int
	RateLimitPerMin  int
	WarmInterval     time.Duration
	CircuitFailLimit int
	CircuitCooldown  time.Duration
	LogLevel         string
	LogFile          string
	LogMaxSizeMB     int
}

func Load() Config {
	return Config{
		Port:             getEnv("PORT", "8000"),
		MassiveAPIKey:    os.Getenv("MASSIVE_API_KEY"),
		MassiveBaseURL:   getEnv("MASSIVE_BASE_URL", "https://api.massive.com"),
		YahooBaseURL:     getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		FinnhubAPIKey:    os.Getenv("FINNHUB_API_KEY"),
		PushSecret:       os.Getenv("PUSH_SECRET"),
		WireDataPath:     getEnv("WIRE_DATA_PATH", "/data/wire_data.json"),
		WireDataDevPath:  getEnv("WIRE_DATA_DEV_PATH", "../morning-wire/data/wire_data.json"),
		StateFile:        getEnv("STATE_FILE", "../morning-wire/morning_wire_state.json"),
		TradesFile:       getEnv("TRADES_FILE", "data/trades.json"),
		StaticDir:        getEnv("STATIC_DIR", "app/dist"),
		PayloadStore:     strings.ToLower(getEnv("PAYLOAD_STORE", "file")),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379"),
		RedisWireKey:     getEnv("REDIS_WIRE_KEY", "uct:wire_data"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Key:            getEnv("S3_KEY", "wire/wire_data.json"),
		S3Region:         getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3PathStyle:      getEnvBool("S3_PATH_STYLE", false),
		AWSAccessKey:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:     os.Getenv("AWS_SECRET_ACCESS_KEY"),
		InstrumentsFile:  os.Getenv("INSTRUMENTS_FILE"),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		AvgDvolWorkers:   getEnvInt("AVG_DVOL_WORKERS", 8),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MIN", 240),
		WarmInterval:     getEnvDuration("WARM_INTERVAL", 0),
		CircuitFailLimit: getEnvInt("CIRCUIT_FAIL_LIMIT", 5),
		CircuitCooldown:  getEnvDuration("CIRCUIT_COOLDOWN", 20*time.Second),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          os.Getenv("LOG_FILE"),
		LogMaxSizeMB:     getEnvInt("LOG_MAX_SIZE_MB", 50),
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(i) * time.Second
}
