package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config is the service configuration, read from .env and the environment.
type Config struct {
	Port        string
	StoreDriver string
	LogLevel    string
	LogFormat   string
	JWTSecret   []byte

	Mongo MongoConfig
	Redis RedisConfig
	Map   MapConfig

	PlaceholderImage     string
	PlaceholderFloorPlan string
	AutoCreateOwners     bool
	SeedBuildings        bool
	CacheTTL             time.Duration
	CommitTimeout        time.Duration
	RateLimit            float64
	RateBurst            int
}

type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig is optional; an empty Addr disables the list cache and the
// catalog event channel.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }

type MapConfig struct {
	Image  string
	Width  float64
	Height float64
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:        ":8080",
		StoreDriver: DriverMongo,
		LogLevel:    "info",
		LogFormat:   "json",
		JWTSecret:   []byte("change-me"),
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "campus",
		},
		Map: MapConfig{
			Image:  "/assets/images/campus-map.png",
			Width:  700,
			Height: 500,
		},
		PlaceholderImage:     "/assets/images/Iowa_State_Cyclones_logo.svg.png",
		PlaceholderFloorPlan: "/assets/images/Iowa_State_Cyclones_logo.svg.png",
		AutoCreateOwners:     true,
		CacheTTL:             5 * time.Minute,
		CommitTimeout:        5 * time.Second,
		RateLimit:            5,
		RateBurst:            10,
	}
}

// Load reads an optional .env file and overlays the environment on the
// defaults. It reports whether a .env file was found.
func Load() (Config, bool) {
	found := godotenv.Load() == nil
	cfg := Default()
	cfg.LoadFromEnv()
	return cfg, found
}

// LoadFromEnv overlays environment variables on c.
func (c *Config) LoadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if port[0] != ':' {
			port = ":" + port
		}
		c.Port = port
	}
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		c.StoreDriver = strings.ToLower(driver)
	}
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWTSecret = []byte(secret)
	}

	setString(&c.Mongo.URI, "MONGO_URI")
	setString(&c.Mongo.Database, "MONGO_DB")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			c.Redis.DB = n
		}
	}

	setString(&c.Map.Image, "MAP_IMAGE")
	setFloat(&c.Map.Width, "MAP_WIDTH")
	setFloat(&c.Map.Height, "MAP_HEIGHT")

	setString(&c.PlaceholderImage, "PLACEHOLDER_IMAGE")
	setString(&c.PlaceholderFloorPlan, "PLACEHOLDER_FLOORPLAN")
	setBool(&c.AutoCreateOwners, "TOURS_AUTOCREATE_OWNER")
	setBool(&c.SeedBuildings, "SEED_BUILDINGS")
	setDuration(&c.CacheTTL, "CACHE_TTL")
	setDuration(&c.CommitTimeout, "EDITOR_COMMIT_TIMEOUT")
	setFloat(&c.RateLimit, "RATE_LIMIT_RPS")
	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if n, err := strconv.Atoi(burst); err == nil {
			c.RateBurst = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
