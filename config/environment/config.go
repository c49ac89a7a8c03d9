package environment

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v3"
)

// Config holds every tunable of a scraping run and of the API server.
type Config struct {
	Fetch struct {
		Timeout          time.Duration `yaml:"timeout"`
		MaxAttempts      int           `yaml:"maxAttempts"`
		RetryWait        time.Duration `yaml:"retryWait"`
		RetryMaxWait     time.Duration `yaml:"retryMaxWait"`
		RequestsPerSec   float64       `yaml:"requestsPerSecond"`
		Burst            int           `yaml:"burst"`
		UserAgent        string        `yaml:"userAgent"`
		CloudflareBypass bool          `yaml:"cloudflareBypass"`
	} `yaml:"fetch"`

	Render struct {
		ReadyTimeout time.Duration `yaml:"readyTimeout"`
		PollInterval time.Duration `yaml:"pollInterval"`
		NavTimeout   time.Duration `yaml:"navTimeout"`
		Headless     bool          `yaml:"headless"`
		ChromePath   string        `yaml:"chromePath"`
	} `yaml:"render"`

	Batch struct {
		Query     string   `yaml:"query"`
		Locations []string `yaml:"locations"`
		Workers   int      `yaml:"workers"`
	} `yaml:"batch"`

	Menu struct {
		PlatformASignature string  `yaml:"platformASignature"`
		PlatformBSignature string  `yaml:"platformBSignature"`
		DedupMode          string  `yaml:"dedupMode"`
		PhotoPolicy        string  `yaml:"photoPolicy"`
		PhotoThreshold     float64 `yaml:"photoThreshold"`
	} `yaml:"menu"`

	Nutrition struct {
		Backends  []string `yaml:"backends"`
		SearchURL string   `yaml:"searchURL"`
		Model     string   `yaml:"model"`
	} `yaml:"nutrition"`

	Sink struct {
		Kind string `yaml:"kind"`
		DSN  string `yaml:"dsn"`
	} `yaml:"sink"`

	Server struct {
		Port      string `yaml:"port"`
		JWTSecret string `yaml:"jwtSecret"`
	} `yaml:"server"`

	PlacesAPIKey string `yaml:"placesAPIKey"`
	OpenAIKey    string `yaml:"openAIKey"`
	LogFile      string `yaml:"logFile"`
	Verbose      bool   `yaml:"verbose"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	var c Config
	c.Fetch.Timeout = 30 * time.Second
	c.Fetch.MaxAttempts = 3
	c.Fetch.RetryWait = 500 * time.Millisecond
	c.Fetch.RetryMaxWait = 5 * time.Second
	c.Fetch.RequestsPerSec = 4
	c.Fetch.Burst = 4
	c.Fetch.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36"
	c.Fetch.CloudflareBypass = true

	c.Render.ReadyTimeout = 10 * time.Second
	c.Render.PollInterval = 250 * time.Millisecond
	c.Render.NavTimeout = 60 * time.Second
	c.Render.Headless = true

	c.Batch.Query = "restaurants"
	c.Batch.Locations = []string{"Boston, MA", "Kansas City, MO", "Springfield, MO"}
	c.Batch.Workers = 1

	c.Menu.PlatformASignature = "urbanspoon"
	c.Menu.PlatformBSignature = "singleplatform"
	c.Menu.DedupMode = "filter"
	c.Menu.PhotoPolicy = "best"
	c.Menu.PhotoThreshold = 0.6

	c.Nutrition.Backends = []string{"openfoodfacts"}
	c.Nutrition.SearchURL = "https://world.openfoodfacts.org/cgi/search.pl"
	c.Nutrition.Model = "gpt-4o-mini"

	c.Sink.Kind = "json"

	c.Server.Port = "8080"
	return c
}

// Load builds a Config from defaults, then the YAML file at path (if any),
// then environment variables. A .env file in the working directory is read
// first when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(c *Config) {
	if v := GetPlacesAPIKey(); v != "" {
		c.PlacesAPIKey = v
	}
	if v := GetOpenAIKey(); v != "" {
		c.OpenAIKey = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("API_JWT_SECRET"); v != "" {
		c.Server.JWTSecret = v
	}
	if v := os.Getenv("SINK_KIND"); v != "" {
		c.Sink.Kind = v
	}
	if v := os.Getenv("SINK_DSN"); v != "" {
		c.Sink.DSN = v
	}
	if v := os.Getenv("NUTRITION_BACKEND"); v != "" {
		c.Nutrition.Backends = splitList(v)
	}
	if v := os.Getenv("SCRAPE_LOCATIONS"); v != "" {
		c.Batch.Locations = splitListSep(v, ";")
	}
	if v := os.Getenv("SCRAPE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Batch.Workers = n
		}
	}
	if v := os.Getenv("CHROME_PATH"); v != "" {
		c.Render.ChromePath = v
	}
}

func splitList(s string) []string {
	return splitListSep(s, ",")
}

func splitListSep(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func GetOpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func GetFirebaseKey() string {
	return os.Getenv("FIREBASE_CREDENTIALS_BASE64")
}

func GetFirebaseProjectID() string {
	return os.Getenv("FIREBASE_PROJECT_ID")
}

func GetPlacesAPIKey() string {
	return os.Getenv("PLACES_API_KEY")
}
