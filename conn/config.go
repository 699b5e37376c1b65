package conn

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultURL is the MongoDB URL used when none is configured.
const DefaultURL = "mongodb://localhost:27017/mydb"

// Config is the connection configuration.
type Config struct {
	// URL is the MongoDB connection string.
	URL string
	// Database is the name of the database, empty means the one in URL.
	Database string
	// Timeout bounds dialing and pinging.
	Timeout time.Duration
}

// LoadConfig loads the configuration from the optional file (any format
// viper reads) and from environment variables with the given prefix,
// e.g. CREATED_URL, CREATED_DATABASE and CREATED_TIMEOUT for prefix "CREATED".
// Environment variables take precedence over the file.
func LoadConfig(prefix, file string) (Config, error) {
	v := viper.New()
	v.SetDefault("url", DefaultURL)
	v.SetDefault("database", "")
	v.SetDefault("timeout", 10*time.Second)

	v.SetEnvPrefix(strings.TrimSuffix(prefix, "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	cfg := Config{
		URL:      v.GetString("url"),
		Database: v.GetString("database"),
		Timeout:  v.GetDuration("timeout"),
	}
	if cfg.URL == "" {
		return Config{}, errors.New("empty url")
	}
	if cfg.Timeout <= 0 {
		return Config{}, fmt.Errorf("invalid timeout %v", cfg.Timeout)
	}
	return cfg, nil
}
