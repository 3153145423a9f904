package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	BaseURL         string        `mapstructure:"ALEY_BASE_URL"`
	HTTPTimeout     time.Duration `mapstructure:"ALEY_HTTP_TIMEOUT"`
	ProbeTimeout    time.Duration `mapstructure:"ALEY_PROBE_TIMEOUT"`
	PageLimit       int           `mapstructure:"ALEY_PAGE_LIMIT"`
	SessionDB       string        `mapstructure:"ALEY_SESSION_DB"`
	KnownFriends    string        `mapstructure:"ALEY_KNOWN_FRIENDS"`
	PendingSent     string        `mapstructure:"ALEY_PENDING_SENT"`
	PendingReceived string        `mapstructure:"ALEY_PENDING_RECEIVED"`
	MockAddr        string        `mapstructure:"ALEY_MOCK_ADDR"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("ALEY_BASE_URL", "https://website-social-media-aley-back-end.onrender.com/api")
	viper.SetDefault("ALEY_HTTP_TIMEOUT", 30*time.Second)
	viper.SetDefault("ALEY_PROBE_TIMEOUT", 5*time.Second)
	viper.SetDefault("ALEY_PAGE_LIMIT", 100)
	viper.SetDefault("ALEY_SESSION_DB", defaultSessionDB())
	viper.SetDefault("ALEY_KNOWN_FRIENDS", "")
	viper.SetDefault("ALEY_PENDING_SENT", "")
	viper.SetDefault("ALEY_PENDING_RECEIVED", "")
	viper.SetDefault("ALEY_MOCK_ADDR", ":5000")

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}

// KnownFriendIDs returns the comma-separated static friends allow-list.
func (c Config) KnownFriendIDs() []string {
	return splitIDs(c.KnownFriends)
}

func (c Config) PendingSentIDs() []string {
	return splitIDs(c.PendingSent)
}

func (c Config) PendingReceivedIDs() []string {
	return splitIDs(c.PendingReceived)
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

func defaultSessionDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "aley-session.db"
	}
	return filepath.Join(dir, "aley", "session.db")
}
