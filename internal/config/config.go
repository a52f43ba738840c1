package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type HistoryConfig struct {
	HighWater int `mapstructure:"high_water"`
	LowWater  int `mapstructure:"low_water"`
}

type CanvasConfig struct {
	// Scope is "global" or "room".
	Scope string `mapstructure:"scope"`
}

type RoomsConfig struct {
	CleanupOnDisconnect bool `mapstructure:"cleanup_on_disconnect"`
	OwnerOnlyInvites    bool `mapstructure:"owner_only_invites"`
}

type RateLimitConfig struct {
	CreateRoomLimit    int           `mapstructure:"create_room_limit"`
	CreateRoomInterval time.Duration `mapstructure:"create_room_interval"`
}

type Config struct {
	Mode           string          `mapstructure:"mode"`
	Port           int             `mapstructure:"port"`
	StaticPath     string          `mapstructure:"static_path"`
	ReadLimit      int64           `mapstructure:"read_limit"`
	PingPeriod     time.Duration   `mapstructure:"ping_period"`
	SendBuffer     int             `mapstructure:"send_buffer"`
	Secret         string          `mapstructure:"secret"`
	LogLevel       string          `mapstructure:"log_level"`
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
	History        HistoryConfig   `mapstructure:"history"`
	Canvas         CanvasConfig    `mapstructure:"canvas"`
	Rooms          RoomsConfig     `mapstructure:"rooms"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 3001)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 256)
	v.SetDefault("secret", "change-me")
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("history.high_water", 10000)
	v.SetDefault("history.low_water", 5000)
	v.SetDefault("canvas.scope", "global")
	v.SetDefault("rooms.cleanup_on_disconnect", true)
	v.SetDefault("rooms.owner_only_invites", false)
	v.SetDefault("rate_limit.create_room_limit", 5)
	v.SetDefault("rate_limit.create_room_interval", "10s")
}

// Load reads .env, then config/config.<CONFIG_ENV>.yaml, then CANVAS_* env
// overrides, in increasing priority.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("module", "config").Msg("failed to read .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("canvas")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	// FRONTEND_URL is the production origin.
	if u := os.Getenv("FRONTEND_URL"); u != "" {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, u)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Str("scope", cfg.Canvas.Scope).Strs("origins", cfg.AllowedOrigins).Msg("config ready")
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.AllowedOrigins = splitList(cfg.AllowedOrigins)
	switch cfg.Canvas.Scope {
	case "global", "room":
	default:
		return nil, fmt.Errorf("canvas.scope must be global or room, got %q", cfg.Canvas.Scope)
	}
	return &cfg, nil
}

// splitList flattens comma separated entries and drops blanks.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
