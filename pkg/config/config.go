package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lintang-b-s/rodroute/pkg/engine/rod"
	"github.com/lintang-b-s/rodroute/pkg/storage"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Routing RoutingConfig `yaml:"routing"`
	Rating  RatingConfig  `yaml:"rating"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	ListenAddr     string        `yaml:"listen_addr" validate:"required"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
}

type DataConfig struct {
	GraphFile string `yaml:"graph_file" validate:"required"`
	BadgerDir string `yaml:"badger_dir"`
	// PebbleDir empty keeps ratings in memory.
	PebbleDir string `yaml:"pebble_dir"`
	Snapper   string `yaml:"snapper" validate:"oneof=rtree h3"`
}

type RandomConfig struct {
	Min      float64 `yaml:"min" validate:"gt=0,ltefield=Max"`
	Max      float64 `yaml:"max" validate:"gt=0"`
	Increase float64 `yaml:"increase" validate:"gte=0"`
	MinLin   float64 `yaml:"min_lin" validate:"gt=0,ltefield=MaxLin"`
	MaxLin   float64 `yaml:"max_lin" validate:"gt=0"`
}

type RoutingConfig struct {
	MaxTries        int          `yaml:"max_tries" validate:"gte=1"`
	LimitFactor     float64      `yaml:"limit_factor" validate:"gt=0"`
	MaxArena        int          `yaml:"max_arena" validate:"gte=1"`
	MinLengthFactor float64      `yaml:"min_length_factor" validate:"gt=0,lte=1"`
	DiluteFavourite float64      `yaml:"dilute_favourite" validate:"gt=0"`
	Falloff         float64      `yaml:"falloff" validate:"gt=0"`
	PotentialMin    float64      `yaml:"potential_min" validate:"gt=0,ltefield=PotentialMax"`
	PotentialMax    float64      `yaml:"potential_max" validate:"gt=0"`
	EventImportance float64      `yaml:"event_importance" validate:"gte=0"`
	Random          RandomConfig `yaml:"random"`
}

type RatingConfig struct {
	Influence float64 `yaml:"influence" validate:"gt=0,lte=1"`
	QueueSize int     `yaml:"queue_size" validate:"gte=1"`
}

type LogConfig struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

func Default() Config {
	hp := rod.DefaultHyperparameters()
	return Config{
		Server: ServerConfig{
			ListenAddr:     ":5000",
			AllowedOrigins: []string{"https://*", "http://*"},
			RequestTimeout: 30 * time.Second,
		},
		Data: DataConfig{
			GraphFile: filepath.Join(storage.DATA_DIR, storage.GRAPH_FILE_NAME),
			BadgerDir: filepath.Join(storage.DATA_DIR, "h3"),
			PebbleDir: filepath.Join(storage.DATA_DIR, "ratings"),
			Snapper:   "rtree",
		},
		Routing: RoutingConfig{
			MaxTries:        hp.MaxTries,
			LimitFactor:     0.1,
			MaxArena:        hp.MaxArena,
			MinLengthFactor: hp.MinLengthFactor,
			DiluteFavourite: hp.DiluteFavourite,
			Falloff:         hp.Falloff,
			PotentialMin:    hp.PotentialMin,
			PotentialMax:    hp.PotentialMax,
			EventImportance: hp.EventImportance,
			Random: RandomConfig{
				Min:      hp.RandomMin,
				Max:      hp.RandomMax,
				Increase: hp.RandomIncrease,
				MinLin:   hp.RandomMinLin,
				MaxLin:   hp.RandomMaxLin,
			},
		},
		Rating: RatingConfig{
			Influence: 0.5,
			QueueSize: 128,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path on top of Default. A missing file is created with the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := Write(path, cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Hyperparameters converts the routing section for the rod router.
func (c RoutingConfig) Hyperparameters() rod.Hyperparameters {
	return rod.Hyperparameters{
		MaxTries:        c.MaxTries,
		MaxArena:        c.MaxArena,
		MinLengthFactor: c.MinLengthFactor,
		DiluteFavourite: c.DiluteFavourite,
		Falloff:         c.Falloff,
		PotentialMin:    c.PotentialMin,
		PotentialMax:    c.PotentialMax,
		EventImportance: c.EventImportance,
		RandomMin:       c.Random.Min,
		RandomMax:       c.Random.Max,
		RandomIncrease:  c.Random.Increase,
		RandomMinLin:    c.Random.MinLin,
		RandomMaxLin:    c.Random.MaxLin,
	}
}
