package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/omen/internal/deck"
	"github.com/peterkuimelis/omen/internal/log"
)

// File represents the top-level YAML structure.
type File struct {
	Cards           int     `yaml:"cards,omitempty"`
	Ranks           []int   `yaml:"ranks,omitempty"`
	Seed            int64   `yaml:"seed,omitempty"`
	LevelUpDelay    string  `yaml:"level_up_delay,omitempty"`
	StaleCompletion string  `yaml:"stale_completion,omitempty"`
	Layout          string  `yaml:"layout,omitempty"`
	ViewportWidth   float64 `yaml:"viewport_width,omitempty"`
}

// Config is the resolved session configuration.
type Config struct {
	Cards         int
	Ranks         []int // explicit starting ranks; overrides Cards when set
	Seed          int64
	LevelUpDelay  time.Duration
	Stale         deck.StalePolicy
	Layout        deck.CardLayout
	ViewportWidth float64
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cards:         deck.DefaultCardCount,
		LevelUpDelay:  deck.DefaultLevelUpDelay,
		Stale:         deck.StaleCancel,
		Layout:        deck.LayoutStudy,
		ViewportWidth: 320,
	}
}

// Load reads the YAML config at path on top of the defaults, then applies
// OMEN_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, err
		default:
			if cfg, err = Parse(data); err != nil {
				return Config{}, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML config data on top of the defaults.
func Parse(data []byte) (Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Config{}, fmt.Errorf("parse config YAML: %w", err)
	}

	cfg := Default()
	if f.Cards != 0 {
		cfg.Cards = f.Cards
	}
	cfg.Ranks = f.Ranks
	cfg.Seed = f.Seed
	if f.ViewportWidth != 0 {
		cfg.ViewportWidth = f.ViewportWidth
	}
	if err := cfg.set("level_up_delay", f.LevelUpDelay); err != nil {
		return Config{}, err
	}
	if err := cfg.set("stale_completion", f.StaleCompletion); err != nil {
		return Config{}, err
	}
	if err := cfg.set("layout", f.Layout); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from OMEN_CARDS, OMEN_SEED, OMEN_LEVEL_UP_DELAY,
// OMEN_STALE_COMPLETION, OMEN_LAYOUT and OMEN_VIEWPORT_WIDTH.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	for _, key := range []string{"cards", "seed", "level_up_delay", "stale_completion", "layout", "viewport_width"} {
		v := getenv("OMEN_" + strings.ToUpper(key))
		if v == "" {
			continue
		}
		if err := c.set(key, v); err != nil {
			return fmt.Errorf("OMEN_%s: %w", strings.ToUpper(key), err)
		}
	}
	return c.Validate()
}

func (c *Config) set(key, v string) error {
	if v == "" {
		return nil
	}
	switch key {
	case "cards":
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid card count %q: %w", v, err)
		}
		c.Cards = n
	case "seed":
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q: %w", v, err)
		}
		c.Seed = n
	case "level_up_delay":
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid level_up_delay %q: %w", v, err)
		}
		c.LevelUpDelay = d
	case "stale_completion":
		p, err := deck.ParseStalePolicy(v)
		if err != nil {
			return err
		}
		c.Stale = p
	case "layout":
		l, err := deck.ParseLayout(v)
		if err != nil {
			return err
		}
		c.Layout = l
	case "viewport_width":
		w, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid viewport_width %q: %w", v, err)
		}
		c.ViewportWidth = w
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Cards < 1 && len(c.Ranks) == 0 {
		return fmt.Errorf("cards must be >= 1, got %d", c.Cards)
	}
	for i, r := range c.Ranks {
		if r < deck.MinRank || r > deck.MaxRank {
			return fmt.Errorf("ranks[%d] = %d out of range %d-%d", i, r, deck.MinRank, deck.MaxRank)
		}
	}
	if c.LevelUpDelay <= 0 {
		return fmt.Errorf("level_up_delay must be positive, got %s", c.LevelUpDelay)
	}
	if c.ViewportWidth < deck.CardSize {
		return fmt.Errorf("viewport_width must be >= %v, got %v", deck.CardSize, c.ViewportWidth)
	}
	return nil
}

// SessionConfig builds the deck.SessionConfig for this configuration.
func (c Config) SessionConfig(logger log.EventLogger, sched deck.Scheduler) deck.SessionConfig {
	sc := deck.SessionConfig{
		CardCount:    c.Cards,
		Seed:         c.Seed,
		LevelUpDelay: c.LevelUpDelay,
		Stale:        c.Stale,
		Layout:       c.Layout,
		Scheduler:    sched,
		Logger:       logger,
	}
	if len(c.Ranks) > 0 {
		sc.Cards = make([]deck.Card, len(c.Ranks))
		for i, r := range c.Ranks {
			sc.Cards[i] = deck.Card{ID: uuid.New(), Rank: r}
		}
	}
	return sc
}
