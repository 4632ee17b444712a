package simulation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/shape"
	"github.com/santhosh-tekuri/jsonschema/v5"
	golog "github.com/tochemey/goakt/v3/log"
)

//go:embed config_schema.json
var configSchema string

const schemaURL = "config_schema.json"

// SwarmConfig is one swarm as configured: its live parameters plus the body it is drawn with.
type SwarmConfig struct {
	flock.SwarmParams
	Shape shape.Fish `json:"shape"`
}

type Config struct {
	// World Dimensions
	WorldWidth  float64 `json:"worldWidth"`
	WorldHeight float64 `json:"worldHeight"`

	// Seed feeds the single random source; 0 picks one at startup.
	Seed     uint64 `json:"seed"`
	LogLevel string `json:"logLevel"` // debug, info, warn or error

	Swarms    []SwarmConfig        `json:"swarms"`
	Predators flock.PredatorParams `json:"predators"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:  1280,
		WorldHeight: 800,
		LogLevel:    "info",
		Swarms: []SwarmConfig{
			{
				SwarmParams: flock.SwarmParams{
					Name: "blue", Color: flock.Color{R: 50, G: 50, B: 255, A: 255}, Count: 80,
					SeparationFactor: 1.8, AlignmentFactor: 1.0, CohesionFactor: 1.0, AvoidanceFactor: 3.0,
					VisualRange: 70, SeparationDistance: 25, AvoidanceRange: 80,
					MaxSpeed: 4.0, MaxForce: 0.2,
				},
				Shape: shape.DefaultFish,
			},
			{
				SwarmParams: flock.SwarmParams{
					Name: "red", Color: flock.Color{R: 255, G: 50, B: 50, A: 255}, Count: 60,
					SeparationFactor: 1.5, AlignmentFactor: 1.2, CohesionFactor: 0.8, AvoidanceFactor: 2.5,
					VisualRange: 50, SeparationDistance: 30, AvoidanceRange: 90,
					MaxSpeed: 5.0, MaxForce: 0.25,
				},
				Shape: shape.DefaultFish,
			},
			{
				SwarmParams: flock.SwarmParams{
					Name: "purple", Color: flock.Color{R: 150, G: 50, B: 255, A: 255}, Count: 70,
					SeparationFactor: 1.6, AlignmentFactor: 0.8, CohesionFactor: 1.2, AvoidanceFactor: 3.5,
					VisualRange: 80, SeparationDistance: 28, AvoidanceRange: 70,
					MaxSpeed: 4.5, MaxForce: 0.22,
				},
				Shape: shape.Fish{TipFactor: 2.0, MidOffsetFactor: 0.0, WidthFactor: 0.5, TailOffsetFactor: 1.1, TailWidthFactor: 0.3},
			},
			{
				SwarmParams: flock.SwarmParams{
					Name: "green", Color: flock.Color{R: 50, G: 255, B: 50, A: 255}, Count: 50,
					SeparationFactor: 2.0, AlignmentFactor: 1.1, CohesionFactor: 0.9, AvoidanceFactor: 2.8,
					VisualRange: 60, SeparationDistance: 22, AvoidanceRange: 100,
					MaxSpeed: 3.8, MaxForce: 0.18,
				},
				Shape: shape.Fish{TipFactor: 1.4, MidOffsetFactor: 0.2, WidthFactor: 0.7, TailOffsetFactor: 0.8, TailWidthFactor: 0.15},
			},
		},
		Predators: flock.PredatorParams{
			Enabled:          true,
			Count:            1,
			MaxSpeed:         3.8,
			MaxForce:         0.35,
			PerceptionRadius: 170,
			StrikeRadius:     13,
		},
	}
}

// fileConfig lets each configured swarm start from the default at the same index,
// so a file may override only the fields it cares about.
type fileConfig struct {
	*Config
	Swarms []json.RawMessage `json:"swarms"`
}

// LoadConfig loads configuration from a JSON or TOML file and validates it against the
// embedded schema. Fields absent from the file keep their default value.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(configFile), ".toml") {
		if b, err = tomlToJSON(b); err != nil {
			return nil, err
		}
	}
	return ParseConfig(b)
}

// ParseConfig validates a JSON document and merges it over DefaultConfig.
func ParseConfig(b []byte) (*Config, error) {
	sch, err := jsonschema.CompileString(schemaURL, configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := DefaultConfig()
	defaults := cfg.Swarms
	raw := fileConfig{Config: cfg}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if raw.Swarms != nil {
		cfg.Swarms = make([]SwarmConfig, len(raw.Swarms))
		for i, r := range raw.Swarms {
			sc := defaults[i%len(defaults)]
			if err := json.Unmarshal(r, &sc); err != nil {
				return nil, fmt.Errorf("failed to unmarshal swarm %d: %w", i, err)
			}
			cfg.Swarms[i] = sc
		}
	}
	return cfg, nil
}

// tomlToJSON re-encodes a TOML document so the JSON schema can check it.
func tomlToJSON(b []byte) ([]byte, error) {
	var doc map[string]any
	if _, err := toml.Decode(string(b), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode config toml: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert config toml: %w", err)
	}
	return out, nil
}

// Bounds is the world rectangle.
func (c *Config) Bounds() flock.Bounds {
	return flock.Bounds{Width: c.WorldWidth, Height: c.WorldHeight}
}

// Snapshot extracts the live simulation parameters.
func (c *Config) Snapshot() flock.Snapshot {
	snap := flock.Snapshot{
		Swarms:    make([]flock.SwarmParams, len(c.Swarms)),
		Predators: c.Predators,
	}
	for i, s := range c.Swarms {
		snap.Swarms[i] = s.SwarmParams
	}
	return snap
}

// Shapes returns the body of every swarm, falling back to the default fish.
func (c *Config) Shapes() []shape.Fish {
	out := make([]shape.Fish, len(c.Swarms))
	for i, s := range c.Swarms {
		out[i] = s.Shape
		if out[i].IsZero() {
			out[i] = shape.DefaultFish
		}
	}
	return out
}

// Logger builds the goakt logger for the configured level.
func (c *Config) Logger(w io.Writer) golog.Logger {
	return golog.New(ParseLevel(c.LogLevel), w)
}

// ParseLevel maps a config level name to a goakt level; unknown names mean info.
func ParseLevel(name string) golog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return golog.DebugLevel
	case "warn", "warning":
		return golog.WarningLevel
	case "error":
		return golog.ErrorLevel
	default:
		return golog.InfoLevel
	}
}
