package config

import (
	"log/slog"
	"strings"

	"github.com/OCharnyshevich/voxel-sandbox/internal/terrain"
)

// Config holds the sandbox configuration.
type Config struct {
	Listen    string `yaml:"listen" json:"listen"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
	FrameRate int    `yaml:"frame_rate" json:"frame_rate"`

	ChunkSize      int     `yaml:"chunk_size" json:"chunk_size"`
	ChunkHeight    int     `yaml:"chunk_height" json:"chunk_height"`
	NoiseScale     float64 `yaml:"noise_scale" json:"noise_scale"`
	DirtDepth      int     `yaml:"dirt_depth" json:"dirt_depth"`
	Octaves        int     `yaml:"octaves" json:"octaves"`
	Persistence    float64 `yaml:"persistence" json:"persistence"`
	RenderDistance int     `yaml:"render_distance" json:"render_distance"`
	Noise          string  `yaml:"noise" json:"noise"` // "simplex" or "opensimplex"
	Seed           int64   `yaml:"seed" json:"seed"`

	AsyncWorkers int `yaml:"async_workers" json:"async_workers"` // 0 = generate on the loop goroutine
	AsyncQueue   int `yaml:"async_queue" json:"async_queue"`
}

// Default returns a Config with the demo's constants.
func Default() *Config {
	p := terrain.DefaultParams()
	return &Config{
		Listen:         ":8080",
		LogLevel:       "info",
		FrameRate:      60,
		ChunkSize:      p.ChunkSize,
		ChunkHeight:    p.ChunkHeight,
		NoiseScale:     p.NoiseScale,
		DirtDepth:      p.DirtDepth,
		Octaves:        p.Octaves,
		Persistence:    p.Persistence,
		RenderDistance: 2,
		Noise:          terrain.NoiseSimplex,
		AsyncQueue:     256,
	}
}

// Terrain returns the terrain constants.
func (c *Config) Terrain() terrain.Params {
	return terrain.Params{
		ChunkSize:   c.ChunkSize,
		ChunkHeight: c.ChunkHeight,
		NoiseScale:  c.NoiseScale,
		DirtDepth:   c.DirtDepth,
		Octaves:     c.Octaves,
		Persistence: c.Persistence,
	}
}

// Level returns the slog level named by LogLevel, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["listen"] {
		cfg.Listen = fromFile.Listen
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
	if !explicitFlags["frame-rate"] {
		cfg.FrameRate = fromFile.FrameRate
	}
	if !explicitFlags["render-distance"] {
		cfg.RenderDistance = fromFile.RenderDistance
	}
	if !explicitFlags["noise"] {
		cfg.Noise = fromFile.Noise
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["async-workers"] {
		cfg.AsyncWorkers = fromFile.AsyncWorkers
	}
	// Terrain shape is file-only.
	cfg.ChunkSize = fromFile.ChunkSize
	cfg.ChunkHeight = fromFile.ChunkHeight
	cfg.NoiseScale = fromFile.NoiseScale
	cfg.DirtDepth = fromFile.DirtDepth
	cfg.Octaves = fromFile.Octaves
	cfg.Persistence = fromFile.Persistence
	cfg.AsyncQueue = fromFile.AsyncQueue
}
