package triemap

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/gholt/triemap/engine"
)

// DefaultMaxKeyLen is the longest ValueMap key accepted unless configured
// otherwise.
const DefaultMaxKeyLen = 255

type config struct {
	maxKeyLen     int
	maxCells      int
	auxChunkWords int
	heapCells     bool
	owner         ValueReleaser
	logger        *slog.Logger
	openEngine    func(maxKeyLen int, depth int) (engine.Engine, error)
}

func resolveConfig(opts ...func(*config)) *config {
	cfg := &config{}
	if env := os.Getenv("TRIEMAP_MAXKEYLEN"); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			cfg.maxKeyLen = val
		}
	}
	if cfg.maxKeyLen <= 0 {
		cfg.maxKeyLen = DefaultMaxKeyLen
	}
	if env := os.Getenv("TRIEMAP_MAXCELLS"); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			cfg.maxCells = val
		}
	}
	if env := os.Getenv("TRIEMAP_AUXCHUNKWORDS"); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			cfg.auxChunkWords = val
		}
	}
	if cfg.auxChunkWords <= 0 {
		cfg.auxChunkWords = engine.DefaultAuxChunkWords
	}
	if env := os.Getenv("TRIEMAP_HEAPCELLS"); env != "" {
		if val, err := strconv.ParseBool(env); err == nil {
			cfg.heapCells = val
		}
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.maxKeyLen < 1 {
		cfg.maxKeyLen = 1
	}
	if cfg.maxCells < 0 {
		cfg.maxCells = 0
	}
	if cfg.auxChunkWords < 1 {
		cfg.auxChunkWords = 1
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.openEngine == nil {
		maxCells := cfg.maxCells
		auxChunkWords := cfg.auxChunkWords
		cfg.openEngine = func(maxKeyLen int, depth int) (engine.Engine, error) {
			return engine.Open(maxKeyLen, depth, engine.WithMaxCells(maxCells), engine.WithAuxChunkWords(auxChunkWords))
		}
	}
	return cfg
}
