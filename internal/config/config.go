package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	OpenAI   OpenAIConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port      int
	MCPPort   int
	AuthToken string
}

type OpenAIConfig struct {
	APIKey          string
	ExtractionModel string
	LookupModel     string
}

type StorageConfig struct {
	DataDir string
	DumpDir string
}

type PipelineConfig struct {
	Sources         []string
	ScoreThreshold  int
	MinLength       int
	RecentDays      int
	MaxCommentDepth int
	BatchSize       int
	Concurrency     int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:    8000,
			MCPPort: 8001,
		},
		OpenAI: OpenAIConfig{},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
			DumpDir: "data",
		},
		Pipeline: PipelineConfig{
			Sources:         []string{"reddit", "youtube"},
			ScoreThreshold:  10,
			MinLength:       50,
			RecentDays:      0,
			MaxCommentDepth: 3,
			BatchSize:       20,
			Concurrency:     4,
		},
		Log: LogConfig{Level: "info"},
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "reviewlens-data"
		}
	}
	return filepath.Join(dir, "reviewlens")
}

// Load reads configuration from defaults and environment variables.
// REVIEWLENS_* variables override defaults; OPENAI_API_KEY is required
// because both the extraction and attribute-lookup capabilities need
// it.
func Load() (Config, error) {
	return loadWith(os.LookupEnv)
}

func loadWith(lookup func(string) (string, bool)) (Config, error) {
	cfg := defaults()

	envString(lookup, "OPENAI_API_KEY", &cfg.OpenAI.APIKey)
	envString(lookup, "REVIEWLENS_OPENAI_EXTRACTION_MODEL", &cfg.OpenAI.ExtractionModel)
	envString(lookup, "REVIEWLENS_OPENAI_LOOKUP_MODEL", &cfg.OpenAI.LookupModel)

	envInt(lookup, "REVIEWLENS_SERVER_PORT", &cfg.Server.Port)
	envInt(lookup, "REVIEWLENS_SERVER_MCP_PORT", &cfg.Server.MCPPort)
	envString(lookup, "REVIEWLENS_AUTH_TOKEN", &cfg.Server.AuthToken)

	envString(lookup, "REVIEWLENS_DATA_DIR", &cfg.Storage.DataDir)
	envString(lookup, "REVIEWLENS_DUMP_DIR", &cfg.Storage.DumpDir)

	envList(lookup, "REVIEWLENS_SOURCES", &cfg.Pipeline.Sources)
	envInt(lookup, "REVIEWLENS_SCORE_THRESHOLD", &cfg.Pipeline.ScoreThreshold)
	envInt(lookup, "REVIEWLENS_MIN_LENGTH", &cfg.Pipeline.MinLength)
	envInt(lookup, "REVIEWLENS_RECENT_DAYS", &cfg.Pipeline.RecentDays)
	envInt(lookup, "REVIEWLENS_MAX_COMMENT_DEPTH", &cfg.Pipeline.MaxCommentDepth)
	envInt(lookup, "REVIEWLENS_BATCH_SIZE", &cfg.Pipeline.BatchSize)
	envInt(lookup, "REVIEWLENS_CONCURRENCY", &cfg.Pipeline.Concurrency)

	envString(lookup, "REVIEWLENS_LOG_LEVEL", &cfg.Log.Level)

	if cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: OpenAI API key. Set it via environment variable OPENAI_API_KEY")
	}

	return cfg, nil
}

func envString(lookup func(string) (string, bool), key string, dst *string) {
	if v, ok := lookup(key); ok && v != "" {
		*dst = v
	}
}

func envInt(lookup func(string) (string, bool), key string, dst *int) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*dst = n
}

func envList(lookup func(string) (string, bool), key string, dst *[]string) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return
	}
	parts := strings.Split(v, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	if len(values) > 0 {
		*dst = values
	}
}
