// Package config loads process-wide settings from the environment, all
// under the TABSHELL_ prefix, using the same envconfig-driven approach the
// teacher's control plane uses for its CLAWORC_ settings.
package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

type Settings struct {
	DataPath  string `envconfig:"DATA_PATH" default:"/app/data"`
	StorePath string `envconfig:"STORE_PATH" default:"/app/data/tabshell.db"`
	LogPath   string `envconfig:"LOG_PATH" default:"/app/data/tabshell.log"`

	// Default local shell to spawn when a profile doesn't specify one.
	DefaultShell string `envconfig:"DEFAULT_SHELL" default:"/bin/bash"`

	// SSH defaults
	SSHHandshakeTimeout string `envconfig:"SSH_HANDSHAKE_TIMEOUT" default:"30s"`
	SSHKeepaliveInterval string `envconfig:"SSH_KEEPALIVE_INTERVAL" default:"30s"`

	// Session behavior
	DefaultCommandTimeout string `envconfig:"DEFAULT_COMMAND_TIMEOUT" default:"30s"`
	RestoreOnStart        bool   `envconfig:"RESTORE_ON_START" default:"true"`
	RingCapacity          int    `envconfig:"RING_CAPACITY" default:"10000"`

	// History and embedding
	HistoryPath                string  `envconfig:"HISTORY_PATH" default:"/app/data/history.db"`
	EmbeddingMinSimilarity     float64 `envconfig:"EMBEDDING_MIN_SIMILARITY" default:"0.75"`
	EmbeddingCacheHitThreshold float64 `envconfig:"EMBEDDING_CACHE_HIT_THRESHOLD" default:"0.85"`
	EmbeddingVectorScanLimit   int     `envconfig:"EMBEDDING_VECTOR_SCAN_LIMIT" default:"1000"`

	// AI translator/embedder backend
	AIProvider  string `envconfig:"AI_PROVIDER" default:""`
	AIModel     string `envconfig:"AI_MODEL" default:""`
	AIBaseURL   string `envconfig:"AI_BASE_URL" default:""`
	AIAPIKeyEnc string `envconfig:"AI_API_KEY_ENC" default:""` // fernet ciphertext, set via settings not env in practice

	// Error-analysis retry loop
	MaxRetries int `envconfig:"MAX_RETRIES" default:"2"`

	// Optional HTTP/WS API surface for an external UI process
	APIAddr string `envconfig:"API_ADDR" default:"127.0.0.1:7890"`
}

var Cfg Settings

func Load() {
	if err := envconfig.Process("TABSHELL", &Cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
}
