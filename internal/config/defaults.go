// Package config handles the taskrank workspace configuration.
package config

const (
	// DefaultDir is the default workspace directory name.
	DefaultDir = "taskrank"
	// DefaultTasksDir is the default tasks subdirectory name.
	DefaultTasksDir = "tasks"
	// DefaultStrategy is the strategy used when none is requested.
	DefaultStrategy = "smart_balance"
	// DefaultSuggestCount is how many tasks suggest returns.
	DefaultSuggestCount = 3

	// DefaultServerAddr is the listen address of the HTTP API.
	DefaultServerAddr = "127.0.0.1:8000"
	// DefaultReadTimeout bounds reading one request.
	DefaultReadTimeout = "10s"
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = "5s"
	// DefaultMaxBodyBytes caps an analyze request body.
	DefaultMaxBodyBytes = 1 << 20

	// DefaultLogLevel and DefaultLogFormat configure slog.
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	// DefaultHistoryEntries bounds history.jsonl.
	DefaultHistoryEntries = 1000

	// ConfigFileName is the name of the config file within the workspace.
	ConfigFileName = "config.yml"
	// LastAnalysisFileName holds the most recently analyzed batch.
	LastAnalysisFileName = "last_analysis.json"
	// HistoryFileName is the analysis history log.
	HistoryFileName = "history.jsonl"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 3
)

// Valid values for enumerated settings.
var (
	Strategies = []string{"fastest_wins", "high_impact", "deadline_driven", "smart_balance"}
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"text", "json"}
)
