package logger

// Log levels accepted by Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Encodings accepted by Config.Encoding.
const (
	EncodingJSON    = "json"
	EncodingConsole = "console"
)

// Config controls the zap logger built by NewLoggerClient.
type Config struct {
	// Level is the minimum level written: debug, info, warning or error.
	// Anything else is treated as info.
	Level string `yaml:"level"`

	// EnableTracing adds trace_id, span_id and parent_span_id to entries whose
	// context carries a traced request.
	EnableTracing bool `yaml:"enable_tracing" split_words:"true"`

	// ServiceName populates the "service" field of every entry.
	ServiceName string `yaml:"service_name" split_words:"true"`

	// OutputPaths are zap sink URLs. The tracer runs inside the traced process,
	// so pointing this at a file keeps its output off the application's stderr.
	// Defaults to stderr.
	OutputPaths []string `yaml:"output_paths" split_words:"true"`

	// Encoding is json (default) or console.
	Encoding string `yaml:"encoding"`

	// CallerSkip is the number of wrapper frames to skip when reporting the
	// caller. Defaults to 1.
	CallerSkip int `yaml:"caller_skip" split_words:"true"`
}
