package sink

import (
	"fmt"

	"github.com/aalemi-dev/sockettrace/record"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogOutput is where NewLogSink writes when no path is given.
const DefaultLogOutput = "stdout"

// LogSink writes one JSON line per record.
type LogSink struct {
	zap *zap.Logger
}

// NewLogSink creates a LogSink writing to outputPath, which may be "stdout",
// "stderr" or a file path.
func NewLogSink(outputPath string) (*LogSink, error) {
	if outputPath == "" {
		outputPath = DefaultLogOutput
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeDuration = zapcore.NanosDurationEncoder
	encoderCfg.LevelKey = zapcore.OmitKey
	encoderCfg.CallerKey = zapcore.OmitKey

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding:         "json",
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{outputPath},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to open record log %q: %w", outputPath, err)
	}
	return &LogSink{zap: logger}, nil
}

// NewLogSinkFromZap wraps an existing zap logger.
func NewLogSinkFromZap(logger *zap.Logger) *LogSink {
	return &LogSink{zap: logger}
}

// Log implements record.Sink.
func (s *LogSink) Log(r record.RequestRecord) {
	s.zap.Info("request",
		zap.String("role", r.Role),
		zap.String("service", r.Service),
		zap.String("trace_id", r.TraceID.String()),
		zap.String("span_id", r.SpanID.String()),
		zap.String("parent_span_id", r.ParentSpanID.String()),
		zap.String("local", r.Endpoint.Local()),
		zap.String("peer", r.Endpoint.Peer()),
		zap.String("client_host", r.Endpoint.ClientHost),
		zap.String("server_host", r.Endpoint.ServerHost),
		zap.Time("started_at", r.StartedAt),
		zap.Duration("duration", r.Duration),
		zap.Uint64("transaction_count", r.TransactionCount),
	)
}

// Sync flushes buffered output.
func (s *LogSink) Sync() error {
	return s.zap.Sync()
}
