package kafka

import (
	"context"

	"github.com/aalemi-dev/sockettrace/observability"
	"github.com/aalemi-dev/sockettrace/record"
	"go.uber.org/fx"
)

// FXModule provides the Kafka record sink as both *Sink and Publisher, and
// closes it when the application stops.
//
//	app := fx.New(
//	    kafka.FXModule,
//	    fx.Provide(func() kafka.Config { return cfg }),
//	)
var FXModule = fx.Module("kafka",
	fx.Provide(
		NewSinkWithDI,
		fx.Annotate(
			func(s *Sink) Publisher { return s },
			fx.As(new(Publisher)),
		),
	),
	fx.Invoke(RegisterKafkaLifecycle),
)

// Publisher is the contract the rest of the agent uses to reach Kafka.
type Publisher interface {
	Log(r record.RequestRecord)
	GracefulShutdown()
}

// KafkaParams groups the dependencies needed to create a Kafka sink.
type KafkaParams struct {
	fx.In

	Config     Config
	Logger     Logger                 `optional:"true"`
	Serializer Serializer             `optional:"true"`
	Observer   observability.Observer `optional:"true"`
}

// NewSinkWithDI creates a Sink from injected dependencies.
func NewSinkWithDI(params KafkaParams) (*Sink, error) {
	s, err := NewSink(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Logger != nil {
		s.logger = params.Logger
	}
	if params.Serializer != nil {
		s.serializer = params.Serializer
	}
	if params.Observer != nil {
		s.observer = params.Observer
	}
	return s, nil
}

// KafkaLifecycleParams groups the dependencies needed for lifecycle management.
type KafkaLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Sink      *Sink
}

// RegisterKafkaLifecycle closes the sink's writer on application stop.
func RegisterKafkaLifecycle(params KafkaLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params.Sink.logInfo(ctx, "Kafka record sink started", map[string]interface{}{
				"topic":   params.Sink.cfg.Topic,
				"brokers": params.Sink.cfg.Brokers,
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Sink.logInfo(ctx, "Shutting down Kafka record sink", nil)
			params.Sink.GracefulShutdown()
			return nil
		},
	})
}

// GracefulShutdown flushes pending batches and closes the writer. Later
// publishes fail with ErrSinkClosed.
func (s *Sink) GracefulShutdown() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.writer == nil {
			return
		}
		if err := s.writer.Close(); err != nil {
			s.logWarn(context.Background(), "Failed to close Kafka writer", err, map[string]interface{}{
				"topic": s.cfg.Topic,
			})
		}
		s.writer = nil
	})
}
