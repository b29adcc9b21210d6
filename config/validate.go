package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aalemi-dev/sockettrace/endpoint"
	"github.com/aalemi-dev/sockettrace/recordstore"
	"github.com/aalemi-dev/sockettrace/socket"
	"github.com/aalemi-dev/sockettrace/tracecontext"
	"github.com/aalemi-dev/sockettrace/tracer"
)

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownSink is returned for a name in Sinks that is not a known sink.
	ErrUnknownSink = errors.New("unknown record sink")
)

// Validate reports the first problem found in c.
func (c *Config) Validate() error {
	if _, err := socket.ParseServerKind(c.ServerKind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("%w: %w: %v", ErrInvalidConfig, tracecontext.ErrInvalidSampleRate, c.SampleRate)
	}
	if c.SendAttempts < 0 || c.RecvAttempts < 0 || c.SinkBuffer < 0 {
		return fmt.Errorf("%w: attempts and buffer sizes must not be negative", ErrInvalidConfig)
	}
	if c.WatchServices && c.ServicesFile == "" {
		return fmt.Errorf("%w: watch_services requires services_file", ErrInvalidConfig)
	}
	if c.Services != "" {
		if _, err := endpoint.ParseServices(c.Services); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	for _, name := range c.Sinks {
		switch name {
		case SinkLog:
		case SinkKafka:
			if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
				return fmt.Errorf("%w: kafka sink needs brokers and a topic", ErrInvalidConfig)
			}
		case SinkOTLP:
			if c.OTLP.Protocol != "" && c.OTLP.Protocol != tracer.ProtocolHTTP && c.OTLP.Protocol != tracer.ProtocolGRPC {
				return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, tracer.ErrUnknownProtocol, c.OTLP.Protocol)
			}
		case SinkStore:
			if c.Store.Driver != "" && c.Store.Driver != recordstore.DriverPostgres && c.Store.Driver != recordstore.DriverMySQL {
				return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, recordstore.ErrUnknownDriver, c.Store.Driver)
			}
			if c.Store.Connection.Host == "" {
				return fmt.Errorf("%w: store sink needs a database host", ErrInvalidConfig)
			}
		case SinkArchive:
			if c.Archive.Connection.Endpoint == "" {
				return fmt.Errorf("%w: archive sink needs an object store endpoint", ErrInvalidConfig)
			}
		default:
			return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnknownSink, name)
		}
	}
	return nil
}

// Kind returns the parsed ServerKind. Call it on a validated config.
func (c *Config) Kind() socket.ServerKind {
	kind, _ := socket.ParseServerKind(c.ServerKind)
	return kind
}

// HasSink reports whether name is listed in Sinks.
func (c *Config) HasSink(name string) bool {
	return slices.Contains(c.Sinks, name)
}

// ServicesTable loads ServicesFile, if any, and merges the inline Services
// over it.
func (c *Config) ServicesTable() (*endpoint.Services, error) {
	table := endpoint.NewServices(nil)
	if c.ServicesFile != "" {
		loaded, err := endpoint.LoadServicesFile(c.ServicesFile)
		if err != nil {
			return nil, err
		}
		table = loaded
	}
	if c.Services != "" {
		inline, err := endpoint.ParseServices(c.Services)
		if err != nil {
			return nil, err
		}
		table = table.Merge(inline)
	}
	return table, nil
}

// InlineServices parses Services. An empty value gives an empty table.
func (c *Config) InlineServices() (*endpoint.Services, error) {
	if c.Services == "" {
		return endpoint.NewServices(nil), nil
	}
	return endpoint.ParseServices(c.Services)
}
