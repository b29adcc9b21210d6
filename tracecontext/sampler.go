package tracecontext

import (
	"context"
	"fmt"
	"math"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DefaultSampleRate is the fraction of inbound frontend requests that are traced
// when no rate is configured.
const DefaultSampleRate = 0.05

// Sampler makes the per-request tracing decision at a traffic entry point.
//
// The decision is delegated to the OpenTelemetry trace-ID ratio sampler, so it is
// a deterministic function of the freshly generated trace ID: a rate of 0 never
// samples and a rate of 1 always samples.
type Sampler struct {
	rate    float64
	sampler sdktrace.Sampler
}

// NewSampler creates a Sampler accepting the given fraction of requests.
func NewSampler(rate float64) (*Sampler, error) {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidSampleRate, rate)
	}
	return &Sampler{
		rate:    rate,
		sampler: sdktrace.TraceIDRatioBased(rate),
	}, nil
}

// Rate returns the configured sampling fraction.
func (s *Sampler) Rate() float64 {
	return s.rate
}

// Decide returns a new root context when the request is sampled and the Zero
// sentinel otherwise.
func (s *Sampler) Decide() Context {
	root := NewRoot()
	result := s.sampler.ShouldSample(sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       root.TraceID,
	})
	if result.Decision == sdktrace.RecordAndSample {
		return root
	}
	return Zero()
}
