package tracecontext

import "errors"

// ErrInvalidSampleRate is returned by NewSampler when the rate is outside [0, 1].
var ErrInvalidSampleRate = errors.New("sample rate must be within [0, 1]")
