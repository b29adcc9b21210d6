package record

// Sink receives finished records. Log must return promptly and must not panic;
// implementations that do network or disk I/O buffer internally.
type Sink interface {
	Log(r RequestRecord)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(r RequestRecord)

// Log calls f(r).
func (f SinkFunc) Log(r RequestRecord) {
	f(r)
}

// Discard drops every record.
var Discard Sink = SinkFunc(func(RequestRecord) {})
