package sink

import "github.com/aalemi-dev/sockettrace/record"

// Multi forwards every record to each sink in order. Nil entries are skipped.
type Multi []record.Sink

// Log implements record.Sink.
func (m Multi) Log(r record.RequestRecord) {
	for _, s := range m {
		if s != nil {
			s.Log(r)
		}
	}
}
