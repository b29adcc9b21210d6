// Package schema_registry frames Kafka record messages with a Confluent Schema
// Registry header.
//
// The Client registers and fetches schemas over the registry's REST API and
// caches both directions. RecordSerializer plugs into the Kafka sink: it
// registers the JSON Schema of record.RequestRecord under the configured
// subject and prefixes each JSON value with the 5-byte wire header
// (magic byte 0, big-endian schema ID). DecodeRecord reverses the framing for
// consumers and tests.
package schema_registry
