// Package config loads the settings of a traced process.
//
// Values come from three layers, later ones winning: Default, an optional YAML
// file named by SOCKTRACE_CONFIG_FILE, and SOCKTRACE_* environment variables
// processed with envconfig. Nested sections use their section name as an extra
// prefix:
//
//	SOCKTRACE_SAMPLE_RATE=0.1
//	SOCKTRACE_SERVICES=10.0.3.17=orders,10.0.3.18=orders
//	SOCKTRACE_SINKS=log,kafka
//	SOCKTRACE_KAFKA_BROKERS=kafka-0:9092,kafka-1:9092
//	SOCKTRACE_LOG_OUTPUT_PATHS=/var/log/socktrace.log
//	SOCKTRACE_OTLP_HEADERS=authorization:Bearer abc
package config
