// Package endpoint resolves the addresses of a connected socket from its raw file
// descriptor and translates known cluster IPs to logical service names.
//
// Resolution goes straight to getsockname(2)/getpeername(2) through
// golang.org/x/sys/unix, because the descriptors belong to the host process and
// are never wrapped in a net.Conn.
//
// The Services side-table answers "is this peer another instrumented service?".
// It is filled once at start-up, from a YAML file and/or an inline list, and is
// read-only afterwards:
//
//	services:
//	  - name: orders
//	    ips: ["10.0.3.17", "10.0.3.18"]
//	  - name: payments
//	    ips: ["10.0.4.2"]
package endpoint
