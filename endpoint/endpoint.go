package endpoint

import (
	"fmt"
	"net/netip"
	"strconv"

	"golang.org/x/sys/unix"
)

// Side tells the resolver which end of the connection the local process is.
type Side uint8

const (
	// ClientSide means the local address belongs to the caller.
	ClientSide Side = iota
	// ServerSide means the local address belongs to the callee.
	ServerSide
)

// Endpoint is the address tuple of one connection plus the logical names of both
// parties. Hosts fall back to the IP when the side-table has no entry.
type Endpoint struct {
	LocalIP    string `json:"local_ip"`
	LocalPort  int    `json:"local_port"`
	PeerIP     string `json:"peer_ip"`
	PeerPort   int    `json:"peer_port"`
	ClientHost string `json:"client_host"`
	ServerHost string `json:"server_host"`
}

// Valid reports whether both addresses were resolved.
func (e Endpoint) Valid() bool {
	return e.LocalIP != "" && e.PeerIP != ""
}

// Local returns "ip:port" of the local side.
func (e Endpoint) Local() string {
	return joinHostPort(e.LocalIP, e.LocalPort)
}

// Peer returns "ip:port" of the remote side.
func (e Endpoint) Peer() string {
	return joinHostPort(e.PeerIP, e.PeerPort)
}

func joinHostPort(ip string, port int) string {
	if ip == "" {
		return ""
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ip + ":" + strconv.Itoa(port)
	}
	return netip.AddrPortFrom(addr, uint16(port)).String()
}

// sockaddrIP converts an inet socket address into its textual IP and port.
func sockaddrIP(sa unix.Sockaddr) (string, int, error) {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrFrom4(a.Addr).String(), a.Port, nil
	case *unix.SockaddrInet6:
		return netip.AddrFrom16(a.Addr).Unmap().String(), a.Port, nil
	case nil:
		return "", 0, ErrNotInet
	default:
		return "", 0, fmt.Errorf("%w: %T", ErrNotInet, sa)
	}
}
