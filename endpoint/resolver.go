package endpoint

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// SockaddrSource exposes the two socket-name calls the resolver needs. The
// interceptor's original-function table satisfies it.
type SockaddrSource interface {
	Getsockname(fd int) (unix.Sockaddr, error)
	Getpeername(fd int) (unix.Sockaddr, error)
}

// Resolver turns a connected descriptor into an Endpoint. It is safe for
// concurrent use; the side-table can be replaced while lookups run.
type Resolver struct {
	src      SockaddrSource
	services atomic.Pointer[Services]
}

// NewResolver creates a Resolver. services may be nil, in which case hosts are
// always the raw IPs.
func NewResolver(src SockaddrSource, services *Services) *Resolver {
	if services == nil {
		services = NewServices(nil)
	}
	r := &Resolver{src: src}
	r.services.Store(services)
	return r
}

// Services returns the side-table used for host names.
func (r *Resolver) Services() *Services {
	return r.services.Load()
}

// SetServices replaces the side-table. A nil table clears it.
func (r *Resolver) SetServices(services *Services) {
	if services == nil {
		services = NewServices(nil)
	}
	r.services.Store(services)
}

// Resolve returns the endpoint of fd. It fails when fd is not a connected inet
// socket; callers are expected to retry on a later I/O.
func (r *Resolver) Resolve(fd int, side Side) (Endpoint, error) {
	local, err := r.src.Getsockname(fd)
	if err != nil {
		return Endpoint{}, fmt.Errorf("getsockname(%d): %w", fd, err)
	}
	peer, err := r.src.Getpeername(fd)
	if err != nil {
		return Endpoint{}, fmt.Errorf("getpeername(%d): %w", fd, err)
	}

	var ep Endpoint
	if ep.LocalIP, ep.LocalPort, err = sockaddrIP(local); err != nil {
		return Endpoint{}, err
	}
	if ep.PeerIP, ep.PeerPort, err = sockaddrIP(peer); err != nil {
		return Endpoint{}, err
	}

	services := r.Services()
	localHost := services.Name(ep.LocalIP)
	peerHost := services.Name(ep.PeerIP)
	if side == ServerSide {
		ep.ClientHost, ep.ServerHost = peerHost, localHost
	} else {
		ep.ClientHost, ep.ServerHost = localHost, peerHost
	}
	return ep, nil
}
