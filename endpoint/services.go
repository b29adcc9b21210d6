package endpoint

import (
	"fmt"
	"net/netip"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Services is the read-only side-table from internal IPs to the names of
// instrumented services.
type Services struct {
	byIP map[string]string
}

// ServicesFile is the YAML layout accepted by LoadServicesFile.
type ServicesFile struct {
	Services []ServiceEntry `yaml:"services"`
}

// ServiceEntry lists the addresses of one logical service.
type ServiceEntry struct {
	Name string   `yaml:"name"`
	IPs  []string `yaml:"ips"`
}

// NewServices builds a side-table from an ip -> name map. The map is copied and
// IPs are normalized; entries that are not valid IPs are skipped.
func NewServices(byIP map[string]string) *Services {
	s := &Services{byIP: make(map[string]string, len(byIP))}
	for ip, name := range byIP {
		if key, ok := normalizeIP(ip); ok && name != "" {
			s.byIP[key] = name
		}
	}
	return s
}

// ParseServices parses the inline form "10.0.0.1=orders,10.0.0.2=payments".
func ParseServices(list string) (*Services, error) {
	byIP := map[string]string{}
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		ip, name, ok := strings.Cut(item, "=")
		ip, name = strings.TrimSpace(ip), strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidServiceEntry, item)
		}
		key, valid := normalizeIP(ip)
		if !valid {
			return nil, fmt.Errorf("%w: bad ip %q", ErrInvalidServiceEntry, ip)
		}
		byIP[key] = name
	}
	return &Services{byIP: byIP}, nil
}

// LoadServicesFile reads a YAML side-table from path.
func LoadServicesFile(path string) (*Services, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read services file: %w", err)
	}
	var file ServicesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse services file %s: %w", path, err)
	}

	byIP := map[string]string{}
	for _, entry := range file.Services {
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: service without name", ErrInvalidServiceEntry)
		}
		for _, ip := range entry.IPs {
			key, ok := normalizeIP(ip)
			if !ok {
				return nil, fmt.Errorf("%w: service %s has bad ip %q", ErrInvalidServiceEntry, entry.Name, ip)
			}
			byIP[key] = entry.Name
		}
	}
	return &Services{byIP: byIP}, nil
}

// Merge returns a new table with the entries of s overridden by other.
func (s *Services) Merge(other *Services) *Services {
	merged := make(map[string]string, s.Len()+other.Len())
	if s != nil {
		for ip, name := range s.byIP {
			merged[ip] = name
		}
	}
	if other != nil {
		for ip, name := range other.byIP {
			merged[ip] = name
		}
	}
	return &Services{byIP: merged}
}

// Lookup returns the service name registered for ip.
func (s *Services) Lookup(ip string) (string, bool) {
	if s == nil {
		return "", false
	}
	key, ok := normalizeIP(ip)
	if !ok {
		return "", false
	}
	name, ok := s.byIP[key]
	return name, ok
}

// Name returns the service name for ip, or ip itself when unknown.
func (s *Services) Name(ip string) string {
	if name, ok := s.Lookup(ip); ok {
		return name
	}
	return ip
}

// Len returns the number of registered addresses.
func (s *Services) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byIP)
}

// All returns a copy of the ip -> name entries.
func (s *Services) All() map[string]string {
	out := make(map[string]string, s.Len())
	if s != nil {
		for ip, name := range s.byIP {
			out[ip] = name
		}
	}
	return out
}

func normalizeIP(ip string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}
