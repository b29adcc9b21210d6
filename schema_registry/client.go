package schema_registry

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aalemi-dev/sockettrace/observability"
)

// DefaultTimeout bounds every registry request when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

const contentType = "application/vnd.schemaregistry.v1+json"

// Registry is the part of a Confluent Schema Registry the record serializer
// needs.
type Registry interface {
	// GetSchemaByID retrieves a schema by its ID.
	GetSchemaByID(ctx context.Context, id int) (string, error)

	// RegisterSchema registers schema under subject and returns its ID. The
	// registry returns the existing ID when the schema is already known.
	RegisterSchema(ctx context.Context, subject, schema, schemaType string) (int, error)

	// CheckCompatibility checks schema against the latest version of subject.
	CheckCompatibility(ctx context.Context, subject, schema, schemaType string) (bool, error)
}

// Config holds the registry connection settings.
type Config struct {
	// URL is the registry endpoint, e.g. http://localhost:8081. Empty
	// disables the registry.
	URL string `yaml:"url"`

	// Subject is the subject record schemas are registered under. Defaults to
	// "<topic>-value".
	Subject string `yaml:"subject"`

	Username string        `yaml:"username"`
	Password string        `yaml:"password" json:"-"` //nolint:gosec
	Timeout  time.Duration `yaml:"timeout"`
}

// Logger is the subset of logger.Logger the client uses.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Client talks to a Confluent Schema Registry over HTTP and caches schemas
// by ID and IDs by subject and schema.
type Client struct {
	url        string
	httpClient *http.Client
	username   string
	password   string

	mu          sync.RWMutex
	schemaCache map[int]string
	idCache     map[string]int

	observer observability.Observer
	logger   Logger
}

// NewClient creates a client for cfg.URL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		url:         cfg.URL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		username:    cfg.Username,
		password:    cfg.Password,
		schemaCache: make(map[int]string),
		idCache:     make(map[string]int),
	}, nil
}

// WithObserver attaches an observer notified of every registry call.
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	return c
}

// WithLogger attaches a logger for registrations.
func (c *Client) WithLogger(logger Logger) *Client {
	c.logger = logger
	return c
}

// GetSchemaByID retrieves a schema from the registry by its ID.
func (c *Client) GetSchemaByID(ctx context.Context, id int) (string, error) {
	start := time.Now()
	resource := strconv.Itoa(id)

	c.mu.RLock()
	schema, ok := c.schemaCache[id]
	c.mu.RUnlock()
	if ok {
		c.observeOperation("get_schema_by_id", "registry", resource, time.Since(start), nil, map[string]interface{}{"cache_hit": true})
		return schema, nil
	}

	var result struct {
		Schema string `json:"schema"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/schemas/ids/%d", id), nil, &result)
	c.observeOperation("get_schema_by_id", "registry", resource, time.Since(start), err, map[string]interface{}{"cache_hit": false})
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.schemaCache[id] = result.Schema
	c.mu.Unlock()
	return result.Schema, nil
}

// RegisterSchema registers schema under subject. Known schemas are answered
// from the cache.
func (c *Client) RegisterSchema(ctx context.Context, subject, schema, schemaType string) (int, error) {
	start := time.Now()
	key := subject + ":" + schemaType + ":" + schema

	c.mu.RLock()
	id, ok := c.idCache[key]
	c.mu.RUnlock()
	if ok {
		c.observeOperation("register_schema", subject, strconv.Itoa(id), time.Since(start), nil, map[string]interface{}{"cache_hit": true})
		return id, nil
	}

	var result struct {
		ID int `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/subjects/"+subject+"/versions", schemaPayload(schema, schemaType), &result)
	c.observeOperation("register_schema", subject, strconv.Itoa(result.ID), time.Since(start), err, map[string]interface{}{
		"cache_hit":   false,
		"schema_type": schemaType,
	})
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.idCache[key] = result.ID
	c.schemaCache[result.ID] = schema
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.InfoWithContext(ctx, "Registered record schema", nil, map[string]interface{}{
			"subject":   subject,
			"schema_id": result.ID,
		})
	}
	return result.ID, nil
}

// CheckCompatibility checks schema against the latest version of subject.
func (c *Client) CheckCompatibility(ctx context.Context, subject, schema, schemaType string) (bool, error) {
	start := time.Now()

	var result struct {
		IsCompatible bool `json:"is_compatible"`
	}
	err := c.do(ctx, http.MethodPost, "/compatibility/subjects/"+subject+"/versions/latest", schemaPayload(schema, schemaType), &result)
	c.observeOperation("check_compatibility", subject, "latest", time.Since(start), err, map[string]interface{}{
		"schema_type":   schemaType,
		"is_compatible": result.IsCompatible,
	})
	if err != nil {
		return false, err
	}
	return result.IsCompatible, nil
}

func schemaPayload(schema, schemaType string) map[string]interface{} {
	payload := map[string]interface{}{"schema": schema}
	if schemaType != "" && schemaType != SchemaTypeAvro {
		payload["schemaType"] = schemaType
	}
	return payload
}

// do sends one request and decodes the JSON answer into out.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", contentType)
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec
	if err != nil {
		return fmt.Errorf("schema registry request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Code: resp.StatusCode, Body: string(msg)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// EncodeSchemaID encodes a schema ID in the Confluent wire format: a zero magic
// byte followed by the big-endian 4-byte ID.
func EncodeSchemaID(schemaID int) []byte {
	buf := make([]byte, headerSize)
	binary.BigEndian.PutUint32(buf[1:], uint32(schemaID)) //nolint:gosec
	return buf
}

// DecodeSchemaID splits a Confluent-framed message into schema ID and payload.
func DecodeSchemaID(data []byte) (int, []byte, error) {
	if len(data) < headerSize {
		return 0, nil, fmt.Errorf("%w: got %d bytes", ErrShortMessage, len(data))
	}
	if data[0] != magicByte {
		return 0, nil, fmt.Errorf("%w: 0x%x", ErrInvalidMagicByte, data[0])
	}
	return int(binary.BigEndian.Uint32(data[1:headerSize])), data[headerSize:], nil
}

const (
	magicByte  = 0x0
	headerSize = 5
)
