package driver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"book-search/logger"

	"github.com/elastic/go-elasticsearch/v8"
)

var (
	// ErrElasticsearchDisabled is returned when no Elasticsearch URL is configured.
	ErrElasticsearchDisabled = errors.New("elasticsearch is disabled")
	// ErrElasticsearchNotInitialized is returned before Init succeeds or after Close.
	ErrElasticsearchNotInitialized = errors.New("elasticsearch client is not initialized")
)

// ElasticsearchConfig holds connection settings for the search engine.
type ElasticsearchConfig struct {
	URL            string
	Index          string
	Username       string
	Password       string
	RequestTimeout time.Duration
}

func (c ElasticsearchConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

// ElasticsearchClient owns the process-wide engine client and its lifecycle.
type ElasticsearchClient struct {
	mu        sync.RWMutex
	cfg       ElasticsearchConfig
	client    *elasticsearch.Client
	transport *http.Transport
}

func NewElasticsearchClient(cfg ElasticsearchConfig) *ElasticsearchClient {
	return &ElasticsearchClient{cfg: cfg}
}

func (h *ElasticsearchClient) Config() ElasticsearchConfig {
	return h.cfg
}

// Init creates the underlying client. It is a no-op when disabled or already initialized.
func (h *ElasticsearchClient) Init() error {
	if !h.cfg.Enabled() {
		logger.Logger.Info("elasticsearch disabled, skipping client init")
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client != nil {
		return nil
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if h.cfg.RequestTimeout > 0 {
		transport.ResponseHeaderTimeout = h.cfg.RequestTimeout
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{h.cfg.URL},
		Username:  h.cfg.Username,
		Password:  h.cfg.Password,
		Transport: transport,
	})
	if err != nil {
		return &DriverError{Op: "ElasticsearchClient.Init", Err: err.Error()}
	}

	h.client = client
	h.transport = transport
	logger.Logger.Info("elasticsearch client initialized", "url", h.cfg.URL, "index", h.cfg.Index)
	return nil
}

// Close releases idle connections and drops the client.
func (h *ElasticsearchClient) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.transport != nil {
		h.transport.CloseIdleConnections()
	}
	h.client = nil
	h.transport = nil
}

// Get returns the live client, distinguishing a disabled engine from an uninitialized one.
func (h *ElasticsearchClient) Get() (*elasticsearch.Client, error) {
	if !h.cfg.Enabled() {
		return nil, ErrElasticsearchDisabled
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.client == nil {
		return nil, ErrElasticsearchNotInitialized
	}
	return h.client, nil
}

// Ping checks that the engine answers.
func (h *ElasticsearchClient) Ping(ctx context.Context) error {
	client, err := h.Get()
	if err != nil {
		return err
	}
	res, err := client.Ping(client.Ping.WithContext(ctx))
	if err != nil {
		return &DriverError{Op: "Ping", Err: err.Error()}
	}
	defer res.Body.Close()
	if res.IsError() {
		return &DriverError{Op: "Ping", Err: res.Status()}
	}
	return nil
}
