package adapters

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"debianbts/internal/ports"
	"debianbts/internal/shared"
	"debianbts/internal/types"
)

const soapContentType = "text/xml; charset=utf-8"
const defaultSOAPRetryDelay = 200 * time.Millisecond
const maxSOAPRetryDelay = 2 * time.Second

var roundTripMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "debianbts_soap_round_trip_seconds",
	Help:    "Duration of SOAP round trips to the bug tracker",
	Buckets: prometheus.DefBuckets,
}, []string{"action", "status"})

var transportErrorMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "debianbts_soap_transport_errors_total",
	Help: "SOAP requests that failed below the envelope layer",
}, []string{"action"})

// SOAPHTTPAdapter posts encoded envelopes to the Debbugs SOAP endpoint.
// Retries counts attempts: 1 means a single try.
type SOAPHTTPAdapter struct {
	Endpoint   string
	UserAgent  string
	Retries    int
	RetryDelay time.Duration
	client     *http.Client
}

func NewSOAPHTTPAdapter(cfg types.ClientConfig) (SOAPHTTPAdapter, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return SOAPHTTPAdapter{}, types.ConfigurationError("endpoint is empty")
	}
	transport, err := buildHTTPTransport(cfg.Proxy, cfg.CADir)
	if err != nil {
		return SOAPHTTPAdapter{}, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = types.DefaultRetries
	}
	return SOAPHTTPAdapter{
		Endpoint:   strings.TrimSpace(cfg.Endpoint),
		UserAgent:  cfg.UserAgent,
		Retries:    retries,
		RetryDelay: defaultSOAPRetryDelay,
		client:     &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

func buildHTTPTransport(proxy string, caDir string) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if trimmed := strings.TrimSpace(proxy); trimmed != "" {
		proxyURL, err := url.Parse(trimmed)
		if err != nil || proxyURL.Host == "" {
			return nil, types.ConfigurationError(fmt.Sprintf("invalid proxy url: %s", proxy))
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	pool, err := loadCADir(caDir)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		transport.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	}
	return transport, nil
}

// loadCADir adds every certificate under dir to the system pool. A
// missing directory is not an error and leaves the default pool in place.
func loadCADir(dir string) (*x509.CertPool, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, nil
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, types.ConfigurationError(fmt.Sprintf("failed to read CA directory %s: %v", dir, err))
	}
	added := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		if pool.AppendCertsFromPEM(data) {
			added++
		}
	}
	if added == 0 {
		return nil, nil
	}
	return pool, nil
}

// Send posts body and returns the raw reply. A server error whose body
// carries a SOAP Fault is handed back as a reply so the codec can report
// the fault itself.
func (a SOAPHTTPAdapter) Send(ctx context.Context, action string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < a.Retries; attempt++ {
		if ctx.Err() != nil {
			return nil, types.TransportError("request cancelled", ctx.Err())
		}
		reply, retry, err := a.sendOnce(ctx, action, body)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		transportErrorMetric.WithLabelValues(action).Inc()
		if !retry || attempt == a.Retries-1 {
			break
		}
		log.Ctx(ctx).Debug().Err(err).Int("attempt", attempt+1).Msg("retrying soap request")
		select {
		case <-ctx.Done():
			return nil, types.TransportError("request cancelled", ctx.Err())
		case <-time.After(a.retryDelay(attempt)):
		}
	}
	return nil, lastErr
}

func (a SOAPHTTPAdapter) sendOnce(ctx context.Context, action string, body []byte) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, false, types.TransportError("failed to create soap request", err)
	}
	req.Header.Set("Content-Type", soapContentType)
	if action != "" && action != "None" {
		req.Header.Set("SOAPAction", action)
	}
	if a.UserAgent != "" {
		req.Header.Set("User-Agent", a.UserAgent)
	}

	start := time.Now()
	resp, err := a.httpClient().Do(req)
	if err != nil {
		roundTripMetric.WithLabelValues(action, "error").Observe(time.Since(start).Seconds())
		return nil, true, types.TransportError("soap request failed", err)
	}
	defer resp.Body.Close()
	reply, err := io.ReadAll(resp.Body)
	roundTripMetric.WithLabelValues(action, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, true, types.TransportError("failed to read soap reply", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return reply, false, nil
	}
	if resp.StatusCode == http.StatusInternalServerError && isFaultBody(reply) {
		return reply, false, nil
	}
	retry := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
	return nil, retry, types.TransportError("soap request failed",
		shared.HTTPStatusErrorWithBody(resp.StatusCode, a.Endpoint, strings.TrimSpace(string(reply))))
}

func (a SOAPHTTPAdapter) httpClient() *http.Client {
	if a.client != nil {
		return a.client
	}
	return &http.Client{Timeout: types.DefaultTimeout}
}

func (a SOAPHTTPAdapter) retryDelay(attempt int) time.Duration {
	delay := a.RetryDelay * time.Duration(1<<attempt)
	if delay > maxSOAPRetryDelay {
		delay = maxSOAPRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

func isFaultBody(body []byte) bool {
	return bytes.Contains(body, []byte("Envelope")) && bytes.Contains(body, []byte("Fault"))
}

var _ ports.TransportPort = SOAPHTTPAdapter{}
