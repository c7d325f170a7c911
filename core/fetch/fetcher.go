// Package fetch implements the Fetcher interface.
// It performs a bounded HTTP GET: per-request and whole-resource timeouts,
// a hard cap on the response body, and transport failures classified into
// typed network errors.
package fetch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/gaurav-prasanna/readmate/core"
)

// The defaults are also the hard limits: options may tighten them but never
// raise them.
const (
	DefaultRequestTimeout  = 10 * time.Second
	DefaultResourceTimeout = 15 * time.Second
	DefaultMaxBodyBytes    = 1_000_000
	DefaultUserAgent       = "Readmate/1.0 (+https://github.com/gaurav-prasanna/readmate)"
)

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	logger       *slog.Logger

	requestTimeout  time.Duration
	resourceTimeout time.Duration
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithRequestTimeout bounds connecting, the TLS handshake and waiting for
// headers. Values above DefaultRequestTimeout are clamped to it.
func WithRequestTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.requestTimeout = min(d, DefaultRequestTimeout)
		}
	}
}

// WithResourceTimeout bounds the whole exchange, body included. Values above
// DefaultResourceTimeout are clamped to it.
func WithResourceTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.resourceTimeout = min(d, DefaultResourceTimeout)
		}
	}
}

// WithMaxBodyBytes lowers the response body cap. It cannot exceed
// DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBodyBytes = min(n, DefaultMaxBodyBytes)
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithTLSConfig sets the TLS configuration used by the transport.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(f *HTTPFetcher) {
		f.client.Transport.(*http.Transport).TLSClientConfig = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// New creates an HTTPFetcher with the default limits.
func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:          &http.Client{Transport: &http.Transport{Proxy: http.ProxyFromEnvironment}},
		userAgent:       DefaultUserAgent,
		maxBodyBytes:    DefaultMaxBodyBytes,
		requestTimeout:  DefaultRequestTimeout,
		resourceTimeout: DefaultResourceTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}

	// Dialing fails immediately when the host is unreachable; nothing here
	// waits for connectivity to appear.
	dialer := &net.Dialer{Timeout: f.requestTimeout}
	transport := f.client.Transport.(*http.Transport)
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = f.requestTimeout
	transport.ResponseHeaderTimeout = f.requestTimeout
	f.client.Timeout = f.resourceTimeout

	return f
}

// Fetch retrieves the body of the given URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*core.FetchResult, error) {
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, core.NewError(core.KindNetwork, core.ReasonMalformedURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, core.HTTPStatusError(resp.StatusCode)
	}

	if resp.ContentLength > f.maxBodyBytes {
		return nil, core.NewError(core.KindNetwork, core.ReasonDataTooLarge,
			fmt.Errorf("content length %d exceeds %d bytes", resp.ContentLength, f.maxBodyBytes))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, f.classify(ctx, err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, core.NewError(core.KindNetwork, core.ReasonDataTooLarge,
			fmt.Errorf("response body exceeds %d bytes", f.maxBodyBytes))
	}

	f.logger.Debug("fetched page",
		"url", rawURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	return &core.FetchResult{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// classify maps a transport error onto the network error taxonomy.
func (f *HTTPFetcher) classify(ctx context.Context, err error) error {
	// The caller's cancellation wins over whatever the transport reported.
	if cerr := core.CheckCancelled(ctx); cerr != nil {
		return cerr
	}

	var (
		netErr      net.Error
		certErr     *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostErr     x509.HostnameError
		invalidCert x509.CertificateInvalidError
		recordErr   tls.RecordHeaderError
		alertErr    tls.AlertError
		dnsErr      *net.DNSError
		opErr       *net.OpError
		urlErr      *url.Error
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return core.NewError(core.KindNetwork, core.ReasonTimeout, err)
	case errors.As(err, &certErr), errors.As(err, &unknownAuth), errors.As(err, &hostErr),
		errors.As(err, &invalidCert), errors.As(err, &recordErr), errors.As(err, &alertErr):
		return core.NewError(core.KindNetwork, core.ReasonTLSFailure, err)
	case errors.As(err, &dnsErr), errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH), errors.As(err, &opErr),
		errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return core.NewError(core.KindNetwork, core.ReasonConnectionFailed, err)
	case errors.As(err, &urlErr) && urlErr.Op == "parse":
		return core.NewError(core.KindNetwork, core.ReasonMalformedURL, err)
	default:
		return core.NewError(core.KindNetwork, core.ReasonOther, err)
	}
}
