package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"agencydesk/internal/validation"
)

const (
	defaultFetchTimeout = 10 * time.Second
	maxPageBytes        = 5 << 20
	maxRedirects        = 5
	userAgent           = "agencydesk-audit/1.0 (+https://agencydesk.example/bot)"
)

// ErrBlockedAddress is returned when a fetch would connect to a private or reserved address.
var ErrBlockedAddress = errors.New("address is private or reserved")

// Page is a fetched HTML document.
type Page struct {
	URL          string
	FinalURL     string
	StatusCode   int
	ResponseTime time.Duration
	Body         []byte
}

// Fetcher downloads pages for auditing.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a fetcher with the given timeout. Unless allowPrivate is set,
// connections to private, loopback and link-local addresses are refused at dial
// time, which also covers redirects and DNS rebinding.
func NewFetcher(timeout time.Duration, allowPrivate bool) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	dialer := &net.Dialer{Timeout: 5 * time.Second}
	if !allowPrivate {
		dialer.Control = func(_, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if validation.IsPrivateIP(net.ParseIP(host)) {
				return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
			}
			return nil
		}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.Proxy = nil

	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Fetch downloads rawURL. Non-2xx responses are returned, not treated as errors,
// since the status is itself an audit finding.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rawURL, err)
	}

	return &Page{
		URL:          rawURL,
		FinalURL:     resp.Request.URL.String(),
		StatusCode:   resp.StatusCode,
		ResponseTime: time.Since(start),
		Body:         body,
	}, nil
}
