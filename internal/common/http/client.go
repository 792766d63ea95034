// internal/common/http/client.go
package http

import (
	"net"
	"net/http"
	"time"
)

// Doer performs one physical HTTP exchange.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the socket-level client beneath the retrying transport. Its timeout
// is the only bound on a stuck call; a timeout surfaces as a network failure.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: time.Second,
			},
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}
