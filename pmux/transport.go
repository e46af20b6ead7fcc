package pmux

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	_ "github.com/bdandy/go-socks4"
	"golang.org/x/net/proxy"
)

var DefaultDialer = &net.Dialer{
	Timeout:   5 * time.Second,
	KeepAlive: 30 * time.Second,
}

var DefaultTlsConfig = &tls.Config{
	MinVersion: tls.VersionTLS12,
}

func DefaultTransport() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           DefaultDialer.DialContext,
		TLSClientConfig:       DefaultTlsConfig,
		TLSHandshakeTimeout:   DefaultDialer.Timeout,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// UpstreamTransport sends all requests through another proxy. HTTP proxies
// are handled by http.Transport, SOCKS ones are dialed via x/net/proxy.
func UpstreamTransport(upstream *url.URL) (*http.Transport, error) {
	t := DefaultTransport()
	switch upstream.Scheme {
	case "http", "https":
		t.Proxy = http.ProxyURL(upstream)
		return t, nil
	case "socks4", "socks5", "socks5h":
		dialer, err := proxy.FromURL(upstream, DefaultDialer)
		if err != nil {
			return nil, fmt.Errorf("upstream: %w", err)
		}
		t.Proxy = nil
		t.DialContext = dialContext(dialer)
		return t, nil
	default:
		return nil, fmt.Errorf("upstream: unsupported scheme: %s", upstream.Scheme)
	}
}

func dialContext(dialer proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	cd, ok := dialer.(proxy.ContextDialer)
	if ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(network, addr)
	}
}
