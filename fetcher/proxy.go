package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

type dialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// NewTransport builds the transport shared by all fetches. proxies maps a
// scheme to a proxy URL: "http" and "https" pick a proxy by the scheme of
// the requested URL, "socks5" (or "socks", "socks5h") tunnels every dial
// through a SOCKS5 server and is only used when no per-scheme proxy is set.
func NewTransport(proxies map[string]string) (*http.Transport, error) {
	transport := &http.Transport{
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	byScheme := make(map[string]*url.URL)
	var socksURL *url.URL
	for scheme, raw := range proxies {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		proxyURL, err := url.Parse(raw)
		if err != nil || proxyURL.Host == "" {
			return nil, fmt.Errorf("proxy %q=%q: %w", scheme, raw, ErrInvalidURL)
		}

		switch scheme = strings.ToLower(scheme); scheme {
		case "http", "https":
			byScheme[scheme] = proxyURL
		case "socks", "socks5", "socks5h":
			socksURL = proxyURL
		default:
			return nil, fmt.Errorf("unsupported proxy scheme %q", scheme)
		}
	}

	if len(byScheme) > 0 {
		transport.Proxy = func(req *http.Request) (*url.URL, error) {
			return byScheme[req.URL.Scheme], nil
		}
		return transport, nil
	}

	if socksURL != nil {
		dial, err := socksDialContext(socksURL)
		if err != nil {
			return nil, err
		}
		transport.DialContext = dial
	}

	return transport, nil
}

func socksDialContext(proxyURL *url.URL) (dialContextFunc, error) {
	var auth *proxy.Auth
	if proxyURL.User != nil {
		password, _ := proxyURL.User.Password()
		auth = &proxy.Auth{User: proxyURL.User.Username(), Password: password}
	}

	dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(network, addr)
	}, nil
}
