package utils

import (
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"
)

type HTTPClientConfig struct {
	KATimeout      time.Duration
	ProxyURL       string
	ProxyUsername  string
	ProxyPassword  string
	UserAgent      string
	Headers        map[string]string
	HighThreadMode bool // advanced socket options for high concurrency
}

// HTTPDoer is the request interface consumed by the download engine. The
// engine never builds transports itself; it only sends requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type HanzoHTTPClient struct {
	client *http.Client
	config HTTPClientConfig
}

func NewHanzoHTTPClient(cfg HTTPClientConfig) *HanzoHTTPClient {
	if cfg.KATimeout == 0 {
		cfg.KATimeout = 60 * time.Second
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}
	transport := &http.Transport{
		IdleConnTimeout:     cfg.KATimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		DisableCompression:  true,
		MaxConnsPerHost:     0,
	}
	if cfg.HighThreadMode {
		transport.DialContext = (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
			DualStack: true,
			Control: func(network, address string, c syscall.RawConn) error {
				return c.Control(func(fd uintptr) {
					setSocketOptions(fd)
				})
			},
		}).DialContext
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err == nil {
			if cfg.ProxyUsername != "" {
				if cfg.ProxyPassword != "" {
					proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
				} else {
					proxyURL.User = url.User(cfg.ProxyUsername)
				}
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &HanzoHTTPClient{
		client: &http.Client{
			Transport: transport,
		},
		config: cfg,
	}
}

func (h *HanzoHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if h.config.UserAgent != "" {
		req.Header.Set("User-Agent", h.config.UserAgent)
	} else {
		req.Header.Set("User-Agent", ToolUserAgent)
	}
	for k, v := range h.config.Headers {
		req.Header.Set(k, v)
	}
	return h.client.Do(req)
}
