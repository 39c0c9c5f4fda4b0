package tor

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	"github.com/nao1215/philowalk/internal/config"
)

// Session is an established Tor route: a verified Client and, with --tor,
// the embedded daemon behind it.
type Session struct {
	client   *Client
	embedded *EmbeddedTor
}

// Connect prepares the Tor route described by cfg. With UseExternalTor it
// uses cfg.TorProxyAddress, otherwise it starts an embedded daemon. The proxy
// is checked before Connect returns. Callers must Close the session.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []ClientOption{WithCheckTarget(checkTargetFor(cfg.BaseURL))}

	s := &Session{}
	if cfg.UseExternalTor {
		client, err := NewClient(cfg.TorProxyAddress, cfg.Timeout, opts...)
		if err != nil {
			return nil, err
		}
		s.client = client
	} else {
		s.embedded = NewEmbeddedTor(
			WithStartupTimeout(cfg.TorStartupTimeout),
			WithTorLogger(logger),
		)
		if err := s.embedded.Start(ctx); err != nil {
			return nil, err
		}
		client, err := s.embedded.NewClient(cfg.Timeout, opts...)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.client = client
	}

	if status := s.client.CheckConnection(ctx); status != ProxyStatusOK {
		_ = s.Close()
		return nil, fmt.Errorf("tor proxy %s: %w", s.client.ProxyAddress(), status.Error())
	}
	logger.Debug("tor proxy verified", "proxy", s.client.ProxyAddress())

	return s, nil
}

// HTTPClient returns an HTTP client routed through the session's proxy.
func (s *Session) HTTPClient() *http.Client {
	return s.client.NewHTTPClient()
}

// ProxyAddress returns the SOCKS5 address in use.
func (s *Session) ProxyAddress() string {
	return s.client.ProxyAddress()
}

// Close stops the embedded daemon, if any.
func (s *Session) Close() error {
	if s.embedded == nil {
		return nil
	}
	return s.embedded.Stop()
}

// checkTargetFor returns host:port of the wiki at baseURL, falling back to
// DefaultCheckTarget.
func checkTargetFor(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return DefaultCheckTarget
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}
