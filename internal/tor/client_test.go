package tor

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/nao1215/philowalk/internal/config"
)

// startFakeProxy starts a listener that answers the SOCKS5 greeting with
// greeting and the CONNECT request with reply. The CONNECT request bytes are
// sent on the returned channel.
func startFakeProxy(t *testing.T, greeting, reply []byte) (string, <-chan []byte) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	requests := make(chan []byte, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 3)
		_, _ = conn.Read(buf)
		_, _ = conn.Write(greeting)
		if reply == nil {
			return
		}

		connectBuf := make([]byte, 512)
		n, _ := conn.Read(connectBuf)
		requests <- connectBuf[:n]
		_, _ = conn.Write(reply)
	}()

	return listener.Addr().String(), requests
}

// socksRefused is a well-formed CONNECT reply with "host unreachable".
var socksRefused = []byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0}

// TestNewClient tests the Client constructor.
func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("valid proxy address creates client", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:9050", 30*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "127.0.0.1:9050" {
			t.Errorf("ProxyAddress() = %q, expected %q", client.ProxyAddress(), "127.0.0.1:9050")
		}
		if client.checkTarget != DefaultCheckTarget {
			t.Errorf("expected default check target, got %q", client.checkTarget)
		}
	})

	t.Run("applies WithCheckTarget", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:9050", time.Second, WithCheckTarget("de.wikipedia.org:443"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.checkTarget != "de.wikipedia.org:443" {
			t.Errorf("unexpected check target %q", client.checkTarget)
		}
	})

	t.Run("invalid address returns ErrInvalidProxyAddress", func(t *testing.T) {
		t.Parallel()

		if _, err := NewClient("127.0.0.1", time.Second); !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})
}

// TestIsValidProxyAddress tests the proxy address validation function.
func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		address  string
		expected bool
	}{
		{"valid IPv4 with port", "127.0.0.1:9050", true},
		{"valid localhost with port", "localhost:9050", true},
		{"valid IPv6 with port", "[::1]:9050", true},
		{"empty string", "", false},
		{"no port", "127.0.0.1", false},
		{"empty host", ":9050", false},
		{"empty port", "127.0.0.1:", false},
		{"port out of range", "127.0.0.1:70000", false},
		{"port zero", "127.0.0.1:0", false},
		{"non-numeric port", "127.0.0.1:tor", false},
		{"multiple colons", "127.0.0.1:9050:extra", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if result := isValidProxyAddress(tc.address); result != tc.expected {
				t.Errorf("isValidProxyAddress(%q) = %v, expected %v", tc.address, result, tc.expected)
			}
		})
	}
}

// TestNewHTTPClient tests HTTP client creation.
func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient("127.0.0.1:9050", 45*time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	httpClient := client.NewHTTPClient()

	if httpClient.Timeout != 45*time.Second {
		t.Errorf("expected timeout 45s, got %v", httpClient.Timeout)
	}
	if httpClient.Jar == nil {
		t.Error("expected cookie jar")
	}

	transport, ok := httpClient.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", httpClient.Transport)
	}
	if transport.DialContext == nil {
		t.Error("expected proxied DialContext")
	}
	if transport.TLSClientConfig != nil && transport.TLSClientConfig.InsecureSkipVerify {
		t.Error("TLS verification must stay enabled")
	}
	if !transport.DisableCompression {
		t.Error("expected transport compression to be disabled")
	}
}

// TestProxyStatus tests the status names and errors.
func TestProxyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status ProxyStatus
		name   string
		err    error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not Tor)", ErrProxyNotTor},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}

	for _, tt := range tests {
		if tt.status.String() != tt.name {
			t.Errorf("String() = %q, expected %q", tt.status.String(), tt.name)
		}
		if !errors.Is(tt.status.Error(), tt.err) {
			t.Errorf("Error() = %v, expected %v", tt.status.Error(), tt.err)
		}
	}

	if ProxyStatus(99).String() != "unknown" || ProxyStatus(99).Error() == nil {
		t.Error("unknown status should be named unknown and carry an error")
	}
}

// TestCheckConnection tests the SOCKS5 proxy verification.
func TestCheckConnection(t *testing.T) {
	t.Parallel()

	t.Run("returns CannotConnect for non-existent proxy", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:59999", time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusCannotConnect {
			t.Errorf("expected ProxyStatusCannotConnect, got %v", status)
		}
	})

	t.Run("returns WrongType for non-SOCKS5 server", func(t *testing.T) {
		t.Parallel()

		addr, _ := startFakeProxy(t, []byte("HTTP/1.1 200 OK\r\n\r\n"), nil)
		client, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns WrongType for SOCKS5 requiring auth", func(t *testing.T) {
		t.Parallel()

		addr, _ := startFakeProxy(t, []byte{0x05, 0xFF}, nil)
		client, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns OK and asks for the check target", func(t *testing.T) {
		t.Parallel()

		addr, requests := startFakeProxy(t, []byte{0x05, 0x00}, socksRefused)
		client, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusOK {
			t.Errorf("expected ProxyStatusOK, got %v", status)
		}

		want, _ := connectRequest(DefaultCheckTarget)
		if got := <-requests; string(got) != string(want) {
			t.Errorf("unexpected CONNECT request % x", got)
		}
	})

	t.Run("returns WrongType for wrong version in CONNECT response", func(t *testing.T) {
		t.Parallel()

		addr, _ := startFakeProxy(t, []byte{0x05, 0x00}, []byte{0x04, 0x00, 0x00, 0x01})
		client, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("handles context cancellation", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:59998", time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		status := client.CheckConnection(ctx)
		if status != ProxyStatusCannotConnect && status != ProxyStatusTimeout {
			t.Errorf("expected ProxyStatusCannotConnect or ProxyStatusTimeout, got %v", status)
		}
	})
}

// TestConnectRequest tests SOCKS5 CONNECT encoding.
func TestConnectRequest(t *testing.T) {
	t.Parallel()

	req, err := connectRequest("a.b:443")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x05, 0x01, 0x00, 0x03, 3, 'a', '.', 'b', 0x01, 0xBB}
	if string(req) != string(want) {
		t.Errorf("got % x, want % x", req, want)
	}

	if _, err := connectRequest("no-port"); err == nil {
		t.Error("expected error for missing port")
	}
}

// TestConnectExternal tests establishing a session with an external proxy.
func TestConnectExternal(t *testing.T) {
	t.Parallel()

	t.Run("verifies the proxy against the wiki host", func(t *testing.T) {
		t.Parallel()

		addr, requests := startFakeProxy(t, []byte{0x05, 0x00}, socksRefused)
		cfg := config.NewConfig()
		cfg.UseExternalTor = true
		cfg.TorProxyAddress = addr
		cfg.BaseURL = "http://wiki.example:8080/wiki/"

		s, err := Connect(context.Background(), cfg, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer s.Close()

		if s.ProxyAddress() != addr {
			t.Errorf("expected proxy %s, got %s", addr, s.ProxyAddress())
		}
		if s.HTTPClient() == nil {
			t.Error("expected HTTP client")
		}

		want, _ := connectRequest("wiki.example:8080")
		if got := <-requests; string(got) != string(want) {
			t.Errorf("unexpected CONNECT request % x", got)
		}
	})

	t.Run("fails when the proxy is down", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.UseExternalTor = true
		cfg.TorProxyAddress = "127.0.0.1:59997"

		if _, err := Connect(context.Background(), cfg, nil); !errors.Is(err, ErrProxyCannotConnect) {
			t.Errorf("expected ErrProxyCannotConnect, got %v", err)
		}
	})
}

// TestCheckTargetFor tests deriving the check target from the base URL.
func TestCheckTargetFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		baseURL string
		want    string
	}{
		{"https://en.wikipedia.org/wiki/", "en.wikipedia.org:443"},
		{"http://wiki.local/wiki/", "wiki.local:80"},
		{"http://127.0.0.1:8080/wiki/", "127.0.0.1:8080"},
		{"not a url", DefaultCheckTarget},
	}

	for _, tt := range tests {
		if got := checkTargetFor(tt.baseURL); got != tt.want {
			t.Errorf("checkTargetFor(%q) = %q, want %q", tt.baseURL, got, tt.want)
		}
	}
}
