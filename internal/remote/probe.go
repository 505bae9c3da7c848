package remote

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"
)

const probeDialTimeout = 5 * time.Second

// Probe checks that the provider host resolves and accepts TCP connections.
// Failures are logged with hints and returned; they never stop the process.
func Probe(ctx context.Context, baseURL string, logger *zap.Logger) error {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		logger.Error("Provider base URL is invalid", zap.String("base_url", baseURL), zap.Error(err))
		return fmt.Errorf("invalid provider base url %q: %w", baseURL, err)
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}

	addrs, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		logger.Warn("Provider host does not resolve",
			zap.String("host", host),
			zap.Error(err),
			zap.String("hint", "check DNS settings (/etc/resolv.conf) and outbound network access"))
		return fmt.Errorf("resolve %s: %w", host, err)
	}

	dialer := net.Dialer{Timeout: probeDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		fields := []zap.Field{
			zap.String("host", host),
			zap.String("port", port),
			zap.Strings("addresses", addrs),
			zap.Error(err),
			zap.String("hint", "check firewall rules and egress to the provider"),
		}
		if proxy := firstEnv("HTTPS_PROXY", "https_proxy", "HTTP_PROXY", "http_proxy"); proxy != "" {
			fields = append(fields, zap.String("proxy", proxy))
		}
		logger.Warn("Provider host is not reachable", fields...)
		return fmt.Errorf("dial %s: %w", host, err)
	}
	_ = conn.Close()

	logger.Info("Provider reachable", zap.String("host", host), zap.Strings("addresses", addrs))
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
