package tls

import (
	"crypto/tls"
	"fmt"
	"os"

	"todolist-kv/internal/config"
	"todolist-kv/internal/logging"
)

// Config holds HTTPS serving configuration
type Config struct {
	Enabled      bool
	CertFile     string
	KeyFile      string
	Port         string
	HTTPPort     string // plain HTTP listener used for redirects
	RedirectHTTP bool
	MinVersion   uint16
	MaxVersion   uint16
	CipherSuites []uint16 // TLS 1.2 only; 1.3 suites are not configurable
}

// NewConfigFromEnv creates TLS config from environment variables
func NewConfigFromEnv() *Config {
	return &Config{
		Enabled:      config.GetEnvBool("TLS_ENABLED", false),
		CertFile:     config.GetEnv("TLS_CERT_FILE", "./certs/server.crt"),
		KeyFile:      config.GetEnv("TLS_KEY_FILE", "./certs/server.key"),
		Port:         config.GetEnv("TLS_PORT", "8443"),
		HTTPPort:     config.GetEnv("HTTP_PORT", "8080"),
		RedirectHTTP: config.GetEnvBool("TLS_REDIRECT_HTTP", true),
		MinVersion:   parseTLSVersion(config.GetEnv("TLS_MIN_VERSION", "1.2")),
		MaxVersion:   parseTLSVersion(config.GetEnv("TLS_MAX_VERSION", "1.3")),
		CipherSuites: []uint16{
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
		},
	}
}

// CreateTLSConfig loads the key pair and builds the server's *tls.Config
func (c *Config) CreateTLSConfig() (*tls.Config, error) {
	if !c.Enabled {
		return nil, fmt.Errorf("TLS is not enabled")
	}

	if _, err := os.Stat(c.CertFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("certificate file not found: %s", c.CertFile)
	}
	if _, err := os.Stat(c.KeyFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("key file not found: %s", c.KeyFile)
	}

	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   c.MinVersion,
		MaxVersion:   c.MaxVersion,
		CipherSuites: c.CipherSuites,
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
			tls.CurveP384,
		},
	}

	logging.Logger.Infof("TLS configured: cert=%s, minVersion=%s, maxVersion=%s",
		c.CertFile, versionString(c.MinVersion), versionString(c.MaxVersion))

	return tlsConfig, nil
}

func parseTLSVersion(version string) uint16 {
	switch version {
	case "1.2":
		return tls.VersionTLS12
	case "1.3":
		return tls.VersionTLS13
	default:
		logging.Logger.Warnf("Unsupported TLS version '%s', using TLS 1.2", version)
		return tls.VersionTLS12
	}
}

func versionString(version uint16) string {
	switch version {
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return fmt.Sprintf("Unknown (0x%04x)", version)
	}
}
