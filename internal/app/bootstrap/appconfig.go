// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: WAFFLE's CoreConfig
// handles framework-level settings like HTTP/HTTPS ports, TLS, logging
// level and format, and request body size limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Credential configuration. The same HS256 secret signs the token
	// validated by the REST cookie middleware and by the live channel
	// handshake.
	JWTSecret   string        // Signing secret (must be strong in production)
	JWTDuration time.Duration // Token lifetime

	// AllowedOrigins is the comma-separated CORS allowlist for browser
	// clients (REST and websocket upgrade).
	AllowedOrigins string
}
