package server

import "time"

// Config holds server configuration settings
type Config struct {
	Host             string        // Server host address
	Port             int           // Server port
	DataFile         string        // Snapshot file path; .gz/.zst enable compression
	SnapshotInterval time.Duration // How often the database is saved; 0 disables the ticker
	ReadTimeout      time.Duration // HTTP read timeout
	WriteTimeout     time.Duration // HTTP write timeout
	IdleTimeout      time.Duration // HTTP idle timeout
	MaxRequestSize   int64         // Maximum request body size in bytes
	EnableCORS       bool          // Enable CORS middleware
	AllowedOrigins   []string      // CORS allowed origins
	EnableLogging    bool          // Enable request logging

	// TLS/SSL configuration
	EnableTLS   bool   // Enable TLS/SSL
	TLSCertFile string // Path to TLS certificate file
	TLSKeyFile  string // Path to TLS private key file

	// Optional HTTP basic auth; both empty disables auth
	AuthUsername string
	AuthPassword string

	// GraphQL configuration
	EnableGraphQL bool // Enable GraphQL API endpoint
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:             "localhost",
		Port:             8080,
		DataFile:         "./spino.db.json",
		SnapshotInterval: 60 * time.Second,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     30 * time.Second,
		IdleTimeout:      120 * time.Second,
		MaxRequestSize:   10 * 1024 * 1024, // 10MB
		EnableCORS:       true,
		AllowedOrigins:   []string{"*"},
		EnableLogging:    true,
		EnableTLS:        false,
		EnableGraphQL:    false, // GraphQL disabled by default (opt-in feature)
	}
}
