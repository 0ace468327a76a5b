package main

import (
	"flag"
	"log"

	"github.com/robheffo79/SpinoDB/pkg/server"
)

func main() {
	config := server.DefaultConfig()

	flag.StringVar(&config.Host, "host", config.Host, "server host address")
	flag.IntVar(&config.Port, "port", config.Port, "server port")
	flag.StringVar(&config.DataFile, "data", config.DataFile, "snapshot file (.gz/.zst compresses)")
	flag.DurationVar(&config.SnapshotInterval, "snapshot-interval", config.SnapshotInterval, "periodic snapshot interval (0 disables)")
	flag.BoolVar(&config.EnableLogging, "log", config.EnableLogging, "enable request logging")
	flag.BoolVar(&config.EnableCORS, "cors", config.EnableCORS, "enable CORS")
	flag.BoolVar(&config.EnableTLS, "tls", config.EnableTLS, "enable TLS")
	flag.StringVar(&config.TLSCertFile, "tls-cert", config.TLSCertFile, "TLS certificate file")
	flag.StringVar(&config.TLSKeyFile, "tls-key", config.TLSKeyFile, "TLS key file")
	flag.StringVar(&config.AuthUsername, "auth-user", config.AuthUsername, "basic auth username (auth is off when user and pass are both empty)")
	flag.StringVar(&config.AuthPassword, "auth-pass", config.AuthPassword, "basic auth password")
	flag.BoolVar(&config.EnableGraphQL, "graphql", config.EnableGraphQL, "enable the GraphQL endpoint")
	flag.DurationVar(&config.ReadTimeout, "read-timeout", config.ReadTimeout, "HTTP read timeout")
	flag.DurationVar(&config.WriteTimeout, "write-timeout", config.WriteTimeout, "HTTP write timeout")
	flag.Parse()

	srv, err := server.New(config)
	if err != nil {
		log.Fatalf("failed to start server: %v", err)
	}

	if err := srv.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
