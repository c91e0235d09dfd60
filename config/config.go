// Package config defines the server configuration, which cmd/server reads
// from the environment with an optional dotenv file layered underneath it,
// and builds the process logger.
package config

// Config holds every setting the server needs at startup. Fields are
// processed by github.com/kelseyhightower/envconfig; see cmd/server for how
// they're populated.
type Config struct {
	ListenAddr  string `envconfig:"LISTEN_ADDR" required:"true" default:"0.0.0.0:7878" desc:"Address the chat TCP listener binds to."`
	HealthAddr  string `envconfig:"HEALTH_ADDR" required:"true" default:"127.0.0.1:7879" desc:"Address the health/stats HTTP server binds to."`
	NetworkName string `envconfig:"NETWORK_NAME" required:"true" default:"solace" desc:"Name announced to clients as the channel's network identity."`
	LogLevel    string `envconfig:"LOG_LEVEL" required:"true" default:"info" desc:"Logging granularity: trace, debug, info, warn, error."`
}
