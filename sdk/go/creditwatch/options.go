package creditwatch

import "github.com/sirupsen/logrus"

// Option configures a Client at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	configPath string
	remote     string
	logger     *logrus.Logger
}

// WithConfig sets the path to a scoring config YAML file.
func WithConfig(path string) Option {
	return func(c *clientConfig) { c.configPath = path }
}

// WithRemote sends calls to a creditwatch gRPC server instead of running
// them in-process. The local config is not loaded.
func WithRemote(addr string) Option {
	return func(c *clientConfig) { c.remote = addr }
}

// WithLogger logs each in-process call at debug level.
func WithLogger(l *logrus.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
