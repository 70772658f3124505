package transform

import (
	"github.com/opd-ai/dkd/limits"
	"github.com/sirupsen/logrus"
)

// Options configures a Transformer.
type Options struct {
	// MaxDataSize bounds the decoded size of any binary field (data, key,
	// keys entries, signature). Larger fields are rejected as malformed.
	MaxDataSize int

	// Logger receives debug traces. Nil means the logrus standard logger.
	Logger *logrus.Logger
}

// NewOptions returns the default options.
func NewOptions() *Options {
	return &Options{
		MaxDataSize: limits.MaxProcessingBuffer,
		Logger:      logrus.StandardLogger(),
	}
}
