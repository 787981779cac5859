package config

// Default configuration values.
const (
	DefaultTriggerInterval = 400
	DefaultMaxKeys         = 6
	DefaultAsyncDispatch   = false
	DefaultRawInput        = false
	DefaultLoggingEnabled  = false
	DefaultLoggingLevel    = "DEBUG"
)

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		TriggerIntervalMs: DefaultTriggerInterval,
		MaxKeys:           DefaultMaxKeys,
		AsyncDispatch:     DefaultAsyncDispatch,
		RawInput:          DefaultRawInput,
		Logging: LoggingConfig{
			Enabled: DefaultLoggingEnabled,
			Level:   DefaultLoggingLevel,
		},
	}
}
