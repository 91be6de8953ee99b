package simulator

// Config configures the simulated card processor.
type Config struct {
	// Provider is recorded on orders paid through this client.
	Provider string

	// DeclineNumbers are card numbers that pass validation but are refused,
	// so the failure path can be exercised end to end.
	DeclineNumbers []string
}

// DefaultConfig declines the well-known 4000 0000 0000 0002 test card.
func DefaultConfig() Config {
	return Config{
		Provider:       "card",
		DeclineNumbers: []string{"4000000000000002"},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Provider == "" {
		return ErrInvalidConfig
	}
	return nil
}
