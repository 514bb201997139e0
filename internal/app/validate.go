package app

import "github.com/driftline/foundry/pkg/validator"

// Validate checks configuration invariants before any service starts.
func (c *Config) Validate() error {
	return validator.ValidateStruct(c)
}
