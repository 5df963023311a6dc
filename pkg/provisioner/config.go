package provisioner

import (
	"github.com/backkem/meshpdu/pkg/access"
)

// Config holds all configuration for a Provisioner.
type Config struct {
	// LoggerFactory supplies a diagnostic logger for the provisioner.
	// Diagnostic hex dumps are suppressed when nil.
	LoggerFactory LoggerFactory

	// Options gates the transport- and network-layer open questions
	// (spec.md §9). Zero value resolves to the spec-conformant defaults.
	Options access.Options

	// optionsSet tracks whether Options was explicitly configured, so
	// applyDefaults doesn't clobber an intentional all-false Options
	// (legacy mode) with the spec-conformant defaults.
	optionsSet bool
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return nil
}

// WithOptions marks Options as explicitly set, preventing applyDefaults
// from overriding it.
func (c *Config) WithOptions(opts access.Options) *Config {
	c.Options = opts
	c.optionsSet = true
	return c
}

// applyDefaults fills in default values for unset fields.
func (c *Config) applyDefaults() {
	if !c.optionsSet && c.Options == (access.Options{}) {
		c.Options = access.DefaultOptions()
	}
}
