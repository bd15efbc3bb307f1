package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStations(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStations() error {
	if len(c.Stations.Names) == 0 {
		return errors.New("stations.names must list at least one station")
	}
	seen := make(map[string]struct{}, len(c.Stations.Names))
	initials := make(map[rune]string, len(c.Stations.Names))
	for _, name := range c.Stations.Names {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("stations.names contains duplicate station %q", name)
		}
		seen[name] = struct{}{}

		initial := []rune(name)[0]
		if other, ok := initials[initial]; ok {
			return fmt.Errorf("stations %q and %q share the ticket prefix %q", other, name, string(initial))
		}
		initials[initial] = name
	}
	return nil
}

func (c *Config) validateQueue() error {
	if c.Queue.AverageServiceTime <= 0 {
		return errors.New("queue.average_service_time must be a positive number of minutes")
	}
	if c.Queue.MaxQueueLength <= 0 {
		return errors.New("queue.max_queue_length must be positive")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}
