package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/printkit/netdevice/internal/discovery"
)

type Config struct {
	Community    string   `yaml:"community"`
	SNMPCeiling  string   `yaml:"snmp_ceiling"`
	DNSSDCeiling string   `yaml:"dnssd_ceiling"`
	PollWorkers  int      `yaml:"poll_workers"`
	Devices      []string `yaml:"devices"`
}

func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d := yaml.NewDecoder(f)
	d.KnownFields(true)
	err = d.Decode(config)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %v", configPath, err)
	}

	if config.PollWorkers <= 0 {
		config.PollWorkers = 10
	}
	return config, nil
}

// DiscoveryOptions translates the optional config fields into discovery
// context options, defaulting anything unset.
func (c *Config) DiscoveryOptions() ([]discovery.Option, error) {
	var options []discovery.Option
	if c.Community != "" {
		options = append(options, discovery.WithCommunity(c.Community))
	}
	if c.SNMPCeiling != "" {
		ceiling, err := time.ParseDuration(c.SNMPCeiling)
		if err != nil {
			return nil, fmt.Errorf("could not parse snmp_ceiling: %v", err)
		}
		options = append(options, discovery.WithSNMPCeiling(ceiling))
	}
	if c.DNSSDCeiling != "" {
		ceiling, err := time.ParseDuration(c.DNSSDCeiling)
		if err != nil {
			return nil, fmt.Errorf("could not parse dnssd_ceiling: %v", err)
		}
		options = append(options, discovery.WithDNSSDCeiling(ceiling))
	}
	return options, nil
}
