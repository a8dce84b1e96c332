package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Bus describes which transport backs the TX engine's HAL.
type Bus struct {
	Driver   string // "periph" for the reference GPIO/SPI binding
	ClockPin string
	DataPin  string
	SPIPort  string
}

// Journal configures the optional SQLite command journal.
type Journal struct {
	Enabled bool
	Path    string
}

// Metrics configures the optional Prometheus exporter.
type Metrics struct {
	Enabled bool
	Listen  string
}

type Configuration struct {
	Bus     Bus
	Journal Journal
	Metrics Metrics

	// Session describes the decoder currently being programmed, when the
	// working directory carries a per-decoder override file.
	Session Session
}

type Session struct {
	DeveloperCode [4]byte
	AddressBase   uint32
}

// NewConfig loads ".zusi.yaml" from $HOME and the working directory, then
// overlays an optional "session.json" from the working directory for the
// decoder currently being worked on.
func NewConfig() (*Configuration, error) {
	config := Configuration{}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName(".zusi")
	v.AddConfigPath("$HOME/")
	v.AddConfigPath(".")
	_ = v.SafeWriteConfig()

	v.SetDefault("bus.driver", "periph")
	v.SetDefault("bus.clockpin", "GPIO17")
	v.SetDefault("bus.datapin", "GPIO27")
	v.SetDefault("bus.spiport", "/dev/spidev0.0")
	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", "zusi-journal.sqlite")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", ":9110")

	s := viper.New()
	s.SetConfigType("json")
	s.SetConfigName("session")
	s.AddConfigPath(".")
	_ = s.ReadInConfig()

	if err := v.ReadInConfig(); err != nil {
		return &Configuration{}, fmt.Errorf("cannot parse config: %s", err.Error())
	}
	if err := v.Unmarshal(&config); err != nil {
		return &config, fmt.Errorf("cannot parse config: %s", err.Error())
	}
	if err := s.Unmarshal(&config.Session); err != nil {
		if !strings.Contains(err.Error(), "Not Found") {
			return &config, fmt.Errorf("cannot parse session override: %s", err.Error())
		}
	}

	return &config, nil
}
