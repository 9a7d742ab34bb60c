package relay

import (
	"flag"
	"time"

	"github.com/termlink/termlink.go/pkg/input"
	"github.com/termlink/termlink.go/pkg/wire"
)

// Config defines the configurations for the controller.
type Config struct {
	RenderPeriod   time.Duration
	ButtonCooldown time.Duration
}

var defaultConfig = Config{
	RenderPeriod:   DefaultRenderPeriod,
	ButtonCooldown: input.DefaultCooldown,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.RenderPeriod, "render-period", defaultConfig.RenderPeriod, "Periodic display refresh interval.")
	flag.DurationVar(&defaultConfig.ButtonCooldown, "btn-cooldown", defaultConfig.ButtonCooldown, "Minimum interval between button triggers.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates a controller using the config.
func (c *Config) NewController(link *wire.Link, disp Display) *Controller {
	ctl := NewController(link, disp)
	ctl.RenderPeriod = c.RenderPeriod
	ctl.ButtonCooldown = c.ButtonCooldown
	return ctl
}
