package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Overlay         OverlayConfig     `yaml:"overlay"`
	ButtonMapping   map[string]string `yaml:"button_mapping"`
	AbilityMapping  map[string]string `yaml:"ability_mapping"`
	AimableButtons  []string          `yaml:"aimable_buttons"`
	ActionDistances map[string]string `yaml:"action_distances"`
	Controller      ControllerConfig  `yaml:"controller"`
	Logging         LoggingConfig     `yaml:"logging"`
	Output          OutputConfig      `yaml:"output"`
}

type OverlayConfig struct {
	ScreenWidth       float64 `yaml:"screen_width"`
	ScreenHeight      float64 `yaml:"screen_height"`
	ShowCrosshair     bool    `yaml:"show_crosshair"`
	ShowButtons       bool    `yaml:"show_buttons"`
	AlwaysShowOverlay bool    `yaml:"always_show_overlay"`
	WindowedMode      bool    `yaml:"windowed_mode"`
}

type ControllerConfig struct {
	Deadzone               float64 `yaml:"controller_deadzone"`
	CharacterXOffsetPx     float64 `yaml:"character_x_offset_px"`
	CharacterYOffsetPx     float64 `yaml:"character_y_offset_px"`
	WalkCircleRadiusPx     float64 `yaml:"walk_circle_radius_px"`
	CloseCircleRadiusPx    float64 `yaml:"close_circle_radius_px"`
	MidCircleRadiusPx      float64 `yaml:"mid_circle_radius_px"`
	FarCircleRadiusPx      float64 `yaml:"far_circle_radius_px"`
	FreeMouseSensitivityPx float64 `yaml:"free_mouse_sensitivity_px"`
	ControllerType         string  `yaml:"controller_type"`
	// DrainOrder is "lifo" (newest press first) or "fifo".
	DrainOrder   string `yaml:"drain_order"`
	PrimaryClick string `yaml:"primary_click"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type OutputConfig struct {
	// Backend is "robot" for real input injection or "log" for a dry run.
	Backend string `yaml:"backend"`
}

// Env holds the environment overrides. Empty values leave the file untouched.
type Env struct {
	ConfigPath string `env:"AIMPAD_CONFIG" envDefault:"configs/config.yaml"`
	LogLevel   string `env:"AIMPAD_LOG_LEVEL"`
	LogFormat  string `env:"AIMPAD_LOG_FORMAT"`
	Output     string `env:"AIMPAD_OUTPUT"`
	DrainOrder string `env:"AIMPAD_DRAIN_ORDER"`

	// DebugConsole drives the engine from the terminal instead of a gamepad.
	DebugConsole bool `env:"AIMPAD_DEBUG_CONSOLE"`
}

var (
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrUnknownButton   = errors.New("unknown button")
	ErrUnmappedAction  = errors.New("action has no key mapping")
	ErrInvalidOption   = errors.New("invalid option")
)

func DefaultConfig() *Config {
	return &Config{
		Overlay: OverlayConfig{
			ScreenWidth:   1920,
			ScreenHeight:  1080,
			ShowCrosshair: true,
			ShowButtons:   true,
		},
		ButtonMapping:   map[string]string{},
		AbilityMapping:  map[string]string{},
		ActionDistances: map[string]string{},
		Controller: ControllerConfig{
			Deadzone:               0.2,
			WalkCircleRadiusPx:     200,
			CloseCircleRadiusPx:    100,
			MidCircleRadiusPx:      300,
			FarCircleRadiusPx:      450,
			FreeMouseSensitivityPx: 10,
			ControllerType:         "xbox",
			DrainOrder:             "lifo",
			PrimaryClick:           "LeftClick",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Output: OutputConfig{
			Backend: "robot",
		},
	}
}

// Load reads a YAML file over DefaultConfig. It does not validate; call
// Validate once the environment overrides are applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

func (c *Config) ApplyEnv(e Env) {
	if e.LogLevel != "" {
		c.Logging.Level = e.LogLevel
	}
	if e.LogFormat != "" {
		c.Logging.Format = e.LogFormat
	}
	if e.Output != "" {
		c.Output.Backend = e.Output
	}
	if e.DrainOrder != "" {
		c.Controller.DrainOrder = e.DrainOrder
	}
}

// Validate checks the config against the set of buttons the capture layer
// can report. Every lookup the engine performs per tick is proven total here.
func (c *Config) Validate(buttons []string) error {
	known := make(map[string]struct{}, len(buttons))
	for _, b := range buttons {
		known[b] = struct{}{}
	}

	var errs []error
	o, ctl := c.Overlay, c.Controller
	if o.ScreenWidth <= 0 || o.ScreenHeight <= 0 {
		errs = append(errs, fmt.Errorf("%w: screen size %vx%v", ErrInvalidGeometry, o.ScreenWidth, o.ScreenHeight))
	}
	radii := map[string]float64{
		"walk_circle_radius_px":     ctl.WalkCircleRadiusPx,
		"close_circle_radius_px":    ctl.CloseCircleRadiusPx,
		"mid_circle_radius_px":      ctl.MidCircleRadiusPx,
		"far_circle_radius_px":      ctl.FarCircleRadiusPx,
		"free_mouse_sensitivity_px": ctl.FreeMouseSensitivityPx,
	}
	for _, name := range sortedKeys(radii) {
		if radii[name] < 0 {
			errs = append(errs, fmt.Errorf("%w: %s is negative", ErrInvalidGeometry, name))
		}
	}
	if ctl.Deadzone < 0 || ctl.Deadzone >= 1 {
		errs = append(errs, fmt.Errorf("%w: controller_deadzone %v not in [0,1)", ErrInvalidGeometry, ctl.Deadzone))
	}

	if len(c.ButtonMapping) == 0 {
		errs = append(errs, fmt.Errorf("%w: button_mapping is empty", ErrUnmappedAction))
	}
	for _, action := range sortedKeys(c.ButtonMapping) {
		if _, ok := known[action]; !ok {
			errs = append(errs, fmt.Errorf("%w: button_mapping has %q", ErrUnknownButton, action))
		}
		if c.ButtonMapping[action] == "" {
			errs = append(errs, fmt.Errorf("%w: %q maps to an empty key", ErrUnmappedAction, action))
		}
	}
	for _, key := range sortedKeys(c.AbilityMapping) {
		action := c.AbilityMapping[key]
		if _, ok := c.ButtonMapping[action]; !ok {
			errs = append(errs, fmt.Errorf("%w: ability key %q names action %q", ErrUnmappedAction, key, action))
		}
	}
	for _, action := range c.AimableButtons {
		if _, ok := c.ButtonMapping[action]; !ok {
			errs = append(errs, fmt.Errorf("%w: aimable button %q", ErrUnmappedAction, action))
		}
	}
	for _, action := range sortedKeys(c.ActionDistances) {
		if _, ok := c.ButtonMapping[action]; !ok {
			errs = append(errs, fmt.Errorf("%w: action distance for %q", ErrUnmappedAction, action))
		}
	}

	if ctl.PrimaryClick == "" {
		errs = append(errs, fmt.Errorf("%w: primary_click is empty", ErrInvalidOption))
	}
	if !oneOf(ctl.DrainOrder, "lifo", "fifo") {
		errs = append(errs, fmt.Errorf("%w: drain_order %q", ErrInvalidOption, ctl.DrainOrder))
	}
	if !oneOf(ctl.ControllerType, "xbox", "playstation") {
		errs = append(errs, fmt.Errorf("%w: controller_type %q", ErrInvalidOption, ctl.ControllerType))
	}
	if !oneOf(c.Output.Backend, "robot", "log") {
		errs = append(errs, fmt.Errorf("%w: output backend %q", ErrInvalidOption, c.Output.Backend))
	}
	return errors.Join(errs...)
}

// Actions returns the mapped action names in sorted order.
func (c *Config) Actions() []string {
	return sortedKeys(c.ButtonMapping)
}

// AbilityKeys returns the key names that count as abilities while held.
func (c *Config) AbilityKeys() []string {
	return sortedKeys(c.AbilityMapping)
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
