package schedule

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Overrides is the sparse configuration handed to Build.
// Nil fields mean "not set" and take the selected variant's default.
// Build never modifies an Overrides value.
type Overrides struct {
	Patience  *int     `yaml:"patience,omitempty"`
	MinLR     *float64 `yaml:"min_lr,omitempty"`
	MaxLR     *float64 `yaml:"max_lr,omitempty"`
	InitialLR *float64 `yaml:"initial_lr,omitempty"`
	StepLen   *int     `yaml:"step_len,omitempty"`
	BaseLen   *int     `yaml:"base_len,omitempty"`
	Mul       *float64 `yaml:"mul,omitempty"`
}

// optionsBySchedule lists the option keys each variant accepts.
var optionsBySchedule = map[string]map[string]bool{
	"sgd":             {"patience": true, "min_lr": true, "initial_lr": true},
	"sgdr":            {"base_len": true, "mul": true, "min_lr": true, "max_lr": true},
	"clr":             {"step_len": true, "min_lr": true, "max_lr": true},
	"resnet-schedule": {},
}

// setKeys returns the option keys present in o, in declaration order.
func (o Overrides) setKeys() []string {
	var keys []string
	if o.Patience != nil {
		keys = append(keys, "patience")
	}
	if o.MinLR != nil {
		keys = append(keys, "min_lr")
	}
	if o.MaxLR != nil {
		keys = append(keys, "max_lr")
	}
	if o.InitialLR != nil {
		keys = append(keys, "initial_lr")
	}
	if o.StepLen != nil {
		keys = append(keys, "step_len")
	}
	if o.BaseLen != nil {
		keys = append(keys, "base_len")
	}
	if o.Mul != nil {
		keys = append(keys, "mul")
	}
	return keys
}

// checkAccepted rejects options that do not belong to the named variant.
func (o Overrides) checkAccepted(name string) error {
	accepted := optionsBySchedule[name]
	for _, key := range o.setKeys() {
		if !accepted[key] {
			return fmt.Errorf("%w: option %q is not accepted by schedule %q", ErrInvalidConfig, key, name)
		}
	}
	return nil
}

// OverridesFromMap converts a loosely typed option map (for example one
// decoded from JSON or built by a caller) into Overrides. Unknown keys and
// values of the wrong type are rejected.
func OverridesFromMap(m map[string]any) (Overrides, error) {
	var o Overrides
	if len(m) == 0 {
		return o, nil
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return Overrides{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := decodeStrict(data, &o); err != nil {
		return Overrides{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return o, nil
}

// LoadOverrides reads schedule options from a YAML file.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("reading schedule options: %w", err)
	}
	var o Overrides
	if err := decodeStrict(data, &o); err != nil {
		return Overrides{}, fmt.Errorf("%w: parsing schedule options: %v", ErrInvalidConfig, err)
	}
	return o, nil
}

// decodeStrict unmarshals YAML into v, failing on fields v does not declare.
// An empty document leaves v untouched.
func decodeStrict(data []byte, v any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// PlateauConfig configures the Plateau schedule.
type PlateauConfig struct {
	Patience  int     // epochs without improvement before a reduction
	MinLR     float64 // floor the rate is never reduced below
	InitialLR float64 // rate before the first reduction
}

// DefaultPlateauConfig returns the documented Plateau defaults.
func DefaultPlateauConfig() PlateauConfig {
	return PlateauConfig{Patience: 10, MinLR: 1e-4, InitialLR: 0.1}
}

// Plateau merges o over the Plateau defaults.
func (o Overrides) Plateau() PlateauConfig {
	c := DefaultPlateauConfig()
	if o.Patience != nil {
		c.Patience = *o.Patience
	}
	if o.MinLR != nil {
		c.MinLR = *o.MinLR
	}
	if o.InitialLR != nil {
		c.InitialLR = *o.InitialLR
	}
	return c
}

// Validate checks option domains.
func (c PlateauConfig) Validate() error {
	if c.Patience <= 0 {
		return fmt.Errorf("%w: patience must be positive, got %d", ErrInvalidConfig, c.Patience)
	}
	if !(c.MinLR > 0) || math.IsInf(c.MinLR, 0) {
		return fmt.Errorf("%w: min_lr must be positive, got %g", ErrInvalidConfig, c.MinLR)
	}
	if !(c.InitialLR >= c.MinLR) || math.IsInf(c.InitialLR, 0) {
		return fmt.Errorf("%w: initial_lr must be at least min_lr (%g), got %g", ErrInvalidConfig, c.MinLR, c.InitialLR)
	}
	return nil
}

// CyclicConfig configures the Cyclic schedule.
type CyclicConfig struct {
	StepLen int     // half-cycle length in epochs
	MinLR   float64 // bottom of the triangle
	MaxLR   float64 // top of the triangle
}

// DefaultCyclicConfig returns the documented Cyclic defaults.
func DefaultCyclicConfig() CyclicConfig {
	return CyclicConfig{StepLen: 12, MinLR: 1e-5, MaxLR: 0.1}
}

// Cyclic merges o over the Cyclic defaults.
func (o Overrides) Cyclic() CyclicConfig {
	c := DefaultCyclicConfig()
	if o.StepLen != nil {
		c.StepLen = *o.StepLen
	}
	if o.MinLR != nil {
		c.MinLR = *o.MinLR
	}
	if o.MaxLR != nil {
		c.MaxLR = *o.MaxLR
	}
	return c
}

// Validate checks option domains.
func (c CyclicConfig) Validate() error {
	if c.StepLen <= 0 {
		return fmt.Errorf("%w: step_len must be positive, got %d", ErrInvalidConfig, c.StepLen)
	}
	if !(c.MinLR >= 0) {
		return fmt.Errorf("%w: min_lr must be non-negative, got %g", ErrInvalidConfig, c.MinLR)
	}
	if !(c.MaxLR > c.MinLR) || math.IsInf(c.MaxLR, 0) {
		return fmt.Errorf("%w: max_lr must exceed min_lr (%g), got %g", ErrInvalidConfig, c.MinLR, c.MaxLR)
	}
	return nil
}

// WarmRestartConfig configures the WarmRestart schedule.
type WarmRestartConfig struct {
	BaseLen int     // length of the first cycle in epochs
	Mul     float64 // cycle length growth factor per restart
	MinLR   float64 // rate at the end of a cycle
	MaxLR   float64 // rate right after a restart
}

// DefaultWarmRestartConfig returns the documented WarmRestart defaults.
func DefaultWarmRestartConfig() WarmRestartConfig {
	return WarmRestartConfig{BaseLen: 12, Mul: 2, MinLR: 1e-6, MaxLR: 0.1}
}

// WarmRestart merges o over the WarmRestart defaults.
func (o Overrides) WarmRestart() WarmRestartConfig {
	c := DefaultWarmRestartConfig()
	if o.BaseLen != nil {
		c.BaseLen = *o.BaseLen
	}
	if o.Mul != nil {
		c.Mul = *o.Mul
	}
	if o.MinLR != nil {
		c.MinLR = *o.MinLR
	}
	if o.MaxLR != nil {
		c.MaxLR = *o.MaxLR
	}
	return c
}

// Validate checks option domains.
func (c WarmRestartConfig) Validate() error {
	if c.BaseLen <= 0 {
		return fmt.Errorf("%w: base_len must be positive, got %d", ErrInvalidConfig, c.BaseLen)
	}
	if !(c.Mul > 1) || math.IsInf(c.Mul, 0) {
		return fmt.Errorf("%w: mul must be greater than 1, got %g", ErrInvalidConfig, c.Mul)
	}
	if !(c.MinLR >= 0) {
		return fmt.Errorf("%w: min_lr must be non-negative, got %g", ErrInvalidConfig, c.MinLR)
	}
	if !(c.MaxLR > c.MinLR) || math.IsInf(c.MaxLR, 0) {
		return fmt.Errorf("%w: max_lr must exceed min_lr (%g), got %g", ErrInvalidConfig, c.MinLR, c.MaxLR)
	}
	if h := warmRestartHorizon(c.BaseLen, c.Mul); h > math.MaxInt32 {
		return fmt.Errorf("%w: base_len %d with mul %g gives a horizon of %g epochs", ErrInvalidConfig, c.BaseLen, c.Mul, h)
	}
	return nil
}
