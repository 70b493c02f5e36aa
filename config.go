package aluopt

import (
	"fmt"

	"github.com/tetratelabs/aluopt/internal/ir"
	"github.com/tetratelabs/aluopt/internal/logging"
)

// TargetConfig describes the hardware the program is optimized for, with the default implementation as
// NewTargetConfig.
type TargetConfig struct {
	target ir.Target
	err    error
}

// NewTargetConfig returns the configuration of the generation named gen, such as "gfx10.3", running waves of
// 64 lanes. An unknown name is reported by Optimize.
func NewTargetConfig(gen string) *TargetConfig {
	g, err := ir.ParseGen(gen)
	return &TargetConfig{target: ir.Target{Gen: g, WaveSize: 64}, err: err}
}

// clone ensures all fields are copied.
func (c *TargetConfig) clone() *TargetConfig {
	ret := *c
	return &ret
}

// WithWaveSize sets the number of lanes of a wave: 32 or 64.
func (c *TargetConfig) WithWaveSize(size int) *TargetConfig {
	ret := c.clone()
	ret.target.WaveSize = size
	return ret
}

// WithFastFMA32 declares v_fma_f32 as fast as v_mad_f32, which makes fused multiply-adds profitable.
func (c *TargetConfig) WithFastFMA32(fast bool) *TargetConfig {
	ret := c.clone()
	ret.target.FastFMA32 = fast
	return ret
}

// WithFusedMadMix declares v_fma_mix as computing with a single rounding.
func (c *TargetConfig) WithFusedMadMix(fused bool) *TargetConfig {
	ret := c.clone()
	ret.target.FusedMadMix = fused
	return ret
}

// Target returns the configured target.
func (c *TargetConfig) Target() ir.Target {
	return c.target
}

func (c *TargetConfig) validate() error {
	if c.err != nil {
		return c.err
	}
	return validateTarget(c.target)
}

func validateTarget(t ir.Target) error {
	if t.Gen > ir.GenGFX12 {
		return fmt.Errorf("unknown generation %s", t.Gen)
	}
	if t.WaveSize != 32 && t.WaveSize != 64 {
		return fmt.Errorf("invalid wave size %d: must be 32 or 64", t.WaveSize)
	}
	return nil
}

// OptimizeConfig controls the behavior of Optimize, with the default implementation as NewOptimizeConfig.
type OptimizeConfig struct {
	target    *TargetConfig
	validate  bool
	logScopes logging.PassScopes
	logWriter logging.Writer
}

// NewOptimizeConfig returns the default configuration: the target of the program is kept, nothing is logged,
// and the passes are validated only if aluapi.ValidationEnvVar is set.
func NewOptimizeConfig() *OptimizeConfig {
	return &OptimizeConfig{}
}

// clone ensures all fields are copied even if nil.
func (c *OptimizeConfig) clone() *OptimizeConfig {
	return &OptimizeConfig{
		target:    c.target,
		validate:  c.validate,
		logScopes: c.logScopes,
		logWriter: c.logWriter,
	}
}

// WithTarget overrides the target of the optimized programs.
func (c *OptimizeConfig) WithTarget(target *TargetConfig) *OptimizeConfig {
	ret := c.clone()
	ret.target = target
	return ret
}

// WithValidation checks the state left by every pass. A violation panics.
func (c *OptimizeConfig) WithValidation(validate bool) *OptimizeConfig {
	ret := c.clone()
	ret.validate = validate
	return ret
}

// WithLogScopes selects the passes whose decisions and results are logged to the writer set by WithLogWriter.
func (c *OptimizeConfig) WithLogScopes(scopes logging.PassScopes) *OptimizeConfig {
	ret := c.clone()
	ret.logScopes = scopes
	return ret
}

// WithLogWriter sets the destination of the logs. Nothing is logged if nil.
func (c *OptimizeConfig) WithLogWriter(w logging.Writer) *OptimizeConfig {
	ret := c.clone()
	ret.logWriter = w
	return ret
}
