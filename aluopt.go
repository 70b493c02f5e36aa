// Package aluopt optimizes programs of the vector and scalar ALU instructions of AMD GPUs.
//
// The optimizer fuses instructions with their producers (multiply-adds, min/max clamps, output modifiers,
// sub-dword extractions, logical chains), folds constants into literals, removes the dead code, and picks
// the encodings with the fewest literals legal on the target generation.
package aluopt

import (
	"context"
	"errors"

	"github.com/tetratelabs/aluopt/internal/logging"
	"github.com/tetratelabs/aluopt/internal/opt"
)

// Optimize rewrites the program in place. cfg may be nil to use NewOptimizeConfig.
//
// An error is returned only for an invalid configuration or target: the optimization itself never fails.
// ctx is not polled.
func Optimize(ctx context.Context, prog *Program, cfg *OptimizeConfig) error {
	if prog == nil || prog.p == nil {
		return errors.New("nil program")
	}
	p := prog.p
	if cfg == nil {
		cfg = NewOptimizeConfig()
	}
	if cfg.target != nil {
		if err := cfg.target.validate(); err != nil {
			return err
		}
		p.Target = cfg.target.Target()
	} else if err := validateTarget(p.Target); err != nil {
		return err
	}

	var log *logging.PassLogger
	if cfg.logWriter != nil && cfg.logScopes != logging.PassScopeNone {
		log = logging.NewPassLogger(cfg.logScopes, cfg.logWriter)
	}
	opt.Optimize(p, log, cfg.validate)
	return nil
}
