// Package aluapi holds the switches of the optimizer's debug output and validation, so that each can be
// flipped in one place while investigating a miscompiled program.
package aluapi

import "os"

// ----- Debug logging -----
// These consts must be disabled by default. Enable them only when debugging.

const (
	LabelLoggingEnabled   = false
	CombineLoggingEnabled = false
	SelectLoggingEnabled  = false
)

// ----- Output prints -----
// These consts must be disabled by default. Enable them only when debugging.

const (
	PrintProgramBeforeOptimization = false
	PrintOptimizedProgram          = false
)

// ----- Validations -----
// These consts must be disabled by default: validation walks the whole program after every pass.

const (
	ValidationEnabled = false
)

// ValidationEnvVar is the environment variable which turns on the validation after each pass
// regardless of ValidationEnabled. Any non-empty value other than "0" enables it.
const ValidationEnvVar = "ALUOPT_VALIDATE"

// ValidationRequested returns true if the validation is enabled either by ValidationEnabled or the environment.
func ValidationRequested() bool {
	if ValidationEnabled {
		return true
	}
	v := os.Getenv(ValidationEnvVar)
	return v != "" && v != "0"
}
