// Package logging includes utilities used to log what the optimizer passes do. This is in
// an independent package to avoid dependency cycles.
package logging

import (
	"fmt"
	"io"
	"strings"
)

// PassScopes is a bitmask of the optimizer passes whose work is logged.
type PassScopes uint64

const (
	PassScopeNone             = PassScopes(0)
	PassScopeLabel PassScopes = 1 << iota
	PassScopeRemat
	PassScopeCombine
	PassScopeSelect
	PassScopeLiterals
	PassScopeAll = PassScopes(0xffffffffffffffff)
)

func scopeName(s PassScopes) string {
	switch s {
	case PassScopeLabel:
		return "label"
	case PassScopeRemat:
		return "remat"
	case PassScopeCombine:
		return "combine"
	case PassScopeSelect:
		return "select"
	case PassScopeLiterals:
		return "literals"
	default:
		return ""
	}
}

// IsEnabled returns true if the scope (or group of scopes) is enabled.
func (f PassScopes) IsEnabled(scope PassScopes) bool {
	return f&scope != 0
}

// String implements fmt.Stringer by returning each enabled pass scope.
func (f PassScopes) String() string {
	if f == PassScopeAll {
		return "all"
	}
	var builder strings.Builder
	for i := 0; i <= 63; i++ { // cycle through all bits to reduce code and maintenance
		target := PassScopes(1 << i)
		if f.IsEnabled(target) {
			if name := scopeName(target); name != "" {
				if builder.Len() > 0 {
					builder.WriteByte('|')
				}
				builder.WriteString(name)
			}
		}
	}
	return builder.String()
}

// ParsePassScopes parses a comma or pipe separated list of pass names, or "all".
func ParsePassScopes(s string) (PassScopes, error) {
	scopes := PassScopeNone
	for _, name := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		name = strings.TrimSpace(name)
		if name == "all" {
			return PassScopeAll, nil
		}
		found := false
		for i := 0; i <= 63; i++ {
			if scopeName(PassScopes(1<<i)) == name {
				scopes |= PassScopes(1 << i)
				found = true
				break
			}
		}
		if !found {
			return PassScopeNone, fmt.Errorf("invalid pass scope: %s", name)
		}
	}
	return scopes, nil
}

// Writer is the destination of the logs.
type Writer interface {
	io.Writer
	io.StringWriter
	io.ByteWriter
}

// PassLogger writes the decisions of the enabled passes, and the program after each of them.
// The zero value and a nil *PassLogger log nothing.
type PassLogger struct {
	scopes PassScopes
	w      Writer
}

// NewPassLogger returns a PassLogger writing the given scopes to w.
func NewPassLogger(scopes PassScopes, w Writer) *PassLogger {
	if w == nil {
		scopes = PassScopeNone
	}
	return &PassLogger{scopes: scopes, w: w}
}

// IsEnabled returns true if the pass is logged.
func (l *PassLogger) IsEnabled(scope PassScopes) bool {
	return l != nil && l.scopes.IsEnabled(scope)
}

// Rewrite logs one decision of the pass.
func (l *PassLogger) Rewrite(scope PassScopes, format string, args ...interface{}) {
	if !l.IsEnabled(scope) {
		return
	}
	l.w.WriteString(scopeName(scope)) //nolint
	l.w.WriteString(": ")             //nolint
	fmt.Fprintf(l.w, format, args...) //nolint
	l.w.WriteByte('\n')               //nolint
}

// PassDone logs the program after the pass.
func (l *PassLogger) PassDone(scope PassScopes, program fmt.Stringer) {
	if !l.IsEnabled(scope) {
		return
	}
	l.w.WriteString("==== after ")    //nolint
	l.w.WriteString(scopeName(scope)) //nolint
	l.w.WriteString(" ====\n")        //nolint
	l.w.WriteString(program.String()) //nolint
}
