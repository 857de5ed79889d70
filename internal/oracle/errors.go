package oracle

import (
	"errors"
	"strings"
)

// ScriptError is an exception raised by script code that was not an
// expectation failure.
type ScriptError struct {
	Name    string   // constructor name of the thrown error, e.g. TypeError
	Message string
	Value   string   // display form of the thrown value
	Stack   []string // "at ..." frames, innermost first
}

func (e *ScriptError) Error() string {
	if e.Name == "" {
		return e.Message
	}
	return e.Name + ": " + e.Message
}

// ErrorName is the name the error carries when rethrown into script code.
func (e *ScriptError) ErrorName() string {
	if e.Name == "" {
		return "Error"
	}
	return e.Name
}

func stackLines(s string) []string {
	var frames []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "at ") {
			frames = append(frames, line)
		}
	}
	return frames
}

// ErrorName returns the script-visible name of err: the constructor name of
// a script error, or the name an error type declares for itself.
func ErrorName(err error) string {
	var se *ScriptError
	if errors.As(err, &se) {
		return se.Name
	}
	var named interface{ ErrorName() string }
	if errors.As(err, &named) {
		return named.ErrorName()
	}
	return ""
}
