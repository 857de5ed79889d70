package parser

import (
	"errors"
	"fmt"
	"strings"

	"conform/internal/domain"
	"conform/internal/expect"
	"conform/internal/oracle"
)

// OutcomeParser classifies the error an example body returned and extracts
// the details the report shows for it.
type OutcomeParser struct{}

// NewOutcomeParser creates a new OutcomeParser
func NewOutcomeParser() *OutcomeParser {
	return &OutcomeParser{}
}

// Describe sets the outcome and failure fields of result from err.
//
// An error wrapping *expect.Failure is a failed expectation; anything else
// is an errored example. Script exceptions contribute their stack frames.
func (p *OutcomeParser) Describe(result *domain.Result, err error) {
	if err == nil {
		result.Outcome = domain.OutcomePassed
		return
	}

	var failure *expect.Failure
	if errors.As(err, &failure) {
		result.Outcome = domain.OutcomeFailed
		result.Message = failure.Error()
		result.Expected = failure.Expected
		result.Actual = failure.Actual
		return
	}

	result.Outcome = domain.OutcomeErrored
	result.Message = err.Error()
	var script *oracle.ScriptError
	if errors.As(err, &script) {
		result.Stack = script.Stack
	}
}

// DescribePanic records a recovered panic as an errored result, whatever
// value it carried.
func (p *OutcomeParser) DescribePanic(result *domain.Result, recovered interface{}) {
	result.Outcome = domain.OutcomeErrored
	result.Message = fmt.Sprintf("panic: %v", recovered)
}

// ParseFailure returns the stored form of a non-passed result, or nil.
func (p *OutcomeParser) ParseFailure(result *domain.Result) *domain.ExampleFailure {
	if result.Outcome == domain.OutcomePassed {
		return nil
	}
	return &domain.ExampleFailure{
		Key:      result.Key(),
		Path:     append([]string(nil), result.Path...),
		Name:     result.Name,
		Source:   result.Source,
		Outcome:  result.Outcome,
		Message:  firstLine(result.Message),
		Expected: result.Expected,
		Actual:   result.Actual,
		Stack:    result.Stack,
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
