package parser

import "conform/internal/domain"

// Parser turns example results into stored failure details
type Parser interface {
	ParseFailure(result *domain.Result) *domain.ExampleFailure
}
