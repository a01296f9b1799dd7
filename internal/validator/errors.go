package validator

import (
	"fmt"
	"strings"

	"github.com/mmynk/splitledger/internal/money"
)

// Code names a single validation rule.
type Code string

const (
	PayerNotFound        Code = "PayerNotFound"
	ParticipantNotFound  Code = "ParticipantNotFound"
	DuplicateParticipant Code = "DuplicateParticipant"
	NegativeShare        Code = "NegativeShare"
	ShareSumMismatch     Code = "ShareSumMismatch"
	NoParticipants       Code = "NoParticipants"
	NegativeAmount       Code = "NegativeAmount"
	SameUserSettlement   Code = "SameUserSettlement"
	NonPositiveAmount    Code = "NonPositiveAmount"
	UserNotFound         Code = "UserNotFound"
)

// Violation is one broken rule, with enough structure to render a message.
type Violation struct {
	Code    Code
	Field   string
	Message string

	// UserIDs lists the offending users for referential and duplicate violations.
	UserIDs []string

	// Sum and Difference are set for ShareSumMismatch only.
	Sum        money.Amount
	Difference money.Amount
}

// ValidationError collects every violation found in one request.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = fmt.Sprintf("%s: %s", v.Code, v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether a violation with the given code was recorded.
func (e *ValidationError) Has(code Code) bool {
	for _, v := range e.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// Codes returns the violation codes in the order they were found.
func (e *ValidationError) Codes() []Code {
	codes := make([]Code, len(e.Violations))
	for i, v := range e.Violations {
		codes[i] = v.Code
	}
	return codes
}

// collector accumulates violations for a single validation pass.
type collector struct {
	violations []Violation
}

func (c *collector) add(v Violation) {
	c.violations = append(c.violations, v)
}

func (c *collector) err() error {
	if len(c.violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: c.violations}
}
