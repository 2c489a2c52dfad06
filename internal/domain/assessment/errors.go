package assessment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrKPINotFound        = errors.New("kpi not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrCrossDivision      = errors.New("kpi belongs to a different division")
	ErrInvalidState       = errors.New("assessment status does not allow this operation")
)

// MissingMandatoryError reports the prompts of mandatory questions the
// submission left unanswered, in schema order.
type MissingMandatoryError struct {
	Prompts []string
}

func (e *MissingMandatoryError) Error() string {
	return fmt.Sprintf("mandatory questions unanswered: %s", strings.Join(e.Prompts, "; "))
}

// ValidationError reports malformed answer payloads, e.g. a text value for a
// scale question or a scale value outside its range.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid answers: %s", strings.Join(e.Issues, "; "))
}
