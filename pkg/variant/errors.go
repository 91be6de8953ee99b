package variant

import "fmt"

type ErrorCode string

const (
	CodeNoAttributes       ErrorCode = "no_attributes_selected"
	CodeMissingSelection   ErrorCode = "missing_selection"
	CodeDuplicateAttribute ErrorCode = "duplicate_attribute"
	CodeTooMany            ErrorCode = "too_many_combinations"
)

// Error is returned when generation cannot start. Attribute names the
// offending attribute when there is one; Limit is the cap a too-large
// selection ran into.
type Error struct {
	Code      ErrorCode
	Attribute string
	Limit     int
}

func (e *Error) Error() string {
	switch e.Code {
	case CodeNoAttributes:
		return "no attributes selected"
	case CodeMissingSelection:
		return fmt.Sprintf("missing selection for attribute %q", e.Attribute)
	case CodeDuplicateAttribute:
		return fmt.Sprintf("attribute %q selected more than once", e.Attribute)
	case CodeTooMany:
		return fmt.Sprintf("selection expands to more than %d combinations", e.Limit)
	default:
		return string(e.Code)
	}
}

// Is matches on Code, and on Attribute when the target names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Attribute == "" || t.Attribute == e.Attribute
}

var (
	ErrNoAttributes        = &Error{Code: CodeNoAttributes}
	ErrMissingSelection    = &Error{Code: CodeMissingSelection}
	ErrDuplicateAttribute  = &Error{Code: CodeDuplicateAttribute}
	ErrTooManyCombinations = &Error{Code: CodeTooMany}
)
