package engine

import "fmt"

// ValidationError reports a violated precondition (non-positive amount,
// invalid count, discount exceeding balance, missing date). It always blocks
// the corresponding persistence write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InconsistentDataError reports a record the grouper could not place even
// after fallback grouping. The record is excluded from aggregates; the
// computation itself proceeds.
type InconsistentDataError struct {
	TitleID string
	Message string
}

func (e *InconsistentDataError) Error() string {
	return fmt.Sprintf("title %s: %s", e.TitleID, e.Message)
}
