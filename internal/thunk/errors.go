package thunk

import (
	"errors"
	"fmt"

	"discovrr/internal/models"
)

var (
	// ErrConditionFailed matches every *ConditionError.
	ErrConditionFailed = errors.New("thunk: condition failed")
	// ErrAborted is the rejection reason of a run whose context ended
	// before its result could be applied.
	ErrAborted = errors.New("thunk: aborted")
)

// ConditionError is returned when a thunk's precondition skipped it. Nothing
// was dispatched and no remote call was made.
type ConditionError struct {
	Action string
}

func (e *ConditionError) Error() string {
	return fmt.Sprintf("%s skipped: condition not met", e.Action)
}

// Is makes errors.Is(err, ErrConditionFailed) hold.
func (e *ConditionError) Is(target error) bool {
	return target == ErrConditionFailed
}

// Code maps thunk errors onto the AppError code vocabulary.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrConditionFailed):
		return models.CodeConditionFailed
	case errors.Is(err, ErrAborted):
		return models.CodeAborted
	default:
		return models.ErrorCode(err)
	}
}
