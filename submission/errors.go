package submission

import "fmt"

// InvalidInputMessage is the only validation feedback shown to users.
const InvalidInputMessage = "Invalid input"

// ValidationError rejects a payload. Field names the first rule that failed
// and is meant for logs, not for users.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// StorageError means the image could not be written.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store image: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// PersistenceError means the meal record could not be written. ImagePath is
// the artifact that was stored before the failure.
type PersistenceError struct {
	ImagePath string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save meal: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
