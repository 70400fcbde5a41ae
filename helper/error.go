package helper

import "fmt"

// NewError wraps an error with the task that failed, keeping the chain
// intact for errors.Is/As.
func NewError(task string, err error) error {
	return fmt.Errorf("error in %s: %w", task, err)
}
