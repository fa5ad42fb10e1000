package client

import "fmt"

// GenerationError reports a failed or unusable response from the generative
// backend. Callers recover by substituting visible error text in the
// conversation; the error is never fatal to the session.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("generation failed (%s)", e.Op)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
