package runner

import "fmt"

type panicError struct {
	value interface{}
}

func (e panicError) Error() string {
	return fmt.Sprintf("job panicked: %v", e.value)
}
