package checkpointer

import (
	"fmt"
	"time"
)

// FileTimer returns a function naming checkpoint files by the time of
// the call in nanoseconds since the Unix epoch, so that successive
// checkpoints never overwrite each other.
func FileTimer(filename, extension string) func() string {
	return func() string {
		return fmt.Sprintf("%v-%v%v", filename, time.Now().UnixNano(),
			extension)
	}
}
