package checkpointer

import "fmt"

// FilenameEnumerator returns a function naming successive checkpoint
// files with an increasing integer suffix. The first call yields
// filename suffixed with start+1, and the suffix counts up from
// there. The extension is appended after the counter.
func FilenameEnumerator(start int, filename, extension string) func() string {
	i := start
	return func() string {
		i++
		return fmt.Sprintf("%v%v%v", filename, i, extension)
	}
}
