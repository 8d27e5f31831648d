package checkpointer

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/encrush/btgym/timestep"
)

// nStep checkpoints a Serializable at a fixed step interval
type nStep struct {
	interval int
	steps    int
	object   Serializable

	// filename generates the name of the next checkpoint file. Use
	// FilenameEnumerator for numbered files (net1.bin, net2.bin, ...)
	// or FileTimer for timestamped ones:
	//
	// n := NewNStep(10, object, FileTimer("net", ".bin"))
	filename func() string
}

// NewNStep returns a Checkpointer that saves object every n calls to
// Checkpoint. Filenames for successive checkpoints come from the
// filename function.
func NewNStep(n int, object Serializable,
	filename func() string) Checkpointer {
	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint serializes the tracked object to disk if the checkpoint
// interval has elapsed since the last checkpoint. The interval is
// measured in calls to Checkpoint, which an experiment makes once per
// environment step.
func (n *nStep) Checkpoint(t ts.TimeStep) error {
	if n.interval <= 0 {
		return nil
	}

	n.steps++
	if n.steps%n.interval != 0 {
		return nil
	}

	file, err := os.Create(n.filename())
	if err != nil {
		return fmt.Errorf("checkpoint: could not create file: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(n.object); err != nil {
		return fmt.Errorf("checkpoint: could not encode object: %v", err)
	}
	return nil
}
