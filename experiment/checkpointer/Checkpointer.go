// Package checkpointer implements saving of serializable objects at
// regular points of a training run.
package checkpointer

import (
	"encoding/gob"

	ts "github.com/encrush/btgym/timestep"
)

// Serializable is an object whose state can be written to and
// restored from a byte stream
type Serializable interface {
	gob.GobEncoder
	gob.GobDecoder
}

// Checkpointer saves Serializable objects as training progresses,
// deciding from each timestep whether a checkpoint is due
type Checkpointer interface {
	Checkpoint(ts.TimeStep) error
}
