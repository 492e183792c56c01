package history

import "errors"

// ErrNothingToUndo is returned by Undo when the undo stack is empty.
var ErrNothingToUndo = errors.New("history: nothing to undo")

// ErrNothingToRedo is returned by Redo when the redo stack is empty.
var ErrNothingToRedo = errors.New("history: nothing to redo")
