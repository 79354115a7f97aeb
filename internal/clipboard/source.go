package clipboard

import (
	"github.com/brencon/clipsy/internal/classify"
)

// Source is the external clipboard this daemon observes. Implementations
// expose a change counter that moves on every clipboard write, our own
// restore writes included, plus verbatim payload access.
type Source interface {
	// ChangeCount reports the current value of the change counter. The
	// counter only ever increases while the source is alive.
	ChangeCount() (uint64, error)
	// Read returns whatever the clipboard currently holds.
	Read() (classify.Payload, error)
	// Write places a payload onto the clipboard.
	Write(classify.Payload) error
}
