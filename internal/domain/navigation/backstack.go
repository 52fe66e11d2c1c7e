package navigation

import (
	"slices"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/pathconfig"
	"github.com/GriffinCanCode/webshell/backend/internal/domain/visit"
)

// Kind is how a destination is displayed.
type Kind int

const (
	// KindScreen is a full screen.
	KindScreen Kind = iota
	// KindOverlay is a transient sheet or dialog over the current screen.
	KindOverlay
)

func (k Kind) String() string {
	if k == KindOverlay {
		return "overlay"
	}
	return "screen"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Entry is one screen on the back stack.
type Entry struct {
	ID         int                            `json:"id"`
	Location   string                         `json:"location"`
	Kind       Kind                           `json:"kind"`
	Context    pathconfig.PresentationContext `json:"context"`
	Options    visit.Options                  `json:"options"`
	URI        string                         `json:"uri"`
	Properties pathconfig.Properties          `json:"properties"`
}

// IsModal reports whether the entry lives in the modal context.
func (e Entry) IsModal() bool {
	return e.Context == pathconfig.ContextModal
}

// Backstack is an ordered stack of entries. The first entry is the start
// destination and is only ever replaced, never popped.
type Backstack struct {
	entries []Entry
	nextID  int
}

// NewBackstack returns an empty stack.
func NewBackstack() *Backstack {
	return &Backstack{nextID: 1}
}

// Len returns the number of entries.
func (b *Backstack) Len() int {
	return len(b.entries)
}

// Current returns the top entry.
func (b *Backstack) Current() (Entry, bool) {
	if len(b.entries) == 0 {
		return Entry{}, false
	}
	return b.entries[len(b.entries)-1], true
}

// Previous returns the entry beneath the top.
func (b *Backstack) Previous() (Entry, bool) {
	if len(b.entries) < 2 {
		return Entry{}, false
	}
	return b.entries[len(b.entries)-2], true
}

// IsAtStart reports whether the top entry is the start destination.
func (b *Backstack) IsAtStart() bool {
	return len(b.entries) <= 1
}

// Push adds e on top, assigning its ID.
func (b *Backstack) Push(e Entry) Entry {
	e.ID = b.nextID
	b.nextID++
	b.entries = append(b.entries, e)
	return e
}

// Pop removes the top entry unless it is the start destination.
func (b *Backstack) Pop() (Entry, bool) {
	if b.IsAtStart() {
		return Entry{}, false
	}
	top := b.entries[len(b.entries)-1]
	b.entries = b.entries[:len(b.entries)-1]
	return top, true
}

// PopToStart removes everything above the start destination, top first.
func (b *Backstack) PopToStart() []Entry {
	var popped []Entry
	for {
		e, ok := b.Pop()
		if !ok {
			return popped
		}
		popped = append(popped, e)
	}
}

// ReplaceRoot clears the stack and makes e the new start destination.
func (b *Backstack) ReplaceRoot(e Entry) (Entry, []Entry) {
	popped := slices.Clone(b.entries)
	slices.Reverse(popped)
	b.entries = b.entries[:0]
	return b.Push(e), popped
}

// PopModal removes the contiguous modal entries on top of the stack.
func (b *Backstack) PopModal() []Entry {
	var popped []Entry
	for {
		top, ok := b.Current()
		if !ok || !top.IsModal() {
			return popped
		}
		e, ok := b.Pop()
		if !ok {
			return popped
		}
		popped = append(popped, e)
	}
}

// Entries returns a copy of the stack, bottom first.
func (b *Backstack) Entries() []Entry {
	return slices.Clone(b.entries)
}
