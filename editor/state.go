// Package editor is the per-node state machine behind the section/lecture
// editing affordances. It knows nothing about rendering or the network; the
// sync engine is invoked by whoever drives the machine.
package editor

import "fmt"

// Phase is the node's current editing phase.
type Phase int

const (
	Collapsed Phase = iota
	Expanded
	Editing // title/fields open for input
	Saving  // submitted, waiting on the sync engine
)

func (p Phase) String() string {
	switch p {
	case Collapsed:
		return "collapsed"
	case Expanded:
		return "expanded"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	}
	return "unknown"
}

// Fields are the editable values of a node. Duration is ignored for sections.
type Fields struct {
	Title    string
	Duration int
}

// Machine tracks one node. Committed holds the last server-confirmed values;
// Draft holds whatever the user has typed and survives a failed save.
type Machine struct {
	phase     Phase
	committed Fields
	draft     Fields
}

// New starts a machine in Collapsed with the given committed values.
func New(committed Fields) *Machine {
	return &Machine{phase: Collapsed, committed: committed, draft: committed}
}

func (m *Machine) Phase() Phase      { return m.phase }
func (m *Machine) Committed() Fields { return m.committed }
func (m *Machine) Draft() Fields     { return m.draft }

func (m *Machine) invalid(action string) error {
	return fmt.Errorf("cannot %s while %s", action, m.phase)
}

// Toggle flips Collapsed and Expanded. It is a no-op guard elsewhere: while
// editing or saving the disclosure control is disabled.
func (m *Machine) Toggle() error {
	switch m.phase {
	case Collapsed:
		m.phase = Expanded
	case Expanded:
		m.phase = Collapsed
	default:
		return m.invalid("toggle")
	}
	return nil
}

// BeginEdit opens the fields for input, seeding the draft from the last
// committed values.
func (m *Machine) BeginEdit() error {
	if m.phase != Expanded {
		return m.invalid("edit")
	}
	m.draft = m.committed
	m.phase = Editing
	return nil
}

// SetDraft records the user's current input.
func (m *Machine) SetDraft(f Fields) error {
	if m.phase != Editing {
		return m.invalid("type")
	}
	m.draft = f
	return nil
}

// Submit hands the draft to the caller for syncing. The machine stays in
// Saving until CommitSaved or FailSave.
func (m *Machine) Submit() error {
	if m.phase != Editing {
		return m.invalid("submit")
	}
	m.phase = Saving
	return nil
}

// CommitSaved applies the server-confirmed values and closes the editor.
func (m *Machine) CommitSaved(canonical Fields) error {
	if m.phase != Saving {
		return m.invalid("commit")
	}
	m.committed = canonical
	m.draft = canonical
	m.phase = Expanded
	return nil
}

// FailSave returns to Editing with the draft intact, so the user's last
// input is not lost.
func (m *Machine) FailSave() error {
	if m.phase != Saving {
		return m.invalid("fail")
	}
	m.phase = Editing
	return nil
}

// Cancel discards the draft and shows the last committed values again.
func (m *Machine) Cancel() error {
	if m.phase != Editing {
		return m.invalid("cancel")
	}
	m.draft = m.committed
	m.phase = Expanded
	return nil
}
