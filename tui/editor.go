// Package tui is the interactive course editor screen. It renders the
// content tree and drives editor state machines; every mutation goes through
// the sync engine, and nothing on screen changes before the engine commits.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"yowa/coursesync"
	"yowa/editor"
	"yowa/validators"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionStyle  = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	savingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

const opTimeout = 30 * time.Second

// row is one selectable line: a section header or a lecture.
type row struct {
	sectionID string
	lectureID string // empty for section rows
}

// addTarget marks where the add form is anchored: the course (new section) or
// one section (new lecture).
type addTarget struct {
	active    bool
	sectionID string // empty means adding a section
	title     string
	duration  string
	saving    bool
}

// Model is the bubbletea model for the editor screen.
type Model struct {
	engine *coursesync.Engine

	machines map[string]*editor.Machine
	rows     []row
	cursor   int

	adding  addTarget
	confirm *row // pending destructive action awaiting y/n

	editField int // 0 = title, 1 = duration (lectures only)

	errMsg   string
	quitting bool
}

// New builds the editor over an engine that already has a course loaded.
func New(engine *coursesync.Engine) *Model {
	m := &Model{
		engine:   engine,
		machines: make(map[string]*editor.Machine),
	}
	m.rebuild()
	return m
}

func (m *Model) Init() tea.Cmd { return nil }

// machine lazily creates the state machine for a node, seeded from the tree.
func (m *Model) machine(id string, committed editor.Fields) *editor.Machine {
	if mm, ok := m.machines[id]; ok {
		return mm
	}
	mm := editor.New(committed)
	m.machines[id] = mm
	return mm
}

// rebuild re-derives the visible rows from the engine's tree. Machines for
// nodes that vanished are dropped; new nodes get fresh collapsed machines.
func (m *Model) rebuild() {
	t := m.engine.Tree()
	m.rows = m.rows[:0]
	if t == nil {
		return
	}

	// Collapse only hides rows; machines survive for every live node so an
	// in-progress draft or save is never lost behind a folded parent.
	seen := make(map[string]bool)
	for _, sec := range t.Sections() {
		seen[sec.ID] = true
		sm := m.machine(sec.ID, editor.Fields{Title: sec.Title})
		m.rows = append(m.rows, row{sectionID: sec.ID})
		for _, lec := range sec.Lectures {
			seen[lec.ID] = true
			m.machine(lec.ID, editor.Fields{Title: lec.Title, Duration: lec.Duration})
			if sm.Phase() != editor.Collapsed {
				m.rows = append(m.rows, row{sectionID: sec.ID, lectureID: lec.ID})
			}
		}
	}
	for id := range m.machines {
		if !seen[id] {
			delete(m.machines, id)
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Completion messages from engine commands.
type savedMsg struct {
	nodeID string
	fields editor.Fields
}
type addedMsg struct{}
type removedMsg struct{}
type failedMsg struct {
	nodeID string // empty for add forms
	err    error
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		if mm, ok := m.machines[msg.nodeID]; ok && mm.Phase() == editor.Saving {
			_ = mm.CommitSaved(msg.fields)
		}
		m.errMsg = ""
		m.rebuild()
		return m, nil

	case addedMsg:
		m.adding = addTarget{}
		m.errMsg = ""
		m.rebuild()
		return m, nil

	case removedMsg:
		m.errMsg = ""
		m.rebuild()
		return m, nil

	case failedMsg:
		if msg.nodeID != "" {
			if mm, ok := m.machines[msg.nodeID]; ok && mm.Phase() == editor.Saving {
				_ = mm.FailSave() // draft stays for retry
			}
		} else {
			m.adding.saving = false
		}
		m.errMsg = describeError(msg.err)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}
	if m.adding.active {
		return m.handleAddKey(msg)
	}
	if r, ok := m.selected(); ok {
		if mm := m.machines[m.nodeID(r)]; mm != nil && mm.Phase() == editor.Editing {
			return m.handleEditKey(msg, r, mm)
		}
	}
	return m.handleNormalKey(msg)
}

func (m *Model) selected() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) nodeID(r row) string {
	if r.lectureID != "" {
		return r.lectureID
	}
	return r.sectionID
}

func (m *Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.engine.Reset()
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case "enter", " ":
		if r, ok := m.selected(); ok && r.lectureID == "" {
			if mm := m.machines[r.sectionID]; mm != nil {
				_ = mm.Toggle()
				m.rebuild()
			}
		}

	case "e":
		if r, ok := m.selected(); ok {
			id := m.nodeID(r)
			if m.engine.IsBusy(id) {
				m.errMsg = "A save is already in flight for this item."
				break
			}
			if mm := m.machines[id]; mm != nil {
				if mm.Phase() == editor.Collapsed {
					_ = mm.Toggle()
					m.rebuild()
				}
				if err := mm.BeginEdit(); err == nil {
					m.editField = 0
					m.errMsg = ""
				}
			}
		}

	case "n":
		if r, ok := m.selected(); ok {
			m.adding = addTarget{active: true, sectionID: r.sectionID, duration: "10"}
			m.editField = 0
			m.errMsg = ""
		}

	case "N":
		m.adding = addTarget{active: true}
		m.editField = 0
		m.errMsg = ""

	case "d":
		if r, ok := m.selected(); ok {
			if m.engine.IsBusy(m.nodeID(r)) {
				m.errMsg = "A save is already in flight for this item."
				break
			}
			rr := r
			m.confirm = &rr
		}
	}
	return m, nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := *m.confirm
	switch msg.String() {
	case "y", "Y":
		m.confirm = nil
		if r.lectureID != "" {
			return m, m.removeLectureCmd(r.sectionID, r.lectureID)
		}
		return m, m.removeSectionCmd(r.sectionID)
	case "n", "N", "esc":
		m.confirm = nil
	}
	return m, nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg, r row, mm *editor.Machine) (tea.Model, tea.Cmd) {
	draft := mm.Draft()
	isLecture := r.lectureID != ""

	switch msg.String() {
	case "esc":
		_ = mm.Cancel()
		m.errMsg = ""
		return m, nil

	case "tab":
		if isLecture {
			m.editField = (m.editField + 1) % 2
		}
		return m, nil

	case "enter":
		var errs map[string]string
		if isLecture {
			errs = validators.LectureFields(draft.Title, draft.Duration)
		} else {
			errs = validators.SectionTitle(draft.Title)
		}
		if len(errs) > 0 {
			m.errMsg = firstError(errs)
			return m, nil
		}
		if err := mm.Submit(); err != nil {
			return m, nil
		}
		m.errMsg = ""
		if isLecture {
			return m, m.updateLectureCmd(r.sectionID, r.lectureID, draft)
		}
		return m, m.renameSectionCmd(r.sectionID, draft.Title)

	case "backspace":
		if m.editField == 0 {
			draft.Title = trimLast(draft.Title)
		} else {
			draft.Duration = draft.Duration / 10
		}
		_ = mm.SetDraft(draft)
		return m, nil
	}

	if msg.Type == tea.KeyRunes {
		text := string(msg.Runes)
		if m.editField == 0 {
			draft.Title += text
		} else if n, err := strconv.Atoi(text); err == nil {
			draft.Duration = draft.Duration*10 + n
		}
		_ = mm.SetDraft(draft)
	}
	return m, nil
}

func (m *Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adding.saving {
		return m, nil // form is locked while submitting
	}
	switch msg.String() {
	case "esc":
		m.adding = addTarget{}
		m.errMsg = ""
		return m, nil

	case "tab":
		if m.adding.sectionID != "" {
			m.editField = (m.editField + 1) % 2
		}
		return m, nil

	case "enter":
		title := m.adding.title
		if m.adding.sectionID == "" {
			if errs := validators.SectionTitle(title); len(errs) > 0 {
				m.errMsg = firstError(errs)
				return m, nil
			}
			m.adding.saving = true
			return m, m.addSectionCmd(title)
		}
		duration, _ := strconv.Atoi(m.adding.duration)
		if errs := validators.LectureFields(title, duration); len(errs) > 0 {
			m.errMsg = firstError(errs)
			return m, nil
		}
		m.adding.saving = true
		return m, m.addLectureCmd(m.adding.sectionID, title, duration)

	case "backspace":
		if m.editField == 0 {
			m.adding.title = trimLast(m.adding.title)
		} else {
			m.adding.duration = trimLast(m.adding.duration)
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes {
		if m.editField == 0 {
			m.adding.title += string(msg.Runes)
		} else {
			m.adding.duration += string(msg.Runes)
		}
	}
	return m, nil
}

// Engine commands. Each runs the blocking call off the UI loop and folds the
// outcome back in as a message.

func (m *Model) renameSectionCmd(sectionID, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		sec, err := m.engine.RenameSection(ctx, sectionID, title)
		if err != nil {
			return failedMsg{nodeID: sectionID, err: err}
		}
		return savedMsg{nodeID: sectionID, fields: editor.Fields{Title: sec.Title}}
	}
}

func (m *Model) updateLectureCmd(sectionID, lectureID string, draft editor.Fields) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		lec, err := m.engine.UpdateLecture(ctx, sectionID, lectureID, draft.Title, draft.Duration)
		if err != nil {
			return failedMsg{nodeID: lectureID, err: err}
		}
		return savedMsg{nodeID: lectureID, fields: editor.Fields{Title: lec.Title, Duration: lec.Duration}}
	}
}

func (m *Model) addSectionCmd(title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if _, err := m.engine.AddSection(ctx, title); err != nil {
			return failedMsg{err: err}
		}
		return addedMsg{}
	}
}

func (m *Model) addLectureCmd(sectionID, title string, duration int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if _, err := m.engine.AddLecture(ctx, sectionID, title, duration); err != nil {
			return failedMsg{err: err}
		}
		return addedMsg{}
	}
}

func (m *Model) removeSectionCmd(sectionID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := m.engine.RemoveSection(ctx, sectionID); err != nil {
			return failedMsg{nodeID: sectionID, err: err}
		}
		return removedMsg{}
	}
}

func (m *Model) removeLectureCmd(sectionID, lectureID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := m.engine.RemoveLecture(ctx, sectionID, lectureID); err != nil {
			return failedMsg{nodeID: lectureID, err: err}
		}
		return removedMsg{}
	}
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	t := m.engine.Tree()
	if t == nil {
		return dimStyle.Render("No course loaded.") + "\n"
	}
	course := t.Course()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Content: "+course.Title) + "\n\n")

	if len(m.rows) == 0 {
		b.WriteString(dimStyle.Render("This course has no sections yet.") + "\n")
	}

	for i, r := range m.rows {
		b.WriteString(m.renderRow(i, r))
	}

	if m.adding.active {
		b.WriteString("\n" + m.renderAddForm())
	}
	if m.confirm != nil {
		b.WriteString("\n" + errStyle.Render(m.confirmPrompt()) + "\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n" + errStyle.Render("Error: "+m.errMsg) + "\n")
	}

	b.WriteString(helpStyle.Render("↑/↓ move · enter toggle · e edit · n add lecture · N add section · d delete · q quit"))
	return b.String()
}

func (m *Model) renderRow(i int, r row) string {
	mm := m.machines[m.nodeID(r)]
	selected := i == m.cursor

	cursor := "  "
	if selected {
		cursor = selectedStyle.Render("> ")
	}

	if mm != nil && mm.Phase() == editor.Editing {
		return cursor + m.renderEditForm(r, mm)
	}

	var line string
	if r.lectureID == "" {
		sec, _ := m.engine.Tree().Section(r.sectionID)
		marker := "▸"
		if mm != nil && mm.Phase() != editor.Collapsed {
			marker = "▾"
		}
		line = sectionStyle.Render(fmt.Sprintf("%s %s", marker, sec.Title))
	} else {
		lec, _, _ := m.engine.Tree().Lecture(r.lectureID)
		line = fmt.Sprintf("    %s %s", lec.Title, dimStyle.Render(fmt.Sprintf("(%d min)", lec.Duration)))
	}

	if mm != nil && mm.Phase() == editor.Saving {
		line += " " + savingStyle.Render("saving…")
	}
	return line + "\n"
}

func (m *Model) renderEditForm(r row, mm *editor.Machine) string {
	draft := mm.Draft()
	title := fmt.Sprintf("[%s]", draft.Title)
	if m.editField == 0 {
		title = selectedStyle.Render(title)
	}
	if r.lectureID == "" {
		return fmt.Sprintf("%s  %s\n", title, dimStyle.Render("enter save · esc cancel"))
	}
	dur := fmt.Sprintf("[%d min]", draft.Duration)
	if m.editField == 1 {
		dur = selectedStyle.Render(dur)
	}
	return fmt.Sprintf("    %s %s  %s\n", title, dur, dimStyle.Render("tab field · enter save · esc cancel"))
}

func (m *Model) renderAddForm() string {
	label := "New section"
	if m.adding.sectionID != "" {
		label = "New lecture"
	}
	title := fmt.Sprintf("[%s]", m.adding.title)
	if m.editField == 0 {
		title = selectedStyle.Render(title)
	}
	line := fmt.Sprintf("%s: %s", sectionStyle.Render(label), title)
	if m.adding.sectionID != "" {
		dur := fmt.Sprintf("[%s min]", m.adding.duration)
		if m.editField == 1 {
			dur = selectedStyle.Render(dur)
		}
		line += " " + dur
	}
	if m.adding.saving {
		line += " " + savingStyle.Render("saving…")
	}
	return line + "  " + dimStyle.Render("enter add · esc cancel") + "\n"
}

func (m *Model) confirmPrompt() string {
	r := *m.confirm
	if r.lectureID != "" {
		lec, _, _ := m.engine.Tree().Lecture(r.lectureID)
		return fmt.Sprintf("Delete lecture %q? (y/n)", lec.Title)
	}
	sec, _ := m.engine.Tree().Section(r.sectionID)
	return fmt.Sprintf("Delete section %q and all of its lectures? (y/n)", sec.Title)
}

func trimLast(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(runes[:len(runes)-1])
}

func firstError(errs map[string]string) string {
	for _, v := range errs {
		return v
	}
	return ""
}

func describeError(err error) string {
	switch {
	case errors.Is(err, coursesync.ErrBusy):
		return "A save is already in flight for this item."
	default:
		return err.Error()
	}
}
