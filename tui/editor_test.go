package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yowa/client"
	"yowa/coursesync"
	"yowa/editor"
	"yowa/models"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	course := models.Course{
		ID:    "c1",
		Title: "Go from scratch",
		Sections: []models.Section{
			{
				ID: "s1", Title: "Intro",
				Lectures: []models.Lecture{
					{ID: "l1", Title: "Welcome", Duration: 5},
					{ID: "l2", Title: "Setup", Duration: 10, Order: 1},
				},
			},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(course)
	}))
	t.Cleanup(srv.Close)

	api := client.New(srv.URL, 2*time.Second, func() string { return "tok" }, zerolog.Nop())
	eng := coursesync.New(api, nil, zerolog.Nop())
	_, err := eng.LoadCourse(context.Background(), "c1")
	require.NoError(t, err)
	return New(eng)
}

func press(m *Model, key tea.KeyType) {
	_, _ = m.Update(tea.KeyMsg{Type: key})
}

func typeKeys(m *Model, s string) {
	for _, r := range s {
		_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestExpandShowsLectureRows(t *testing.T) {
	m := newTestModel(t)
	require.Len(t, m.rows, 1, "collapsed course shows section rows only")

	press(m, tea.KeyEnter)
	require.Len(t, m.rows, 3)
	assert.Equal(t, "l1", m.rows[1].lectureID)
	assert.Equal(t, "l2", m.rows[2].lectureID)
}

func TestAddFormStartsOnTitleField(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.KeyEnter) // expand
	typeKeys(m, "j")       // onto the first lecture
	typeKeys(m, "e")       // open its editor
	press(m, tea.KeyTab)   // move focus to the duration field
	require.Equal(t, 1, m.editField)
	press(m, tea.KeyEsc) // cancel the edit

	// The add-section form must open with the title field focused, whatever
	// field a previous edit left behind.
	typeKeys(m, "N")
	require.True(t, m.adding.active)
	assert.Equal(t, 0, m.editField)
	typeKeys(m, "Outro")
	assert.Equal(t, "Outro", m.adding.title)
	assert.Empty(t, m.adding.duration)
	press(m, tea.KeyEsc)

	// Same for the add-lecture form.
	typeKeys(m, "e")
	press(m, tea.KeyTab)
	press(m, tea.KeyEsc)
	typeKeys(m, "n")
	require.True(t, m.adding.active)
	assert.Equal(t, "s1", m.adding.sectionID)
	assert.Equal(t, 0, m.editField)
	typeKeys(m, "Recap")
	assert.Equal(t, "Recap", m.adding.title)
}

func TestCollapseKeepsLectureMachines(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.KeyEnter) // expand

	mm := m.machines["l1"]
	require.NotNil(t, mm)
	require.NoError(t, mm.Toggle())
	require.NoError(t, mm.BeginEdit())
	require.NoError(t, mm.SetDraft(editor.Fields{Title: "Welcome aboard", Duration: 5}))

	press(m, tea.KeyEnter) // collapse the parent section
	require.Len(t, m.rows, 1, "lecture rows are hidden")

	// The machine and its draft survive behind the folded parent.
	assert.Same(t, mm, m.machines["l1"])
	assert.Equal(t, editor.Editing, mm.Phase())
	assert.Equal(t, "Welcome aboard", mm.Draft().Title)

	press(m, tea.KeyEnter) // re-expand
	require.Len(t, m.rows, 3)
	assert.Same(t, mm, m.machines["l1"])
}

func TestSaveCompletionLandsAfterCollapse(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.KeyEnter)

	mm := m.machines["l2"]
	require.NotNil(t, mm)
	require.NoError(t, mm.Toggle())
	require.NoError(t, mm.BeginEdit())
	require.NoError(t, mm.SetDraft(editor.Fields{Title: "Setup v2", Duration: 12}))
	require.NoError(t, mm.Submit())

	press(m, tea.KeyEnter) // collapse while the save is in flight

	canonical := editor.Fields{Title: "Setup v2", Duration: 12}
	_, _ = m.Update(savedMsg{nodeID: "l2", fields: canonical})

	assert.Equal(t, editor.Expanded, mm.Phase(), "completion commits even while hidden")
	assert.Equal(t, canonical, mm.Committed())
}
