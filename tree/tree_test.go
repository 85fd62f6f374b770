package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yowa/models"
)

func sampleCourse() models.Course {
	return models.Course{
		ID:    "c1",
		Title: "Go from scratch",
		Sections: []models.Section{
			{
				ID: "s2", Title: "Advanced", Order: 5,
				Lectures: []models.Lecture{
					{ID: "l3", Title: "Generics", Duration: 20, Order: 9},
				},
			},
			{
				ID: "s1", Title: "Intro", Order: 1,
				Lectures: []models.Lecture{
					{ID: "l2", Title: "Setup", Duration: 10, Order: 7},
					{ID: "l1", Title: "Welcome", Duration: 5, Order: 2},
				},
			},
		},
	}
}

func TestSeedNormalizesOrder(t *testing.T) {
	tr := NewFromCourse(sampleCourse())

	sections := tr.Sections()
	require.Len(t, sections, 2)

	// Sorted by the incoming order field, then renumbered by position.
	assert.Equal(t, "s1", sections[0].ID)
	assert.Equal(t, 0, sections[0].Order)
	assert.Equal(t, "s2", sections[1].ID)
	assert.Equal(t, 1, sections[1].Order)

	require.Len(t, sections[0].Lectures, 2)
	assert.Equal(t, "l1", sections[0].Lectures[0].ID)
	assert.Equal(t, 0, sections[0].Lectures[0].Order)
	assert.Equal(t, "l2", sections[0].Lectures[1].ID)
	assert.Equal(t, 1, sections[0].Lectures[1].Order)
}

func TestSnapshotIsDetached(t *testing.T) {
	tr := NewFromCourse(sampleCourse())

	snap := tr.Course()
	snap.Sections[0].Title = "mutated"
	snap.Sections[0].Lectures[0].Title = "mutated"

	sections := tr.Sections()
	assert.Equal(t, "Intro", sections[0].Title)
	assert.Equal(t, "Welcome", sections[0].Lectures[0].Title)
}

func TestAppendSectionGoesLast(t *testing.T) {
	tr := NewFromCourse(sampleCourse())

	tr.AppendSection(models.Section{ID: "s3", Title: "Outro", Order: 99})

	sections := tr.Sections()
	require.Len(t, sections, 3)
	assert.Equal(t, "s3", sections[2].ID)
	assert.Equal(t, 2, sections[2].Order)
}

func TestAppendLecturePreservesSiblings(t *testing.T) {
	tr := NewFromCourse(sampleCourse())

	ok := tr.AppendLecture("s1", models.Lecture{ID: "l4", Title: "Tooling", Duration: 15})
	require.True(t, ok)

	sec, ok := tr.Section("s1")
	require.True(t, ok)
	require.Len(t, sec.Lectures, 3)
	assert.Equal(t, []string{"l1", "l2", "l4"}, []string{sec.Lectures[0].ID, sec.Lectures[1].ID, sec.Lectures[2].ID})
	assert.Equal(t, 2, sec.Lectures[2].Order)

	assert.False(t, tr.AppendLecture("missing", models.Lecture{ID: "l9"}))
}

func TestReplaceSectionKeepsPositionAndChildren(t *testing.T) {
	tr := NewFromCourse(sampleCourse())

	ok := tr.ReplaceSection(models.Section{ID: "s1", Title: "Introduction", Order: 42})
	require.True(t, ok)

	sec, _ := tr.Section("s1")
	assert.Equal(t, "Introduction", sec.Title)
	assert.Equal(t, 0, sec.Order, "tree position stays authoritative")
	assert.Len(t, sec.Lectures, 2, "children untouched")
}

func TestRemoveSectionCascades(t *testing.T) {
	tr := NewFromCourse(sampleCourse())

	require.True(t, tr.RemoveSection("s1"))

	_, ok := tr.Section("s1")
	assert.False(t, ok)
	_, _, ok = tr.Lecture("l1")
	assert.False(t, ok, "no orphaned lecture remains reachable")
	_, _, ok = tr.Lecture("l2")
	assert.False(t, ok)

	sections := tr.Sections()
	require.Len(t, sections, 1)
	assert.Equal(t, 0, sections[0].Order, "remaining sections renumbered")
}

func TestRemoveLectureRenumbers(t *testing.T) {
	tr := NewFromCourse(sampleCourse())

	require.True(t, tr.RemoveLecture("l1"))

	sec, _ := tr.Section("s1")
	require.Len(t, sec.Lectures, 1)
	assert.Equal(t, "l2", sec.Lectures[0].ID)
	assert.Equal(t, 0, sec.Lectures[0].Order)
}

func TestReplaceLectureKeepsOrder(t *testing.T) {
	tr := NewFromCourse(sampleCourse())

	require.True(t, tr.ReplaceLecture(models.Lecture{ID: "l2", Title: "Setup v2", Duration: 12, Order: 50}))

	lec, parent, ok := tr.Lecture("l2")
	require.True(t, ok)
	assert.Equal(t, "s1", parent)
	assert.Equal(t, "Setup v2", lec.Title)
	assert.Equal(t, 12, lec.Duration)
	assert.Equal(t, 1, lec.Order)
}
