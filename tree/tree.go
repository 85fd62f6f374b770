// Package tree holds the local cache of one course's section/lecture
// hierarchy. Nodes live in an arena addressed by id with parent and order
// index maps, so a single-node update never rebuilds ancestor slices.
//
// The tree is mutated only by the sync engine's commit paths and by
// whole-tree refresh. Readers get copies that are either fully pre-mutation
// or fully post-commit, never a half-applied node.
package tree

import (
	"sort"
	"sync"

	"yowa/models"
)

// Tree is the arena. All exported methods are safe for concurrent use.
type Tree struct {
	mu sync.RWMutex

	course models.Course // scalar course fields; Sections stays nil here

	sections map[string]*models.Section // by section id, Lectures stays nil
	lectures map[string]*models.Lecture // by lecture id
	parent   map[string]string          // lecture id -> section id

	sectionOrder []string            // course-level rendering order
	lectureOrder map[string][]string // section id -> lecture rendering order
}

// NewFromCourse seeds a tree from a server-fetched course. Section and
// lecture order fields are normalized to their array positions on insertion.
func NewFromCourse(c models.Course) *Tree {
	t := &Tree{
		sections:     make(map[string]*models.Section),
		lectures:     make(map[string]*models.Lecture),
		parent:       make(map[string]string),
		lectureOrder: make(map[string][]string),
	}

	sections := make([]models.Section, len(c.Sections))
	copy(sections, c.Sections)
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Order < sections[j].Order })

	for i, s := range sections {
		lectures := make([]models.Lecture, len(s.Lectures))
		copy(lectures, s.Lectures)
		sort.SliceStable(lectures, func(a, b int) bool { return lectures[a].Order < lectures[b].Order })

		sec := s
		sec.Order = i
		sec.Lectures = nil
		t.sections[sec.ID] = &sec
		t.sectionOrder = append(t.sectionOrder, sec.ID)

		for j, l := range lectures {
			lec := l
			lec.Order = j
			t.lectures[lec.ID] = &lec
			t.parent[lec.ID] = sec.ID
			t.lectureOrder[sec.ID] = append(t.lectureOrder[sec.ID], lec.ID)
		}
	}

	t.course = c
	t.course.Sections = nil
	return t
}

// CourseID returns the id of the cached course.
func (t *Tree) CourseID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.course.ID
}

// Course snapshots the whole tree back into a course value. The snapshot is
// detached; mutating it does not touch the tree.
func (t *Tree) Course() models.Course {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c := t.course
	c.Sections = t.sectionsLocked()
	return c
}

// Sections returns ordered section copies with their ordered lectures.
func (t *Tree) Sections() []models.Section {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sectionsLocked()
}

func (t *Tree) sectionsLocked() []models.Section {
	out := make([]models.Section, 0, len(t.sectionOrder))
	for _, sid := range t.sectionOrder {
		s := *t.sections[sid]
		s.Lectures = make([]models.Lecture, 0, len(t.lectureOrder[sid]))
		for _, lid := range t.lectureOrder[sid] {
			s.Lectures = append(s.Lectures, *t.lectures[lid])
		}
		out = append(out, s)
	}
	return out
}

// Section returns a copy of one section with its lectures.
func (t *Tree) Section(id string) (models.Section, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	sec, ok := t.sections[id]
	if !ok {
		return models.Section{}, false
	}
	s := *sec
	s.Lectures = make([]models.Lecture, 0, len(t.lectureOrder[id]))
	for _, lid := range t.lectureOrder[id] {
		s.Lectures = append(s.Lectures, *t.lectures[lid])
	}
	return s, true
}

// Lecture returns a copy of one lecture and its parent section id.
func (t *Tree) Lecture(id string) (models.Lecture, string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	lec, ok := t.lectures[id]
	if !ok {
		return models.Lecture{}, "", false
	}
	return *lec, t.parent[id], true
}

// AppendSection adds a server-confirmed section at the end of the course.
func (t *Tree) AppendSection(s models.Section) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sec := s
	sec.Order = len(t.sectionOrder)
	lectures := sec.Lectures
	sec.Lectures = nil

	t.sections[sec.ID] = &sec
	t.sectionOrder = append(t.sectionOrder, sec.ID)
	for j, l := range lectures {
		lec := l
		lec.Order = j
		t.lectures[lec.ID] = &lec
		t.parent[lec.ID] = sec.ID
		t.lectureOrder[sec.ID] = append(t.lectureOrder[sec.ID], lec.ID)
	}
}

// ReplaceSection swaps in the canonical scalar fields of a section. Children
// are untouched; structural changes go through the append/remove paths.
func (t *Tree) ReplaceSection(s models.Section) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.sections[s.ID]
	if !ok {
		return false
	}
	order := cur.Order // position in the tree stays authoritative
	sec := s
	sec.Order = order
	sec.Lectures = nil
	t.sections[s.ID] = &sec
	return true
}

// RemoveSection deletes a section and all of its lectures atomically.
func (t *Tree) RemoveSection(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.sections[id]; !ok {
		return false
	}
	for _, lid := range t.lectureOrder[id] {
		delete(t.lectures, lid)
		delete(t.parent, lid)
	}
	delete(t.lectureOrder, id)
	delete(t.sections, id)

	for i, sid := range t.sectionOrder {
		if sid == id {
			t.sectionOrder = append(t.sectionOrder[:i], t.sectionOrder[i+1:]...)
			break
		}
	}
	// renumber remaining sections to match position
	for i, sid := range t.sectionOrder {
		t.sections[sid].Order = i
	}
	return true
}

// AppendLecture adds a server-confirmed lecture at the end of its section.
func (t *Tree) AppendLecture(sectionID string, l models.Lecture) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.sections[sectionID]; !ok {
		return false
	}
	lec := l
	lec.Order = len(t.lectureOrder[sectionID])
	t.lectures[lec.ID] = &lec
	t.parent[lec.ID] = sectionID
	t.lectureOrder[sectionID] = append(t.lectureOrder[sectionID], lec.ID)
	return true
}

// ReplaceLecture swaps in the canonical fields of a lecture in place.
func (t *Tree) ReplaceLecture(l models.Lecture) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.lectures[l.ID]
	if !ok {
		return false
	}
	lec := l
	lec.Order = cur.Order
	t.lectures[l.ID] = &lec
	return true
}

// RemoveLecture deletes one lecture.
func (t *Tree) RemoveLecture(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	sid, ok := t.parent[id]
	if !ok {
		return false
	}
	delete(t.lectures, id)
	delete(t.parent, id)

	order := t.lectureOrder[sid]
	for i, lid := range order {
		if lid == id {
			t.lectureOrder[sid] = append(order[:i], order[i+1:]...)
			break
		}
	}
	for i, lid := range t.lectureOrder[sid] {
		t.lectures[lid].Order = i
	}
	return true
}
