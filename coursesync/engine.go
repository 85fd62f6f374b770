// Package coursesync executes content mutations against the remote store and
// reconciles the local tree with server-confirmed results.
//
// Every operation follows Idle → Submitting → {Committed | Failed}. Nothing
// is applied locally before the server confirms: additions appear only after
// commit, carrying the server-assigned id, and a failed call leaves the tree
// exactly as it was. A second submission on a node already in flight is
// rejected with ErrBusy instead of issuing a second network call.
package coursesync

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"yowa/client"
	"yowa/models"
	"yowa/tree"
)

var (
	// ErrBusy rejects a submission on a node that is already Submitting.
	ErrBusy = errors.New("operation already in flight for this node")
	// ErrDeclined means the confirmation step vetoed a destructive operation.
	ErrDeclined = errors.New("confirmation declined")
	// ErrNoCourse means no course is loaded.
	ErrNoCourse = errors.New("no course loaded")
	// ErrNodeNotFound means the referenced node is gone from the loaded
	// course. Callers should refetch rather than retry.
	ErrNodeNotFound = errors.New("node not found in the loaded course")
)

// ConfirmFunc gates destructive operations. It receives a human prompt and
// returns whether to proceed. The UI decides the modality.
type ConfirmFunc func(prompt string) bool

// Engine drives one course's tree against the remote store.
type Engine struct {
	mu      sync.Mutex
	client  *client.Client
	log     zerolog.Logger
	confirm ConfirmFunc

	tree  *tree.Tree
	busy  map[string]bool
	epoch uint64
}

// New builds an engine. confirm may be nil, in which case destructive
// operations proceed unprompted (scripted use).
func New(c *client.Client, confirm ConfirmFunc, log zerolog.Logger) *Engine {
	return &Engine{
		client:  c,
		confirm: confirm,
		log:     log,
		busy:    make(map[string]bool),
	}
}

// Busy keys. Edits lock the node itself; additions lock the container so two
// concurrent adds cannot race on one parent.
const keyCourse = "course"

func sectionsKey() string { return "sections" }

func lecturesKey(sectionID string) string { return "lectures:" + sectionID }

// begin marks key Submitting. The returned epoch must match at completion
// time for the result to be applied.
func (e *Engine) begin(key string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy[key] {
		return 0, ErrBusy
	}
	e.busy[key] = true
	return e.epoch, nil
}

func (e *Engine) finish(key string) {
	e.mu.Lock()
	delete(e.busy, key)
	e.mu.Unlock()
}

// apply runs fn only if the engine has not been reset since the operation
// began. A completion arriving after the view was dismissed is discarded.
func (e *Engine) apply(epoch uint64, fn func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if epoch != e.epoch {
		e.log.Debug().Msg("discarding completion from dismissed view")
		return false
	}
	fn()
	return true
}

// IsBusy reports whether a submission is in flight for the node id.
func (e *Engine) IsBusy(nodeID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy[nodeID]
}

// Reset dismisses the current view: the tree is dropped and completions from
// operations still in flight will be discarded.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.epoch++
	e.tree = nil
	e.busy = make(map[string]bool)
}

// Tree returns the current tree, nil before LoadCourse.
func (e *Engine) Tree() *tree.Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree
}

func (e *Engine) currentTree() (*tree.Tree, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree == nil {
		return nil, ErrNoCourse
	}
	return e.tree, nil
}

// LoadCourse fetches a course and seeds the tree from it.
func (e *Engine) LoadCourse(ctx context.Context, id string) (models.Course, error) {
	epoch, err := e.begin(keyCourse)
	if err != nil {
		return models.Course{}, err
	}
	defer e.finish(keyCourse)

	course, err := e.client.GetCourse(ctx, id)
	if err != nil {
		return models.Course{}, err
	}

	t := tree.NewFromCourse(*course)
	e.apply(epoch, func() { e.tree = t })
	return t.Course(), nil
}

// refresh discards the local tree and refetches the whole course. Used after
// structurally significant changes where per-node patching is not worth the
// drift risk.
func (e *Engine) refresh(ctx context.Context, epoch uint64) error {
	t, err := e.currentTree()
	if err != nil {
		return err
	}
	course, err := e.client.GetCourse(ctx, t.CourseID())
	if err != nil {
		return err
	}
	fresh := tree.NewFromCourse(*course)
	e.apply(epoch, func() { e.tree = fresh })
	return nil
}

// AddSection creates a section and appends the server-confirmed entity. No
// placeholder exists before commit.
func (e *Engine) AddSection(ctx context.Context, title string) (models.Section, error) {
	t, err := e.currentTree()
	if err != nil {
		return models.Section{}, err
	}
	epoch, err := e.begin(sectionsKey())
	if err != nil {
		return models.Section{}, err
	}
	defer e.finish(sectionsKey())

	sec, err := e.client.AddSection(ctx, t.CourseID(), title)
	if err != nil {
		return models.Section{}, err
	}
	e.apply(epoch, func() { t.AppendSection(*sec) })
	return *sec, nil
}

// RenameSection retitles a section, folding in the canonical entity.
func (e *Engine) RenameSection(ctx context.Context, sectionID, title string) (models.Section, error) {
	t, err := e.currentTree()
	if err != nil {
		return models.Section{}, err
	}
	epoch, err := e.begin(sectionID)
	if err != nil {
		return models.Section{}, err
	}
	defer e.finish(sectionID)

	sec, err := e.client.RenameSection(ctx, t.CourseID(), sectionID, title)
	if err != nil {
		return models.Section{}, err
	}
	e.apply(epoch, func() { t.ReplaceSection(*sec) })
	return *sec, nil
}

// RemoveSection deletes a section and its lectures, then refetches the whole
// course for a guaranteed-consistent view.
func (e *Engine) RemoveSection(ctx context.Context, sectionID string) error {
	t, err := e.currentTree()
	if err != nil {
		return err
	}
	sec, ok := t.Section(sectionID)
	if !ok {
		return ErrNodeNotFound
	}
	if e.confirm != nil && !e.confirm("Delete section \""+sec.Title+"\" and all of its lectures?") {
		return ErrDeclined
	}

	epoch, err := e.begin(sectionID)
	if err != nil {
		return err
	}
	defer e.finish(sectionID)

	if err := e.client.DeleteSection(ctx, t.CourseID(), sectionID); err != nil {
		return err
	}
	e.apply(epoch, func() { t.RemoveSection(sectionID) })
	return e.refresh(ctx, epoch)
}

// AddLecture creates a lecture and appends the server-confirmed entity with
// its server-assigned id.
func (e *Engine) AddLecture(ctx context.Context, sectionID, title string, duration int) (models.Lecture, error) {
	t, err := e.currentTree()
	if err != nil {
		return models.Lecture{}, err
	}
	key := lecturesKey(sectionID)
	epoch, err := e.begin(key)
	if err != nil {
		return models.Lecture{}, err
	}
	defer e.finish(key)

	lec, err := e.client.AddLecture(ctx, t.CourseID(), sectionID, title, duration)
	if err != nil {
		return models.Lecture{}, err
	}
	e.apply(epoch, func() { t.AppendLecture(sectionID, *lec) })
	return *lec, nil
}

// UpdateLecture edits a lecture, folding in the canonical entity.
func (e *Engine) UpdateLecture(ctx context.Context, sectionID, lectureID, title string, duration int) (models.Lecture, error) {
	t, err := e.currentTree()
	if err != nil {
		return models.Lecture{}, err
	}
	epoch, err := e.begin(lectureID)
	if err != nil {
		return models.Lecture{}, err
	}
	defer e.finish(lectureID)

	lec, err := e.client.UpdateLecture(ctx, t.CourseID(), sectionID, lectureID, title, duration)
	if err != nil {
		return models.Lecture{}, err
	}
	e.apply(epoch, func() { t.ReplaceLecture(*lec) })
	return *lec, nil
}

// RemoveLecture deletes one lecture after confirmation.
func (e *Engine) RemoveLecture(ctx context.Context, sectionID, lectureID string) error {
	t, err := e.currentTree()
	if err != nil {
		return err
	}
	lec, _, ok := t.Lecture(lectureID)
	if !ok {
		return ErrNodeNotFound
	}
	if e.confirm != nil && !e.confirm("Delete lecture \""+lec.Title+"\"?") {
		return ErrDeclined
	}

	epoch, err := e.begin(lectureID)
	if err != nil {
		return err
	}
	defer e.finish(lectureID)

	if err := e.client.DeleteLecture(ctx, t.CourseID(), sectionID, lectureID); err != nil {
		return err
	}
	e.apply(epoch, func() { t.RemoveLecture(lectureID) })
	return nil
}

// UpdateCourse edits the loaded course's metadata and refetches it.
func (e *Engine) UpdateCourse(ctx context.Context, in client.CourseInput) (models.Course, error) {
	t, err := e.currentTree()
	if err != nil {
		return models.Course{}, err
	}
	epoch, err := e.begin(keyCourse)
	if err != nil {
		return models.Course{}, err
	}
	defer e.finish(keyCourse)

	if _, err := e.client.UpdateCourse(ctx, t.CourseID(), in); err != nil {
		return models.Course{}, err
	}
	if err := e.refresh(ctx, epoch); err != nil {
		return models.Course{}, err
	}
	if fresh := e.Tree(); fresh != nil {
		return fresh.Course(), nil
	}
	return models.Course{}, ErrNoCourse
}

// TogglePublish flips the loaded course's publish state and refetches it.
func (e *Engine) TogglePublish(ctx context.Context) error {
	t, err := e.currentTree()
	if err != nil {
		return err
	}
	epoch, err := e.begin(keyCourse)
	if err != nil {
		return err
	}
	defer e.finish(keyCourse)

	if err := e.client.TogglePublish(ctx, t.CourseID()); err != nil {
		return err
	}
	return e.refresh(ctx, epoch)
}

// DeleteCourse removes the loaded course entirely after confirmation.
func (e *Engine) DeleteCourse(ctx context.Context) error {
	t, err := e.currentTree()
	if err != nil {
		return err
	}
	if e.confirm != nil && !e.confirm("Delete course \""+t.Course().Title+"\" and all of its content?") {
		return ErrDeclined
	}

	epoch, err := e.begin(keyCourse)
	if err != nil {
		return err
	}
	defer e.finish(keyCourse)

	if err := e.client.DeleteCourse(ctx, t.CourseID()); err != nil {
		return err
	}
	e.apply(epoch, func() { e.tree = nil })
	return nil
}
