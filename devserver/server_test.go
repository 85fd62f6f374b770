package devserver

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yowa/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	s, err := New(Config{
		DBName:    filepath.Join(dir, "test.db"),
		JWTKey:    "test-secret",
		SaltRound: 4,
		UploadDir: dir,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if s.cron != nil {
			s.cron.Stop()
		}
	})
	return s
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// registerInstructor registers an account, promotes it directly in the store,
// and logs back in so the fresh token carries the Instructor role.
func registerInstructor(t *testing.T, s *Server, email string) (string, models.User) {
	t.Helper()
	resp := doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ada", "email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, s.db.Model(&User{}).Where("email = ?", email).
		Update("role", string(models.RoleInstructor)).Error)

	resp = doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	auth := decode[models.AuthResponse](t, resp)
	require.Equal(t, models.RoleInstructor, auth.User.Role)
	return auth.Token, auth.User
}

func createCourse(t *testing.T, s *Server, token, title string) models.Course {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", title))
	require.NoError(t, mw.WriteField("description", "Learn Go properly."))
	require.NoError(t, mw.WriteField("price", "49.99"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/courses", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[models.Course](t, resp)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	auth := decode[models.AuthResponse](t, resp)
	assert.NotEmpty(t, auth.Token)
	assert.NotEmpty(t, auth.User.ID)
	assert.Equal(t, models.RoleStudent, auth.User.Role)

	// Duplicate email is a conflict.
	resp = doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "Email is already registered!", body["message"])

	resp = doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCourseAuthoringFlow(t *testing.T) {
	s := newTestServer(t)
	token, user := registerInstructor(t, s, "ada@example.com")

	course := createCourse(t, s, token, "Go from scratch")
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, user.ID, course.Instructor.ID)
	assert.False(t, course.IsPublished)

	// Sections append at the end with positional order.
	resp := doJSON(t, s, http.MethodPost, "/api/courses/"+course.ID+"/sections", token,
		map[string]string{"title": "Intro"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	intro := decode[models.Section](t, resp)
	assert.Equal(t, 0, intro.Order)

	resp = doJSON(t, s, http.MethodPost, "/api/courses/"+course.ID+"/sections", token,
		map[string]string{"title": "Advanced"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	advanced := decode[models.Section](t, resp)
	assert.Equal(t, 1, advanced.Order)

	resp = doJSON(t, s, http.MethodPost, "/api/courses/"+course.ID+"/sections/"+intro.ID+"/lectures", token,
		map[string]any{"title": "Welcome", "duration": 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	welcome := decode[models.Lecture](t, resp)
	assert.NotEmpty(t, welcome.ID)
	assert.Equal(t, 0, welcome.Order)

	resp = doJSON(t, s, http.MethodPost, "/api/courses/"+course.ID+"/sections/"+intro.ID+"/lectures", token,
		map[string]any{"title": "Setup", "duration": 10})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	setup := decode[models.Lecture](t, resp)
	assert.Equal(t, 1, setup.Order)

	// Full tree comes back ordered.
	resp = doJSON(t, s, http.MethodGet, "/api/courses/"+course.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[models.Course](t, resp)
	require.Len(t, got.Sections, 2)
	assert.Equal(t, intro.ID, got.Sections[0].ID)
	require.Len(t, got.Sections[0].Lectures, 2)
	assert.Equal(t, "Welcome", got.Sections[0].Lectures[0].Title)
	assert.Equal(t, "Setup", got.Sections[0].Lectures[1].Title)

	// Rename returns the canonical, whitespace-normalized entity.
	resp = doJSON(t, s, http.MethodPut, "/api/courses/"+course.ID+"/sections/"+intro.ID, token,
		map[string]string{"title": "  Getting   Started "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	renamed := decode[models.Section](t, resp)
	assert.Equal(t, "Getting Started", renamed.Title)

	// Section delete cascades to lectures.
	resp = doJSON(t, s, http.MethodDelete, "/api/courses/"+course.ID+"/sections/"+intro.ID, token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/courses/"+course.ID, "", nil)
	got = decode[models.Course](t, resp)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, advanced.ID, got.Sections[0].ID)
	assert.Equal(t, 0, got.Sections[0].Order, "surviving section renumbered by position")

	var liveLectures int64
	s.db.Model(&Lecture{}).Where("section_id = ? AND is_deleted = ?", intro.ID, false).Count(&liveLectures)
	assert.Zero(t, liveLectures)
}

func TestLectureUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	token, _ := registerInstructor(t, s, "ada@example.com")
	course := createCourse(t, s, token, "Go from scratch")

	resp := doJSON(t, s, http.MethodPost, "/api/courses/"+course.ID+"/sections", token,
		map[string]string{"title": "Intro"})
	sec := decode[models.Section](t, resp)
	resp = doJSON(t, s, http.MethodPost, "/api/courses/"+course.ID+"/sections/"+sec.ID+"/lectures", token,
		map[string]any{"title": "Welcome", "duration": 5})
	lec := decode[models.Lecture](t, resp)

	base := "/api/courses/" + course.ID + "/sections/" + sec.ID + "/lectures/" + lec.ID
	resp = doJSON(t, s, http.MethodPut, base, token, map[string]any{"title": " Welcome  aboard ", "duration": 7})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[models.Lecture](t, resp)
	assert.Equal(t, "Welcome aboard", updated.Title)
	assert.Equal(t, 7, updated.Duration)
	assert.Equal(t, lec.Order, updated.Order, "editing never reorders")

	resp = doJSON(t, s, http.MethodDelete, base, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, s, http.MethodDelete, base, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "already deleted")
}

func TestPublishVisibility(t *testing.T) {
	s := newTestServer(t)
	token, _ := registerInstructor(t, s, "ada@example.com")
	course := createCourse(t, s, token, "Go from scratch")

	// Drafts are invisible in the public catalog.
	resp := doJSON(t, s, http.MethodGet, "/api/courses", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.Course](t, resp))

	resp = doJSON(t, s, http.MethodPut, "/api/courses/"+course.ID+"/toggle-publish", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/courses", "", nil)
	catalog := decode[[]models.Course](t, resp)
	require.Len(t, catalog, 1)
	assert.True(t, catalog[0].IsPublished)

	// My-courses lists drafts too.
	resp = doJSON(t, s, http.MethodPut, "/api/courses/"+course.ID+"/toggle-publish", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, s, http.MethodGet, "/api/courses/my-courses", token, nil)
	assert.Len(t, decode[[]models.Course](t, resp), 1)
}

func TestStudentCannotAuthor(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Stu", "email": "stu@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	auth := decode[models.AuthResponse](t, resp)

	req := httptest.NewRequest(http.MethodPost, "/api/courses", nil)
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	got, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, got.StatusCode)
}

func TestOwnershipEnforced(t *testing.T) {
	s := newTestServer(t)
	ownerToken, _ := registerInstructor(t, s, "owner@example.com")
	otherToken, _ := registerInstructor(t, s, "other@example.com")

	course := createCourse(t, s, ownerToken, "Go from scratch")

	resp := doJSON(t, s, http.MethodPost, "/api/courses/"+course.ID+"/sections", otherToken,
		map[string]string{"title": "Intruder"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, s, http.MethodDelete, "/api/courses/"+course.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAuthRejections(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodGet, "/api/courses/my-courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, s, http.MethodGet, "/api/courses/my-courses", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "Invalid or expired token", body["message"])
}

func TestUnknownCourse(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodGet, "/api/courses/no-such-id", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "Course not found!", body["message"])
}

func TestValidationBodyShape(t *testing.T) {
	s := newTestServer(t)
	token, _ := registerInstructor(t, s, "ada@example.com")
	course := createCourse(t, s, token, "Go from scratch")

	resp := doJSON(t, s, http.MethodPost, "/api/courses/"+course.ID+"/sections", token,
		map[string]string{"title": "ab"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Validation failed!", body.Message)
	assert.Contains(t, body.Errors, "title")
}

func TestCategoriesSeeded(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cats := decode[[]models.Category](t, resp)
	require.Len(t, cats, 5)
	assert.Equal(t, "Business", cats[0].Name, "sorted by name")
}

func TestApplicationApprovalPromotesUser(t *testing.T) {
	s := newTestServer(t)
	adminToken, _ := registerInstructor(t, s, "root@example.com")
	require.NoError(t, s.db.Model(&User{}).Where("email = ?", "root@example.com").
		Update("role", string(models.RoleAdmin)).Error)
	// Re-login so the token reflects the Admin role.
	resp := doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "root@example.com", "password": "secret123",
	})
	adminToken = decode[models.AuthResponse](t, resp).Token

	resp = doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Stu", "email": "stu@example.com", "password": "secret123",
	})
	applicant := decode[models.AuthResponse](t, resp).User

	app := InstructorApplication{ID: newID(), UserID: applicant.ID, Bio: "ten years of Go"}
	require.NoError(t, s.db.Create(&app).Error)

	resp = doJSON(t, s, http.MethodGet, "/api/instructors/applications", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decode[[]models.InstructorApplication](t, resp), 1)

	resp = doJSON(t, s, http.MethodPut, "/api/instructors/applications/"+app.ID, adminToken,
		map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var promoted User
	require.NoError(t, s.db.Where("id = ?", applicant.ID).First(&promoted).Error)
	assert.Equal(t, string(models.RoleInstructor), promoted.Role)
}

func TestPurgeRemovesOldSoftDeletes(t *testing.T) {
	s := newTestServer(t)
	token, _ := registerInstructor(t, s, "ada@example.com")
	course := createCourse(t, s, token, "Go from scratch")

	resp := doJSON(t, s, http.MethodDelete, "/api/courses/"+course.ID, token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Fresh soft-deletes are inside the retention window.
	s.purgeDeleted()
	var count int64
	s.db.Model(&Course{}).Where("id = ?", course.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	// Age the row past retention and purge again.
	require.NoError(t, s.db.Model(&Course{}).Where("id = ?", course.ID).
		UpdateColumn("updated_at", time.Now().Add(-retention-time.Hour)).Error)
	s.purgeDeleted()
	s.db.Model(&Course{}).Where("id = ?", course.ID).Count(&count)
	assert.Zero(t, count)
}
