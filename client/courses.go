package client

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"

	"yowa/models"
)

// CourseInput carries the multipart fields for course create/update.
// CoverImage may be nil on update to keep the existing image.
type CourseInput struct {
	Title          string
	Description    string
	Price          float64
	CategoryIDs    []string
	CoverImage     io.Reader
	CoverImageName string
}

// GetCourse fetches one course with its full section/lecture tree.
func (c *Client) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	var out models.Course
	resp, err := c.request().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/courses/" + id)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCourses returns the published catalog.
func (c *Client) ListCourses(ctx context.Context) ([]models.Course, error) {
	return c.courseList(ctx, "/api/courses")
}

// ListAllCourses returns every course regardless of publish state. Admin only.
func (c *Client) ListAllCourses(ctx context.Context) ([]models.Course, error) {
	return c.courseList(ctx, "/api/courses/all-courses")
}

// ListMyCourses returns the courses owned by the signed-in instructor.
func (c *Client) ListMyCourses(ctx context.Context) ([]models.Course, error) {
	return c.courseList(ctx, "/api/courses/my-courses")
}

func (c *Client) courseList(ctx context.Context, path string) ([]models.Course, error) {
	var out []models.Course
	resp, err := c.request().
		SetContext(ctx).
		SetResult(&out).
		Get(path)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCourse creates a course from the multipart form fields.
func (c *Client) CreateCourse(ctx context.Context, in CourseInput) (*models.Course, error) {
	var out models.Course
	resp, err := c.courseForm(ctx, in).
		SetResult(&out).
		Post("/api/courses")
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCourse updates course metadata with the same multipart form.
func (c *Client) UpdateCourse(ctx context.Context, id string, in CourseInput) (*models.Course, error) {
	var out models.Course
	resp, err := c.courseForm(ctx, in).
		SetResult(&out).
		Put("/api/courses/" + id)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) courseForm(ctx context.Context, in CourseInput) *resty.Request {
	req := c.request().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"title":       in.Title,
			"description": in.Description,
			"price":       strconv.FormatFloat(in.Price, 'f', -1, 64),
		}).
		SetFormDataFromValues(url.Values{"categories": in.CategoryIDs})
	if in.CoverImage != nil {
		req.SetMultipartField("coverImage", in.CoverImageName, "application/octet-stream", in.CoverImage)
	}
	return req
}

// DeleteCourse removes a course and everything under it.
func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	resp, err := c.request().
		SetContext(ctx).
		Delete("/api/courses/" + id)
	return c.check(resp, err)
}

// TogglePublish flips a course between draft and published.
func (c *Client) TogglePublish(ctx context.Context, id string) error {
	resp, err := c.request().
		SetContext(ctx).
		Put("/api/courses/" + id + "/toggle-publish")
	return c.check(resp, err)
}

// AddSection appends a section; the returned entity carries the
// server-assigned id and normalized order.
func (c *Client) AddSection(ctx context.Context, courseID, title string) (*models.Section, error) {
	var out models.Section
	resp, err := c.request().
		SetContext(ctx).
		SetBody(map[string]string{"title": title}).
		SetResult(&out).
		Post("/api/courses/" + courseID + "/sections")
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameSection retitles a section and returns the canonical entity.
func (c *Client) RenameSection(ctx context.Context, courseID, sectionID, title string) (*models.Section, error) {
	var out models.Section
	resp, err := c.request().
		SetContext(ctx).
		SetBody(map[string]string{"title": title}).
		SetResult(&out).
		Put("/api/courses/" + courseID + "/sections/" + sectionID)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSection removes a section and all of its lectures.
func (c *Client) DeleteSection(ctx context.Context, courseID, sectionID string) error {
	resp, err := c.request().
		SetContext(ctx).
		Delete("/api/courses/" + courseID + "/sections/" + sectionID)
	return c.check(resp, err)
}

// AddLecture appends a lecture to a section.
func (c *Client) AddLecture(ctx context.Context, courseID, sectionID, title string, duration int) (*models.Lecture, error) {
	var out models.Lecture
	resp, err := c.request().
		SetContext(ctx).
		SetBody(map[string]any{"title": title, "duration": duration}).
		SetResult(&out).
		Post("/api/courses/" + courseID + "/sections/" + sectionID + "/lectures")
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLecture edits a lecture's title and duration.
func (c *Client) UpdateLecture(ctx context.Context, courseID, sectionID, lectureID, title string, duration int) (*models.Lecture, error) {
	var out models.Lecture
	resp, err := c.request().
		SetContext(ctx).
		SetBody(map[string]any{"title": title, "duration": duration}).
		SetResult(&out).
		Put("/api/courses/" + courseID + "/sections/" + sectionID + "/lectures/" + lectureID)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteLecture removes a lecture.
func (c *Client) DeleteLecture(ctx context.Context, courseID, sectionID, lectureID string) error {
	resp, err := c.request().
		SetContext(ctx).
		Delete("/api/courses/" + courseID + "/sections/" + sectionID + "/lectures/" + lectureID)
	return c.check(resp, err)
}

// ListCategories returns the category catalog.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	resp, err := c.request().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/categories")
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// ListApplications returns instructor applications. Admin only.
func (c *Client) ListApplications(ctx context.Context) ([]models.InstructorApplication, error) {
	var out []models.InstructorApplication
	resp, err := c.request().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/instructors/applications")
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateApplication approves or rejects an instructor application.
func (c *Client) UpdateApplication(ctx context.Context, id, status string) (*models.InstructorApplication, error) {
	var out models.InstructorApplication
	resp, err := c.request().
		SetContext(ctx).
		SetBody(map[string]string{"status": status}).
		SetResult(&out).
		Put("/api/instructors/applications/" + id)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}
