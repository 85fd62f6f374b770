package devserver

import (
	"strings"

	"yowa/models"
)

// Serialization to the wire shapes the client consumes. Order fields come
// out as array positions after sorting by order_index.

// normalizeTitle collapses runs of whitespace, the one normalization the
// store applies to submitted titles.
func normalizeTitle(t string) string {
	return strings.Join(strings.Fields(t), " ")
}

func apiUser(u *User) models.User {
	return models.User{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   models.Role(u.Role),
		Avatar: u.Avatar,
	}
}

func apiLecture(l *Lecture, position int) models.Lecture {
	return models.Lecture{
		ID:       l.ID,
		Title:    l.Title,
		Duration: l.Duration,
		Order:    position,
	}
}

func (s *Server) apiSection(sec *Section, position int) models.Section {
	var rows []Lecture
	s.db.Where("section_id = ? AND is_deleted = ?", sec.ID, false).
		Order("order_index asc").Find(&rows)

	out := models.Section{
		ID:       sec.ID,
		Title:    sec.Title,
		Order:    position,
		Lectures: make([]models.Lecture, 0, len(rows)),
	}
	for i := range rows {
		out.Lectures = append(out.Lectures, apiLecture(&rows[i], i))
	}
	return out
}

func (s *Server) apiCourse(course *Course) models.Course {
	var instructor User
	s.db.Where("id = ?", course.InstructorID).First(&instructor)

	var sections []Section
	s.db.Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Order("order_index asc").Find(&sections)

	out := models.Course{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		CoverImage:  course.CoverImage,
		Price:       course.Price,
		Instructor:  models.CourseInstructor{ID: instructor.ID, Name: instructor.Name},
		IsPublished: course.IsPublished,
		Categories:  s.courseCategories(course.ID),
		Sections:    make([]models.Section, 0, len(sections)),
		CreatedAt:   course.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		UpdatedAt:   course.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
	for i := range sections {
		out.Sections = append(out.Sections, s.apiSection(&sections[i], i))
	}
	return out
}

func (s *Server) courseCategories(courseID string) []models.Category {
	var links []CourseCategory
	s.db.Where("course_id = ?", courseID).Find(&links)

	out := make([]models.Category, 0, len(links))
	for _, link := range links {
		var cat Category
		if err := s.db.Where("id = ?", link.CategoryID).First(&cat).Error; err == nil {
			out = append(out, models.Category{ID: cat.ID, Name: cat.Name})
		}
	}
	return out
}

func (s *Server) apiApplication(a *InstructorApplication) models.InstructorApplication {
	var user User
	s.db.Where("id = ?", a.UserID).First(&user)

	var expertise []string
	if a.Expertise != "" {
		expertise = strings.Split(a.Expertise, ",")
	}
	return models.InstructorApplication{
		ID:        a.ID,
		User:      models.ApplicationUser{ID: user.ID, Name: user.Name, Email: user.Email},
		Status:    a.Status,
		Bio:       a.Bio,
		Expertise: expertise,
	}
}
