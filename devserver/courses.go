package devserver

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"yowa/models"
	"yowa/utils"
)

// loadCourse fetches a live course row or responds 404.
func (s *Server) loadCourse(c *fiber.Ctx, id string) (*Course, error) {
	var course Course
	if err := s.db.Where("id = ? AND is_deleted = ?", id, false).First(&course).Error; err != nil {
		return nil, jsonError(c, fiber.StatusNotFound, "Course not found!")
	}
	return &course, nil
}

// requireOwnership lets instructors touch only their own courses; admins any.
func (s *Server) requireOwnership(c *fiber.Ctx, course *Course) error {
	user := currentUser(c)
	if user.Role == string(models.RoleAdmin) {
		return nil
	}
	if user.Role == string(models.RoleInstructor) && course.InstructorID == user.ID {
		return nil
	}
	return jsonError(c, fiber.StatusForbidden, "You do not have permission to modify this course!")
}

func (s *Server) getCourse(c *fiber.Ctx) error {
	course, err := s.loadCourse(c, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(s.apiCourse(course))
}

func (s *Server) listCourses(c *fiber.Ctx) error {
	var rows []Course
	if err := s.db.Where("is_published = ? AND is_deleted = ?", true, false).Order("created_at desc").Find(&rows).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to fetch courses!")
	}
	return s.writeCourseList(c, rows)
}

func (s *Server) listAllCourses(c *fiber.Ctx) error {
	var rows []Course
	if err := s.db.Where("is_deleted = ?", false).Order("created_at desc").Find(&rows).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to fetch courses!")
	}
	return s.writeCourseList(c, rows)
}

func (s *Server) listMyCourses(c *fiber.Ctx) error {
	user := currentUser(c)
	var rows []Course
	if err := s.db.Where("instructor_id = ? AND is_deleted = ?", user.ID, false).Order("created_at desc").Find(&rows).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to fetch courses!")
	}
	return s.writeCourseList(c, rows)
}

func (s *Server) writeCourseList(c *fiber.Ctx, rows []Course) error {
	out := make([]models.Course, 0, len(rows))
	for i := range rows {
		out = append(out, s.apiCourse(&rows[i]))
	}
	return c.JSON(out)
}

// parseCourseForm reads the multipart create/update fields.
func (s *Server) parseCourseForm(c *fiber.Ctx) (title, description string, price float64, categories []string, errs map[string]string) {
	errs = make(map[string]string)

	title = strings.TrimSpace(c.FormValue("title"))
	description = strings.TrimSpace(c.FormValue("description"))

	if title == "" {
		errs["title"] = "Title is required!"
	} else if len(title) < 3 || len(title) > 100 {
		errs["title"] = "Title must be between 3 and 100 characters!"
	}

	if raw := c.FormValue("price"); raw != "" {
		var err error
		price, err = strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			errs["price"] = "Price must be a non-negative number!"
		}
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		categories = form.Value["categories"]
	}
	return
}

func (s *Server) createCourse(c *fiber.Ctx) error {
	user := currentUser(c)

	title, description, price, categories, errs := s.parseCourseForm(c)
	if len(errs) > 0 {
		return validationError(c, errs)
	}

	course := Course{
		ID:           newID(),
		Title:        title,
		Description:  description,
		Price:        price,
		InstructorID: user.ID,
	}

	if file, err := c.FormFile("coverImage"); err == nil {
		path, err := utils.SaveUploadedFile(file, s.cfg.UploadDir)
		if err != nil {
			s.log.Error().Err(err).Msg("saving cover image")
			return jsonError(c, fiber.StatusInternalServerError, "Failed to save cover image!")
		}
		course.CoverImage = utils.GetFileURL(path)
	}

	if err := s.db.Create(&course).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to create course!")
	}
	s.linkCategories(course.ID, categories)

	return c.Status(fiber.StatusCreated).JSON(s.apiCourse(&course))
}

func (s *Server) updateCourse(c *fiber.Ctx) error {
	course, err := s.loadCourse(c, c.Params("id"))
	if err != nil {
		return err
	}
	if err := s.requireOwnership(c, course); err != nil {
		return err
	}

	title, description, price, categories, errs := s.parseCourseForm(c)
	if len(errs) > 0 {
		return validationError(c, errs)
	}

	course.Title = title
	course.Description = description
	course.Price = price

	if file, err := c.FormFile("coverImage"); err == nil {
		path, err := utils.SaveUploadedFile(file, s.cfg.UploadDir)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "Failed to save cover image!")
		}
		course.CoverImage = utils.GetFileURL(path)
	}

	if err := s.db.Save(course).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to update course!")
	}

	s.db.Where("course_id = ?", course.ID).Delete(&CourseCategory{})
	s.linkCategories(course.ID, categories)

	return c.JSON(s.apiCourse(course))
}

func (s *Server) linkCategories(courseID string, categoryIDs []string) {
	for _, catID := range categoryIDs {
		catID = strings.TrimSpace(catID)
		if catID == "" {
			continue
		}
		if err := s.db.Where("id = ?", catID).First(&Category{}).Error; err != nil {
			continue // unknown ids are dropped, not fatal
		}
		s.db.Create(&CourseCategory{CourseID: courseID, CategoryID: catID})
	}
}

func (s *Server) deleteCourse(c *fiber.Ctx) error {
	course, err := s.loadCourse(c, c.Params("id"))
	if err != nil {
		return err
	}
	if err := s.requireOwnership(c, course); err != nil {
		return err
	}

	// Soft delete the course and its whole subtree in one transaction
	tx := s.db.Begin()

	course.IsDeleted = true
	if err := tx.Save(course).Error; err != nil {
		tx.Rollback()
		return jsonError(c, fiber.StatusInternalServerError, "Failed to delete course!")
	}

	var sections []Section
	tx.Where("course_id = ?", course.ID).Find(&sections)
	for _, sec := range sections {
		if err := tx.Model(&Lecture{}).Where("section_id = ?", sec.ID).Update("is_deleted", true).Error; err != nil {
			tx.Rollback()
			return jsonError(c, fiber.StatusInternalServerError, "Failed to delete course content!")
		}
	}
	if err := tx.Model(&Section{}).Where("course_id = ?", course.ID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return jsonError(c, fiber.StatusInternalServerError, "Failed to delete course content!")
	}

	tx.Commit()
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) togglePublish(c *fiber.Ctx) error {
	course, err := s.loadCourse(c, c.Params("id"))
	if err != nil {
		return err
	}
	if err := s.requireOwnership(c, course); err != nil {
		return err
	}

	course.IsPublished = !course.IsPublished
	if err := s.db.Save(course).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to update course!")
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) listCategories(c *fiber.Ctx) error {
	var rows []Category
	if err := s.db.Order("name asc").Find(&rows).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to fetch categories!")
	}
	out := make([]models.Category, 0, len(rows))
	for _, cat := range rows {
		out = append(out, models.Category{ID: cat.ID, Name: cat.Name})
	}
	return c.JSON(out)
}
