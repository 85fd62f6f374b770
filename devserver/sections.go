package devserver

import (
	"github.com/gofiber/fiber/v2"
)

type sectionRequest struct {
	Title string `json:"title" validate:"required,min=3,max=100"`
}

type lectureRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=100"`
	Duration int    `json:"duration" validate:"min=0,max=1440"`
}

// loadSection fetches a live section scoped to its course or responds 404.
func (s *Server) loadSection(c *fiber.Ctx, courseID, sectionID string) (*Section, error) {
	var section Section
	if err := s.db.Where("id = ? AND course_id = ? AND is_deleted = ?", sectionID, courseID, false).First(&section).Error; err != nil {
		return nil, jsonError(c, fiber.StatusNotFound, "Section not found!")
	}
	return &section, nil
}

func (s *Server) addSection(c *fiber.Ctx) error {
	course, err := s.loadCourse(c, c.Params("id"))
	if err != nil {
		return err
	}
	if err := s.requireOwnership(c, course); err != nil {
		return err
	}

	var reqData sectionRequest
	if err := c.BodyParser(&reqData); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body!")
	}
	if err := s.validate.Struct(&reqData); err != nil {
		return validationError(c, fieldErrors(err))
	}

	// Next order index
	var maxOrder int
	s.db.Model(&Section{}).Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Select("COALESCE(MAX(order_index), -1)").Scan(&maxOrder)

	section := Section{
		ID:         newID(),
		CourseID:   course.ID,
		Title:      normalizeTitle(reqData.Title),
		OrderIndex: maxOrder + 1,
	}
	if err := s.db.Create(&section).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to create section!")
	}

	var position int64
	s.db.Model(&Section{}).Where("course_id = ? AND is_deleted = ? AND order_index < ?", course.ID, false, section.OrderIndex).Count(&position)
	return c.Status(fiber.StatusCreated).JSON(s.apiSection(&section, int(position)))
}

func (s *Server) renameSection(c *fiber.Ctx) error {
	course, err := s.loadCourse(c, c.Params("id"))
	if err != nil {
		return err
	}
	if err := s.requireOwnership(c, course); err != nil {
		return err
	}
	section, err := s.loadSection(c, course.ID, c.Params("sectionId"))
	if err != nil {
		return err
	}

	var reqData sectionRequest
	if err := c.BodyParser(&reqData); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body!")
	}
	if err := s.validate.Struct(&reqData); err != nil {
		return validationError(c, fieldErrors(err))
	}

	section.Title = normalizeTitle(reqData.Title)
	if err := s.db.Save(section).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to update section!")
	}

	var position int64
	s.db.Model(&Section{}).Where("course_id = ? AND is_deleted = ? AND order_index < ?", course.ID, false, section.OrderIndex).Count(&position)
	return c.JSON(s.apiSection(section, int(position)))
}

func (s *Server) deleteSection(c *fiber.Ctx) error {
	course, err := s.loadCourse(c, c.Params("id"))
	if err != nil {
		return err
	}
	if err := s.requireOwnership(c, course); err != nil {
		return err
	}
	section, err := s.loadSection(c, course.ID, c.Params("sectionId"))
	if err != nil {
		return err
	}

	// Soft delete section and its lectures together
	tx := s.db.Begin()

	section.IsDeleted = true
	if err := tx.Save(section).Error; err != nil {
		tx.Rollback()
		return jsonError(c, fiber.StatusInternalServerError, "Failed to delete section!")
	}
	if err := tx.Model(&Lecture{}).Where("section_id = ?", section.ID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return jsonError(c, fiber.StatusInternalServerError, "Failed to delete section lectures!")
	}

	tx.Commit()
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) addLecture(c *fiber.Ctx) error {
	course, err := s.loadCourse(c, c.Params("id"))
	if err != nil {
		return err
	}
	if err := s.requireOwnership(c, course); err != nil {
		return err
	}
	section, err := s.loadSection(c, course.ID, c.Params("sectionId"))
	if err != nil {
		return err
	}

	var reqData lectureRequest
	if err := c.BodyParser(&reqData); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body!")
	}
	if err := s.validate.Struct(&reqData); err != nil {
		return validationError(c, fieldErrors(err))
	}

	var maxOrder int
	s.db.Model(&Lecture{}).Where("section_id = ? AND is_deleted = ?", section.ID, false).
		Select("COALESCE(MAX(order_index), -1)").Scan(&maxOrder)

	lecture := Lecture{
		ID:         newID(),
		SectionID:  section.ID,
		Title:      normalizeTitle(reqData.Title),
		Duration:   reqData.Duration,
		OrderIndex: maxOrder + 1,
	}
	if err := s.db.Create(&lecture).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to create lecture!")
	}

	var position int64
	s.db.Model(&Lecture{}).Where("section_id = ? AND is_deleted = ? AND order_index < ?", section.ID, false, lecture.OrderIndex).Count(&position)
	return c.Status(fiber.StatusCreated).JSON(apiLecture(&lecture, int(position)))
}

func (s *Server) updateLecture(c *fiber.Ctx) error {
	course, err := s.loadCourse(c, c.Params("id"))
	if err != nil {
		return err
	}
	if err := s.requireOwnership(c, course); err != nil {
		return err
	}
	section, err := s.loadSection(c, course.ID, c.Params("sectionId"))
	if err != nil {
		return err
	}

	var lecture Lecture
	if err := s.db.Where("id = ? AND section_id = ? AND is_deleted = ?", c.Params("lectureId"), section.ID, false).First(&lecture).Error; err != nil {
		return jsonError(c, fiber.StatusNotFound, "Lecture not found!")
	}

	var reqData lectureRequest
	if err := c.BodyParser(&reqData); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body!")
	}
	if err := s.validate.Struct(&reqData); err != nil {
		return validationError(c, fieldErrors(err))
	}

	lecture.Title = normalizeTitle(reqData.Title)
	lecture.Duration = reqData.Duration
	if err := s.db.Save(&lecture).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to update lecture!")
	}

	var position int64
	s.db.Model(&Lecture{}).Where("section_id = ? AND is_deleted = ? AND order_index < ?", section.ID, false, lecture.OrderIndex).Count(&position)
	return c.JSON(apiLecture(&lecture, int(position)))
}

func (s *Server) deleteLecture(c *fiber.Ctx) error {
	course, err := s.loadCourse(c, c.Params("id"))
	if err != nil {
		return err
	}
	if err := s.requireOwnership(c, course); err != nil {
		return err
	}
	section, err := s.loadSection(c, course.ID, c.Params("sectionId"))
	if err != nil {
		return err
	}

	var lecture Lecture
	if err := s.db.Where("id = ? AND section_id = ? AND is_deleted = ?", c.Params("lectureId"), section.ID, false).First(&lecture).Error; err != nil {
		return jsonError(c, fiber.StatusNotFound, "Lecture not found!")
	}

	lecture.IsDeleted = true
	if err := s.db.Save(&lecture).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to delete lecture!")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
