package devserver

import (
	"github.com/gofiber/fiber/v2"

	"yowa/models"
)

func (s *Server) listApplications(c *fiber.Ctx) error {
	var rows []InstructorApplication
	if err := s.db.Order("created_at asc").Find(&rows).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to fetch applications!")
	}

	out := make([]models.InstructorApplication, 0, len(rows))
	for i := range rows {
		out = append(out, s.apiApplication(&rows[i]))
	}
	return c.JSON(out)
}

func (s *Server) updateApplication(c *fiber.Ctx) error {
	var app InstructorApplication
	if err := s.db.Where("id = ?", c.Params("id")).First(&app).Error; err != nil {
		return jsonError(c, fiber.StatusNotFound, "Application not found!")
	}

	reqData := new(struct {
		Status string `json:"status" validate:"required,oneof=pending approved rejected"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body!")
	}
	if err := s.validate.Struct(reqData); err != nil {
		return validationError(c, fieldErrors(err))
	}

	app.Status = reqData.Status
	if err := s.db.Save(&app).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to update application!")
	}

	// Approval promotes the applicant
	if app.Status == models.ApplicationApproved {
		s.db.Model(&User{}).Where("id = ?", app.UserID).Update("role", string(models.RoleInstructor))
	}

	return c.JSON(s.apiApplication(&app))
}
