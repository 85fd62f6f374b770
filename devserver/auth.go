package devserver

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"yowa/models"
	"yowa/utils"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) register(c *fiber.Ctx) error {
	var reqData registerRequest
	if err := c.BodyParser(&reqData); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body!")
	}
	if err := s.validate.Struct(&reqData); err != nil {
		return validationError(c, fieldErrors(err))
	}

	// Check if email already exists
	if err := s.db.Where("email = ?", reqData.Email).First(&User{}).Error; err == nil {
		return jsonError(c, fiber.StatusConflict, "Email is already registered!")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), s.cfg.SaltRound)
	if err != nil {
		s.log.Error().Err(err).Msg("hashing password")
		return jsonError(c, fiber.StatusInternalServerError, "Failed to process your request!")
	}

	newUser := User{
		ID:       newID(),
		Name:     reqData.Name,
		Email:    reqData.Email,
		Password: string(hashedPassword),
		Role:     string(models.RoleStudent),
	}
	if err := s.db.Create(&newUser).Error; err != nil {
		s.log.Error().Err(err).Msg("saving user")
		return jsonError(c, fiber.StatusInternalServerError, "Failed to register user!")
	}

	token, err := s.generateJWT(&newUser)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to issue token!")
	}

	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{Token: token, User: apiUser(&newUser)})
}

func (s *Server) login(c *fiber.Ctx) error {
	var reqData loginRequest
	if err := c.BodyParser(&reqData); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body!")
	}
	if err := s.validate.Struct(&reqData); err != nil {
		return validationError(c, fieldErrors(err))
	}

	var user User
	if err := s.db.Where("email = ?", reqData.Email).First(&user).Error; err != nil {
		return jsonError(c, fiber.StatusUnauthorized, "Invalid email or password!")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return jsonError(c, fiber.StatusUnauthorized, "Invalid email or password!")
	}

	token, err := s.generateJWT(&user)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to issue token!")
	}

	return c.JSON(models.AuthResponse{Token: token, User: apiUser(&user)})
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	user := currentUser(c)

	reqData := new(struct {
		Name string `json:"name" validate:"required,min=2,max=100"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body!")
	}
	if err := s.validate.Struct(reqData); err != nil {
		return validationError(c, fieldErrors(err))
	}

	user.Name = reqData.Name
	if err := s.db.Save(user).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to update profile!")
	}
	return c.JSON(apiUser(user))
}

func (s *Server) updateAvatar(c *fiber.Ctx) error {
	user := currentUser(c)

	file, err := c.FormFile("avatar")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Avatar file is required!")
	}

	path, err := utils.SaveUploadedFile(file, s.cfg.UploadDir)
	if err != nil {
		s.log.Error().Err(err).Msg("saving avatar")
		return jsonError(c, fiber.StatusInternalServerError, "Failed to save avatar!")
	}

	user.Avatar = utils.GetFileURL(path)
	if err := s.db.Save(user).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to update avatar!")
	}

	return c.JSON(models.AvatarResponse{Avatar: user.Avatar, Message: "Avatar updated successfully."})
}

func (s *Server) listUsers(c *fiber.Ctx) error {
	var rows []User
	if err := s.db.Order("created_at asc").Find(&rows).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to fetch users!")
	}

	out := make([]models.User, 0, len(rows))
	for i := range rows {
		out = append(out, apiUser(&rows[i]))
	}
	return c.JSON(out)
}
