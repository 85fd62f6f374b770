// Package devserver is a local fixture implementation of the remote course
// store. It exists so the console can be developed and integration-tested
// offline; the wire contract matches the hosted store endpoint for endpoint.
package devserver

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"yowa/models"
)

// Config holds the fixture server settings.
type Config struct {
	DBName    string
	JWTKey    string
	SaltRound int
	UploadDir string
}

// Server wires the fiber app, the sqlite store and the purge job.
type Server struct {
	app      *fiber.App
	db       *gorm.DB
	cfg      Config
	log      zerolog.Logger
	validate *validator.Validate
	cron     *cron.Cron
}

// New builds a ready-to-listen server.
func New(cfg Config, log zerolog.Logger) (*Server, error) {
	db, err := connectDb(cfg.DBName)
	if err != nil {
		return nil, err
	}

	s := &Server{
		db:       db,
		cfg:      cfg,
		log:      log,
		validate: validator.New(),
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	app.Static("/uploads", cfg.UploadDir)

	s.routes(app)
	s.app = app
	s.startPurgeJob()
	return s, nil
}

func (s *Server) routes(app *fiber.App) {
	admin := string(models.RoleAdmin)
	instructor := string(models.RoleInstructor)

	auth := app.Group("/api/auth")
	auth.Post("/login", s.login)
	auth.Post("/register", s.register)
	auth.Put("/profile", s.requireAuth, s.updateProfile)
	auth.Put("/profile/avatar", s.requireAuth, s.updateAvatar)
	auth.Get("/", s.requireAuth, s.requireRole(admin), s.listUsers)

	courses := app.Group("/api/courses")
	// static paths before /:id
	courses.Get("/all-courses", s.requireAuth, s.requireRole(admin), s.listAllCourses)
	courses.Get("/my-courses", s.requireAuth, s.requireRole(instructor, admin), s.listMyCourses)
	courses.Get("/", s.listCourses)
	courses.Post("/", s.requireAuth, s.requireRole(instructor, admin), s.createCourse)
	courses.Get("/:id", s.getCourse)
	courses.Put("/:id", s.requireAuth, s.requireRole(instructor, admin), s.updateCourse)
	courses.Delete("/:id", s.requireAuth, s.requireRole(instructor, admin), s.deleteCourse)
	courses.Put("/:id/toggle-publish", s.requireAuth, s.requireRole(instructor, admin), s.togglePublish)

	courses.Post("/:id/sections", s.requireAuth, s.requireRole(instructor, admin), s.addSection)
	courses.Put("/:id/sections/:sectionId", s.requireAuth, s.requireRole(instructor, admin), s.renameSection)
	courses.Delete("/:id/sections/:sectionId", s.requireAuth, s.requireRole(instructor, admin), s.deleteSection)

	courses.Post("/:id/sections/:sectionId/lectures", s.requireAuth, s.requireRole(instructor, admin), s.addLecture)
	courses.Put("/:id/sections/:sectionId/lectures/:lectureId", s.requireAuth, s.requireRole(instructor, admin), s.updateLecture)
	courses.Delete("/:id/sections/:sectionId/lectures/:lectureId", s.requireAuth, s.requireRole(instructor, admin), s.deleteLecture)

	app.Get("/api/categories", s.listCategories)

	apps := app.Group("/api/instructors/applications", s.requireAuth, s.requireRole(admin))
	apps.Get("/", s.listApplications)
	apps.Put("/:id", s.updateApplication)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on the given port and blocks.
func (s *Server) Listen(port string) error {
	s.log.Info().Str("port", port).Msg("fixture store listening")
	return s.app.Listen(":" + port)
}

// Close stops the purge job and the app.
func (s *Server) Close() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	return s.app.Shutdown()
}
