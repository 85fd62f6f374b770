package devserver

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Row types for the fixture store. Ids are server-minted uuids so the client
// exercises the same server-assigned-id flow as the real store. Deletions are
// soft; the retention job hard-deletes later.

type User struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"default:''"`
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	Role      string `gorm:"default:'Student'"` // Student, Instructor, Admin
	Avatar    string `gorm:"default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Course struct {
	ID           string `gorm:"primaryKey"`
	Title        string
	Description  string
	Price        float64 `gorm:"default:0"`
	CoverImage   string  `gorm:"default:''"`
	InstructorID string  `gorm:"index;not null"`
	IsPublished  bool    `gorm:"default:false"`
	IsDeleted    bool    `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Section struct {
	ID         string `gorm:"primaryKey"`
	CourseID   string `gorm:"index;not null"`
	Title      string
	OrderIndex int  `gorm:"default:0"`
	IsDeleted  bool `gorm:"default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Lecture struct {
	ID         string `gorm:"primaryKey"`
	SectionID  string `gorm:"index;not null"`
	Title      string
	Duration   int  `gorm:"default:0"`
	OrderIndex int  `gorm:"default:0"`
	IsDeleted  bool `gorm:"default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Category struct {
	ID   string `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

type CourseCategory struct {
	CourseID   string `gorm:"index;not null"`
	CategoryID string `gorm:"not null"`
}

type InstructorApplication struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	Status    string `gorm:"default:'pending'"`
	Bio       string
	Expertise string // comma-separated
	CreatedAt time.Time
	UpdatedAt time.Time
}

func newID() string { return uuid.NewString() }

// connectDb opens the sqlite database and runs migrations.
func connectDb(dbName string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&User{},
		&Course{},
		&Section{},
		&Lecture{},
		&Category{},
		&CourseCategory{},
		&InstructorApplication{},
	)
	if err != nil {
		return nil, err
	}

	seedCategories(db)
	return db, nil
}

// seedCategories fills the category catalog on first run.
func seedCategories(db *gorm.DB) {
	var count int64
	db.Model(&Category{}).Count(&count)
	if count > 0 {
		return
	}
	for _, name := range []string{"Development", "Design", "Business", "Marketing", "Music"} {
		db.Create(&Category{ID: newID(), Name: name})
	}
}
