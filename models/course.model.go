package models

// Lecture is a single lesson within a section.
type Lecture struct {
	ID       string `json:"_id"`
	Title    string `json:"title"`
	Duration int    `json:"duration"` // minutes, non-negative
	Order    int    `json:"order"`
}

// Section groups lectures inside a course. Order determines display sequence.
type Section struct {
	ID       string    `json:"_id"`
	Title    string    `json:"title"`
	Order    int       `json:"order"`
	Lectures []Lecture `json:"lectures"`
}

// CourseInstructor is the embedded instructor reference on a course.
type CourseInstructor struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Category tags courses for discovery.
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Course is the full course document as served by the remote store. The
// position of a section in Sections is its rendering order.
type Course struct {
	ID          string           `json:"_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	CoverImage  string           `json:"coverImage"`
	Price       float64          `json:"price"`
	Instructor  CourseInstructor `json:"instructor"`
	Categories  []Category       `json:"categories"`
	IsPublished bool             `json:"isPublished"`
	Sections    []Section        `json:"sections"`
	CreatedAt   string           `json:"createdAt,omitempty"`
	UpdatedAt   string           `json:"updatedAt,omitempty"`
}
