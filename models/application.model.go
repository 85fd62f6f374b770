package models

// Application status values accepted by the instructor application endpoints.
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// ApplicationUser is the embedded applicant reference.
type ApplicationUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// InstructorApplication is a request to be granted the Instructor role.
type InstructorApplication struct {
	ID        string          `json:"_id"`
	User      ApplicationUser `json:"user"`
	Status    string          `json:"status"`
	Bio       string          `json:"bio"`
	Expertise []string        `json:"expertise"`
	CreatedAt string          `json:"createdAt,omitempty"`
	UpdatedAt string          `json:"updatedAt,omitempty"`
}
