// Package validators checks form input before it is submitted to the remote
// store. Errors come back as a field → message map so the caller can render
// them inline without clearing what the user typed.
package validators

import (
	"regexp"
	"strings"
)

var invalidChars = regexp.MustCompile(`[<>{}]`)

// SectionTitle validates the add/rename section form.
func SectionTitle(title string) map[string]string {
	errors := make(map[string]string)

	title = strings.TrimSpace(title)
	if title == "" {
		errors["title"] = "Title is required!"
	} else {
		if len(title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}
		if len(title) > 100 {
			errors["title"] = "Title must not exceed 100 characters!"
		}
		if invalidChars.MatchString(title) {
			errors["title"] = "Title contains invalid characters (e.g., <, >, {, })!"
		}
	}

	return errors
}

// LectureFields validates the add/edit lecture form.
func LectureFields(title string, duration int) map[string]string {
	errors := SectionTitle(title)

	if duration < 0 {
		errors["duration"] = "Duration cannot be negative!"
	}
	if duration > 24*60 {
		errors["duration"] = "Duration must not exceed 24 hours!"
	}

	return errors
}

// Credentials validates the login form.
func Credentials(email, password string) map[string]string {
	errors := make(map[string]string)

	email = strings.TrimSpace(email)
	if email == "" {
		errors["email"] = "Email is required!"
	} else if !strings.Contains(email, "@") {
		errors["email"] = "Email is not valid!"
	}

	if password == "" {
		errors["password"] = "Password is required!"
	}

	return errors
}

// Registration validates the sign-up form.
func Registration(name, email, password string) map[string]string {
	errors := Credentials(email, password)

	name = strings.TrimSpace(name)
	if name == "" {
		errors["name"] = "Name is required!"
	} else if len(name) < 2 {
		errors["name"] = "Name must be at least 2 characters long!"
	}

	if password != "" && len(password) < 6 {
		errors["password"] = "Password must be at least 6 characters long!"
	}

	return errors
}

// CourseForm validates the course create/update form.
func CourseForm(title, description string, price float64) map[string]string {
	errors := SectionTitle(title)

	description = strings.TrimSpace(description)
	if description != "" {
		if len(description) < 5 {
			errors["description"] = "Description must be at least 5 characters long if provided!"
		}
		if len(description) > 1000 {
			errors["description"] = "Description must not exceed 1000 characters!"
		}
		if invalidChars.MatchString(description) {
			errors["description"] = "Description contains invalid characters (e.g., <, >, {, })!"
		}
	}

	if price < 0 {
		errors["price"] = "Price cannot be negative!"
	}

	return errors
}
