package store

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var studentIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,50}$`)

func ValidateStudentID(id string) error {
	if !studentIDPattern.MatchString(id) {
		return errors.New("student_id must be 2-50 characters of letters, digits, underscore, or hyphen")
	}
	return nil
}

func ValidateStudentName(name string) error {
	if l := len(strings.TrimSpace(name)); l < 1 || l > 200 {
		return errors.New("name must be 1-200 characters")
	}
	return nil
}

func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || len(email) > 254 {
		return errors.New("invalid email address")
	}
	return nil
}

func ValidateDepartment(department string) error {
	if l := len(strings.TrimSpace(department)); l < 1 || l > 100 {
		return errors.New("department must be 1-100 characters")
	}
	return nil
}

func ValidateYear(year int32) error {
	if year < 1 || year > 8 {
		return errors.New("year must be between 1 and 8")
	}
	return nil
}

func ValidateStudentStatus(status StudentStatus) error {
	if status != StudentStatusActive && status != StudentStatusInactive {
		return errors.New("status must be active or inactive")
	}
	return nil
}

func ValidateUserName(name string) error {
	if l := len(strings.TrimSpace(name)); l < 2 || l > 100 {
		return errors.New("name must be 2-100 characters")
	}
	return nil
}

func ValidateUserRole(role UserRole) error {
	switch role {
	case UserRoleAdmin, UserRoleStaff, UserRoleUser:
		return nil
	}
	return errors.New("role must be admin, staff, or user")
}
