package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/lophoc/core"
)

// Roles, as stored in the users table
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// UnknownStudentID is used when a student account has no matching roster entry.
const UnknownStudentID = "UNKNOWN"

var (
	AllRoles   = []string{RoleAdmin, RoleTeacher, RoleStudent}
	StaffRoles = []string{RoleAdmin, RoleTeacher}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// User is the identity resolved at login. For students, ID is the student code.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }
func (u User) IsStaff() bool   { return u.IsAdmin() || u.IsTeacher() }

func (u User) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// Session is the authenticated context handed to every consumer.
// The zero Session is unauthenticated.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (s Session) IsAuthenticated() bool {
	return s.ID != "" && s.User.ID != ""
}

// NewAccount contains information needed to create a new users table entry.
type NewAccount struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,notblank"`
	Role     string `json:"role" validate:"required,role"`
	Password string `json:"password" validate:"required"`
}

func (na *NewAccount) Clean() {
	na.Email = core.CleanString(na.Email)
	na.Name = core.CleanString(na.Name)
	na.Role = core.CleanString(na.Role, true /* lower */)
}

func (na *NewAccount) Validate(validate *validator.Validate) error {
	na.Clean()
	return validate.Struct(na)
}
