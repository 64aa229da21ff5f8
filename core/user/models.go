package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
)

// passwordHashCost is the bcrypt work factor applied to every stored password.
const passwordHashCost = 10

// Role is one of the two fixed account roles.
type Role string

const (
	RoleTrainee    Role = "Trainee"
	RoleInstructor Role = "Instructor"
)

var Roles = []Role{RoleTrainee, RoleInstructor}

// ParseRole returns the Role named s, or ErrInvalidRole.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleTrainee, RoleInstructor:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), passwordHashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsInstructor() bool { return u.Role == RoleInstructor }
func (u *User) IsTrainee() bool    { return u.Role == RoleTrainee }

// Public returns the User view that is safe to hand to clients.
func (u User) Public() Public {
	return Public{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type Public struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is returned on successful registration or login.
type Session struct {
	Public
	Token string `json:"token"`
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required"`
	Password       string `json:"password" validate:"required"`
	Role           string `json:"role" validate:"required"`
	InstructorCode string `json:"instructorCode"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email)
	nu.Role = core.CleanString(nu.Role)
	nu.InstructorCode = core.CleanString(nu.InstructorCode)
}

type LoginCredentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ForgotPassword struct {
	Email string `json:"email" validate:"required"`
}

type ResetPassword struct {
	Email           string `json:"email" validate:"required"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,pwdminlen"`
}

type QueryFilter struct {
	Role   Role   `query:"role"`
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
