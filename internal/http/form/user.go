package form

import "archivesys/internal/service"

// Login is the payload of POST /auth/login.
type Login struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

// User is the admin create/update payload of an account with its profile.
// IsActive defaults to true when omitted.
type User struct {
	Username   string `form:"username" json:"username" validate:"required,max=150"`
	Email      string `form:"email" json:"email" validate:"omitempty,email,max=254"`
	FirstName  string `form:"first_name" json:"first_name" validate:"max=150"`
	LastName   string `form:"last_name" json:"last_name" validate:"max=150"`
	Password   string `form:"password" json:"password" validate:"omitempty,min=8,max=128"`
	IsStaff    bool   `form:"is_staff" json:"is_staff"`
	IsActive   *bool  `form:"is_active" json:"is_active"`
	Position   string `form:"position" json:"position" validate:"max=100"`
	Department string `form:"department" json:"department" validate:"max=100"`
}

func (f User) Input() (service.UserInput, error) {
	if err := Validate(f); err != nil {
		return service.UserInput{}, err
	}
	active := true
	if f.IsActive != nil {
		active = *f.IsActive
	}
	return service.UserInput{
		Username:   f.Username,
		Email:      f.Email,
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Password:   f.Password,
		IsStaff:    f.IsStaff,
		IsActive:   active,
		Position:   f.Position,
		Department: f.Department,
	}, nil
}
