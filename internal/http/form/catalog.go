package form

import "archivesys/internal/service"

// Category is the create/update payload of a category.
type Category struct {
	Name        string `form:"name" json:"name" validate:"required,max=100"`
	Description string `form:"description" json:"description"`
}

// Input validates the payload and converts it to a service.CategoryInput.
func (f Category) Input() (service.CategoryInput, error) {
	if err := Validate(f); err != nil {
		return service.CategoryInput{}, err
	}
	return service.CategoryInput{Name: f.Name, Description: f.Description}, nil
}

// Location is the create/update payload of a storage location.
type Location struct {
	Name  string `form:"name" json:"name" validate:"required,max=100"`
	Room  string `form:"room" json:"room" validate:"required,max=50"`
	Shelf string `form:"shelf" json:"shelf" validate:"required,max=50"`
	Box   string `form:"box" json:"box" validate:"max=50"`
}

// Input validates the payload and converts it to a service.LocationInput.
func (f Location) Input() (service.LocationInput, error) {
	if err := Validate(f); err != nil {
		return service.LocationInput{}, err
	}
	return service.LocationInput{Name: f.Name, Room: f.Room, Shelf: f.Shelf, Box: f.Box}, nil
}
