package domain

import (
	"bboard/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// usernameRules rejects names that would break the line protocol: pipes
// collide with summary strings, commas with member lists, spaces with verb
// parsing.
type usernameRules struct {
	Name string `validate:"required,min=1,max=32,excludesall=0x7C0x2C0x20"`
}

// ValidateUsername reports whether name is acceptable as a display name.
func ValidateUsername(name string) error {
	if err := validate.Struct(usernameRules{Name: name}); err != nil {
		return errors.ErrInvalidUsername
	}
	return nil
}
