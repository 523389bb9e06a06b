package auth

import (
	"flockr/errors"
	"regexp"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9]+[._]?[a-z0-9]+@\w+[.]\w{2,3}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z]+(?:[-.'\s][a-zA-Z]+)*$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("flockr_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})
	return v
}

type RegisterRequest struct {
	Email     string `validate:"flockr_email"`
	Password  string `validate:"min=6"`
	FirstName string `validate:"min=1,max=50,person_name"`
	LastName  string `validate:"min=1,max=50,person_name"`
}

// ValidateRegister reports the first invalid field as an input error.
func ValidateRegister(req RegisterRequest) error {
	if err := ValidateEmail(req.Email); err != nil {
		return err
	}
	if err := ValidatePassword(req.Password); err != nil {
		return err
	}
	return ValidateName(req.FirstName, req.LastName)
}

func ValidateEmail(email string) error {
	if validate.Var(email, "flockr_email") != nil {
		return errors.Input("invalid email")
	}
	return nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < 6 {
		return errors.Input("password must be at least 6 characters")
	}
	return nil
}

func ValidateName(first, last string) error {
	if validate.Var(first, "min=1,max=50") != nil {
		return errors.Input("first name must be between 1 and 50 characters")
	}
	if validate.Var(first, "person_name") != nil {
		return errors.Input("first name contains invalid characters")
	}
	if validate.Var(last, "min=1,max=50") != nil {
		return errors.Input("last name must be between 1 and 50 characters")
	}
	if validate.Var(last, "person_name") != nil {
		return errors.Input("last name contains invalid characters")
	}
	return nil
}

// ValidateHandle checks the length of a user chosen handle.
func ValidateHandle(handle string) error {
	if validate.Var(handle, "min=4,max=19") != nil {
		return errors.Input("handle must be between 3 and 20 characters exclusive")
	}
	return nil
}

// ValidateChannelName rejects names longer than 20 characters.
func ValidateChannelName(name string) error {
	if validate.Var(name, "max=20") != nil {
		return errors.Input("name is more than 20 characters long")
	}
	return nil
}
