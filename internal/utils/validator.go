package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/Notemat/foodgram/domain"
	"github.com/go-playground/validator/v10"
)

var (
	Validate *validator.Validate
	once     sync.Once

	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

const reservedUsername = "me"

func InitValidator() {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "username", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			return usernamePattern.MatchString(value) && value != reservedUsername
		})
		mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		Validate = v
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// ValidateStruct runs tag validation and returns domain.ValidationErrors
// keyed by JSON field name.
func ValidateStruct(s any) error {
	InitValidator()
	return ValidateWith(Validate, s)
}

func ValidateWith(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var out domain.ValidationErrors
	for _, fe := range verrs {
		out.Add(fe.Field(), errors.New(fieldMessage(fe)))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "username":
		return `Enter a valid username: letters, digits and @/./+/-/_ only; "me" is reserved.`
	case "slug":
		return "Enter a valid slug: letters, digits, hyphens and underscores only."
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
