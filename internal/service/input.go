package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// 表单输入，handler 直接 bind 到这些结构体，由 service 统一校验

type SignupInput struct {
	Username string `form:"username" validate:"required,min=3,max=150,username"`
	Password string `form:"password1" validate:"required,min=8,max=128"`
	Confirm  string `form:"password2" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type ProfileInput struct {
	Bio string `form:"bio" validate:"max=500"`
}

type PostInput struct {
	Content string `form:"content" validate:"max=2000"`
}

type CommentInput struct {
	Text string `form:"text" validate:"required,max=1000"`
}

type MessageInput struct {
	Body string `form:"body" validate:"max=5000"`
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct 将 validator 的错误转换为 ValidationError
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if _, ok := ve.Fields[fe.Field()]; !ok {
			ve.Fields[fe.Field()] = fieldMessage(fe)
		}
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	default:
		return "Enter a valid value."
	}
}
