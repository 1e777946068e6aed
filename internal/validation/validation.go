// Package validation wraps go-playground/validator with English messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/vytor/wordflow/internal/models"
)

// Validator validates structs and renders field errors in English.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a Validator whose field names come from the given struct tag
// ("json", "env", ...). Fields tagged "-" keep their Go name.
func New(nameTag string) (*Validator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("register default translations: %w", err)
	}

	if nameTag != "" {
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get(nameTag), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	}

	if err := validate.RegisterValidation("rating", isRating); err != nil {
		return nil, fmt.Errorf("register rating validation: %w", err)
	}
	if err := validate.RegisterTranslation("rating", trans, func(ut ut.Translator) error {
		return ut.Add("rating", "{0} must be one of again, hard, good, easy", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("rating", fe.Field())
		return t
	}); err != nil {
		return nil, fmt.Errorf("register rating translation: %w", err)
	}

	return &Validator{validate: validate, translator: trans}, nil
}

// FieldError is one failed constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is returned by Struct when at least one constraint fails.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Struct validates v and returns Errors on constraint failures.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: fe.Translate(v.translator)})
	}
	return out
}

func isRating(fl validator.FieldLevel) bool {
	_, err := models.ParseRating(fl.Field().String())
	return err == nil
}
