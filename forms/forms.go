// Package forms parses and validates the HTML forms of the panel.
package forms

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"modpanel/models"

	"github.com/go-playground/validator/v10"
)

// DateTimeLayout is the value format of <input type="datetime-local">.
const DateTimeLayout = "2006-01-02T15:04"

// AllowedImageExtensions are the evidence formats accepted for bans.
var AllowedImageExtensions = []string{"svg", "png", "jpg", "jpeg"}

// Errors maps a form field to a message shown next to it.
type Errors map[string]string

func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

func (e Errors) Valid() bool {
	return len(e) == 0
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	v.RegisterValidation("permlevel", func(fl validator.FieldLevel) bool {
		return models.PermissionLevel(fl.Field().String()).Rank() >= 0
	})
	v.RegisterValidation("notetype", func(fl validator.FieldLevel) bool {
		t := models.NoteType(fl.Field().String())
		for _, known := range models.NoteTypes {
			if t == known {
				return true
			}
		}
		return false
	})
	v.RegisterValidation("imageext", func(fl validator.FieldLevel) bool {
		return HasAllowedImageExtension(fl.Field().String())
	})
	return v
}

// HasAllowedImageExtension checks a file name against the evidence whitelist.
func HasAllowedImageExtension(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, allowed := range AllowedImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// check runs struct validation and translates failures into Errors.
func check(form interface{}) Errors {
	errs := Errors{}
	err := validate.Struct(form)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add("__all__", err.Error())
		return errs
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Este campo es obligatorio."
	case "max":
		return fmt.Sprintf("Máximo %s caracteres.", fe.Param())
	case "url":
		return "Introduce una URL válida."
	case "hexcolor":
		return "Introduce un color hexadecimal, por ejemplo #9146FF."
	case "permlevel", "notetype":
		return "Selecciona una opción válida."
	case "imageext":
		return "Formato no permitido. Usa: " + strings.Join(AllowedImageExtensions, ", ") + "."
	default:
		return "Valor no válido."
	}
}

func checkbox(values url.Values, field string) bool {
	switch strings.ToLower(values.Get(field)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func text(values url.Values, field string) string {
	return strings.TrimSpace(values.Get(field))
}

// parseDateTime reads an optional datetime-local value in loc.
func parseDateTime(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateTimeLayout, value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
