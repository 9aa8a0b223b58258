package handler

import (
	"reflect"
	"strings"

	"cloud.google.com/go/civil"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/hdclinic/bed-scheduler/backend/internal/scheduler"
)

// registerCustomValidations adds the "civildate" (YYYY-MM-DD) and "clock"
// (HH:MM or HH:MM:SS) tags along with their Indonesian messages.
func registerCustomValidations(validate *validator.Validate, trans ut.Translator) error {
	// report fields by their JSON names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	custom := []struct {
		tag     string
		fn      validator.Func
		message string
	}{
		{
			tag: "civildate",
			fn: func(fl validator.FieldLevel) bool {
				_, err := civil.ParseDate(fl.Field().String())
				return err == nil
			},
			message: "{0} harus berupa tanggal dengan format YYYY-MM-DD",
		},
		{
			tag: "clock",
			fn: func(fl validator.FieldLevel) bool {
				_, err := scheduler.ParseClock(fl.Field().String())
				return err == nil
			},
			message: "{0} harus berupa jam dengan format HH:MM",
		},
	}

	for _, c := range custom {
		if err := validate.RegisterValidation(c.tag, c.fn); err != nil {
			return err
		}

		message := c.message
		tag := c.tag
		err := validate.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(tag, message, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T(tag, fe.Field())
				return t
			},
		)
		if err != nil {
			return err
		}
	}

	return nil
}
