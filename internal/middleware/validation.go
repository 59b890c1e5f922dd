package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/vet-tarapaca/booking-api/internal/model"
)

// RegisterValidators installs the widget's custom binding rules on gin's
// shared validator and makes binding errors report json field names instead
// of Go struct fields. Call once before serving.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})

	// hhmm accepts a wall-clock time like "09:30".
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := model.ParseTimeSlot(fl.Field().String())
		return err == nil
	})
}
