package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// bindTrans translates errors from Gin's binding engine.
	bindTrans ut.Translator

	recordOnce  sync.Once
	records     *govalidator.Validate
	recordTrans ut.Translator
)

// Setup registers the JSON field names, the notblank rule and the English
// translations on Gin's binding engine. Call once during startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		bindTrans = configure(v)
	}
}

// Struct validates a record against its `validate` tags.
// Returns nil when valid, otherwise a field name → message map.
func Struct(v interface{}) map[string]string {
	recordOnce.Do(func() {
		records = govalidator.New(govalidator.WithRequiredStructEnabled())
		recordTrans = configure(records)
	})
	if err := records.Struct(v); err != nil {
		return translate(err, recordTrans)
	}
	return nil
}

// configure registers names, rules and translations on v and returns the
// translator bound to it. Each engine gets its own translator.
func configure(v *govalidator.Validate) ut.Translator {
	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", validators.NotBlank)

	enLocale := en.New()
	t, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, t)
	_ = v.RegisterTranslation("notblank", t,
		func(ut ut.Translator) error {
			return ut.Add("notblank", "{0} is required", true)
		},
		func(ut ut.Translator, fe govalidator.FieldError) string {
			msg, _ := ut.T("notblank", fe.Field())
			return msg
		},
	)
	return t
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	return translate(err, bindTrans)
}

func translate(err error, t ut.Translator) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(t)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// Bind binds the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
