package server

import (
	"encoding/json"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	errs "github.com/techagentng/carefront/errors"
	"github.com/techagentng/carefront/models"
)

var (
	translatorOnce sync.Once
	translator     ut.Translator
)

func getTranslator() ut.Translator {
	translatorOnce.Do(func() {
		english := en.New()
		uni := ut.New(english, english)
		translator, _ = uni.GetTranslator("en")
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" || name == "" {
					return fld.Name
				}
				return name
			})
			_ = enTranslations.RegisterDefaultTranslations(v, translator)
		}
	})
	return translator
}

// decode reads a JSON body into v, trims its string fields and validates it.
// An empty body decodes to the zero value.
func decode(c *gin.Context, v interface{}) error {
	if err := json.NewDecoder(c.Request.Body).Decode(v); err != nil && err != io.EOF {
		return errs.Validation("request body must be valid JSON")
	}
	return normalize(v)
}

// bindForm is decode for multipart and urlencoded bodies.
func bindForm(c *gin.Context, v interface{}) error {
	getTranslator()
	if err := c.ShouldBindWith(v, binding.FormMultipart); err != nil {
		return validationError(err)
	}
	return normalize(v)
}

func normalize(v interface{}) error {
	getTranslator()
	if err := models.TrimStrings(v); err != nil {
		return errs.Validation("request body could not be normalised")
	}
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	msgs := []string{}
	for _, e := range models.TranslateErrors(err, getTranslator()) {
		msgs = append(msgs, e.Error())
	}
	return errs.Validation(strings.Join(msgs, "; "))
}
