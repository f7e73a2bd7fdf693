package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator"
	"github.com/meghashyamc/advocates/logger"
	"github.com/meghashyamc/advocates/services/search"
)

const maxSpecialtyLength = 200

type Validator struct {
	validator                *validator.Validate
	logger                   logger.Logger
	tagValidationDetailsOnce sync.Once
	tagValidationDetailsMap  map[string]tagValidationDetails
}

type tagValidationDetails struct {
	validatorFunc validator.Func
	err           error
}

func New(logger logger.Logger) (*Validator, error) {
	validator := &Validator{validator: validator.New(), logger: logger}
	validator.validator.RegisterTagNameFunc(useJSONFieldNames)
	if err := validator.registerCustomValidatorsForTags(); err != nil {
		return nil, err
	}

	return validator, nil
}

func (v *Validator) Validate(i any) error {

	if err := v.validator.Struct(i); err != nil {
		v.logger.Warn("validation failed", "err", err.Error())
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {

			tagValidationDetails, ok := v.getTagValidationDetails()[validationErrs[0].Tag()]
			if ok {
				return tagValidationDetails.err
			}

			switch validationErrs[0].Tag() {
			case "required":
				return fmt.Errorf("missing required field '%s'", validationErrs[0].Field())

			case "min", "max":
				return fmt.Errorf("value or length of field '%s' is not in the expected range", validationErrs[0].Field())

			}
		}
		return err
	}
	return nil
}
func (v *Validator) getTagValidationDetails() map[string]tagValidationDetails {
	v.tagValidationDetailsOnce.Do(func() {
		v.tagValidationDetailsMap = map[string]tagValidationDetails{
			"valid_search":      {validatorFunc: v.isValidSearch, err: errors.New("invalid search term")},
			"valid_specialties": {validatorFunc: v.isValidSpecialties, err: errors.New("invalid specialties")},
			"valid_sort_by":     {validatorFunc: v.isValidSortBy, err: errors.New("invalid sortBy, expected one of relevance, name, yearsOfExperience, city")},
			"valid_sort_order":  {validatorFunc: v.isValidSortOrder, err: errors.New("invalid sortOrder, expected asc or desc")},
		}
	})
	return v.tagValidationDetailsMap
}

func (v *Validator) registerCustomValidatorsForTags() error {

	tagValidationDetailsMap := v.getTagValidationDetails()

	for tag, tagValidationDetails := range tagValidationDetailsMap {
		if err := v.validator.RegisterValidation(tag, tagValidationDetails.validatorFunc); err != nil {
			v.logger.Error("failed to register customer validator function", "err", err.Error())
			return err
		}
	}
	return nil
}

func useJSONFieldNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// isValidSearch accepts any printable text, including an empty term.
func (v *Validator) isValidSearch(fl validator.FieldLevel) bool {
	term := fl.Field().String()
	if !isCleanText(term) {
		v.logger.Warn("search term is not clean text", "length", len(term))
		return false
	}

	return true
}

func (v *Validator) isValidSpecialties(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}

	for i := 0; i < field.Len(); i++ {
		specialty := field.Index(i).String()
		if len(specialty) > maxSpecialtyLength || !isCleanText(specialty) {
			v.logger.Warn("specialty is invalid", "index", i, "length", len(specialty))
			return false
		}
	}

	return true
}

func (v *Validator) isValidSortBy(fl validator.FieldLevel) bool {
	if _, err := search.ParseSortField(fl.Field().String()); err != nil {
		v.logger.Warn("sortBy is invalid", "sortBy", fl.Field().String())
		return false
	}

	return true
}

func (v *Validator) isValidSortOrder(fl validator.FieldLevel) bool {
	if _, err := search.ParseSortOrder(fl.Field().String()); err != nil {
		v.logger.Warn("sortOrder is invalid", "sortOrder", fl.Field().String())
		return false
	}

	return true
}

func isCleanText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, '\x00')
}
