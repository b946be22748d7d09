package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// validatorInstance returns the shared validator with the custom tags
// registered.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})

		_ = v.RegisterValidation("moodtype", func(fl validator.FieldLevel) bool {
			_, err := common.ParseMoodType(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("entrydate", func(fl validator.FieldLevel) bool {
			return validDate(fl.Field().String())
		})
		_ = v.RegisterValidation("entrytime", func(fl validator.FieldLevel) bool {
			return validTime(fl.Field().String())
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernameRe.MatchString(fl.Field().String())
		})

		validate = v
	})
	return validate
}

func validDate(s string) bool {
	t, err := time.Parse(common.DateLayout, s)
	return err == nil && t.Format(common.DateLayout) == s
}

func validTime(s string) bool {
	t, err := time.Parse(common.TimeLayout, s)
	return err == nil && t.Format(common.TimeLayout) == s
}

// validateStruct runs the tag rules on v and turns the first failure into a
// *common.ValidationError.
func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return common.NewValidationError("", err.Error())
	}

	fe := verrs[0]
	return common.NewValidationError(fieldPath(fe), fieldMessage(fe))
}

// fieldPath drops the struct name from the namespace: "MoodRequest.activities[1]"
// becomes "activities[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "moodtype":
		return "invalid mood type"
	case "entrydate":
		return "must be a date in YYYY-MM-DD format"
	case "entrytime":
		return "must be a time in HH:MM:SS format"
	case "username":
		return "may contain only letters, digits and underscores"
	case "nefield":
		return "must differ from the current password"
	}
	return "is invalid"
}

// normalizeFilter applies list defaults and rejects out-of-range values.
func normalizeFilter(f api.MoodFilter) (api.MoodFilter, error) {
	if f.Limit == 0 {
		f.Limit = api.DefaultListLimit
	}
	if f.Limit < 1 || f.Limit > api.MaxListLimit {
		return f, common.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", api.MaxListLimit))
	}
	if f.Offset < 0 {
		return f, common.NewValidationError("offset", "must not be negative")
	}
	if f.StartDate != "" && !validDate(f.StartDate) {
		return f, common.NewValidationError("startDate", "must be a date in YYYY-MM-DD format")
	}
	if f.EndDate != "" && !validDate(f.EndDate) {
		return f, common.NewValidationError("endDate", "must be a date in YYYY-MM-DD format")
	}
	return f, nil
}

// periodDays resolves a stats period, defaulting to 7d when empty.
func periodDays(period string) (string, int, error) {
	if period == "" {
		period = common.DefaultPeriod
	}
	days, ok := common.PeriodDays(period)
	if !ok {
		return "", 0, common.NewValidationError("period", "must be one of 7d, 30d, all")
	}
	return period, days, nil
}
