// Package validation holds the field-rule schemas of every write command.
// Validate runs all rules of a command and reports every failing field at once.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MaxPasswordBytes is bcrypt's input limit; it counts bytes, not characters.
const MaxPasswordBytes = 72

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		mustRegister(v, "taskstatus", func(fl validator.FieldLevel) bool {
			return domain.TaskStatus(fl.Field().String()).Valid()
		})
		mustRegister(v, "taskpriority", func(fl validator.FieldLevel) bool {
			return domain.TaskPriority(fl.Field().String()).Valid()
		})
		mustRegister(v, "projectstatus", func(fl validator.FieldLevel) bool {
			return domain.ProjectStatus(fl.Field().String()).Valid()
		})
		// empty string clears a date on update
		mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == "" {
				return true
			}
			_, err := domain.ParseDate(s)
			return err == nil
		})
		// empty string clears the assignee on update
		mustRegister(v, "optuuid", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == "" {
				return true
			}
			_, err := uuid.Parse(s)
			return err == nil
		})

		mustRegister(v, "bcryptmax", func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) <= MaxPasswordBytes
		})

		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

type crossChecker interface {
	crossCheck(ve *domain.ValidationError)
}

// Validate returns nil or a *domain.ValidationError listing every failed rule keyed by JSON field name.
func Validate(cmd any) error {
	ve := domain.NewValidationError()

	if err := instance().Struct(cmd); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate %T: %w", cmd, err)
		}
		for _, fe := range fieldErrs {
			ve.Add(fe.Field(), message(fe))
		}
	}

	if c, ok := cmd.(crossChecker); ok {
		c.crossCheck(ve)
	}
	return ve.OrNil()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "max":
		return fmt.Sprintf("may not be greater than %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "bcryptmax":
		return fmt.Sprintf("may not be greater than %d bytes", MaxPasswordBytes)
	case "email":
		return "must be a valid email address"
	case "uuid", "optuuid":
		return "must be a valid id"
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "taskstatus":
		return "must be one of: " + joinValues(domain.TaskStatusOptions())
	case "taskpriority":
		return "must be one of: " + joinValues(domain.TaskPriorityOptions())
	case "projectstatus":
		return "must be one of: " + joinValues(domain.ProjectStatusOptions())
	default:
		return "is invalid"
	}
}

func joinValues(opts []domain.Option) string {
	vals := make([]string, 0, len(opts))
	for _, o := range opts {
		vals = append(vals, o.Value)
	}
	return strings.Join(vals, ", ")
}

// CheckDateRange rejects an end date before the start date. Either side may be nil.
func CheckDateRange(start, end *time.Time) error {
	ve := domain.NewValidationError()
	checkDateRange(ve, start, end)
	return ve.OrNil()
}

func checkDateRange(ve *domain.ValidationError, start, end *time.Time) {
	if start == nil || end == nil {
		return
	}
	if domain.DateOf(*end).Before(domain.DateOf(*start)) {
		ve.Add("end_date", "must be a date after or equal to start_date")
	}
}

// Date converts an already validated date string; "" yields nil.
func Date(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return nil
	}
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
