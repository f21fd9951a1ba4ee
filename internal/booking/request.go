package booking

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report JSON field names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// CreateRequest is the payload accepted by CreateReservation.  Time is the
// older name for StartTime and is only consulted when StartTime is empty.
type CreateRequest struct {
	Name          string `json:"name" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	Date          string `json:"date" validate:"required"`
	StartTime     string `json:"start_time" validate:"required"`
	Time          string `json:"time,omitempty" validate:"-"`
	DurationHours int    `json:"duration_hours" validate:"oneof=1 2 3"`
	Lane          string `json:"lane" validate:"required"`
	Players       int    `json:"players" validate:"gt=0"`
	Notes         string `json:"notes"`
	CustomerEmail string `json:"customer_email,omitempty" validate:"omitempty,email"`
}

// normalize trims every text field and resolves the start time alias.
func (r *CreateRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Date = strings.TrimSpace(r.Date)
	r.StartTime = strings.TrimSpace(r.StartTime)
	r.Time = strings.TrimSpace(r.Time)
	if r.StartTime == "" {
		r.StartTime = r.Time
	}
	r.Lane = strings.TrimSpace(r.Lane)
	r.Notes = strings.TrimSpace(r.Notes)
	r.CustomerEmail = strings.ToLower(strings.TrimSpace(r.CustomerEmail))
}

// Validate normalizes r in place and checks it against the catalog.  The
// first failing field is returned as a *ValidationError.
func (r *CreateRequest) Validate(c Catalog) error {
	r.normalize()
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return invalid("", err.Error())
	}
	if err := ValidateDate(r.Date); err != nil {
		return err
	}
	if !c.HasLane(r.Lane) {
		return invalid("lane", "unknown lane")
	}
	if !c.HasSlot(r.StartTime) {
		return invalid("start_time", "not a bookable start time")
	}
	return nil
}

// ValidateDate checks that s is a real calendar date in YYYY-MM-DD form.
func ValidateDate(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return invalid("date", "must be a valid date in YYYY-MM-DD format")
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return invalid(fe.Field(), "is required")
	case "gt":
		return invalid(fe.Field(), "must be greater than "+fe.Param())
	case "oneof":
		return invalid(fe.Field(), "must be one of "+strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return invalid(fe.Field(), "must be a valid email address")
	}
	return invalid(fe.Field(), "is invalid")
}
