// ABOUTME: Struct validation for CRM records
// ABOUTME: Wraps go-playground/validator and turns failures into per-field messages
package models

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrValidation is wrapped by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError maps a field's JSON name to a human readable message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return checkmail.ValidateFormat(fl.Field().String()) == nil
	})

	v.RegisterStructValidation(contactRules, Contact{})
	v.RegisterStructValidation(opportunityRules, Opportunity{})
	v.RegisterStructValidation(interactionRules, Interaction{})

	return v
}

func contactRules(sl validator.StructLevel) {
	c := sl.Current().Interface().(Contact)
	if strings.TrimSpace(c.FirstName) == "" && strings.TrimSpace(c.LastName) == "" && strings.TrimSpace(c.Email) == "" {
		sl.ReportError(c.FirstName, "first_name", "FirstName", "identity", "")
	}
}

func opportunityRules(sl validator.StructLevel) {
	o := sl.Current().Interface().(Opportunity)
	if o.ContactID == uuid.Nil {
		sl.ReportError(o.ContactID, "contact_id", "ContactID", "required", "")
	}
}

func interactionRules(sl validator.StructLevel) {
	i := sl.Current().Interface().(Interaction)
	if i.ContactID == uuid.Nil {
		sl.ReportError(i.ContactID, "contact_id", "ContactID", "required", "")
	}
	if i.OccurredAt.IsZero() {
		sl.ReportError(i.OccurredAt, "date_of_interaction", "OccurredAt", "required", "")
	}
}

// Validate checks the contact before any write.
func (c *Contact) Validate() error { return check(c) }

// Validate checks the opportunity before any write.
func (o *Opportunity) Validate() error { return check(o) }

// Validate checks the interaction before any write.
func (i *Interaction) Validate() error { return check(i) }

// Validate checks the profile before any write.
func (p *Profile) Validate() error { return check(p) }

func check(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "identity":
		return "At least one of first name, last name, or email is required"
	case "required_if":
		return "Follow-up date is required when follow-up is needed"
	case "required":
		return "is required"
	case "mailbox":
		return "Invalid email address"
	case "url":
		return "Invalid URL"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		if fe.Param() == "0" {
			return "must be positive"
		}
		return "must be greater than " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "iso4217":
		return "must be a valid currency code"
	case "timezone":
		return "must be a valid time zone"
	default:
		return fmt.Sprintf("is invalid (%s)", fe.Tag())
	}
}
