// ABOUTME: Form decoding and encoding for the create and edit pages
// ABOUTME: Forms round-trip as raw strings so rejected input is shown back unchanged
package web

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/models"
)

const (
	formDateLayout     = "2006-01-02"
	formDateTimeLayout = "2006-01-02T15:04"
)

// formValues holds submitted or prefilled form fields by input name.
type formValues map[string]string

// fieldErrors maps an input name to the message shown next to it.
type fieldErrors map[string]string

func readForm(values url.Values, names ...string) formValues {
	form := make(formValues, len(names))
	for _, name := range names {
		form[name] = strings.TrimSpace(values.Get(name))
	}
	return form
}

// mergeValidation adds the per-field messages carried by err.
func (fe fieldErrors) mergeValidation(err error) bool {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	for field, msg := range verr.Fields {
		if _, exists := fe[field]; !exists {
			fe[field] = msg
		}
	}
	return true
}

func parseOptionalDate(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(formDateLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(formDateLayout)
}

func parseID(raw string) (uuid.UUID, bool) {
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

var contactFields = []string{
	"first_name", "last_name", "email", "phone", "company", "role_title", "address",
	"birthday", "linkedin_url", "twitter_url", "website", "notes", "source",
}

func contactForm(c *models.Contact) formValues {
	return formValues{
		"first_name":   c.FirstName,
		"last_name":    c.LastName,
		"email":        c.Email,
		"phone":        c.Phone,
		"company":      c.Company,
		"role_title":   c.RoleTitle,
		"address":      c.Address,
		"birthday":     formatOptionalDate(c.Birthday),
		"linkedin_url": c.LinkedInURL,
		"twitter_url":  c.TwitterURL,
		"website":      c.Website,
		"notes":        c.Notes,
		"source":       c.Source,
	}
}

// parseContactForm decodes and validates a contact form.
func parseContactForm(values url.Values) (*models.Contact, formValues, fieldErrors) {
	form := readForm(values, contactFields...)
	errs := fieldErrors{}

	c := &models.Contact{
		FirstName:   form["first_name"],
		LastName:    form["last_name"],
		Email:       form["email"],
		Phone:       form["phone"],
		Company:     form["company"],
		RoleTitle:   form["role_title"],
		Address:     form["address"],
		LinkedInURL: form["linkedin_url"],
		TwitterURL:  form["twitter_url"],
		Website:     form["website"],
		Notes:       form["notes"],
		Source:      form["source"],
	}
	if birthday, ok := parseOptionalDate(form["birthday"]); ok {
		c.Birthday = birthday
	} else {
		errs["birthday"] = "Invalid date"
	}

	errs.mergeValidation(c.Validate())
	return c, form, errs
}

var opportunityFields = []string{
	"contact_id", "name", "description", "value", "currency", "stage", "priority",
	"expected_close_date", "actual_close_date",
}

func opportunityForm(o *models.Opportunity) formValues {
	form := formValues{
		"name":                o.Name,
		"description":         o.Description,
		"currency":            o.Currency,
		"stage":               string(o.Stage),
		"expected_close_date": formatOptionalDate(o.ExpectedCloseDate),
		"actual_close_date":   formatOptionalDate(o.ActualCloseDate),
	}
	if o.ContactID != uuid.Nil {
		form["contact_id"] = o.ContactID.String()
	}
	if o.Value != nil {
		form["value"] = strconv.FormatFloat(*o.Value, 'f', -1, 64)
	}
	if o.Priority != nil {
		form["priority"] = strconv.Itoa(*o.Priority)
	}
	return form
}

func parseOpportunityForm(values url.Values) (*models.Opportunity, formValues, fieldErrors) {
	form := readForm(values, opportunityFields...)
	errs := fieldErrors{}

	o := &models.Opportunity{
		Name:        form["name"],
		Description: form["description"],
		Currency:    strings.ToUpper(form["currency"]),
		Stage:       models.Stage(form["stage"]),
	}
	if id, ok := parseID(form["contact_id"]); ok {
		o.ContactID = id
	}
	if raw := form["value"]; raw != "" {
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			errs["value"] = "must be a number"
		} else {
			o.Value = &v
		}
	}
	if raw := form["priority"]; raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			errs["priority"] = "must be a whole number"
		} else {
			o.Priority = &p
		}
	}
	if d, ok := parseOptionalDate(form["expected_close_date"]); ok {
		o.ExpectedCloseDate = d
	} else {
		errs["expected_close_date"] = "Invalid date"
	}
	if d, ok := parseOptionalDate(form["actual_close_date"]); ok {
		o.ActualCloseDate = d
	} else {
		errs["actual_close_date"] = "Invalid date"
	}

	errs.mergeValidation(o.Validate())
	return o, form, errs
}

var interactionFields = []string{
	"contact_id", "opportunity_id", "type", "date_of_interaction", "summary",
	"follow_up_needed", "follow_up_date",
}

func interactionForm(it *models.Interaction, loc *time.Location) formValues {
	form := formValues{
		"type":           string(it.Type),
		"summary":        it.Summary,
		"follow_up_date": formatOptionalDate(it.FollowUpDate),
	}
	if it.ContactID != uuid.Nil {
		form["contact_id"] = it.ContactID.String()
	}
	if it.OpportunityID != nil {
		form["opportunity_id"] = it.OpportunityID.String()
	}
	if !it.OccurredAt.IsZero() {
		form["date_of_interaction"] = it.OccurredAt.In(loc).Format(formDateTimeLayout)
	}
	if it.FollowUpNeeded {
		form["follow_up_needed"] = "on"
	}
	return form
}

// parseInteractionForm reads the occurrence time in loc, the user's profile zone.
func parseInteractionForm(values url.Values, loc *time.Location) (*models.Interaction, formValues, fieldErrors) {
	form := readForm(values, interactionFields...)
	errs := fieldErrors{}

	it := &models.Interaction{
		Type:           models.InteractionType(form["type"]),
		Summary:        form["summary"],
		FollowUpNeeded: form["follow_up_needed"] == "on" || form["follow_up_needed"] == "true",
	}
	if id, ok := parseID(form["contact_id"]); ok {
		it.ContactID = id
	}
	if raw := form["opportunity_id"]; raw != "" {
		if id, ok := parseID(raw); ok {
			it.OpportunityID = &id
		} else {
			errs["opportunity_id"] = "Invalid opportunity"
		}
	}
	if raw := form["date_of_interaction"]; raw != "" {
		t, err := time.ParseInLocation(formDateTimeLayout, raw, loc)
		if err != nil {
			errs["date_of_interaction"] = "Invalid date"
		} else {
			it.OccurredAt = t
		}
	}
	if d, ok := parseOptionalDate(form["follow_up_date"]); ok {
		it.FollowUpDate = d
	} else {
		errs["follow_up_date"] = "Invalid date"
	}

	errs.mergeValidation(it.Validate())
	return it, form, errs
}

func profileForm(p *models.Profile) formValues {
	return formValues{"time_zone": p.TimeZone, "currency": p.CurrencyCode()}
}

func parseProfileForm(values url.Values) (*models.Profile, formValues, fieldErrors) {
	form := readForm(values, "time_zone", "currency")
	errs := fieldErrors{}
	p := &models.Profile{TimeZone: form["time_zone"], Currency: strings.ToUpper(form["currency"])}
	errs.mergeValidation(p.Validate())
	return p, form, errs
}
