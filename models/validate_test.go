// ABOUTME: Tests for record validation
// ABOUTME: Checks field-level messages for contacts, opportunities, interactions and profiles
package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	return verr.Fields
}

func TestContactValidate(t *testing.T) {
	assert.NoError(t, (&Contact{FirstName: "Ada"}).Validate())
	assert.NoError(t, (&Contact{Email: "ada@example.com"}).Validate())

	fields := fieldErrors(t, (&Contact{Company: "Acme"}).Validate())
	assert.Equal(t, "At least one of first name, last name, or email is required", fields["first_name"])

	fields = fieldErrors(t, (&Contact{FirstName: "Ada", Email: "not-an-email", Website: "nope"}).Validate())
	assert.Equal(t, "Invalid email address", fields["email"])
	assert.Equal(t, "Invalid URL", fields["website"])

	assert.NoError(t, (&Contact{
		FirstName:   "Ada",
		LinkedInURL: "https://linkedin.com/in/ada",
		TwitterURL:  "https://twitter.com/ada",
		Website:     "https://example.com",
	}).Validate())
}

func TestOpportunityValidate(t *testing.T) {
	value := 100.0
	priority := 3
	valid := Opportunity{
		ContactID: uuid.New(),
		Name:      "Renewal",
		Stage:     StageLead,
		Value:     &value,
		Currency:  "EUR",
		Priority:  &priority,
	}
	assert.NoError(t, valid.Validate())

	bad := -5.0
	tooHigh := 6
	fields := fieldErrors(t, (&Opportunity{Stage: "Closed", Value: &bad, Priority: &tooHigh, Currency: "ZZZ"}).Validate())
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "is required", fields["contact_id"])
	assert.Contains(t, fields["stage"], "must be one of Lead")
	assert.Equal(t, "must be positive", fields["value"])
	assert.Equal(t, "must be at most 5", fields["priority"])
	assert.Equal(t, "must be a valid currency code", fields["currency"])
}

func TestInteractionValidate(t *testing.T) {
	when := time.Now()
	valid := Interaction{
		ContactID:  uuid.New(),
		Type:       InteractionCall,
		OccurredAt: when,
		Summary:    "Talked pricing",
	}
	assert.NoError(t, valid.Validate())

	missingDate := valid
	missingDate.FollowUpNeeded = true
	fields := fieldErrors(t, missingDate.Validate())
	assert.Equal(t, "Follow-up date is required when follow-up is needed", fields["follow_up_date"])

	withDate := missingDate
	withDate.FollowUpDate = &when
	assert.NoError(t, withDate.Validate())

	fields = fieldErrors(t, (&Interaction{Type: "Fax"}).Validate())
	assert.Equal(t, "is required", fields["summary"])
	assert.Equal(t, "is required", fields["contact_id"])
	assert.Equal(t, "is required", fields["date_of_interaction"])
	assert.Contains(t, fields["type"], "must be one of")
}

func TestProfileValidate(t *testing.T) {
	assert.NoError(t, (&Profile{}).Validate())
	assert.NoError(t, (&Profile{TimeZone: "America/Chicago", Currency: "USD"}).Validate())

	fields := fieldErrors(t, (&Profile{TimeZone: "Mars/Olympus", Currency: "dollars"}).Validate())
	assert.Equal(t, "must be a valid time zone", fields["time_zone"])
	assert.Equal(t, "must be a valid currency code", fields["currency"])
}
