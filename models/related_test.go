package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelatedBranches(t *testing.T) {
	var none Related[Contact]
	_, ok := none.Get()
	assert.False(t, ok)
	assert.False(t, none.Present())

	some := Embed(Contact{FirstName: "Grace"})
	c, ok := some.Get()
	require.True(t, ok)
	assert.Equal(t, "Grace", c.FirstName)
}

func TestRelatedJSON(t *testing.T) {
	opp := Opportunity{Name: "Deal", Stage: StageLead}
	data, err := json.Marshal(opp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"contact":null`)

	opp.Contact = Embed(Contact{FirstName: "Grace"})
	data, err = json.Marshal(opp)
	require.NoError(t, err)

	var decoded Opportunity
	require.NoError(t, json.Unmarshal(data, &decoded))
	c, ok := decoded.Contact.Get()
	require.True(t, ok)
	assert.Equal(t, "Grace", c.FirstName)
}
