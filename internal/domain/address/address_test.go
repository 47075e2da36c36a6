package address

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() Fields {
	return Fields{
		Label:      "Home",
		Recipient:  "Ana Ruiz",
		Line1:      "12 Harbour St",
		City:       "Lisbon",
		PostalCode: "1100-001",
		Country:    "pt",
	}
}

func TestNew(t *testing.T) {
	userID := uuid.New()
	a, err := New(userID, validFields())
	require.NoError(t, err)
	assert.Equal(t, userID, a.UserID)
	assert.Equal(t, "PT", a.Country)
	assert.False(t, a.IsDefault)
}

func TestFields_Validate(t *testing.T) {
	f := validFields()
	f.City = "  "
	assert.Error(t, f.Validate())

	f = validFields()
	f.Country = "PRT"
	assert.Error(t, f.Validate())

	f = validFields()
	f.Line1 = strings.Repeat("ñ", 200)
	assert.NoError(t, f.Validate())
	f.Line1 = strings.Repeat("ñ", 201)
	assert.Error(t, f.Validate())
}

func TestAddress_UpdateRoundTrip(t *testing.T) {
	a, _ := New(uuid.New(), validFields())
	f := a.Fields()
	f.Line2 = "Apt 3"
	require.NoError(t, a.Update(f))
	assert.Equal(t, "Apt 3", a.Line2)
}
