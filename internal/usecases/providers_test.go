package usecases

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanField(t *testing.T) {
	assert.Equal(t, "N/A", clean(""))
	assert.Equal(t, "N/A", clean("   "))
	assert.Equal(t, "a b", clean("a\n\t  b"))
	assert.Equal(t, "&lt;b&gt;", clean("<b>"), "provider data is escaped for HTML")
}

func TestProvidersMenuOrder(t *testing.T) {
	providers := lookupProviders()
	require.Len(t, providers, 11)

	// Every provider must be self-consistent enough for the router.
	seen := map[string]bool{}
	for _, p := range providers {
		assert.NotEmpty(t, p.Button)
		assert.NotEmpty(t, p.Category)
		assert.NotEmpty(t, p.Prompt)
		assert.NotEmpty(t, p.Empty)
		assert.NotNil(t, p.Pattern)
		assert.NotNil(t, p.URL)
		assert.NotNil(t, p.Format)
		assert.False(t, seen[p.Button], "duplicate button label %q", p.Button)
		seen[p.Button] = true
	}
}

func TestFormatPincode(t *testing.T) {
	payload := json.RawMessage(`[{"Status":"Success","Message":"found",
		"PostOffice":[
			{"Name":"A","BranchType":"BO","DeliveryStatus":"Delivery","District":"D1","Division":"Dv","Region":"R","Block":"B","State":"S","Country":"India"},
			{"Name":"B","BranchType":"SO","DeliveryStatus":"Non Delivery","District":"D2","Division":"Dv","Region":"R","Block":"B","State":"S","Country":"India"}
		]}]`)

	msgs, found := formatPincode(payload, "110001")
	require.True(t, found)
	require.Len(t, msgs, 4, "header, one per office, summary")
	assert.Contains(t, msgs[0], "110001")
	assert.Contains(t, msgs[1], "Post Office #1")
	assert.Contains(t, msgs[2], "Post Office #2")
	assert.Contains(t, msgs[3], "Total Post Offices:</b> 2")
}

func TestFormatPincodeNoRecords(t *testing.T) {
	for _, payload := range []string{
		`[{"Status":"Error","PostOffice":null}]`,
		`[]`,
		`{"unexpected":"shape"}`,
	} {
		_, found := formatPincode(json.RawMessage(payload), "110001")
		assert.False(t, found, "payload %s", payload)
	}
}

func TestFormatVehicle(t *testing.T) {
	payload := json.RawMessage(`{"rc_number":"MH01AB1234","owner_name":"Jane","fuel_type":"PETROL"}`)
	msgs, found := formatVehicle(payload, "MH01AB1234")
	require.True(t, found)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "MH01AB1234")
	assert.Contains(t, msgs[0], "Jane")

	_, found = formatVehicle(json.RawMessage(`{}`), "MH01AB1234")
	assert.False(t, found, "missing rc_number means no record")
}

func TestVehiclePatternRequiresNormalizedInput(t *testing.T) {
	p := vehicleProvider()
	assert.False(t, p.Pattern.MatchString("mh01ab1234"))
	assert.True(t, p.Pattern.MatchString(p.Normalize("mh01ab1234")))
}

func TestIFSCPattern(t *testing.T) {
	p := ifscProvider()
	assert.True(t, p.Pattern.MatchString("SBIN0001234"))
	assert.True(t, p.Pattern.MatchString(p.Normalize("sbin0001234")))
	assert.False(t, p.Pattern.MatchString("SBIN001234"), "too short")
	assert.False(t, p.Pattern.MatchString("SB1N0001234"), "digits in bank code")
}

func TestPakNumberPattern(t *testing.T) {
	p := pakNumberProvider()
	assert.True(t, p.Pattern.MatchString("923001234567"))
	assert.False(t, p.Pattern.MatchString("03001234567"))
	assert.False(t, p.Pattern.MatchString("9230012345678"))
}
