package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placeminder/internal/model"
	"placeminder/internal/service"
)

func TestSplitAddArgs(t *testing.T) {
	categories := []string{"Grocery", "Convenience Store", "Pharmacy"}

	cases := []struct {
		args     string
		category string
		title    string
		ok       bool
	}{
		{"Grocery Buy milk", "Grocery", "Buy milk", true},
		{"convenience store  Get batteries", "Convenience Store", "Get batteries", true},
		{"Bakery Bread", "Bakery", "Bread", true},
		{"Pharmacy", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		category, title, ok := splitAddArgs(tc.args, categories)
		assert.Equal(t, tc.ok, ok, tc.args)
		if tc.ok {
			assert.Equal(t, tc.category, category, tc.args)
			assert.Equal(t, tc.title, title, tc.args)
		}
	}
}

func TestNearestPerReminder(t *testing.T) {
	res := &service.Resolution{
		Venues: []service.MatchedVenue{
			{ID: 1, Name: "Close Market", CategoryID: 1, Distance: 50},
			{ID: 2, Name: "Pharma", CategoryID: 2, Distance: 80},
			{ID: 3, Name: "Far Market", CategoryID: 1, Distance: 400},
		},
		Reminders: []model.Reminder{
			{ID: 10, Title: "milk", CategoryID: 1},
			{ID: 11, Title: "eggs", CategoryID: 1},
			{ID: 12, Title: "aspirin", CategoryID: 2},
		},
	}

	got := nearestPerReminder(res)
	require.Len(t, got, 3)
	assert.Equal(t, uint(1), got[0].Venue.ID)
	assert.Equal(t, uint(1), got[1].Venue.ID)
	assert.Equal(t, uint(2), got[2].Venue.ID)

	text := formatMatches(got)
	assert.Contains(t, text, "<b>#10</b> Milk")
	assert.Contains(t, text, "Close Market, 50 m")
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "111 m", formatDistance(111.19))
	assert.Equal(t, "1.5 km", formatDistance(1500))
}

func TestParseID(t *testing.T) {
	id, err := parseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = parseID("0")
	assert.Error(t, err)
	_, err = parseID("abc")
	assert.Error(t, err)
}

func TestShortTitleAndEscape(t *testing.T) {
	assert.Equal(t, "Buy milk", shortTitle("buy milk", 24))
	assert.Equal(t, "Abcd…", shortTitle("abcdefgh", 5))
	assert.Equal(t, "a &lt;b&gt;", escape("a <b>"))
}
