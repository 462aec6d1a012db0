package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONDirect(t *testing.T) {
	data, err := extractJSON(`{"name": "Denis", "email": null, "preferred_date": "tomorrow"}`)
	require.NoError(t, err)
	assert.Equal(t, "Denis", data["name"])
	assert.Nil(t, data["email"])
}

func TestExtractJSONEmbeddedInChatter(t *testing.T) {
	response := "Sure! Here is the extracted information:\n" +
		`{"name": "Denis", "email": "denis@example.com", "preferred_date": null}` +
		"\nLet me know if you need anything else."

	data, err := extractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, "denis@example.com", data["email"])
}

func TestExtractJSONNestedBraces(t *testing.T) {
	data, err := extractJSON(`prefix {"outer": {"inner": 1}} suffix`)
	require.NoError(t, err)
	assert.Contains(t, data, "outer")
}

func TestExtractJSONNoObject(t *testing.T) {
	_, err := extractJSON("I could not find any booking details in that message.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid JSON object")

	_, err = extractJSON("unbalanced { brace")
	assert.Error(t, err)
}

func TestLooksLikeName(t *testing.T) {
	assert.True(t, looksLikeName("Denis"))
	assert.True(t, looksLikeName("  Denis Ivanov  "))
	assert.True(t, looksLikeName("Dni"))

	assert.False(t, looksLikeName(""))
	assert.False(t, looksLikeName("d"))
	assert.False(t, looksLikeName("denis@example.com"))
	assert.False(t, looksLikeName("tomorrow afternoon"))
	assert.False(t, looksLikeName("next week works for me"))
	assert.False(t, looksLikeName("Today is fine"))
	assert.False(t, looksLikeName("this reply is way too long to plausibly be somebody's name at all"))
}

func TestParseSlotReference(t *testing.T) {
	tests := []struct {
		message string
		index   int
		found   bool
	}{
		{"2", 1, true},
		{"i'll take 3", 2, true},
		{"slot 1 please", 0, true},
		{"the 2nd one please", 1, true},
		{"first", 0, true},
		{"let's do the third option", 2, true},
		{"the fifth one", 4, true},
		{"7", 6, true}, // out of range is the caller's problem
		{"yes please", 0, false},
		{"whichever", 0, false},
	}
	for _, tt := range tests {
		index, found := parseSlotReference(tt.message)
		assert.Equal(t, tt.found, found, "message %q", tt.message)
		if tt.found {
			assert.Equal(t, tt.index, index, "message %q", tt.message)
		}
	}
}

func TestParseSlotReferenceDigitsBeatOrdinals(t *testing.T) {
	// "the 3 works better than the first one" has both forms; digits win.
	index, found := parseSlotReference("the 3 works better than the first one")
	require.True(t, found)
	assert.Equal(t, 2, index)
}
