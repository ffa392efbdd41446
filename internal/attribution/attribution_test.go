package attribution_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/popeskul/spinecheck/internal/attribution"
	"github.com/popeskul/spinecheck/internal/models"
)

func TestSourceTag(t *testing.T) {
	assert.Equal(t, "checkin_d3", attribution.SourceTag(models.Day3))
	assert.Equal(t, "checkin_d7", attribution.SourceTag(models.Day7))
	assert.Equal(t, "checkin_d14", attribution.SourceTag(models.Day14))
}

func TestParseSourceTag(t *testing.T) {
	tests := []struct {
		tag     string
		wantDay models.Day
		wantOK  bool
	}{
		{tag: "checkin_d3", wantDay: models.Day3, wantOK: true},
		{tag: "checkin_d7", wantDay: models.Day7, wantOK: true},
		{tag: "checkin_d14", wantDay: models.Day14, wantOK: true},
		{tag: "checkin_d5"},
		{tag: "checkin_d"},
		{tag: "checkin_d-3"},
		{tag: "checkin_d+7"},
		{tag: "checkin_d7x"},
		{tag: "CHECKIN_D7"},
		{tag: "organic"},
		{tag: ""},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			day, ok := attribution.ParseSourceTag(tt.tag)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDay, day)
		})
	}
}

func TestSourceTagRoundTrip(t *testing.T) {
	for _, day := range models.CheckInDays {
		got, ok := attribution.ParseSourceTag(attribution.SourceTag(day))
		assert.True(t, ok)
		assert.Equal(t, day, got)
	}
}
