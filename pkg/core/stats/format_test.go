package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHourLabel(t *testing.T) {
	tests := map[int]string{0: "12am", 1: "1am", 11: "11am", 12: "12pm", 13: "1pm", 23: "11pm"}
	for hour, want := range tests {
		assert.Equal(t, want, HourLabel(hour))
	}
}

func TestDayName(t *testing.T) {
	assert.Equal(t, "Sunday", DayName(0))
	assert.Equal(t, "Saturday", DayName(6))
	assert.Equal(t, "—", DayName(-1))
	assert.Equal(t, "—", DayName(7))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1K"},
		{1500, "1.5K"},
		{12_340, "12.3K"},
		{2_000_000, "2M"},
		{1_500_000, "1.5M"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}
