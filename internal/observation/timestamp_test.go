package observation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	helsinki, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		helsinki = time.FixedZone("EET", 2*60*60)
	}

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"no padding on day, month or hour", time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC), "5.3.2024 9:07"},
		{"two digit fields", time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), "31.12.2023 23:59"},
		{"midnight", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "1.1.2025 0:00"},
		{"seconds are dropped", time.Date(2024, 6, 21, 14, 30, 45, 999, time.UTC), "21.6.2024 14:30"},
		{"rendered in the time's own zone", time.Date(2024, 6, 21, 22, 15, 0, 0, time.UTC).In(helsinki), "22.6.2024 1:15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatTimestamp(tt.in))
		})
	}
}
