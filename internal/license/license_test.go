package license_test

import (
	"testing"
	"time"

	"github.com/frahmantamala/inventory-management/internal/license"
	"github.com/stretchr/testify/assert"
)

func TestExpiration(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		want license.ExpirationState
	}{
		{"empty is perpetual", "", license.StatePerpetual},
		{"N/A is perpetual", "n/a", license.StatePerpetual},
		{"yesterday expired", "2026-03-09", license.StateExpired},
		{"today is expiring", "2026-03-10", license.StateExpiring},
		{"within window", "2026-04-09", license.StateExpiring},
		{"past window", "2026-04-10", license.StateValid},
		{"brazilian format", "01/02/2026", license.StateExpired},
		{"garbage", "soon", license.StateUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, license.Expiration(tt.date, now))
		})
	}
}

func TestBuildStats(t *testing.T) {
	usage := []license.Usage{
		{Product: "Office", Used: 5},
		{Product: "AutoCAD", Used: 3},
	}
	totals := []license.Total{
		{Product: "Office", Total: 4},
		{Product: "Visio", Total: 2},
	}

	stats := license.BuildStats(usage, totals)

	assert.Len(t, stats, 3)
	assert.Equal(t, license.ProductStat{Product: "AutoCAD", Total: 3, Used: 3, Available: 0}, *stats[0])
	assert.Equal(t, license.ProductStat{Product: "Office", Total: 4, Used: 5, Available: -1}, *stats[1])
	assert.Equal(t, license.ProductStat{Product: "Visio", Total: 2, Used: 0, Available: 2}, *stats[2])
}
