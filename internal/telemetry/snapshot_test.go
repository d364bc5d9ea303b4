package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/five82/axemon/internal/axeos"
)

func TestNormalize_ConvertsUnits(t *testing.T) {
	info := axeos.SystemInfo{
		Power:             12.34,
		Voltage:           15000,
		Current:           3500,
		CoreVoltageActual: 1205,
		CoreVoltage:       1200,
		Hostname:          "axe",
	}

	snap := Normalize(info)

	assert.Equal(t, 12.3, snap.Power)
	assert.Equal(t, 15.0, snap.Voltage)
	assert.Equal(t, 3.5, snap.Current)
	assert.Equal(t, 1.21, snap.CoreVoltageActual)
	assert.Equal(t, 1.20, snap.CoreVoltage)
	assert.Equal(t, "axe", snap.Info.Hostname)
	assert.Equal(t, info, snap.Info)
}

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int
		want   float64
	}{
		{1.205, 2, 1.21},
		{0.125, 2, 0.13},
		{-1.25, 1, -1.3},
		{12.34, 1, 12.3},
		{12.35, 1, 12.4},
		{2.5, 0, 3},
		{-2.5, 0, -3},
		{0, 2, 0},
		{1.2, 2, 1.2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(tt.in, tt.places), "Round(%v, %d)", tt.in, tt.places)
	}
}

func TestSnapshot_Efficiency(t *testing.T) {
	snap := Normalize(axeos.SystemInfo{Power: 15, HashRate: 1000})
	assert.InDelta(t, 15.0, snap.Efficiency(), 1e-9)

	snap = Normalize(axeos.SystemInfo{Power: 15})
	assert.Zero(t, snap.Efficiency())

	snap = Normalize(axeos.SystemInfo{HashRate: 500})
	assert.Zero(t, snap.Efficiency())
}
