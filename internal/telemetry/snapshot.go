package telemetry

import (
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/five82/axemon/internal/axeos"
)

// Snapshot is one normalized telemetry reading. It is built once per poll
// tick and replaced, never modified, by the next one.
type Snapshot struct {
	Power             float64 // W, 1 dp
	Voltage           float64 // V, 1 dp
	Current           float64 // A, 1 dp
	CoreVoltageActual float64 // V, 2 dp
	CoreVoltage       float64 // V, 2 dp

	// Info carries every field as the device reported it.
	Info axeos.SystemInfo

	SampledAt time.Time
}

// Normalize converts a raw reading to display units. It has no side effects.
func Normalize(info axeos.SystemInfo) Snapshot {
	return Snapshot{
		Power:             Round(info.Power, 1),
		Voltage:           Round(info.Voltage/1000, 1),
		Current:           Round(info.Current/1000, 1),
		CoreVoltageActual: Round(info.CoreVoltageActual/1000, 2),
		CoreVoltage:       Round(info.CoreVoltage/1000, 2),
		Info:              info,
	}
}

// Efficiency returns joules per terahash, or 0 when power or hash rate is
// not positive. HashRate is reported in GH/s.
func (s Snapshot) Efficiency() float64 {
	if s.Power <= 0 || s.Info.HashRate <= 0 {
		return 0
	}
	return s.Power / (s.Info.HashRate / 1000)
}

// Round rounds v to places decimal places, halves away from zero.
//
// The shortest decimal form of v is rounded rather than its binary value, so
// 1.205 rounds to 1.21 the way it reads.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || places < 0 {
		return v
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'g', -1, 64))
	if !ok {
		return v
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))

	neg := r.Sign() < 0
	r.Abs(r)
	r.Add(r, big.NewRat(1, 2))
	q := new(big.Int).Quo(r.Num(), r.Denom())
	if neg {
		q.Neg(q)
	}
	out, _ := new(big.Rat).SetFrac(q, scale).Float64()
	return out
}
