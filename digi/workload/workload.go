// Package workload generates synthetic charge-deposition events for the
// digitization pipeline: straight pixel tracks with Gaussian charge sharing
// and Poisson fluctuation of the collected electron count. It stands in for
// the particle-transport front end in the CLI and in integration tests.
package workload

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/MuonColliderSoft/MuonCVXDDigitiser/digi"
)

// Deposit is one charge quantity aimed at a pixel.
type Deposit struct {
	Row    int
	Col    int
	Charge float64 // electrons
}

// Event is the set of deposits of one particle crossing; all deposits of an
// event land in the same clock period.
type Event struct {
	Deposits []Deposit
}

// Params configures the synthetic track generator.
type Params struct {
	NumEvents    int     // particle crossings to generate
	MeanCharge   float64 // mean electrons collected per fired pixel
	ChargeSigma  float64 // gaussian sigma of the per-pixel collected charge
	MaxTrackLen  int     // max pixels fired along one crossing
	PoissonSmear bool    // apply Poisson fluctuation to the electron count
	Seed         uint64
}

// Validate checks generator parameter ranges.
func (p Params) Validate() error {
	if p.NumEvents <= 0 {
		return fmt.Errorf("workload: num_events must be > 0, got %d", p.NumEvents)
	}
	if p.MeanCharge <= 0 {
		return fmt.Errorf("workload: mean_charge must be > 0, got %g", p.MeanCharge)
	}
	if p.ChargeSigma < 0 {
		return fmt.Errorf("workload: charge_sigma must be >= 0, got %g", p.ChargeSigma)
	}
	if p.MaxTrackLen <= 0 {
		return fmt.Errorf("workload: max_track_len must be > 0, got %d", p.MaxTrackLen)
	}
	return nil
}

// track step directions: the 8 neighbors, fixed order for reproducibility.
var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1},
}

// Generate produces deterministic synthetic crossings for a rows x cols
// matrix. The same Params always yield the same events.
func Generate(rows, cols int, p Params) ([]Event, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("workload: matrix must be non-empty, got %dx%d", rows, cols)
	}

	prng := digi.NewPartitionedRNG(digi.NewSimulationKey(p.Seed))
	trackRNG := prng.ForSubsystem(digi.SubsystemTracks)
	chargeRNG := prng.ForSubsystem(digi.SubsystemCharge)

	sharing := distuv.Normal{Mu: p.MeanCharge, Sigma: p.ChargeSigma, Src: chargeRNG}

	events := make([]Event, 0, p.NumEvents)
	for e := 0; e < p.NumEvents; e++ {
		row := trackRNG.Intn(rows)
		col := trackRNG.Intn(cols)
		dir := directions[trackRNG.Intn(len(directions))]
		steps := 1 + trackRNG.Intn(p.MaxTrackLen)

		var ev Event
		for i := 0; i < steps; i++ {
			if row < 0 || row >= rows || col < 0 || col >= cols {
				break
			}
			charge := sharing.Rand()
			if charge < 0 {
				charge = 0
			}
			if p.PoissonSmear && charge > 0 {
				charge = distuv.Poisson{Lambda: charge, Src: chargeRNG}.Rand()
			}
			ev.Deposits = append(ev.Deposits, Deposit{Row: row, Col: col, Charge: charge})
			row += dir[0]
			col += dir[1]
		}
		if len(ev.Deposits) > 0 {
			events = append(events, ev)
		}
	}
	return events, nil
}
