package calibrate

// Piecewise-linear probability calibrator. The model file is produced
// offline by the research pipeline; this adapter only loads and
// evaluates it. Swapping in a better-calibrated model is a matter of
// pointing the config at a new file.

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/cjarmstrong/edgehound/internal/domain"
)

// Point maps an implied probability to a calibrated one.
type Point struct {
	Implied   float64 `json:"implied"`
	Predicted float64 `json:"predicted"`
}

type modelFile struct {
	Version string  `json:"version"`
	Points  []Point `json:"points"`
}

// Piecewise implements ports.Calibrator by linear interpolation over a
// set of calibration points. Outside the fitted range it clamps to the
// endpoint values rather than extrapolating.
type Piecewise struct {
	version string
	points  []Point
}

// Load reads a model file from disk. Any failure wraps
// domain.ErrCalibratorUnavailable so callers can abort the run.
func Load(path string) (*Piecewise, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("calibrate.Load: read %q: %w: %w", path, domain.ErrCalibratorUnavailable, err)
	}
	var mf modelFile
	if err := json.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("calibrate.Load: parse %q: %w: %w", path, domain.ErrCalibratorUnavailable, err)
	}
	return New(mf.Version, mf.Points)
}

// New validates the points and builds a calibrator. Points must be
// strictly increasing in implied probability, with all values in (0, 1).
func New(version string, points []Point) (*Piecewise, error) {
	if version == "" {
		return nil, fmt.Errorf("calibrate.New: missing model version: %w", domain.ErrCalibratorUnavailable)
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("calibrate.New: need at least 2 points, got %d: %w", len(points), domain.ErrCalibratorUnavailable)
	}
	pts := append([]Point(nil), points...)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Implied < pts[j].Implied })
	for i, p := range pts {
		if p.Implied <= 0 || p.Implied >= 1 || p.Predicted <= 0 || p.Predicted >= 1 {
			return nil, fmt.Errorf("calibrate.New: point %d out of (0,1): %+v: %w", i, p, domain.ErrCalibratorUnavailable)
		}
		if i > 0 && p.Implied == pts[i-1].Implied {
			return nil, fmt.Errorf("calibrate.New: duplicate implied %.4f: %w", p.Implied, domain.ErrCalibratorUnavailable)
		}
	}
	return &Piecewise{version: version, points: pts}, nil
}

// Predict interpolates the calibrated probability for the given implied
// probability. Inputs below the first point or above the last clamp to
// the endpoint predictions.
func (p *Piecewise) Predict(implied float64) float64 {
	pts := p.points
	if implied <= pts[0].Implied {
		return pts[0].Predicted
	}
	if implied >= pts[len(pts)-1].Implied {
		return pts[len(pts)-1].Predicted
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Implied >= implied })
	lo, hi := pts[i-1], pts[i]
	t := (implied - lo.Implied) / (hi.Implied - lo.Implied)
	return lo.Predicted + t*(hi.Predicted-lo.Predicted)
}

// Version returns the model version string from the file, recorded on
// every opportunity so stakes can be traced back to the model that
// sized them.
func (p *Piecewise) Version() string {
	return p.version
}
