package transform

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/kdtree"

	"go.viam.com/correspond/shape"
)

// ICPConfig bounds the iterative closest point solve.
type ICPConfig struct {
	// MaxIterations is the iteration budget; 0 selects the default.
	MaxIterations int `json:"max_iterations"`
	// Tolerance is the RMS improvement below which the solve has converged;
	// 0 selects the default.
	Tolerance float64 `json:"tolerance"`
	// EstimateScale fits a uniform scale along with the rigid motion.
	EstimateScale bool `json:"estimate_scale"`
}

// DefaultICPConfig returns the standard iteration budget and tolerance.
func DefaultICPConfig() ICPConfig {
	return ICPConfig{MaxIterations: 50, Tolerance: 1e-6}
}

// FitICP aligns source onto a dense template without correspondences by
// iterating nearest-point matching against the template and a closed-form
// rigid fit of the original source onto its matches. The solve is
// deterministic: it starts from identity and uses no sampling. It returns
// *ConvergenceError when the iteration budget runs out before successive
// RMS residuals settle within the tolerance.
func FitICP(source, template *shape.PointCloud, cfg ICPConfig, logger golog.Logger) (*Similarity, error) {
	if source.Dims() != template.Dims() {
		return nil, &DimensionMismatchError{What: "point dimensionality", Want: template.Dims(), Got: source.Dims()}
	}
	if source.N() == 0 || template.N() == 0 {
		return nil, errors.New("icp needs non-empty source and template clouds")
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = DefaultICPConfig().MaxIterations
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = DefaultICPConfig().Tolerance
	}
	if cfg.MaxIterations < 0 || cfg.Tolerance < 0 {
		return nil, errors.Errorf("invalid icp config: max_iterations %d, tolerance %v", cfg.MaxIterations, cfg.Tolerance)
	}

	d := template.Dims()
	pts := make(kdtree.Points, template.N())
	for i := range pts {
		pts[i] = kdtree.Point(template.At(i))
	}
	tree := kdtree.New(pts, false)

	cur := source
	prevRMS := math.Inf(1)
	for it := 1; it <= cfg.MaxIterations; it++ {
		matched := make([]float64, 0, cur.N()*d)
		sqDists := make([]float64, cur.N())
		for i := 0; i < cur.N(); i++ {
			nearest, dsq := tree.Nearest(kdtree.Point(cur.At(i)))
			matched = append(matched, nearest.(kdtree.Point)...)
			sqDists[i] = dsq
		}
		msd, err := stats.Mean(sqDists)
		if err != nil {
			return nil, errors.Wrap(err, "icp residuals")
		}
		rms := math.Sqrt(msd)

		matchedPC, err := shape.NewPointCloud(matched, d)
		if err != nil {
			return nil, err
		}
		fit, err := fitSimilarity(source, matchedPC, cfg.EstimateScale)
		if err != nil {
			return nil, errors.Wrap(err, "icp rigid fit")
		}
		next, err := fit.Apply(source)
		if err != nil {
			return nil, err
		}
		cur = next
		logger.Debugf("icp iteration %d: rms %.6g", it, rms)
		if math.Abs(prevRMS-rms) < cfg.Tolerance {
			return fit, nil
		}
		prevRMS = rms
	}
	return nil, &ConvergenceError{Iterations: cfg.MaxIterations, RMS: prevRMS}
}
