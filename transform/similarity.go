package transform

import (
	"gonum.org/v1/gonum/mat"

	"go.viam.com/correspond/shape"
)

// A Similarity is a uniform scale, rotation and translation. Fitting one is
// the closed-form least-squares (Procrustes) alignment of corresponding
// point sets.
type Similarity struct {
	scale float64
	rot   *mat.Dense // dims x dims rotation
	trans []float64
	dims  int
}

// NewSimilarityIdentity returns the identity similarity in dims dimensions.
func NewSimilarityIdentity(dims int) *Similarity {
	rot := mat.NewDense(dims, dims, nil)
	for i := 0; i < dims; i++ {
		rot.Set(i, i, 1)
	}
	return &Similarity{scale: 1, rot: rot, trans: make([]float64, dims), dims: dims}
}

// FitSimilarity computes the similarity minimizing the sum of squared
// distances between corresponding points of src and tgt.
func FitSimilarity(src, tgt *shape.PointCloud) (*Similarity, error) {
	return fitSimilarity(src, tgt, true)
}

// FitRigid is FitSimilarity with the scale pinned to 1.
func FitRigid(src, tgt *shape.PointCloud) (*Similarity, error) {
	return fitSimilarity(src, tgt, false)
}

func fitSimilarity(src, tgt *shape.PointCloud, withScale bool) (*Similarity, error) {
	if src.Dims() != tgt.Dims() {
		return nil, &DimensionMismatchError{What: "point dimensionality", Want: tgt.Dims(), Got: src.Dims()}
	}
	if src.N() != tgt.N() {
		return nil, &DimensionMismatchError{What: "landmark count", Want: tgt.N(), Got: src.N()}
	}
	n, d := src.N(), src.Dims()
	if n == 0 {
		return nil, &SingularSystemError{Op: "similarity fit", Reason: "no points"}
	}

	muS := src.Centroid()
	muT := tgt.Centroid()
	cov := mat.NewDense(d, d, nil)
	varSrc := 0.0
	for i := 0; i < n; i++ {
		s := src.At(i)
		g := tgt.At(i)
		for r := 0; r < d; r++ {
			tr := g[r] - muT[r]
			for c := 0; c < d; c++ {
				cov.Set(r, c, cov.At(r, c)+tr*(s[c]-muS[c]))
			}
		}
		for c := 0; c < d; c++ {
			ds := s[c] - muS[c]
			varSrc += ds * ds
		}
	}
	cov.Scale(1/float64(n), cov)
	varSrc /= float64(n)
	if varSrc == 0 {
		return nil, &SingularSystemError{Op: "similarity fit", Reason: "source points are coincident"}
	}

	var svd mat.SVD
	if !svd.Factorize(cov, mat.SVDFull) {
		return nil, &SingularSystemError{Op: "similarity fit", Reason: "covariance SVD failed"}
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	vals := svd.Values(nil)

	// flip the weakest direction rather than permit a reflection
	sign := make([]float64, d)
	for i := range sign {
		sign[i] = 1
	}
	if mat.Det(&u)*mat.Det(&v) < 0 {
		sign[d-1] = -1
	}

	rot := mat.NewDense(d, d, nil)
	var tmp mat.Dense
	tmp.Mul(&u, mat.NewDiagDense(d, sign))
	rot.Mul(&tmp, v.T())

	scale := 1.0
	if withScale {
		tr := 0.0
		for i := 0; i < d; i++ {
			tr += vals[i] * sign[i]
		}
		scale = tr / varSrc
	}

	trans := make([]float64, d)
	for r := 0; r < d; r++ {
		off := muT[r]
		for c := 0; c < d; c++ {
			off -= scale * rot.At(r, c) * muS[c]
		}
		trans[r] = off
	}
	return &Similarity{scale: scale, rot: rot, trans: trans, dims: d}, nil
}

// Apply maps every point through scale*R*p + t.
func (s *Similarity) Apply(pc *shape.PointCloud) (*shape.PointCloud, error) {
	if pc.Dims() != s.dims {
		return nil, &DimensionMismatchError{What: "point dimensionality", Want: s.dims, Got: pc.Dims()}
	}
	out := pc.Clone()
	n := out.N()
	buf := make([]float64, s.dims)
	for i := 0; i < n; i++ {
		p := out.At(i)
		for r := 0; r < s.dims; r++ {
			v := s.trans[r]
			for c := 0; c < s.dims; c++ {
				v += s.scale * s.rot.At(r, c) * p[c]
			}
			buf[r] = v
		}
		copy(p, buf)
	}
	return out, nil
}

// Scale returns the uniform scale factor.
func (s *Similarity) Scale() float64 {
	return s.scale
}

// Rotation returns a copy of the rotation matrix.
func (s *Similarity) Rotation() *mat.Dense {
	return mat.DenseCopyOf(s.rot)
}

// Translation returns a copy of the translation vector.
func (s *Similarity) Translation() []float64 {
	return append([]float64(nil), s.trans...)
}
