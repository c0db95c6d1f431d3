package correspond

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/correspond/shape"
	"go.viam.com/correspond/transform"
)

// PruneSeamTrilist filters the trilist of a flattened mesh, dropping every
// triangle that spans the rear seam: any triangle with one vertex past
// -(1-deadZone)*pi*radius and another past +(1-deadZone)*pi*radius in
// flattened x. Points are untouched, so the surviving trilist may leave
// dangling vertices.
func PruneSeamTrilist(m *shape.TriMesh, radius, deadZone float64) [][3]int {
	bound := (1 - deadZone) * math.Pi * radius
	pts := m.Points()
	kept := make([][3]int, 0, m.NTriangles())
	for _, tri := range m.Trilist() {
		low, high := false, false
		for _, vi := range tri {
			x := pts.At(vi)[0]
			if x < -bound {
				low = true
			}
			if x > bound {
				high = true
			}
		}
		if low && high {
			continue
		}
		kept = append(kept, tri)
	}
	return kept
}

// A flattener carries an aligned mesh into the unwrapped 2D frame, warps it
// so its landmarks land exactly on the flattened target landmarks, reattaches
// the radial depth, and prunes seam-spanning triangles.
type flattener struct {
	unwrap     *transform.CylindricalUnwrap
	flatTarget *shape.PointCloud // 2D flattened target landmarks
	deadZone   float64
}

func newFlattener(unwrap *transform.CylindricalUnwrap, flatTarget *shape.PointCloud, deadZone float64) *flattener {
	return &flattener{unwrap: unwrap, flatTarget: flatTarget, deadZone: deadZone}
}

// flatten maps the mesh and its selected landmark cloud through the unwrap,
// fits the landmark warp, and rebuilds the mesh in warped flattened space.
// The warp moves only the first two coordinates; the third stays the
// unwrapped radial depth of each point.
func (f *flattener) flatten(mesh *shape.TriMesh, landmarks *shape.PointCloud) (*shape.TriMesh, error) {
	flat, err := transform.ApplyToMesh(f.unwrap, mesh)
	if err != nil {
		return nil, errors.Wrap(err, "unwrapping mesh")
	}
	flatLms, err := f.unwrap.Apply(landmarks)
	if err != nil {
		return nil, errors.Wrap(err, "unwrapping landmarks")
	}

	extract := &transform.ExtractDims{N: 2}
	flatLms2, err := extract.Apply(flatLms)
	if err != nil {
		return nil, err
	}
	warp, err := transform.FitThinPlateSpline(flatLms2, f.flatTarget)
	if err != nil {
		return nil, errors.Wrap(err, "fitting landmark warp")
	}

	flatPts := flat.Points()
	flat2, err := extract.Apply(flatPts)
	if err != nil {
		return nil, err
	}
	warped2, err := warp.Apply(flat2)
	if err != nil {
		return nil, errors.Wrap(err, "warping flattened mesh")
	}

	// reattach the unwrapped depth next to the warped 2D positions
	warped3, err := (&transform.AppendDims{N: 1}).Apply(warped2)
	if err != nil {
		return nil, err
	}
	n := warped3.N()
	for i := 0; i < n; i++ {
		warped3.At(i)[2] = flatPts.At(i)[2]
	}

	out, err := flat.WithPoints(warped3, nil)
	if err != nil {
		return nil, err
	}
	// seam crossings are classified on the warped positions
	pruned := PruneSeamTrilist(out, f.unwrap.Radius(), f.deadZone)
	return out.WithTrilist(pruned)
}
