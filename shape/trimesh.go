package shape

import (
	"image"

	"github.com/pkg/errors"

	"go.viam.com/correspond/delaunay"
)

// Kind tags the variants a TriMesh can take.
type Kind int

const (
	// KindGeometry is a plain surface with no appearance information.
	KindGeometry Kind = iota
	// KindTextured adds per-vertex texture coordinates and a texture image.
	KindTextured
)

// A TriMesh is a point cloud with triangle connectivity, an optional
// landmark set, and an optional texture. Connectivity is index triples into
// the cloud; dangling vertices (referenced by no triangle) are allowed.
type TriMesh struct {
	points    *PointCloud
	trilist   [][3]int
	landmarks *LandmarkSet

	kind    Kind
	tcoords *PointCloud
	texture image.Image
}

// NewTriMesh builds a geometry-only mesh. A nil trilist on a 2D cloud is
// replaced by a Delaunay triangulation of the points; a 3D cloud requires an
// explicit trilist.
func NewTriMesh(points *PointCloud, trilist [][3]int) (*TriMesh, error) {
	if points == nil {
		return nil, errors.New("mesh needs a point cloud")
	}
	if trilist == nil {
		if points.Dims() != 2 {
			return nil, errors.Errorf("cannot triangulate a %dD cloud, provide a trilist", points.Dims())
		}
		pts := make([]delaunay.Point, points.N())
		for i := range pts {
			pts[i] = delaunay.Point(points.At2(i))
		}
		computed, err := delaunay.Triangulate(pts)
		if err != nil {
			return nil, errors.Wrap(err, "triangulating mesh points")
		}
		trilist = computed
	}
	if err := validateTrilist(points.N(), trilist); err != nil {
		return nil, err
	}
	return &TriMesh{
		points:    points.Clone(),
		trilist:   copyTrilist(trilist),
		landmarks: NewLandmarkSet(),
	}, nil
}

// NewTexturedTriMesh builds a textured mesh: one 2D texture coordinate per
// point and a non-nil texture image. The texture is referenced, not copied.
func NewTexturedTriMesh(points, tcoords *PointCloud, texture image.Image, trilist [][3]int) (*TriMesh, error) {
	m, err := NewTriMesh(points, trilist)
	if err != nil {
		return nil, err
	}
	if tcoords == nil || texture == nil {
		return nil, errors.New("textured mesh needs texture coordinates and a texture image")
	}
	if tcoords.Dims() != 2 {
		return nil, errors.Errorf("texture coordinates must be 2D, got %dD", tcoords.Dims())
	}
	if tcoords.N() != points.N() {
		return nil, errors.Errorf("got %d texture coordinates for %d points", tcoords.N(), points.N())
	}
	m.kind = KindTextured
	m.tcoords = tcoords.Clone()
	m.texture = texture
	return m, nil
}

func validateTrilist(n int, trilist [][3]int) error {
	for ti, tri := range trilist {
		for _, vi := range tri {
			if vi < 0 || vi >= n {
				return errors.Errorf("triangle %d references point %d of a %d point mesh", ti, vi, n)
			}
		}
	}
	return nil
}

func copyTrilist(trilist [][3]int) [][3]int {
	out := make([][3]int, len(trilist))
	copy(out, trilist)
	return out
}

// Points returns the mesh's point cloud.
func (m *TriMesh) Points() *PointCloud {
	return m.points
}

// Trilist returns the mesh's triangle index triples. The slice aliases the
// mesh's storage.
func (m *TriMesh) Trilist() [][3]int {
	return m.trilist
}

// NTriangles returns the number of triangles.
func (m *TriMesh) NTriangles() int {
	return len(m.trilist)
}

// Kind returns the mesh's variant tag.
func (m *TriMesh) Kind() Kind {
	return m.kind
}

// HasTexture reports whether the mesh carries texture information.
func (m *TriMesh) HasTexture() bool {
	return m.kind == KindTextured
}

// TCoords returns the per-point texture coordinates, nil for geometry-only
// meshes.
func (m *TriMesh) TCoords() *PointCloud {
	return m.tcoords
}

// Texture returns the texture image, nil for geometry-only meshes.
func (m *TriMesh) Texture() image.Image {
	return m.texture
}

// Landmarks returns the mesh's landmark set.
func (m *TriMesh) Landmarks() *LandmarkSet {
	return m.landmarks
}

// SetLandmarks replaces the mesh's landmark set.
func (m *TriMesh) SetLandmarks(ls *LandmarkSet) {
	if ls == nil {
		ls = NewLandmarkSet()
	}
	m.landmarks = ls
}

// WithPoints derives a mesh with new point positions and landmarks but the
// same connectivity, kind and texture. The new cloud must have the same
// point count; its dimensionality may differ (pipeline stages move meshes
// between 3D and 2D).
func (m *TriMesh) WithPoints(points *PointCloud, landmarks *LandmarkSet) (*TriMesh, error) {
	if points.N() != m.points.N() {
		return nil, errors.Errorf("got %d points for a %d point mesh", points.N(), m.points.N())
	}
	if landmarks == nil {
		landmarks = NewLandmarkSet()
	}
	out := &TriMesh{
		points:    points.Clone(),
		trilist:   copyTrilist(m.trilist),
		landmarks: landmarks,
		kind:      m.kind,
		texture:   m.texture,
	}
	if m.tcoords != nil {
		out.tcoords = m.tcoords.Clone()
	}
	return out, nil
}

// WithTrilist derives a mesh with the same points, landmarks, kind and
// texture but different connectivity.
func (m *TriMesh) WithTrilist(trilist [][3]int) (*TriMesh, error) {
	if err := validateTrilist(m.points.N(), trilist); err != nil {
		return nil, err
	}
	out := &TriMesh{
		points:    m.points.Clone(),
		trilist:   copyTrilist(trilist),
		landmarks: m.landmarks.Clone(),
		kind:      m.kind,
		texture:   m.texture,
	}
	if m.tcoords != nil {
		out.tcoords = m.tcoords.Clone()
	}
	return out, nil
}
