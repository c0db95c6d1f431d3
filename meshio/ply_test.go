package meshio

import (
	"bytes"
	"image"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/correspond/shape"
)

func quadMesh(t *testing.T) *shape.TriMesh {
	t.Helper()
	pts := shape.NewPointCloud3([]r3.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0.5},
		{X: 0, Y: 1, Z: -2.25},
	})
	m, err := shape.NewTriMesh(pts, [][3]int{{0, 1, 2}, {0, 2, 3}})
	test.That(t, err, test.ShouldBeNil)
	return m
}

func texturedQuadMesh(t *testing.T) *shape.TriMesh {
	t.Helper()
	pts := shape.NewPointCloud3([]r3.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0.5},
		{X: 0, Y: 1, Z: -2.25},
	})
	tcs, err := shape.NewPointCloud([]float64{0, 0, 1, 0, 1, 1, 0, 1}, 2)
	test.That(t, err, test.ShouldBeNil)
	tex := image.NewRGBA(image.Rect(0, 0, 2, 2))
	m, err := shape.NewTexturedTriMesh(pts, tcs, tex, [][3]int{{0, 1, 2}, {0, 2, 3}})
	test.That(t, err, test.ShouldBeNil)
	return m
}

func TestWriteTriMesh(t *testing.T) {
	var buf bytes.Buffer
	test.That(t, WriteTriMesh(&buf, quadMesh(t)), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldEqual, `ply
format ascii 1.0
element vertex 4
property double x
property double y
property double z
element face 2
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0.5
0 1 -2.25
3 0 1 2
3 0 2 3
`)
}

func TestWriteTexturedTriMesh(t *testing.T) {
	var buf bytes.Buffer
	test.That(t, WriteTriMesh(&buf, texturedQuadMesh(t)), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldEqual, `ply
format ascii 1.0
element vertex 4
property double x
property double y
property double z
property double s
property double t
element face 2
property list uchar int vertex_indices
end_header
0 0 0 0 0
1 0 0 1 0
1 1 0.5 1 1
0 1 -2.25 0 1
3 0 1 2
3 0 2 3
`)
}

func TestPlyRoundTrip(t *testing.T) {
	pts := shape.NewPointCloud3([]r3.Vector{
		{X: math.Pi, Y: -1.0 / 3.0, Z: 1e-9},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
	})
	m, err := shape.NewTriMesh(pts, [][3]int{{0, 1, 2}, {1, 3, 2}})
	test.That(t, err, test.ShouldBeNil)

	var buf bytes.Buffer
	test.That(t, WriteTriMesh(&buf, m), test.ShouldBeNil)
	back, err := ReadTriMesh(&buf)
	test.That(t, err, test.ShouldBeNil)

	// %g prints the shortest representation that parses back exactly
	test.That(t, back.Points().Data(), test.ShouldResemble, m.Points().Data())
	test.That(t, back.Trilist(), test.ShouldResemble, m.Trilist())
	test.That(t, back.HasTexture(), test.ShouldBeFalse)
}

func TestPlyTexturedRoundTrip(t *testing.T) {
	m := texturedQuadMesh(t)
	var buf bytes.Buffer
	test.That(t, WriteTriMesh(&buf, m), test.ShouldBeNil)

	tex := image.NewRGBA(image.Rect(0, 0, 2, 2))
	back, err := ReadTexturedTriMesh(&buf, tex)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.Points().Data(), test.ShouldResemble, m.Points().Data())
	test.That(t, back.TCoords().Data(), test.ShouldResemble, m.TCoords().Data())
	test.That(t, back.Trilist(), test.ShouldResemble, m.Trilist())
	test.That(t, back.HasTexture(), test.ShouldBeTrue)
	test.That(t, back.Texture(), test.ShouldEqual, tex)
}

func TestReadTriMeshFloatUV(t *testing.T) {
	const src = `ply
format ascii 1.0
element vertex 3
property float x
property float y
property float z
property float u
property float v
element face 1
property list uchar int vertex_indices
end_header
0 0 0 0 0
1 0 0 1 0
0 1 0 0 1
3 0 1 2
`
	m, err := ReadTriMesh(strings.NewReader(src))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Points().N(), test.ShouldEqual, 3)
	test.That(t, m.Points().Data(), test.ShouldResemble, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0})
	test.That(t, m.Trilist(), test.ShouldResemble, [][3]int{{0, 1, 2}})
	test.That(t, m.HasTexture(), test.ShouldBeFalse)

	tm, err := ReadTexturedTriMesh(strings.NewReader(src), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tm.TCoords().Data(), test.ShouldResemble, []float64{0, 0, 1, 0, 0, 1})
}

func TestReadTriMeshErrors(t *testing.T) {
	t.Run("no vertex element", func(t *testing.T) {
		_, err := ReadTriMesh(strings.NewReader("ply\nformat ascii 1.0\nend_header\n"))
		test.That(t, err, test.ShouldNotBeNil)
	})
	t.Run("quad face", func(t *testing.T) {
		const src = `ply
format ascii 1.0
element vertex 4
property double x
property double y
property double z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0
0 1 0
4 0 1 2 3
`
		_, err := ReadTriMesh(strings.NewReader(src))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "only triangles")
	})
	t.Run("face index out of range", func(t *testing.T) {
		const src = `ply
format ascii 1.0
element vertex 3
property double x
property double y
property double z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
0 1 0
3 0 1 9
`
		_, err := ReadTriMesh(strings.NewReader(src))
		test.That(t, err, test.ShouldNotBeNil)
	})
	t.Run("textured read of geometry ply", func(t *testing.T) {
		var buf bytes.Buffer
		test.That(t, WriteTriMesh(&buf, quadMesh(t)), test.ShouldBeNil)
		_, err := ReadTexturedTriMesh(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1)))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "texture coordinates")
	})
	t.Run("nil texture", func(t *testing.T) {
		_, err := ReadTexturedTriMesh(strings.NewReader("ply\n"), nil)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestWriteTriMeshErrors(t *testing.T) {
	t.Run("nil mesh", func(t *testing.T) {
		test.That(t, WriteTriMesh(&bytes.Buffer{}, nil), test.ShouldNotBeNil)
	})
	t.Run("2D mesh", func(t *testing.T) {
		flat, err := shape.NewPointCloud([]float64{0, 0, 1, 0, 0, 1}, 2)
		test.That(t, err, test.ShouldBeNil)
		m, err := shape.NewTriMesh(flat, [][3]int{{0, 1, 2}})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, WriteTriMesh(&bytes.Buffer{}, m), test.ShouldNotBeNil)
	})
}

func TestTriMeshFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.ply")
	m := quadMesh(t)
	test.That(t, WriteTriMeshFile(path, m), test.ShouldBeNil)

	back, err := ReadTriMeshFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.Points().Data(), test.ShouldResemble, m.Points().Data())
	test.That(t, back.Trilist(), test.ShouldResemble, m.Trilist())

	_, err = ReadTriMeshFile(filepath.Join(dir, "missing.ply"))
	test.That(t, err, test.ShouldNotBeNil)
}
