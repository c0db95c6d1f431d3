// Package meshio moves landmarked triangle meshes across the module
// boundary. PLY is the only format: vertex x/y/z with optional s/t (or u/v)
// texture coordinates, faces as triangle index triples. Landmark files are
// out of scope; landmark sets are attached by the caller.
package meshio

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/chenzhekl/goply"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/correspond/shape"
)

// ReadTriMesh parses an ascii or binary PLY stream into a geometry-only
// mesh. Texture coordinate properties, when present, are ignored.
func ReadTriMesh(r io.Reader) (*shape.TriMesh, error) {
	pts, _, trilist, err := readPly(r)
	if err != nil {
		return nil, err
	}
	return shape.NewTriMesh(pts, trilist)
}

// ReadTexturedTriMesh parses a PLY stream whose vertices carry s/t (or u/v)
// texture coordinates and pairs them with the given texture image. PLY does
// not embed the image itself, so it travels separately.
func ReadTexturedTriMesh(r io.Reader, texture image.Image) (*shape.TriMesh, error) {
	if texture == nil {
		return nil, errors.New("a textured mesh needs a texture image")
	}
	pts, tcoords, trilist, err := readPly(r)
	if err != nil {
		return nil, err
	}
	if tcoords == nil {
		return nil, errors.New("ply has no s/t or u/v texture coordinates")
	}
	return shape.NewTexturedTriMesh(pts, tcoords, texture, trilist)
}

// ReadTriMeshFile reads a PLY file from disk as a geometry-only mesh.
func ReadTriMeshFile(path string) (*shape.TriMesh, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(f.Close)
	return ReadTriMesh(f)
}

func readPly(r io.Reader) (pts, tcoords *shape.PointCloud, trilist [][3]int, err error) {
	// goply panics on malformed input rather than returning an error
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("parsing ply: %v", p)
		}
	}()
	ply := goply.New(r)

	verts := ply.Elements("vertex")
	if len(verts) == 0 {
		return nil, nil, nil, errors.New("ply has no vertex element")
	}
	sName, tName := tcoordNames(verts[0])
	data := make([]float64, 0, len(verts)*3)
	var tcData []float64
	if sName != "" {
		tcData = make([]float64, 0, len(verts)*2)
	}
	for i, v := range verts {
		x, okX := toFloat(v["x"])
		y, okY := toFloat(v["y"])
		z, okZ := toFloat(v["z"])
		if !okX || !okY || !okZ {
			return nil, nil, nil, errors.Errorf("vertex %d has no numeric x/y/z", i)
		}
		data = append(data, x, y, z)
		if sName != "" {
			s, okS := toFloat(v[sName])
			t, okT := toFloat(v[tName])
			if !okS || !okT {
				return nil, nil, nil, errors.Errorf("vertex %d has no numeric %s/%s", i, sName, tName)
			}
			tcData = append(tcData, s, t)
		}
	}

	faces := ply.Elements("face")
	trilist = make([][3]int, 0, len(faces))
	for i, f := range faces {
		raw, ok := f["vertex_indices"]
		if !ok {
			raw, ok = f["vertex_index"]
		}
		if !ok {
			return nil, nil, nil, errors.Errorf("face %d has no vertex_indices", i)
		}
		idxs, ok := toIndices(raw)
		if !ok {
			return nil, nil, nil, errors.Errorf("face %d has malformed vertex_indices", i)
		}
		if len(idxs) != 3 {
			return nil, nil, nil, errors.Errorf("face %d has %d vertices, only triangles are supported", i, len(idxs))
		}
		trilist = append(trilist, [3]int{idxs[0], idxs[1], idxs[2]})
	}

	pc, err := shape.NewPointCloud(data, 3)
	if err != nil {
		return nil, nil, nil, err
	}
	var tc *shape.PointCloud
	if sName != "" {
		tc, err = shape.NewPointCloud(tcData, 2)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return pc, tc, trilist, nil
}

// tcoordNames reports which texture coordinate property pair a vertex
// carries, preferring s/t over u/v.
func tcoordNames(v map[string]interface{}) (string, string) {
	if _, ok := v["s"]; ok {
		if _, ok := v["t"]; ok {
			return "s", "t"
		}
	}
	if _, ok := v["u"]; ok {
		if _, ok := v["v"]; ok {
			return "u", "v"
		}
	}
	return "", ""
}

// toFloat widens any PLY scalar to float64; goply types values per the
// header's property declarations.
func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case int8:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint8:
		return float64(x), true
	}
	return 0, false
}

func toInt(v interface{}) (int, bool) {
	f, ok := toFloat(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func toIndices(v interface{}) ([]int, bool) {
	switch x := v.(type) {
	case []interface{}:
		out := make([]int, len(x))
		for i, e := range x {
			n, ok := toInt(e)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	case []int:
		return append([]int(nil), x...), true
	case []int32:
		out := make([]int, len(x))
		for i, e := range x {
			out[i] = int(e)
		}
		return out, true
	case []uint32:
		out := make([]int, len(x))
		for i, e := range x {
			out[i] = int(e)
		}
		return out, true
	}
	return nil, false
}

// WriteTriMesh writes the mesh to w as ascii PLY, vertices then triangular
// faces. Textured meshes carry their texture coordinates as s/t vertex
// properties; the texture image is not embedded.
func WriteTriMesh(w io.Writer, m *shape.TriMesh) error {
	if m == nil {
		return errors.New("cannot write a nil mesh")
	}
	pts := m.Points()
	if pts.Dims() != 3 {
		return errors.Errorf("can only write 3D meshes, got %dD", pts.Dims())
	}
	textured := m.HasTexture()

	out := bufio.NewWriter(w)
	var err error
	if textured {
		_, err = fmt.Fprintf(out, "ply\n"+
			"format ascii 1.0\n"+
			"element vertex %d\n"+
			"property double x\nproperty double y\nproperty double z\n"+
			"property double s\nproperty double t\n"+
			"element face %d\n"+
			"property list uchar int vertex_indices\n"+
			"end_header\n", pts.N(), m.NTriangles())
	} else {
		_, err = fmt.Fprintf(out, "ply\n"+
			"format ascii 1.0\n"+
			"element vertex %d\n"+
			"property double x\nproperty double y\nproperty double z\n"+
			"element face %d\n"+
			"property list uchar int vertex_indices\n"+
			"end_header\n", pts.N(), m.NTriangles())
	}
	if err != nil {
		return err
	}
	for i := 0; i < pts.N(); i++ {
		p := pts.At(i)
		if textured {
			tc := m.TCoords().At(i)
			_, err = fmt.Fprintf(out, "%g %g %g %g %g\n", p[0], p[1], p[2], tc[0], tc[1])
		} else {
			_, err = fmt.Fprintf(out, "%g %g %g\n", p[0], p[1], p[2])
		}
		if err != nil {
			return err
		}
	}
	for _, tri := range m.Trilist() {
		if _, err = fmt.Fprintf(out, "3 %d %d %d\n", tri[0], tri[1], tri[2]); err != nil {
			return err
		}
	}
	return out.Flush()
}

// WriteTriMeshFile writes the mesh to disk as ascii PLY.
func WriteTriMeshFile(path string, m *shape.TriMesh) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		err = multierr.Combine(err, cerr)
	}()
	return WriteTriMesh(f, m)
}
