package shape

import (
	"sort"

	"github.com/pkg/errors"
)

// LabelAll selects every landmark in a group.
const LabelAll = "all"

// A LandmarkGroup is one named set of annotated points, optionally carved
// into semantic sub-labels that index into the group's cloud.
type LandmarkGroup struct {
	points *PointCloud
	labels map[string][]int
}

// NewLandmarkGroup wraps a cloud as an unlabelled landmark group.
func NewLandmarkGroup(points *PointCloud) *LandmarkGroup {
	return &LandmarkGroup{points: points.Clone()}
}

// NewLandmarkGroupWithLabels wraps a cloud as a landmark group whose labels
// select index subsets of it.
func NewLandmarkGroupWithLabels(points *PointCloud, labels map[string][]int) (*LandmarkGroup, error) {
	n := points.N()
	for label, idxs := range labels {
		for _, i := range idxs {
			if i < 0 || i >= n {
				return nil, errors.Errorf("label %q references point %d of a %d point group", label, i, n)
			}
		}
	}
	copied := make(map[string][]int, len(labels))
	for label, idxs := range labels {
		copied[label] = append([]int(nil), idxs...)
	}
	return &LandmarkGroup{points: points.Clone(), labels: copied}, nil
}

// N returns the number of landmarks in the group.
func (g *LandmarkGroup) N() int {
	return g.points.N()
}

// All returns the group's full cloud.
func (g *LandmarkGroup) All() *PointCloud {
	return g.points
}

// Labels returns the group's label names in sorted order.
func (g *LandmarkGroup) Labels() []string {
	out := make([]string, 0, len(g.labels))
	for label := range g.labels {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// Subset returns the landmarks selected by label. An empty label or LabelAll
// selects the whole group.
func (g *LandmarkGroup) Subset(label string) (*PointCloud, error) {
	if label == "" || label == LabelAll {
		return g.points.Clone(), nil
	}
	idxs, ok := g.labels[label]
	if !ok {
		return nil, errors.Errorf("landmark group has no label %q (have %v)", label, g.Labels())
	}
	data := make([]float64, 0, len(idxs)*g.points.Dims())
	for _, i := range idxs {
		data = append(data, g.points.At(i)...)
	}
	return NewPointCloud(data, g.points.Dims())
}

// clone deep-copies the group.
func (g *LandmarkGroup) clone() *LandmarkGroup {
	labels := make(map[string][]int, len(g.labels))
	for label, idxs := range g.labels {
		labels[label] = append([]int(nil), idxs...)
	}
	if len(labels) == 0 {
		labels = nil
	}
	return &LandmarkGroup{points: g.points.Clone(), labels: labels}
}

// A LandmarkSet maps group names to landmark groups and travels with the
// mesh it annotates.
type LandmarkSet struct {
	groups map[string]*LandmarkGroup
}

// NewLandmarkSet returns an empty landmark set.
func NewLandmarkSet() *LandmarkSet {
	return &LandmarkSet{groups: map[string]*LandmarkGroup{}}
}

// Len returns the number of groups.
func (ls *LandmarkSet) Len() int {
	return len(ls.groups)
}

// Set stores a group under the given name, replacing any previous one.
func (ls *LandmarkSet) Set(name string, g *LandmarkGroup) error {
	if name == "" {
		return errors.New("landmark group name cannot be empty")
	}
	ls.groups[name] = g
	return nil
}

// SetPoints stores a cloud as an unlabelled group under the given name.
func (ls *LandmarkSet) SetPoints(name string, points *PointCloud) error {
	return ls.Set(name, NewLandmarkGroup(points))
}

// Groups returns the group names in sorted order.
func (ls *LandmarkSet) Groups() []string {
	out := make([]string, 0, len(ls.groups))
	for name := range ls.groups {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Group returns the named group. An empty name selects the sole group of the
// set and is an error when the set holds zero or several groups.
func (ls *LandmarkSet) Group(name string) (*LandmarkGroup, error) {
	if name == "" {
		switch len(ls.groups) {
		case 0:
			return nil, errors.New("landmark set is empty")
		case 1:
			for _, g := range ls.groups {
				return g, nil
			}
		default:
			return nil, errors.Errorf("landmark set has %d groups %v, a group name is required", len(ls.groups), ls.Groups())
		}
	}
	g, ok := ls.groups[name]
	if !ok {
		return nil, errors.Errorf("landmark set has no group %q (have %v)", name, ls.Groups())
	}
	return g, nil
}

// Clone deep-copies the set.
func (ls *LandmarkSet) Clone() *LandmarkSet {
	out := NewLandmarkSet()
	for name, g := range ls.groups {
		out.groups[name] = g.clone()
	}
	return out
}

// Map applies fn to every group's cloud, preserving names and labels. Point
// counts must be preserved by fn for labels to stay valid.
func (ls *LandmarkSet) Map(fn func(*PointCloud) (*PointCloud, error)) (*LandmarkSet, error) {
	out := NewLandmarkSet()
	for name, g := range ls.groups {
		mapped, err := fn(g.points)
		if err != nil {
			return nil, errors.Wrapf(err, "mapping landmark group %q", name)
		}
		if mapped.N() != g.points.N() {
			return nil, errors.Errorf("mapping landmark group %q changed its point count from %d to %d", name, g.points.N(), mapped.N())
		}
		ng := g.clone()
		ng.points = mapped.Clone()
		out.groups[name] = ng
	}
	return out, nil
}
