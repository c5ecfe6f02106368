// Cortical magnification for retinotopic maps in Go.
//
// Given a triangle mesh of a cortical surface and the visual field position
// of each of its vertices, this package measures how much cortex is devoted
// to each part of the visual field: per face or vertex from the Jacobian of
// the surface-to-visual map, per vertex from its Voronoi-like neighborhood,
// along arbitrary visual field paths, and along the iso-angle and
// iso-eccentricity lines of the map.
package cmag

import (
	"log/slog"

	"github.com/osuushi/cmag/advanced"
	"gonum.org/v1/gonum/spatial/r3"
)

type Point = advanced.Point
type Face = advanced.Face
type Mesh = advanced.Mesh
type Field = advanced.Field
type Retinotopy = advanced.Retinotopy
type Magnification = advanced.Magnification
type Subpath = advanced.Subpath
type Isocontour = advanced.Isocontour
type FieldSelector = advanced.FieldSelector
type DifferentialOptions = advanced.DifferentialOptions
type PathOptions = advanced.PathOptions
type ContourOptions = advanced.ContourOptions

const (
	Angle        = advanced.Angle
	Eccentricity = advanced.Eccentricity

	Vertices = advanced.Vertices
	Faces    = advanced.Faces
)

var (
	ErrNoIntersection = advanced.ErrNoIntersection
	ErrNoTriangles    = advanced.ErrNoTriangles
)

// Create a mesh from 3D vertex coordinates and faces. Faces must refer to
// three distinct vertices.
func NewMesh(coordinates []r3.Vec, faces []Face) (*Mesh, error) {
	return advanced.NewMesh(coordinates, faces)
}

// SetLogger sets the logger used for diagnostics. Nothing is logged by default.
func SetLogger(l *slog.Logger) {
	advanced.SetLogger(l)
}

func recoverInto(err *error) {
	if recoveredErr := advanced.HandlePanicRecover(recover()); recoveredErr != nil {
		*err = recoveredErr
	}
}

// Magnification per face or per vertex, from the Jacobian of the map between
// each surface triangle and its visual field image.
func DifferentialMagnification(m *Mesh, field Field, opts DifferentialOptions) (result []Magnification, err error) {
	defer recoverInto(&err)
	return advanced.DifferentialMagnification(m, field, opts), nil
}

// Magnification per vertex, from the halfway cell around each vertex.
func NeighborhoodMagnification(m *Mesh, field Field) (result []Magnification, err error) {
	defer recoverInto(&err)
	return advanced.NeighborhoodMagnification(m, field), nil
}

// The ratio of surface length to visual length along a visual field path.
//
// Points of the path which are NaN break it into separate pieces. If no piece
// of the path crosses the part of the mesh where the field is defined, the
// error's cause (see errors.Cause) is ErrNoIntersection.
func TracePath(m *Mesh, field Field, path []Point, opts PathOptions) (ratio float64, err error) {
	defer recoverInto(&err)
	return advanced.TracePath(m, field, path, opts), nil
}

// Total surface length of subpaths over their total visual length. This is the
// value TracePath reports, for callers that already hold the subpaths.
func PathRatio(subpaths []Subpath) float64 {
	return advanced.PathRatio(subpaths)
}

// The pieces of a visual field path that lie over the mesh, in both the
// visual field and on the surface.
func TraceSubpaths(m *Mesh, field Field, path []Point, opts PathOptions) (result []Subpath, err error) {
	defer recoverInto(&err)
	return advanced.TraceSubpaths(m, field, path, opts), nil
}

// The lines along which the selected retinotopic coordinate equals level.
func Isocontours(m *Mesh, retinotopy Retinotopy, selector FieldSelector, level float64, opts ContourOptions) (result []Isocontour, err error) {
	defer recoverInto(&err)
	return advanced.Isocontours(m, retinotopy, selector, level, opts), nil
}
