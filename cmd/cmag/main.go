package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/kr/pretty"
	imgcat "github.com/martinlindhe/imgcat/lib"
	"github.com/osuushi/cmag"
	"github.com/osuushi/cmag/advanced"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v3"
)

// Command line front end for the magnification engine. Reads a mesh and its
// retinotopy as YAML or JSON and prints magnification values.
//
//	cmag -i lh.yaml faces
//	cmag -i lh.yaml --source predicted path --point 1,1 --point 5,5
//	cmag -i lh.yaml contour --selector eccentricity --level 4 --draw /tmp/ecc.png
var (
	app     = kingpin.New("cmag", "Cortical magnification of retinotopic maps.")
	input   = app.Flag("input", "Input document; - reads stdin.").Short('i').Default("-").String()
	source  = app.Flag("source", "Retinotopy source to use when the input has several.").Default("any").String()
	format  = app.Flag("format", "Output format.").Default("text").Enum("text", "pretty")
	verbose = app.Flag("verbose", "Log diagnostics to stderr.").Short('v').Bool()
	draw    = app.Flag("draw", "Also draw the visual field sub-mesh and results to this PNG file.").String()
	cat     = app.Flag("imgcat", "Show the drawing inline (iTerm2).").Bool()

	facesCmd    = app.Command("faces", "Differential magnification per face.")
	verticesCmd = app.Command("vertices", "Differential magnification per vertex.")
	neighborCmd = app.Command("neighborhood", "Neighborhood magnification per vertex.")

	pathCmd    = app.Command("path", "Magnification along a visual field path.")
	pathPoints = pathCmd.Flag("point", "Path point as X,Y; nan,nan breaks the path.").Required().Strings()

	contourCmd       = app.Command("contour", "Isocontours of polar angle or eccentricity.")
	contourSelector  = contourCmd.Flag("selector", "angle or eccentricity.").Default("eccentricity").String()
	contourLevel     = contourCmd.Flag("level", "Level of the contour.").Required().Float64()
	contourMinLength = contourCmd.Flag("min-length", "Minimum number of faces in a contour.").Default(strconv.Itoa(advanced.DefaultMinSegmentLength)).Int()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	if *verbose {
		cmag.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if err := run(command, os.Stdout); err != nil {
		app.Fatalf("%v", err)
	}
}

func run(command string, out io.Writer) error {
	doc, err := readDocument(*input)
	if err != nil {
		return err
	}
	m, err := doc.mesh()
	if err != nil {
		return err
	}

	switch command {
	case facesCmd.FullCommand(), verticesCmd.FullCommand():
		field, err := doc.field(m, *source)
		if err != nil {
			return err
		}
		surface, err := doc.surface(m)
		if err != nil {
			return err
		}
		opts := cmag.DifferentialOptions{To: cmag.Vertices, Surface: surface}
		if command == facesCmd.FullCommand() {
			opts.To = cmag.Faces
		}
		result, err := cmag.DifferentialMagnification(m, field, opts)
		if err != nil {
			return err
		}
		return writeMagnifications(out, result, true)

	case neighborCmd.FullCommand():
		field, err := doc.field(m, *source)
		if err != nil {
			return err
		}
		result, err := cmag.NeighborhoodMagnification(m, field)
		if err != nil {
			return err
		}
		return writeMagnifications(out, result, false)

	case pathCmd.FullCommand():
		field, err := doc.field(m, *source)
		if err != nil {
			return err
		}
		path, err := parsePoints(*pathPoints)
		if err != nil {
			return err
		}
		mask, err := doc.mask(m)
		if err != nil {
			return err
		}
		subpaths, err := cmag.TraceSubpaths(m, field, path, cmag.PathOptions{Mask: mask})
		if err != nil {
			return err
		}
		if err := writePath(out, cmag.PathRatio(subpaths), subpaths); err != nil {
			return err
		}
		return drawResult(m, field, mask, &advanced.Drawing{Subpaths: subpaths})

	case contourCmd.FullCommand():
		selector, err := advanced.ParseFieldSelector(*contourSelector)
		if err != nil {
			return err
		}
		retinotopy, err := (&sourceResolver{doc: doc, name: *source}).Resolve(m)
		if err != nil {
			return err
		}
		mask, err := doc.mask(m)
		if err != nil {
			return err
		}
		opts := cmag.ContourOptions{Mask: mask, MinSegmentLength: *contourMinLength}
		contours, err := cmag.Isocontours(m, retinotopy, selector, *contourLevel, opts)
		if err != nil {
			return err
		}
		if err := writeContours(out, contours); err != nil {
			return err
		}
		return drawResult(m, retinotopy.Field(), mask, &advanced.Drawing{Contours: contours})
	}
	return errors.Errorf("unknown command %q", command)
}

func parsePoints(values []string) ([]cmag.Point, error) {
	points := make([]cmag.Point, len(values))
	for i, value := range values {
		parts := strings.Split(value, ",")
		if len(parts) != 2 {
			return nil, errors.Errorf("invalid point %q, expected X,Y", value)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid x value in %q", value)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid y value in %q", value)
		}
		points[i] = cmag.Point{X: x, Y: y}
	}
	return points, nil
}

func drawResult(m *cmag.Mesh, field cmag.Field, mask []bool, d *advanced.Drawing) (err error) {
	if *draw == "" {
		return nil
	}
	defer func() {
		if recoveredErr := advanced.HandlePanicRecover(recover()); recoveredErr != nil {
			err = recoveredErr
		}
	}()
	d.Sub = advanced.NewSubMesh(m, field, mask)
	if err := d.SavePNG(*draw); err != nil {
		return errors.Wrapf(err, "writing %s", *draw)
	}
	if *cat {
		imgcat.CatFile(*draw, os.Stdout)
	}
	return nil
}

func writeMagnifications(out io.Writer, result []cmag.Magnification, withSign bool) error {
	if *format == "pretty" {
		_, err := pretty.Fprintf(out, "%# v\n", result)
		return err
	}
	for i, mag := range result {
		var err error
		if withSign {
			_, err = fmt.Fprintf(out, "%d\t%g\t%g\t%g\t%g\n", i, mag.Radial, mag.Tangential, mag.Areal, mag.FieldSign)
		} else {
			_, err = fmt.Fprintf(out, "%d\t%g\t%g\t%g\n", i, mag.Radial, mag.Tangential, mag.Areal)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writePath(out io.Writer, ratio float64, subpaths []cmag.Subpath) error {
	if *format == "pretty" {
		_, err := pretty.Fprintf(out, "ratio: %v\n%# v\n", ratio, subpaths)
		return err
	}
	if _, err := fmt.Fprintf(out, "ratio\t%g\n", ratio); err != nil {
		return err
	}
	for i, sp := range subpaths {
		if _, err := fmt.Fprintf(out, "subpath\t%d\t%g\t%g\n", i, sp.SurfaceLength(), sp.VisualLength()); err != nil {
			return err
		}
	}
	return nil
}

func writeContours(out io.Writer, contours []cmag.Isocontour) error {
	if *format == "pretty" {
		_, err := pretty.Fprintf(out, "%# v\n", contours)
		return err
	}
	for i, c := range contours {
		for j := range c.Visual {
			s, v := c.Surface[j], c.Visual[j]
			if _, err := fmt.Fprintf(out, "%d\t%g\t%g\t%g\t%g\t%g\n", i, v.X, v.Y, s.X, s.Y, s.Z); err != nil {
				return err
			}
		}
	}
	return nil
}

// document is the input file. Missing measurements are null. Mask limits path
// tracing and contours to the vertices marked true, and Surface gives alternate
// surface coordinates for differential magnification.
type document struct {
	Vertices [][]float64           `yaml:"vertices"`
	Faces    [][]int               `yaml:"faces"`
	Field    [][]float64           `yaml:"field"`
	Sources  map[string]sourceData `yaml:"sources"`
	Mask     []bool                `yaml:"mask"`
	Surface  [][]float64           `yaml:"surface"`
}

type sourceData struct {
	PolarAngle   []*float64 `yaml:"polar_angle"`
	Eccentricity []*float64 `yaml:"eccentricity"`
}

func readDocument(name string) (*document, error) {
	var r io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, errors.Wrap(err, "opening input")
		}
		defer f.Close()
		r = f
	}
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding input")
	}
	return &doc, nil
}

func parseCoordinates(values [][]float64) ([]r3.Vec, error) {
	result := make([]r3.Vec, len(values))
	for i, v := range values {
		switch len(v) {
		case 2:
			result[i] = r3.Vec{X: v[0], Y: v[1]}
		case 3:
			result[i] = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
		default:
			return nil, errors.Errorf("vertex %d has %d coordinates", i, len(v))
		}
	}
	return result, nil
}

func (d *document) mesh() (*cmag.Mesh, error) {
	coordinates, err := parseCoordinates(d.Vertices)
	if err != nil {
		return nil, err
	}
	faces := make([]cmag.Face, len(d.Faces))
	for i, f := range d.Faces {
		if len(f) != 3 {
			return nil, errors.Errorf("face %d has %d vertices", i, len(f))
		}
		faces[i] = cmag.Face{f[0], f[1], f[2]}
	}
	return cmag.NewMesh(coordinates, faces)
}

// The vertex mask, or nil when the document has none.
func (d *document) mask(m *cmag.Mesh) ([]bool, error) {
	if d.Mask != nil && len(d.Mask) != m.VertexCount() {
		return nil, errors.Errorf("mask has %d entries but mesh has %d vertices", len(d.Mask), m.VertexCount())
	}
	return d.Mask, nil
}

// The alternate surface coordinates, or nil when the document has none.
func (d *document) surface(m *cmag.Mesh) ([]r3.Vec, error) {
	if d.Surface == nil {
		return nil, nil
	}
	if len(d.Surface) != m.VertexCount() {
		return nil, errors.Errorf("surface has %d coordinates but mesh has %d vertices", len(d.Surface), m.VertexCount())
	}
	surface, err := parseCoordinates(d.Surface)
	return surface, errors.Wrap(err, "surface")
}

// The visual field of the document. An explicit field wins over any
// retinotopy source.
func (d *document) field(m *cmag.Mesh, name string) (cmag.Field, error) {
	if d.Field == nil {
		retinotopy, err := (&sourceResolver{doc: d, name: name}).Resolve(m)
		if err != nil {
			return nil, err
		}
		return retinotopy.Field(), nil
	}
	field := make(cmag.Field, len(d.Field))
	for i, p := range d.Field {
		switch len(p) {
		case 0:
			field[i] = advanced.NoPoint
		case 2:
			field[i] = cmag.Point{X: p[0], Y: p[1]}
		default:
			return nil, errors.Errorf("field entry %d has %d coordinates", i, len(p))
		}
	}
	return field, nil
}

// sourceResolver picks one of the document's named retinotopy sources.
type sourceResolver struct {
	doc  *document
	name string
}

// Source names tried, in order, when the name is "any"
var preferredSources = []string{"empirical", "predicted"}

func (s *sourceResolver) Resolve(m *cmag.Mesh) (cmag.Retinotopy, error) {
	name, err := s.pick()
	if err != nil {
		return cmag.Retinotopy{}, err
	}
	src := s.doc.Sources[name]
	r := cmag.Retinotopy{
		PolarAngle:   floats(src.PolarAngle),
		Eccentricity: floats(src.Eccentricity),
	}
	r, err = r.Resolve(m)
	return r, errors.Wrapf(err, "source %q", name)
}

func (s *sourceResolver) pick() (string, error) {
	if len(s.doc.Sources) == 0 {
		return "", errors.New("input has neither a field nor any retinotopy sources")
	}
	if s.name != "any" {
		if _, ok := s.doc.Sources[s.name]; !ok {
			return "", errors.Errorf("no retinotopy source named %q", s.name)
		}
		return s.name, nil
	}
	for _, name := range preferredSources {
		if _, ok := s.doc.Sources[name]; ok {
			return name, nil
		}
	}
	names := make([]string, 0, len(s.doc.Sources))
	for name := range s.doc.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0], nil
}

func floats(values []*float64) []float64 {
	result := make([]float64, len(values))
	for i, v := range values {
		if v == nil {
			result[i] = math.NaN()
		} else {
			result[i] = *v
		}
	}
	return result
}
