package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/osuushi/cmag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const squareDocument = `
vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
faces: [[0, 1, 2], [0, 2, 3]]
sources:
  zeta:
    polar_angle: [0, 0, 0, 0]
    eccentricity: [1, 1, 1, 1]
  predicted:
    polar_angle: [0, 90, 90, null]
    eccentricity: [1, 1, 2, 2]
`

func decode(t *testing.T, text string) *document {
	var doc document
	require.NoError(t, yaml.NewDecoder(strings.NewReader(text)).Decode(&doc))
	return &doc
}

func TestSourceResolver(t *testing.T) {
	doc := decode(t, squareDocument)
	m, err := doc.mesh()
	require.NoError(t, err)

	t.Run("any prefers predicted over other names", func(t *testing.T) {
		r, err := (&sourceResolver{doc: doc, name: "any"}).Resolve(m)
		require.NoError(t, err)
		assert.Equal(t, 90.0, r.PolarAngle[1])
		assert.True(t, math.IsNaN(r.PolarAngle[3]))
	})

	t.Run("named", func(t *testing.T) {
		r, err := (&sourceResolver{doc: doc, name: "zeta"}).Resolve(m)
		require.NoError(t, err)
		assert.Equal(t, 0.0, r.PolarAngle[1])
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := (&sourceResolver{doc: doc, name: "empirical"}).Resolve(m)
		assert.Error(t, err)
	})

	t.Run("wrong size", func(t *testing.T) {
		doc := decode(t, squareDocument)
		doc.Sources["zeta"] = sourceData{PolarAngle: nil, Eccentricity: nil}
		_, err := (&sourceResolver{doc: doc, name: "zeta"}).Resolve(m)
		assert.Error(t, err)
	})
}

func TestExplicitField(t *testing.T) {
	doc := decode(t, `
vertices: [[0, 0], [1, 0], [1, 1], [0, 1]]
faces: [[0, 1, 2], [0, 2, 3]]
field: [[0, 0], [1, 0], null, [0, 1]]
`)
	m, err := doc.mesh()
	require.NoError(t, err)
	field, err := doc.field(m, "any")
	require.NoError(t, err)
	assert.True(t, field.Valid(1))
	assert.False(t, field.Valid(2))
}

func TestParsePoints(t *testing.T) {
	points, err := parsePoints([]string{"1,2", " 3.5, -4", "nan,nan"})
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, 3.5, points[1].X)
	assert.True(t, points[2].IsNaN())

	_, err = parsePoints([]string{"1"})
	assert.Error(t, err)
	_, err = parsePoints([]string{"x,1"})
	assert.Error(t, err)
}

func TestWriteMagnifications(t *testing.T) {
	*format = "text"
	result := []cmag.Magnification{{Radial: 1, Tangential: 2, Areal: 2, FieldSign: -1}}

	var out bytes.Buffer
	require.NoError(t, writeMagnifications(&out, result, true))
	assert.Equal(t, "0\t1\t2\t2\t-1\n", out.String())

	out.Reset()
	require.NoError(t, writeMagnifications(&out, result, false))
	assert.Equal(t, "0\t1\t2\t2\n", out.String())
}

// A unit square with its visual field shifted off the origin
const fieldDocument = `
vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
faces: [[0, 1, 2], [0, 2, 3]]
field: [[1, 1], [2, 1], [2, 2], [1, 2]]
`

// Write the document to a file and run command on it, returning the output
// split into tab separated rows.
func runDocument(t *testing.T, text, command string) [][]string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(name, []byte(text), 0o644))
	*input, *source, *format, *draw = name, "any", "text", ""

	var out bytes.Buffer
	require.NoError(t, run(command, &out))
	var rows [][]string
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		rows = append(rows, strings.Split(line, "\t"))
	}
	return rows
}

func parseFloat(t *testing.T, s string) float64 {
	t.Helper()
	f, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	return f
}

func TestRunPath(t *testing.T) {
	*pathPoints = []string{"1.8,1.5", "1.2,1.5"}
	rows := runDocument(t, fieldDocument, pathCmd.FullCommand())
	require.Len(t, rows, 2)
	assert.Equal(t, "ratio", rows[0][0])
	assert.InDelta(t, 1, parseFloat(t, rows[0][1]), 1e-9)
	assert.InDelta(t, 0.6, parseFloat(t, rows[1][3]), 1e-9)

	// Masking vertex 3 drops the upper left face, so the path stops at the
	// diagonal
	rows = runDocument(t, fieldDocument+"mask: [true, true, true, false]\n", pathCmd.FullCommand())
	require.Len(t, rows, 2)
	assert.InDelta(t, 1, parseFloat(t, rows[0][1]), 1e-9)
	assert.InDelta(t, 0.3, parseFloat(t, rows[1][3]), 1e-9)

	doc := decode(t, fieldDocument+"mask: [true]\n")
	m, err := doc.mesh()
	require.NoError(t, err)
	_, err = doc.mask(m)
	assert.Error(t, err)
}

func TestRunSurface(t *testing.T) {
	text := fieldDocument + "surface: [[0, 0, 0], [2, 0, 0], [2, 2, 0], [0, 2, 0]]\n"
	rows := runDocument(t, text, facesCmd.FullCommand())
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Len(t, row, 5)
		assert.InDelta(t, 2, parseFloat(t, row[1]), 1e-9, "radial")
		assert.InDelta(t, 2, parseFloat(t, row[2]), 1e-9, "tangential")
		assert.InDelta(t, 4, parseFloat(t, row[3]), 1e-9, "areal")
	}

	// Without it, the mesh is its own surface
	rows = runDocument(t, fieldDocument, facesCmd.FullCommand())
	assert.InDelta(t, 1, parseFloat(t, rows[0][3]), 1e-9)

	doc := decode(t, fieldDocument+"surface: [[0, 0]]\n")
	m, err := doc.mesh()
	require.NoError(t, err)
	_, err = doc.surface(m)
	assert.Error(t, err)
}

const contourDocument = `
vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
faces: [[0, 1, 2], [0, 2, 3]]
sources:
  predicted:
    polar_angle: [0, 90, 90, 0]
    eccentricity: [1, 1, 2, 2]
`

func TestRunContourMask(t *testing.T) {
	*contourSelector, *contourLevel, *contourMinLength = "eccentricity", 1.5, 2
	rows := runDocument(t, contourDocument, contourCmd.FullCommand())
	assert.Len(t, rows, 3, "one row per contour point")

	// Every face touches vertex 2, so masking it leaves nothing
	name := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(name, []byte(contourDocument+"mask: [true, true, false, true]\n"), 0o644))
	*input = name
	err := run(contourCmd.FullCommand(), &bytes.Buffer{})
	assert.Error(t, err, "no faces survive the mask")
}
