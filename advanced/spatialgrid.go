package advanced

import "math"

// spatialGrid provides fast point location on a 2D triangulation. Each cell
// stores the indices of the faces whose bounding boxes overlap it.
type spatialGrid struct {
	coords       []Point
	faces        []Face
	minX, minY   float64
	cellSize     float64
	gridW, gridH int
	cells        [][]int
}

func newSpatialGrid(coords []Point, faces []Face) *spatialGrid {
	g := &spatialGrid{coords: coords, faces: faces}
	if len(faces) == 0 {
		return g
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, f := range faces {
		for _, v := range f {
			p := coords[v]
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	// Pad so that points on the hull (within tolerance) still land in a cell.
	// The padding follows the extent, so tiny meshes are not swamped by it.
	pad := Tolerance * math.Max(maxX-minX, maxY-minY)
	if pad == 0 {
		pad = Tolerance
	}
	minX -= pad
	minY -= pad
	maxX += pad
	maxY += pad

	// Aim for roughly one face per cell
	width, height := maxX-minX, maxY-minY
	g.cellSize = math.Sqrt(width * height / float64(len(faces)))
	if g.cellSize <= 0 || math.IsNaN(g.cellSize) {
		g.cellSize = math.Max(width, height)
	}
	g.minX, g.minY = minX, minY
	g.gridW = max(1, int(math.Ceil(width/g.cellSize)))
	g.gridH = max(1, int(math.Ceil(height/g.cellSize)))
	g.cells = make([][]int, g.gridW*g.gridH)

	for fi, f := range faces {
		tri := FaceTriangle(coords, f)
		// Boxes are padded like the grid, since Contains accepts points just outside
		x0, y0 := g.cell(min(tri.A.X, tri.B.X, tri.C.X)-pad, min(tri.A.Y, tri.B.Y, tri.C.Y)-pad)
		x1, y1 := g.cell(max(tri.A.X, tri.B.X, tri.C.X)+pad, max(tri.A.Y, tri.B.Y, tri.C.Y)+pad)
		for cy := y0; cy <= y1; cy++ {
			for cx := x0; cx <= x1; cx++ {
				idx := cy*g.gridW + cx
				g.cells[idx] = append(g.cells[idx], fi)
			}
		}
	}
	return g
}

// Cell coordinates for a point, clamped to the grid.
func (g *spatialGrid) cell(x, y float64) (int, int) {
	cx := int((x - g.minX) / g.cellSize)
	cy := int((y - g.minY) / g.cellSize)
	return min(max(cx, 0), g.gridW-1), min(max(cy, 0), g.gridH-1)
}

// Find the face containing p. Returns -1 if p is outside every face.
func (g *spatialGrid) locate(p Point) int {
	if len(g.cells) == 0 || p.IsNaN() {
		return -1
	}
	if p.X < g.minX || p.Y < g.minY ||
		p.X > g.minX+float64(g.gridW)*g.cellSize || p.Y > g.minY+float64(g.gridH)*g.cellSize {
		return -1
	}
	cx, cy := g.cell(p.X, p.Y)
	for _, fi := range g.cells[cy*g.gridW+cx] {
		if FaceTriangle(g.coords, g.faces[fi]).Contains(p) {
			return fi
		}
	}
	return -1
}
