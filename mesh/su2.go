package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/notargets/hpadapt/types"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle      SU2ElementType = 5
	ELType_Quadrilateral SU2ElementType = 9
)

type su2Reader struct {
	*bufio.Reader
	line int
}

func (rd *su2Reader) getLine() (line string, err error) {
	line, err = rd.ReadString('\n')
	if err == io.EOF && len(line) != 0 {
		err = nil
	}
	if err != nil {
		if err == io.EOF {
			err = fmt.Errorf("early end of file after line %d", rd.line)
		}
		return
	}
	rd.line++
	line = strings.TrimSpace(line)
	return
}

// getLineNoComments skips blank lines and lines starting with %
func (rd *su2Reader) getLineNoComments() (line string, err error) {
	for {
		if line, err = rd.getLine(); err != nil {
			return
		}
		if len(line) != 0 && !strings.HasPrefix(line, "%") {
			return
		}
	}
}

// getToken reads "NAME= value" and checks the name
func (rd *su2Reader) getToken(name string) (token string, err error) {
	var line string
	if line, err = rd.getLineNoComments(); err != nil {
		return
	}
	ind := strings.Index(line, "=")
	if ind < 0 {
		return "", fmt.Errorf("line %d: badly formed input line [%s], should have an =", rd.line, line)
	}
	if got := strings.TrimSpace(line[:ind]); got != name {
		return "", fmt.Errorf("line %d: expected %s, have %s", rd.line, name, got)
	}
	token = strings.TrimSpace(line[ind+1:])
	return
}

func (rd *su2Reader) readNumber(name string) (num int, err error) {
	var token string
	if token, err = rd.getToken(name); err != nil {
		return
	}
	if _, err = fmt.Sscanf(token, "%d", &num); err != nil {
		err = fmt.Errorf("line %d: unable to read number from token: [%s]", rd.line, token)
	}
	return
}

func (rd *su2Reader) readInts(n int) (vals []int, err error) {
	var line string
	if line, err = rd.getLineNoComments(); err != nil {
		return
	}
	fields := strings.Fields(line)
	if len(fields) < n {
		return nil, fmt.Errorf("line %d: need %d values, have [%s]", rd.line, n, line)
	}
	vals = make([]int, n)
	for i := range vals {
		if _, err = fmt.Sscanf(fields[i], "%d", &vals[i]); err != nil {
			return nil, fmt.Errorf("line %d: %w", rd.line, err)
		}
	}
	return
}

func (rd *su2Reader) readElements() (modes []types.Mode, EToV [][]int, err error) {
	var K int
	if K, err = rd.readNumber("NELEM"); err != nil {
		return
	}
	modes, EToV = make([]types.Mode, K), make([][]int, K)
	for k := 0; k < K; k++ {
		var (
			line   string
			fields []string
			nType  int
			nv     int
		)
		if line, err = rd.getLineNoComments(); err != nil {
			return
		}
		fields = strings.Fields(line)
		if len(fields) != 0 {
			_, err = fmt.Sscanf(fields[0], "%d", &nType)
		}
		if len(fields) == 0 || err != nil {
			return nil, nil, fmt.Errorf("line %d: unable to read element type [%s]", rd.line, line)
		}
		switch SU2ElementType(nType) {
		case ELType_Triangle:
			modes[k], nv = types.Triangle, 3
		case ELType_Quadrilateral:
			modes[k], nv = types.Quad, 4
		default:
			return nil, nil, fmt.Errorf("line %d: unable to deal with element type %d", rd.line, nType)
		}
		if len(fields) < nv+1 {
			return nil, nil, fmt.Errorf("line %d: unable to read vertices [%s]", rd.line, line)
		}
		EToV[k] = make([]int, nv)
		for i := 0; i < nv; i++ {
			if _, err = fmt.Sscanf(fields[i+1], "%d", &EToV[k][i]); err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", rd.line, err)
			}
		}
	}
	return
}

func (rd *su2Reader) readVertices() (VX, VY []float64, err error) {
	var Nv int
	if Nv, err = rd.readNumber("NPOIN"); err != nil {
		return
	}
	VX, VY = make([]float64, Nv), make([]float64, Nv)
	for i := 0; i < Nv; i++ {
		var (
			line string
			n    int
		)
		if line, err = rd.getLineNoComments(); err != nil {
			return
		}
		if n, err = fmt.Sscanf(line, "%f %f", &VX[i], &VY[i]); err != nil || n != 2 {
			return nil, nil, fmt.Errorf("line %d: unable to read coordinates [%s]", rd.line, line)
		}
	}
	return
}

// readBCs returns the boundary edges of each marker
func (rd *su2Reader) readBCs() (BCEdges map[string][]types.EdgeKey, err error) {
	var NBCs int
	if NBCs, err = rd.readNumber("NMARK"); err != nil {
		return
	}
	BCEdges = make(map[string][]types.EdgeKey, NBCs)
	for n := 0; n < NBCs; n++ {
		var (
			label  string
			nEdges int
		)
		if label, err = rd.getToken("MARKER_TAG"); err != nil {
			return
		}
		if nEdges, err = rd.readNumber("MARKER_ELEMS"); err != nil {
			return
		}
		// Repeated tags append, periodic pairs come in as two sections
		for i := 0; i < nEdges; i++ {
			var vals []int
			if vals, err = rd.readInts(3); err != nil {
				return
			}
			if SU2ElementType(vals[0]) != ELType_LINE {
				return nil, fmt.Errorf("line %d: BCs should only contain line elements in 2D", rd.line)
			}
			BCEdges[label] = append(BCEdges[label], types.NewEdgeKey([2]int{vals[1], vals[2]}))
		}
	}
	return
}

/*
ReadSU2 builds a grid from a 2D SU2 mesh of triangles and quads. Elements
listed clockwise are reordered counter clockwise. Boundary edges take the tag
of the marker section that lists them, a marked edge that is not on the
boundary of the grid is an error.
*/
func ReadSU2(r io.Reader) (g *Grid, err error) {
	var (
		rd      = &su2Reader{Reader: bufio.NewReader(r)}
		dim     int
		modes   []types.Mode
		EToV    [][]int
		VX, VY  []float64
		BCEdges map[string][]types.EdgeKey
	)
	if dim, err = rd.readNumber("NDIME"); err != nil {
		return
	}
	if dim != 2 {
		return nil, fmt.Errorf("unable to read %d dimensional data", dim)
	}
	if modes, EToV, err = rd.readElements(); err != nil {
		return
	}
	if VX, VY, err = rd.readVertices(); err != nil {
		return
	}
	g = &Grid{Elements: make([]*Element, len(EToV))}
	for k, verts := range EToV {
		vx, vy := make([]float64, len(verts)), make([]float64, len(verts))
		for i, v := range verts {
			if v < 0 || v >= len(VX) {
				return nil, fmt.Errorf("element %d: vertex %d out of range", k, v)
			}
			vx[i], vy[i] = VX[v], VY[v]
		}
		if signedArea(vx, vy) < 0 {
			slices.Reverse(vx)
			slices.Reverse(vy)
			slices.Reverse(verts)
		}
		g.Elements[k] = NewElement(k, modes[k], vx, vy)
	}
	g.connect(EToV, len(VX))

	if BCEdges, err = rd.readBCs(); err != nil {
		return nil, err
	}
	type edgeRef struct{ k, edge int }
	boundary := make(map[types.EdgeKey]edgeRef, g.BoundaryEdges)
	for k, e := range g.Elements {
		nE := len(EToV[k])
		for edge, nbr := range e.Neighbors {
			if nbr == -1 {
				boundary[types.NewEdgeKey([2]int{EToV[k][edge], EToV[k][(edge+1)%nE]})] = edgeRef{k, edge}
			}
		}
	}
	for label, keys := range BCEdges {
		for _, key := range keys {
			ref, ok := boundary[key]
			if !ok {
				verts := key.GetVertices(false)
				return nil, fmt.Errorf("marker %s: edge %v is not a boundary edge", label, verts)
			}
			g.Elements[ref.k].EdgeMarkers[ref.edge] = label
		}
	}
	return
}

func ReadSU2File(filename string) (g *Grid, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s\n %w", filename, err)
	}
	defer file.Close()
	if g, err = ReadSU2(file); err != nil {
		err = fmt.Errorf("%s: %w", filename, err)
	}
	return
}

func signedArea(vx, vy []float64) (a float64) {
	n := len(vx)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a += vx[i]*vy[j] - vx[j]*vy[i]
	}
	return a / 2
}
