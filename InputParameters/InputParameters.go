package InputParameters

import (
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/notargets/hpadapt/mesh"
	"github.com/notargets/hpadapt/model_problems"
	"github.com/notargets/hpadapt/selector"
	"github.com/notargets/hpadapt/types"
)

// Parameters obtained from the YAML input file
type InputParameters struct {
	Title            string     `json:"Title"`
	Strategy         string     `json:"Strategy"`
	Norm             string     `json:"Norm"`
	Components       int        `json:"Components"`
	MeshFile         string     `json:"MeshFile"` // SU2 mesh, replaces the structured mesh when set
	MeshType         string     `json:"MeshType"` // quad or triangle
	Nx               int        `json:"Nx"`
	Ny               int        `json:"Ny"`
	Domain           [4]float64 `json:"Domain"` // x0, x1, y0, y1
	CoarseOrder      int        `json:"CoarseOrder"`
	MaxOrder         int        `json:"MaxOrder"` // -1 leaves the cap to each element
	QuadOrder        int        `json:"QuadOrder"`
	CandidateList    string     `json:"CandidateList"`
	ProjectionMethod string     `json:"ProjectionMethod"`
	Field            []string   `json:"Field"` // one per component, a single entry is used for all
	ProcLimit        int        `json:"ProcLimit"`
	Refine           int        `json:"Refine"` // number of worst elements the selector is run on
}

func NewInputParameters() *InputParameters {
	return &InputParameters{
		Title:            "hp adaptivity",
		Strategy:         "absolute",
		Norm:             "h1",
		Components:       1,
		MeshType:         "quad",
		Nx:               4,
		Ny:               4,
		Domain:           [4]float64{0, 1, 0, 1},
		CoarseOrder:      2,
		MaxOrder:         selector.DefaultOrder,
		QuadOrder:        selector.DefaultQuadOrder,
		CandidateList:    "hp-aniso",
		ProjectionMethod: "orthonormal",
		Field:            []string{"peak"},
		Refine:           3,
	}
}

// Parse overlays the values present in data on the receiver
func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t= Strategy\n", ip.Strategy)
	fmt.Printf("[%s]\t\t\t= Norm\n", ip.Norm)
	fmt.Printf("[%d]\t\t\t= Components\n", ip.Components)
	if len(ip.MeshFile) != 0 {
		fmt.Printf("[%s]\t\t= Mesh File\n", ip.MeshFile)
	} else {
		fmt.Printf("[%s] %dx%d over %v\t= Mesh\n", ip.MeshType, ip.Nx, ip.Ny, ip.Domain)
	}
	fmt.Printf("[%d]\t\t\t= Coarse Order\n", ip.CoarseOrder)
	fmt.Printf("[%d]\t\t\t= Max Order\n", ip.MaxOrder)
	fmt.Printf("[%d]\t\t\t= Quadrature Order\n", ip.QuadOrder)
	fmt.Printf("[%s]\t\t= Candidate List\n", ip.CandidateList)
	fmt.Printf("[%s]\t\t= Projection Method\n", ip.ProjectionMethod)
	fmt.Printf("%v\t\t\t= Field\n", ip.Field)
	fmt.Printf("[%d]\t\t\t= Refine\n", ip.Refine)
}

// Mode is the element mode of the structured mesh
func (ip *InputParameters) Mode() (types.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(ip.MeshType)) {
	case "quad", "quads", "quadrilateral":
		return types.Quad, nil
	case "tri", "triangle", "triangles":
		return types.Triangle, nil
	}
	return 0, fmt.Errorf("unknown mesh type %q", ip.MeshType)
}

// FieldTypes is the field of each component
func (ip *InputParameters) FieldTypes() (fts []model_problems.FieldType, err error) {
	fts = make([]model_problems.FieldType, ip.Components)
	for n := range fts {
		label := ip.Field[0]
		if len(ip.Field) > 1 {
			label = ip.Field[n]
		}
		if fts[n], err = model_problems.NewFieldType(label); err != nil {
			return nil, err
		}
	}
	return
}

// Validate checks every parameter and collects all the problems found
func (ip *InputParameters) Validate() (err error) {
	var problems []string
	add := func(e error) {
		if e != nil {
			problems = append(problems, e.Error())
		}
	}
	_, e := types.NewStrategy(ip.Strategy)
	add(e)
	_, e = types.NewNormType(ip.Norm)
	add(e)
	if len(ip.MeshFile) == 0 {
		_, e = ip.Mode()
		add(e)
	}
	_, e = selector.NewCandList(ip.CandidateList)
	add(e)
	_, e = selector.NewProjectionMethod(ip.ProjectionMethod)
	add(e)
	if ip.Components < 1 {
		add(fmt.Errorf("need at least one component, have %d", ip.Components))
	}
	switch {
	case len(ip.Field) == 0:
		add(fmt.Errorf("no field given"))
	case len(ip.Field) > 1 && len(ip.Field) != ip.Components:
		add(fmt.Errorf("have %d fields for %d components", len(ip.Field), ip.Components))
	case ip.Components >= 1:
		_, e = ip.FieldTypes()
		add(e)
	}
	if len(ip.MeshFile) == 0 && (ip.Nx < 1 || ip.Ny < 1) {
		add(fmt.Errorf("invalid mesh size %dx%d", ip.Nx, ip.Ny))
	}
	if len(ip.MeshFile) == 0 && (!(ip.Domain[1] > ip.Domain[0]) || !(ip.Domain[3] > ip.Domain[2])) {
		add(fmt.Errorf("invalid domain %v", ip.Domain))
	}
	if ip.CoarseOrder < 1 {
		add(fmt.Errorf("coarse order must be at least 1, have %d", ip.CoarseOrder))
	}
	if ip.MaxOrder != selector.DefaultOrder && ip.MaxOrder < ip.CoarseOrder {
		add(fmt.Errorf("max order %d is below the coarse order %d", ip.MaxOrder, ip.CoarseOrder))
	}
	if ip.Refine < 0 {
		add(fmt.Errorf("refine count must not be negative, have %d", ip.Refine))
	}
	if len(problems) != 0 {
		err = fmt.Errorf("invalid input parameters:\n\t%s", strings.Join(problems, "\n\t"))
	}
	return
}

// BuildMesh reads the SU2 mesh file if one is given, otherwise it builds the
// structured mesh
func (ip *InputParameters) BuildMesh() (m mesh.Mesh, err error) {
	if len(ip.MeshFile) != 0 {
		var g *mesh.Grid
		if g, err = mesh.ReadSU2File(ip.MeshFile); err != nil {
			return
		}
		return g, nil
	}
	var (
		mode types.Mode
		sm   *mesh.Structured
	)
	if mode, err = ip.Mode(); err != nil {
		return
	}
	if sm, err = mesh.NewStructured(ip.Nx, ip.Ny, ip.Domain[0], ip.Domain[1], ip.Domain[2], ip.Domain[3], mode); err != nil {
		return
	}
	return sm, nil
}
