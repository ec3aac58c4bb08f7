/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/notargets/hpadapt/InputParameters"
	"github.com/notargets/hpadapt/adapt"
	"github.com/notargets/hpadapt/mesh"
	"github.com/notargets/hpadapt/model_problems"
	"github.com/notargets/hpadapt/selector"
	"github.com/notargets/hpadapt/shapeset"
	"github.com/notargets/hpadapt/types"
	"github.com/notargets/hpadapt/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const exampleFile = `
########################################
Title: "Peak"
Strategy: absolute # or relative
Norm: h1 # l2, h1 or h1-semi
Components: 1
MeshType: quad # or triangle
# MeshFile: mesh.su2 # replaces the structured mesh
Nx: 4
Ny: 4
Domain: [0, 1, 0, 1]
CoarseOrder: 2
MaxOrder: -1 # -1 leaves the cap to each element
CandidateList: hp-aniso # p, h, hp-iso or hp-aniso
ProjectionMethod: orthonormal # or gram
Field: [peak] # polynomial, peak or sincos, one per component
Refine: 3
########################################
`

// EstimateCmd represents the estimate command
var EstimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Rank the elements of a model problem by error and score refinement candidates",
	Long: `
Projects an analytic field onto a coarse space, measures the error of the
projection element by element against the field and runs the projection based
selector on the worst elements,

hpadapt estimate -I input.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		ip := processInput(viper.GetString("estimate.input"))
		if viper.GetBool("verbose") {
			ip.Print()
		}
		if _, err := Estimate(ip, logrus.WithField("cmd", "estimate"), os.Stdout); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(EstimateCmd)
	EstimateCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Norm\n\t- CoarseOrder\n\t- CandidateList")
	if err := viper.BindPFlag("estimate.input", EstimateCmd.Flags().Lookup("inputConditionsFile")); err != nil {
		panic(err)
	}
}

func processInput(fileName string) (ip *InputParameters.InputParameters) {
	var (
		err  error
		data []byte
	)
	if len(fileName) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	if data, err = os.ReadFile(fileName); err != nil {
		panic(err)
	}
	ip = InputParameters.NewInputParameters()
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	if err = ip.Validate(); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	return
}

// EstimateReport is what one estimate run produced
type EstimateReport struct {
	Problem     *model_problems.Problem
	Result      *adapt.Result
	Worst       []adapt.ElementReference
	Evaluations []*selector.Evaluation // one per entry of Worst
}

// Estimate runs the error calculator and the selector on the model problem
// described by ip and writes the candidate tables to w
func Estimate(ip *InputParameters.InputParameters, log *logrus.Entry, w io.Writer) (rep *EstimateReport, err error) {
	if err = ip.Validate(); err != nil {
		return
	}
	var (
		strategy types.Strategy
		norm     types.NormType
		m        mesh.Mesh
		sel      *selector.Selector
	)
	if strategy, err = types.NewStrategy(ip.Strategy); err != nil {
		return
	}
	if norm, err = types.NewNormType(ip.Norm); err != nil {
		return
	}
	if m, err = ip.BuildMesh(); err != nil {
		return
	}
	rep = &EstimateReport{}
	if sel, rep.Problem, err = newProblem(ip, m, log); err != nil {
		return nil, err
	}

	calc := adapt.NewDefaultCalculator(strategy, norm, ip.Components,
		adapt.WithParallelDegree(ip.ProcLimit),
		adapt.WithLogger(log))
	if rep.Result, err = calc.CalculateErrors(rep.Problem.CoarseFields(), rep.Problem.FineFields(), m, true); err != nil {
		return nil, err
	}
	total, _ := calc.TotalErrorSquared()
	log.WithFields(logrus.Fields{
		"title":    ip.Title,
		"elements": m.NumActive(),
		"strategy": strategy,
		"norm":     norm,
		"error2":   total,
	}).Info("errors calculated")
	log.Debug(utils.GetMemUsage())

	if rep.Worst, err = calc.Worst(ip.Refine); err != nil {
		return nil, err
	}
	// one selector pass per component over that component's worst elements
	var (
		elements = make([][]*mesh.Element, ip.Components)
		slots    = make([][]int, ip.Components)
	)
	for i, ref := range rep.Worst {
		elements[ref.Component] = append(elements[ref.Component], m.Element(ref.ElementID))
		slots[ref.Component] = append(slots[ref.Component], i)
	}
	rep.Evaluations = make([]*selector.Evaluation, len(rep.Worst))
	for n := range elements {
		if len(elements[n]) == 0 {
			continue
		}
		var evs []*selector.Evaluation
		if evs, err = sel.EvaluateElements(elements[n], rep.Problem.Exact[n],
			rep.Problem.Orders(elements[n])); err != nil {
			return nil, err
		}
		for k, ev := range evs {
			rep.Evaluations[slots[n][k]] = ev
		}
	}
	for i, ref := range rep.Worst {
		ev := rep.Evaluations[i]
		fmt.Fprintf(w, "component %d, error2 %8.5g\n%v", ref.Component, ref.ErrorSquared(), ev)
		if best, ok := ev.Best(selector.ErrorReductionScore(ev.Base)); ok {
			fmt.Fprintf(w, "\tbest: %v\n", best.Candidate)
		}
	}
	return
}

// newProblem builds the selector and the coarse projections of the analytic
// fields on m
func newProblem(ip *InputParameters.InputParameters, m mesh.Mesh, log *logrus.Entry) (sel *selector.Selector,
	prob *model_problems.Problem, err error) {
	var (
		cl     selector.CandList
		method selector.ProjectionMethod
		fts    []model_problems.FieldType
	)
	if cl, err = selector.NewCandList(ip.CandidateList); err != nil {
		return
	}
	if method, err = selector.NewProjectionMethod(ip.ProjectionMethod); err != nil {
		return
	}
	if fts, err = ip.FieldTypes(); err != nil {
		return
	}
	sel = selector.NewSelector(shapeset.NewLegendre(0), cl,
		selector.WithMaxOrder(ip.MaxOrder),
		selector.WithQuadOrder(ip.QuadOrder),
		selector.WithMethod(method),
		selector.WithParallelDegree(ip.ProcLimit),
		selector.WithLogger(log))
	exact := make([]model_problems.ExactField, len(fts))
	for n, ft := range fts {
		exact[n] = model_problems.NewExactField(ft)
	}
	prob, err = model_problems.NewProblem(m, exact, sel, types.NewOrder(ip.CoarseOrder))
	return
}
