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
	"github.com/notargets/hpadapt/types"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ConvergeCmd represents the converge command
var ConvergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Measure the projection error over a sequence of uniformly refined meshes",
	Long: `
Starting from the structured mesh of the input file, doubles Nx and Ny for each
level, projects the analytic fields at the coarse order and writes the error of
every level with the observed convergence rate as CSV,

hpadapt converge -I input.yaml -l 4 > study.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		ip := processInput(viper.GetString("converge.input"))
		levels, _ := cmd.Flags().GetInt("levels")
		if _, err := Converge(ip, levels, logrus.WithField("cmd", "converge"), os.Stdout); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(ConvergeCmd)
	ConvergeCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters, same format as estimate")
	ConvergeCmd.Flags().IntP("levels", "l", 3, "number of mesh levels, each doubling the mesh in both directions")
	if err := viper.BindPFlag("converge.input", ConvergeCmd.Flags().Lookup("inputConditionsFile")); err != nil {
		panic(err)
	}
}

// Converge runs the error calculator on levels uniformly refined structured
// meshes and writes the study to w
func Converge(ip *InputParameters.InputParameters, levels int, log *logrus.Entry,
	w io.Writer) (cs *model_problems.ConvergenceStudy, err error) {
	if err = ip.Validate(); err != nil {
		return
	}
	if len(ip.MeshFile) != 0 {
		return nil, fmt.Errorf("convergence study needs a structured mesh, have mesh file %s", ip.MeshFile)
	}
	if levels < 2 {
		return nil, fmt.Errorf("need at least 2 levels, have %d", levels)
	}
	var (
		strategy types.Strategy
		norm     types.NormType
		lip      = *ip
	)
	if strategy, err = types.NewStrategy(ip.Strategy); err != nil {
		return
	}
	if norm, err = types.NewNormType(ip.Norm); err != nil {
		return
	}
	cs = model_problems.NewConvergenceStudy(ip.Title, ip.CoarseOrder, ip.Components)
	for l := 0; l < levels; l++ {
		var (
			m    mesh.Mesh
			prob *model_problems.Problem
		)
		lip.Nx, lip.Ny = ip.Nx<<l, ip.Ny<<l
		if m, err = lip.BuildMesh(); err != nil {
			return
		}
		if _, prob, err = newProblem(&lip, m, log); err != nil {
			return
		}
		calc := adapt.NewDefaultCalculator(strategy, norm, ip.Components,
			adapt.WithParallelDegree(ip.ProcLimit),
			adapt.WithLogger(log))
		var res *adapt.Result
		if res, err = calc.CalculateErrors(prob.CoarseFields(), prob.FineFields(), m, false); err != nil {
			return
		}
		errs := make([]float64, ip.Components)
		for n := range errs {
			if errs[n], err = res.ErrorSquared(n); err != nil {
				return
			}
		}
		if err = cs.Add(m.NumActive(), errs...); err != nil {
			return
		}
		log.WithFields(logrus.Fields{
			"level":    l,
			"elements": m.NumActive(),
			"errors2":  errs,
		}).Debug("level done")
	}
	err = cs.WriteCSV(w)
	return
}
