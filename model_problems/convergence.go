package model_problems

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

// ConvergenceStudy collects the error of a sequence of uniformly refined
// meshes at a fixed coarse order
type ConvergenceStudy struct {
	Title         string
	Order         int
	NumElements   []int
	ErrorSquared  [][]float64 // [level][component]
	TotalSquared  []float64
	numComponents int
}

func NewConvergenceStudy(title string, order, components int) *ConvergenceStudy {
	return &ConvergenceStudy{
		Title:         title,
		Order:         order,
		numComponents: components,
	}
}

func (cs *ConvergenceStudy) Levels() int { return len(cs.NumElements) }

// Add records one level, errors holds the squared error of each component
func (cs *ConvergenceStudy) Add(numElements int, errors ...float64) (err error) {
	if len(errors) != cs.numComponents {
		return fmt.Errorf("have %d errors for %d components", len(errors), cs.numComponents)
	}
	if numElements < 1 {
		return fmt.Errorf("invalid element count %d", numElements)
	}
	var total float64
	for _, e := range errors {
		total += e
	}
	cs.NumElements = append(cs.NumElements, numElements)
	cs.ErrorSquared = append(cs.ErrorSquared, append([]float64{}, errors...))
	cs.TotalSquared = append(cs.TotalSquared, total)
	return
}

/*
Rates are the observed convergence orders between consecutive levels, using
h ~ 1/sqrt(NumElements) and the (not squared) total error. Level 0 has no rate
and is NaN, so is any level where either error is zero.
*/
func (cs *ConvergenceStudy) Rates() (rates []float64) {
	rates = make([]float64, cs.Levels())
	for i := range rates {
		rates[i] = math.NaN()
		if i == 0 {
			continue
		}
		e0, e1 := cs.TotalSquared[i-1], cs.TotalSquared[i]
		if e0 <= 0 || e1 <= 0 || cs.NumElements[i] == cs.NumElements[i-1] {
			continue
		}
		// ln(e0/e1)/ln(h0/h1) with both e and h square rooted
		rates[i] = math.Log(e0/e1) / math.Log(float64(cs.NumElements[i])/float64(cs.NumElements[i-1]))
	}
	return
}

// WriteCSV writes one record per level, with a header
func (cs *ConvergenceStudy) WriteCSV(w io.Writer) (err error) {
	var (
		cw     = csv.NewWriter(w)
		header = []string{"title", "order", "elements"}
		rates  = cs.Rates()
		ff     = func(f float64) string { return strconv.FormatFloat(f, 'g', 8, 64) }
	)
	for n := 0; n < cs.numComponents; n++ {
		header = append(header, "error2_"+strconv.Itoa(n))
	}
	header = append(header, "total2", "rate")
	if err = cw.Write(header); err != nil {
		return
	}
	for i := range cs.NumElements {
		rec := []string{cs.Title, strconv.Itoa(cs.Order), strconv.Itoa(cs.NumElements[i])}
		for _, e := range cs.ErrorSquared[i] {
			rec = append(rec, ff(e))
		}
		rec = append(rec, ff(cs.TotalSquared[i]), ff(rates[i]))
		if err = cw.Write(rec); err != nil {
			return
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadConvergenceCSV reads back what WriteCSV wrote, rows are grouped into
// one study per title and order
func ReadConvergenceCSV(r io.Reader) (studies []*ConvergenceStudy, err error) {
	var records [][]string
	if records, err = csv.NewReader(r).ReadAll(); err != nil {
		return
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty convergence file")
	}
	nc := len(records[0]) - 5
	if nc < 1 {
		return nil, fmt.Errorf("header has no error columns: %v", records[0])
	}
	index := make(map[string]*ConvergenceStudy)
	for i, rec := range records[1:] {
		var (
			order, nel int
			errs       = make([]float64, nc)
		)
		if len(rec) != nc+5 {
			return nil, fmt.Errorf("record %d: have %d fields, need %d", i+1, len(rec), nc+5)
		}
		if order, err = strconv.Atoi(rec[1]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if nel, err = strconv.Atoi(rec[2]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		for n := range errs {
			if errs[n], err = strconv.ParseFloat(rec[3+n], 64); err != nil {
				return nil, fmt.Errorf("record %d: %w", i+1, err)
			}
		}
		key := rec[0] + "/" + rec[1]
		cs, ok := index[key]
		if !ok {
			cs = NewConvergenceStudy(rec[0], order, nc)
			index[key] = cs
			studies = append(studies, cs)
		}
		if err = cs.Add(nel, errs...); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return
}
