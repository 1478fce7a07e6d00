/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Authors:
 *	- Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package selection

import (
	"math"

	"github.com/wtsi-hgi/enrich/table"
	"github.com/wtsi-hgi/enrich/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// score adds frequency.<t>, ratio.<t> and the enrichment columns to a count
// table, replacing any that already exist.
func (s *Selection) score(t *table.Table) {
	s.calcFrequencies(t)
	s.calcRatios(t)
	s.calcEnrichments(t)
}

// calcFrequencies sets frequency.<t> to each count divided by the total of
// the defined counts at that timepoint.
func (s *Selection) calcFrequencies(t *table.Table) {
	for _, tp := range s.timepoints {
		counts := t.Floats(table.CountCol(tp))
		total := nanSum(counts)
		freqs := make([]float64, len(counts))

		for i, c := range counts {
			freqs[i] = c / total
		}

		t.SetFloats(table.FrequencyCol(tp), table.Float, freqs) //nolint:errcheck
	}
}

func nanSum(vals []float64) float64 {
	defined := make([]float64, 0, len(vals))

	for _, v := range vals {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}

	return floats.Sum(defined)
}

// calcRatios sets ratio.<t> to frequency.<t> over frequency.0, so ratio.0 is
// always 1.
func (s *Selection) calcRatios(t *table.Table) {
	ref := t.Floats(table.FrequencyCol(types.ReferenceTimepoint))

	for _, tp := range s.timepoints {
		ratios := make([]float64, len(ref))

		if tp == types.ReferenceTimepoint {
			for i := range ratios {
				ratios[i] = 1
			}
		} else {
			floats.DivTo(ratios, t.Floats(table.FrequencyCol(tp)), ref)
		}

		t.SetFloats(table.RatioCol(tp), table.Float, ratios) //nolint:errcheck
	}
}

// calcEnrichments regresses log2 ratio on timepoint for each row, using only
// the timepoints where the ratio is finite and positive.
func (s *Selection) calcEnrichments(t *table.Table) {
	n := t.Len()
	cols := make([][]float64, len(s.timepoints))

	for j, tp := range s.timepoints {
		cols[j] = t.Floats(table.RatioCol(tp))
	}

	scores, rsq, slopes, intercepts := nans(n), nans(n), nans(n), nans(n)
	xs := make([]float64, 0, len(s.timepoints))
	ys := make([]float64, 0, len(s.timepoints))

	for i := 0; i < n; i++ {
		xs, ys = xs[:0], ys[:0]

		for j, tp := range s.timepoints {
			r := cols[j][i]
			if r > 0 && !math.IsInf(r, 0) {
				xs = append(xs, float64(tp))
				ys = append(ys, math.Log2(r))
			}
		}

		scores[i], rsq[i], slopes[i], intercepts[i] = enrichment(xs, ys)
	}

	t.SetFloats(table.ColScore, table.Float, scores)         //nolint:errcheck
	t.SetFloats(table.ColRSquared, table.Float, rsq)         //nolint:errcheck
	t.SetFloats(table.ColSlope, table.Float, slopes)         //nolint:errcheck
	t.SetFloats(table.ColIntercept, table.Float, intercepts) //nolint:errcheck
}

// enrichment returns score, r², slope and intercept for the given points.
// With a single point everything is NaN. With two, score is rise over run and
// the rest are NaN. Otherwise score is the least squares slope.
func enrichment(xs, ys []float64) (score, rsq, slope, intercept float64) {
	nan := math.NaN()

	switch len(xs) {
	case 0, 1:
		return nan, nan, nan, nan
	case 2:
		return (ys[1] - ys[0]) / (xs[1] - xs[0]), nan, nan, nan
	}

	intercept, slope = stat.LinearRegression(xs, ys, nil, false)

	// a flat series has no correlation rather than an undefined one
	if floats.Max(ys) == floats.Min(ys) {
		return slope, 0, slope, intercept
	}

	r := stat.Correlation(xs, ys, nil)

	return slope, r * r, slope, intercept
}

func nans(n int) []float64 {
	vals := make([]float64, n)

	for i := range vals {
		vals[i] = math.NaN()
	}

	return vals
}

// calcBarcodeVariation adds the number of barcodes per variant, how many of
// them were scored, and the coefficient of variation of those barcodes'
// scores to the variants table. It also labels each barcode with its variant.
func (s *Selection) calcBarcodeVariation() error {
	barcodes, ok := s.store.Get(table.KindBarcodes)
	if !ok {
		return nil
	}

	if err := s.labelBarcodes(barcodes); err != nil {
		return err
	}

	variants, ok := s.store.Get(table.KindVariants)
	if !ok {
		return nil
	}

	n := variants.Len()
	bcCounts, scored, cvs := make([]float64, n), make([]float64, n), make([]float64, n)

	for i, desc := range variants.Index() {
		bcs := s.barcodeMap.Barcodes(desc)
		bcScores := definedScores(barcodes, bcs)

		bcCounts[i] = float64(len(bcs))
		scored[i] = float64(len(bcScores))
		cvs[i] = coefficientOfVariation(bcScores)
	}

	for _, col := range []struct {
		name string
		kind table.Kind
		vals []float64
	}{
		{table.ColBarcodeCount, table.Int, bcCounts},
		{table.ColScoredBarcodes, table.Int, scored},
		{table.ColBarcodeCV, table.Float, cvs},
	} {
		if err := variants.SetFloats(col.name, col.kind, col.vals); err != nil {
			return types.NewDataError(s.name, err)
		}
	}

	return nil
}

func (s *Selection) labelBarcodes(barcodes *table.Table) error {
	labels := make([]string, barcodes.Len())

	for i, bc := range barcodes.Index() {
		labels[i], _ = s.barcodeMap.Descriptor(bc)
	}

	if err := barcodes.SetStrings(table.ColVariant, labels); err != nil {
		return types.NewDataError(s.name, err)
	}

	return nil
}

func definedScores(barcodes *table.Table, ids []string) []float64 {
	scores := make([]float64, 0, len(ids))

	for _, id := range ids {
		if v := barcodes.Value(id, table.ColScore); !math.IsNaN(v) {
			scores = append(scores, v)
		}
	}

	return scores
}

// coefficientOfVariation returns the population standard deviation over the
// mean, or NaN for no values.
func coefficientOfVariation(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}

	mean, std := stat.PopMeanStdDev(vals, nil)

	return std / mean
}
