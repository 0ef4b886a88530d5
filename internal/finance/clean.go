package finance

import "math"

// filterCloses removes points where the close is missing, NaN or not positive, keeping
// timestamp and value arrays aligned.
func filterCloses(ts []int64, cl []*float64) ([]int64, []float64) {
	n := len(ts)
	if len(cl) < n {
		n = len(cl)
	}
	outTs := make([]int64, 0, n)
	outCl := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if cl[i] == nil {
			continue
		}
		v := *cl[i]
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		outTs = append(outTs, ts[i])
		outCl = append(outCl, v)
	}
	return outTs, outCl
}
