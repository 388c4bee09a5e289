package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/odedash/internal/dynamo"
	"github.com/san-kum/odedash/internal/sim"
)

// BifurcationPoint holds the distinct peak values of one variable for one
// parameter value. A steady state contributes its final value.
type BifurcationPoint struct {
	Param  float64
	Values []float64
	Err    error
}

// Bifurcation extracts, for every sweep result, the local maxima of the
// named variable after transient. Peaks are deduplicated to three decimals.
func Bifurcation(results []sim.SweepResult, variable string, transient float64) ([]BifurcationPoint, error) {
	out := make([]BifurcationPoint, len(results))
	for i, r := range results {
		out[i] = BifurcationPoint{Param: r.Value, Err: r.Err}
		if r.Trajectory == nil {
			continue
		}
		series, ok := r.Trajectory.Series(variable)
		if !ok {
			return nil, fmt.Errorf("%w: no variable %q", dynamo.ErrInvalidRequest, variable)
		}
		out[i].Values = peaks(r.Trajectory.Times, series, transient)
	}
	return out, nil
}

func peaks(times, series []float64, transient float64) []float64 {
	var values []float64
	seen := make(map[int64]bool)
	add := func(v float64) {
		key := int64(math.Round(v * 1000))
		if !seen[key] {
			seen[key] = true
			values = append(values, v)
		}
	}

	for i := 1; i+1 < len(series); i++ {
		if times[i] < transient {
			continue
		}
		if series[i] > series[i-1] && series[i] > series[i+1] {
			add(series[i])
		}
	}
	if len(values) == 0 && len(series) > 0 {
		add(series[len(series)-1])
	}
	return values
}

// BifurcationToASCII draws one column per parameter value.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, p := range data {
		for _, v := range p.Values {
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if math.IsInf(minVal, 1) {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
