package model

import (
	"github.com/shopspring/decimal"
)

// Grade bounds for a rating.
const (
	GradeMin = 0
	GradeMax = 5
)

// ValidGrade reports whether g is inside [0, 5].
func ValidGrade(g float64) bool {
	return g >= GradeMin && g <= GradeMax
}

// NextAverage rolls a new grade into the running average:
//
//	round((oldAverage*(n-1) + grade) / n, 1)
//
// where n is the ratings count AFTER the new grade is appended. The
// incremental form feeds the previously stored average back in, so
// repeated updates drift exactly the way the stored values did; do not
// replace it with a full recomputation over the grades. A freshly
// created book carries its seed grade as the average verbatim,
// unrounded; only subsequent ratings pass through here.
func NextAverage(oldAverage float64, n int, grade float64) float64 {
	next := decimal.NewFromFloat(oldAverage).
		Mul(decimal.NewFromInt(int64(n - 1))).
		Add(decimal.NewFromFloat(grade)).
		Div(decimal.NewFromInt(int64(n)))

	rounded, _ := next.Round(1).Float64()
	return rounded
}
