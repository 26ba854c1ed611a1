package analytics

import (
	"fmt"
	"math"
	"strings"

	"alcyxob/workout-tracker/internal/domain"
)

// Formula names a one-rep-max estimation formula.
type Formula string

const (
	Brzycki  Formula = "brzycki"
	Epley    Formula = "epley"
	Lombardi Formula = "lombardi"
)

var formulas = map[Formula]func(weight float64, reps int) float64{
	Brzycki: func(weight float64, reps int) float64 {
		return weight / (1.0278 - 0.0278*float64(reps))
	},
	Epley: func(weight float64, reps int) float64 {
		return weight * (1 + float64(reps)/30)
	},
	Lombardi: func(weight float64, reps int) float64 {
		return weight * math.Pow(float64(reps), 0.10)
	},
}

// Formulas lists the supported formulas in a stable order.
func Formulas() []Formula {
	return []Formula{Brzycki, Epley, Lombardi}
}

// ParseFormula resolves a formula name, ignoring case.
func ParseFormula(name string) (Formula, error) {
	f := Formula(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := formulas[f]; !ok {
		return "", &domain.ValidationError{Field: "formula", Reason: fmt.Sprintf("unknown one-rep-max formula %q", name)}
	}
	return f, nil
}

// OneRepMax estimates the heaviest single repetition from a set of reps at
// weight. A single rep is returned as is, whatever the formula.
func OneRepMax(weight float64, reps int, formula string) (float64, error) {
	if reps <= 0 {
		return 0, &domain.ValidationError{Field: "reps", Reason: "must be > 0 to estimate a one-rep max"}
	}
	if reps == 1 {
		return weight, nil
	}
	f, err := ParseFormula(formula)
	if err != nil {
		return 0, err
	}
	return formulas[f](weight, reps), nil
}
