package usecase

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/github-report/internal/domain"
)

// SqrtFit holds the least-squares parameters of stars = A*sqrt(forks) + B.
type SqrtFit struct {
	A    float64 `json:"a"`
	B    float64 `json:"b"`
	SSR  float64 `json:"ssr"`
	RMSE float64 `json:"rmse"`
	N    int     `json:"n"`
}

// Predict evaluates the fitted model at forks = x.
func (f SqrtFit) Predict(x float64) float64 {
	return f.A*math.Sqrt(x) + f.B
}

// Curve samples the fitted model at points evenly spaced over [lo, hi].
func (f SqrtFit) Curve(lo, hi float64, points int) (xs, ys []float64) {
	if points < 2 {
		points = 2
	}
	xs = make([]float64, points)
	ys = make([]float64, points)
	for i := range xs {
		x := lo + (hi-lo)*float64(i)/float64(points-1)
		xs[i] = x
		ys[i] = f.Predict(x)
	}
	return xs, ys
}

// FitSqrt fits stars = a*sqrt(forks) + b over every record, minimising the
// sum of squared residuals. The model is linear in (a, b), so the normal
// equations give the minimum directly; they are singular when sqrt(forks)
// does not vary, which is reported as a *domain.FitError.
func FitSqrt(ds domain.Dataset) (SqrtFit, error) {
	if len(ds) == 0 {
		return SqrtFit{}, &domain.FitError{Reason: "no data points"}
	}
	xs := make(stats.Float64Data, len(ds))
	ys := make(stats.Float64Data, len(ds))
	for i, r := range ds {
		if r.Forks < 0 {
			return SqrtFit{}, &domain.FitError{Reason: fmt.Sprintf("negative forks for %s", r.Name)}
		}
		xs[i] = math.Sqrt(float64(r.Forks))
		ys[i] = float64(r.Stars)
	}

	varX, err := stats.PopulationVariance(xs)
	if err != nil {
		return SqrtFit{}, &domain.FitError{Reason: err.Error()}
	}
	if varX == 0 {
		return SqrtFit{}, &domain.FitError{Reason: "forks do not vary, parameters are not identifiable"}
	}
	cov, err := stats.CovariancePopulation(xs, ys)
	if err != nil {
		return SqrtFit{}, &domain.FitError{Reason: err.Error()}
	}
	meanX, _ := stats.Mean(xs)
	meanY, _ := stats.Mean(ys)

	fit := SqrtFit{A: cov / varX, N: len(ds)}
	fit.B = meanY - fit.A*meanX
	if math.IsNaN(fit.A) || math.IsInf(fit.A, 0) || math.IsNaN(fit.B) || math.IsInf(fit.B, 0) {
		return SqrtFit{}, &domain.FitError{Reason: "parameters are not finite"}
	}

	for i := range xs {
		r := ys[i] - (fit.A*xs[i] + fit.B)
		fit.SSR += r * r
	}
	fit.RMSE = math.Sqrt(fit.SSR / float64(len(xs)))
	return fit, nil
}
