package app

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/John-Robertt/VCStat/internal/domain"
)

// Describe 计算 count/mean/std/min/25%/50%/75%/max。
//
// - std 是样本标准差（分母 n-1），n<2 时为 NaN
// - 分位数在相邻次序统计量之间线性插值（位置 (n-1)*p），与常见数据分析工具的 describe 一致
// - 空输入：Count=0，其余为 NaN
func Describe(values []float64) domain.DurationStats {
	nan := math.NaN()
	s := domain.DurationStats{
		Count: len(values),
		Mean:  nan,
		Std:   nan,
		Min:   nan,
		Q25:   nan,
		Q50:   nan,
		Q75:   nan,
		Max:   nan,
	}
	if len(values) == 0 {
		return s
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q25 = quantile(sorted, 0.25)
	s.Q50 = quantile(sorted, 0.50)
	s.Q75 = quantile(sorted, 0.75)
	return s
}

// quantile 要求 sorted 已升序且非空。
func quantile(sorted []float64, p float64) float64 {
	pos := float64(len(sorted)-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
