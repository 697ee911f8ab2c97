package planner

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/VCStat/internal/domain"
)

// PlanTables 为每个表格产物确定输出路径（不做任何写入）。
//
// 规则：
// - 默认路径：<outDir>/<name>.csv
// - overrides 可按 symbolic name 指定路径；相对路径以 outDir 为基准
// - overrides 中的未知 name、或两个产物指向同一路径，均视为规划失败
// - 表格产物也不能占用图表、汇总页或 report.json 的路径（否则会在同一次运行中被覆盖）
func PlanTables(outDir string, overrides map[string]string) ([]domain.OutputTarget, error) {
	outDir = filepath.Clean(outDir)

	known := make(map[string]struct{}, len(domain.TableOutputs))
	for _, n := range domain.TableOutputs {
		known[n] = struct{}{}
	}
	unknown := make([]string, 0)
	for n := range overrides {
		if _, ok := known[n]; !ok {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("未知的输出名称：%s", strings.Join(unknown, ", "))
	}

	targets := make([]domain.OutputTarget, 0, len(domain.TableOutputs))
	for _, n := range domain.TableOutputs {
		p := filepath.Join(outDir, n+".csv")
		if o := strings.TrimSpace(overrides[n]); o != "" {
			p = absCleanFrom(outDir, o)
		}
		targets = append(targets, domain.OutputTarget{Name: n, Kind: domain.OutputKindTable, Path: p})
	}
	if err := checkDistinct(targets, reserved(outDir)); err != nil {
		return nil, err
	}
	return targets, nil
}

// PlanCharts 为每个图表产物确定输出路径：<outDir>/<name>.png。
func PlanCharts(outDir string) []domain.OutputTarget {
	outDir = filepath.Clean(outDir)
	targets := make([]domain.OutputTarget, 0, len(domain.ChartOutputs))
	for _, n := range domain.ChartOutputs {
		targets = append(targets, domain.OutputTarget{
			Name: n,
			Kind: domain.OutputKindChart,
			Path: filepath.Join(outDir, n+".png"),
		})
	}
	return targets
}

// PlanHTML 返回汇总页的输出路径：<outDir>/index.html。
func PlanHTML(outDir string) domain.OutputTarget {
	return domain.OutputTarget{
		Name: domain.OutputIndexHTML,
		Kind: domain.OutputKindHTML,
		Path: filepath.Join(filepath.Clean(outDir), domain.OutputIndexHTML+".html"),
	}
}

// reserved 返回非表格产物占用的路径：path -> symbolic name。
func reserved(outDir string) map[string]string {
	out := make(map[string]string, len(domain.ChartOutputs)+2)
	for _, c := range PlanCharts(outDir) {
		out[c.Path] = c.Name
	}
	h := PlanHTML(outDir)
	out[h.Path] = h.Name
	out[filepath.Join(filepath.Clean(outDir), domain.ReportFileName)] = "report"
	return out
}

func checkDistinct(targets []domain.OutputTarget, taken map[string]string) error {
	seen := make(map[string]string, len(targets)+len(taken))
	for p, n := range taken {
		seen[p] = n
	}
	for _, t := range targets {
		if prev, ok := seen[t.Path]; ok {
			return fmt.Errorf("输出路径重复：%s 与 %s 都指向 %q", prev, t.Name, t.Path)
		}
		seen[t.Path] = t.Name
	}
	return nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}
