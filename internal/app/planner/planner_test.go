package planner

import (
	"path/filepath"
	"testing"

	"github.com/John-Robertt/VCStat/internal/domain"
)

func TestPlanTables_Defaults(t *testing.T) {
	out := filepath.Join(string(filepath.Separator), "tmp", "out")

	targets, err := PlanTables(out, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(targets) != len(domain.TableOutputs) {
		t.Fatalf("期望 %d 个产物，实际 %d", len(domain.TableOutputs), len(targets))
	}
	for i, tg := range targets {
		if tg.Name != domain.TableOutputs[i] {
			t.Fatalf("产物顺序不稳定：%v", targets)
		}
		if tg.Kind != domain.OutputKindTable {
			t.Fatalf("期望 kind=table，实际 %q", tg.Kind)
		}
		want := filepath.Join(out, tg.Name+".csv")
		if tg.Path != want {
			t.Fatalf("期望 path=%q，实际=%q", want, tg.Path)
		}
	}
}

func TestPlanTables_Overrides(t *testing.T) {
	out := filepath.Join(string(filepath.Separator), "tmp", "out")
	abs := filepath.Join(string(filepath.Separator), "elsewhere", "genres.csv")

	targets, err := PlanTables(out, map[string]string{
		domain.OutputTopCountries: "sub/countries.csv",
		domain.OutputTopGenres:    abs,
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	got := map[string]string{}
	for _, tg := range targets {
		got[tg.Name] = tg.Path
	}
	if got[domain.OutputTopCountries] != filepath.Join(out, "sub", "countries.csv") {
		t.Fatalf("相对路径应以 outDir 为基准：%q", got[domain.OutputTopCountries])
	}
	if got[domain.OutputTopGenres] != abs {
		t.Fatalf("绝对路径应原样保留：%q", got[domain.OutputTopGenres])
	}
}

func TestPlanTables_UnknownName(t *testing.T) {
	_, err := PlanTables("/tmp/out", map[string]string{"top_5_things": "x.csv"})
	if err == nil {
		t.Fatalf("期望未知名称报错")
	}
}

func TestPlanTables_DuplicatePath(t *testing.T) {
	_, err := PlanTables("/tmp/out", map[string]string{
		domain.OutputTopCountries: "same.csv",
		domain.OutputTopGenres:    "same.csv",
	})
	if err == nil {
		t.Fatalf("期望路径重复报错")
	}
}

func TestPlanTables_OverrideOntoOtherOutputs(t *testing.T) {
	out := filepath.Join(string(filepath.Separator), "tmp", "out")

	cases := map[string]string{
		"report.json":                     domain.OutputTopCountries,
		"index.html":                      domain.OutputTopGenres,
		domain.ChartTopCountries + ".png": domain.OutputCategoryDist,
		filepath.Join(out, "index.html"):  domain.OutputYearTrend,
	}
	for path, name := range cases {
		_, err := PlanTables(out, map[string]string{name: path})
		if err == nil {
			t.Fatalf("期望 %s -> %q 与其他产物冲突而报错", name, path)
		}
	}

	// 不冲突的覆盖仍然允许。
	if _, err := PlanTables(out, map[string]string{domain.OutputTopCountries: "report.csv"}); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
}

func TestPlanCharts_AndHTML(t *testing.T) {
	out := filepath.Join(string(filepath.Separator), "tmp", "out")

	charts := PlanCharts(out)
	if len(charts) != len(domain.ChartOutputs) {
		t.Fatalf("期望 %d 个图表，实际 %d", len(domain.ChartOutputs), len(charts))
	}
	if charts[0].Path != filepath.Join(out, domain.ChartCategoryDist+".png") {
		t.Fatalf("图表路径不正确：%q", charts[0].Path)
	}

	h := PlanHTML(out)
	if h.Path != filepath.Join(out, "index.html") || h.Kind != domain.OutputKindHTML {
		t.Fatalf("汇总页规划不正确：%+v", h)
	}
}
