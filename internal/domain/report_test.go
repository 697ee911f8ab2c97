package domain

import (
	"bytes"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestRunReport_Finalize_SortAndSummaryAndUTC(t *testing.T) {
	r := RunReport{
		Input:      "/abs/netflix.csv",
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Outputs: []OutputResult{
			{Name: "index", Kind: OutputKindHTML, Path: "/o/index.html", Status: OutputStatusWritten},
			{Name: "top_20_countries", Kind: OutputKindTable, Path: "/o/top_20_countries.csv", Status: OutputStatusFailed, ErrorCode: ErrCodeWriteFailed},
			{Name: "chart_year_trend", Kind: OutputKindChart, Path: "/o/year.png", Status: OutputStatusWritten},
			{Name: "movies_tv_distribution", Kind: OutputKindTable, Path: "/o/movies_tv_distribution.csv", Status: OutputStatusWritten},
		},
	}

	r.Finalize()

	got := []string{r.Outputs[0].Name, r.Outputs[1].Name, r.Outputs[2].Name, r.Outputs[3].Name}
	want := []string{"movies_tv_distribution", "top_20_countries", "chart_year_trend", "index"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("outputs 排序不符合契约：%v", got)
		}
	}
	if r.Summary.Written != 3 || r.Summary.Failed != 1 {
		t.Fatalf("summary 统计不正确：%+v", r.Summary)
	}
	if _, ok := r.Paths["top_20_countries"]; ok {
		t.Fatalf("失败的产物不应出现在 paths 中：%v", r.Paths)
	}
	if r.Paths["movies_tv_distribution"] != "/o/movies_tv_distribution.csv" {
		t.Fatalf("paths 不正确：%v", r.Paths)
	}
	if !r.Failed() {
		t.Fatalf("table 写入失败时 Failed() 应为 true")
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte("\"started_at\":\"2026-02-09T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestRunReport_FailedIgnoresChartFailures(t *testing.T) {
	r := RunReport{
		Outputs: []OutputResult{
			{Name: "top_30_genres", Kind: OutputKindTable, Status: OutputStatusWritten},
			{Name: "chart_top_30_genres", Kind: OutputKindChart, Status: OutputStatusFailed, ErrorCode: ErrCodeRenderFailed},
		},
	}
	r.Finalize()

	if r.Failed() {
		t.Fatalf("chart 失败不应导致 Failed()=true")
	}
}

func TestRunReport_FinalizeEmptyOutputs(t *testing.T) {
	r := RunReport{ErrorCode: ErrCodeInputUnreadable}
	r.Finalize()

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	// 致命错误时 outputs 也必须是 []，而不是 null。
	if !bytes.Contains(b, []byte(`"outputs":[]`)) {
		t.Fatalf("outputs 应为空数组：%s", string(b))
	}
	if !r.Failed() {
		t.Fatalf("致命错误时 Failed() 应为 true")
	}
}

func TestWrittenPaths_OnlyWrittenOutputs(t *testing.T) {
	outputs := []OutputResult{
		{Name: OutputTopCountries, Kind: OutputKindTable, Path: "/o/a.csv", Status: OutputStatusWritten},
		{Name: OutputTopGenres, Kind: OutputKindTable, Path: "/o/b.csv", Status: OutputStatusFailed},
		{Name: OutputIndexHTML, Kind: OutputKindHTML, Path: "/o/index.html", Status: OutputStatusWritten},
	}

	got := WrittenPaths(outputs)
	if len(got) != 2 || got[OutputTopCountries] != "/o/a.csv" || got[OutputIndexHTML] != "/o/index.html" {
		t.Fatalf("WrittenPaths 不符合预期：%v", got)
	}

	r := RunReport{Outputs: outputs}
	r.Finalize()
	if len(r.Paths) != len(got) || r.Paths[OutputTopCountries] != got[OutputTopCountries] {
		t.Fatalf("Finalize 的 paths 应与 WrittenPaths 一致：%v", r.Paths)
	}
}
