package domain

import (
	"sort"
	"time"
)

const (
	OutputStatusWritten = "written"
	OutputStatusFailed  = "failed"
)

const (
	OutputKindTable = "table"
	OutputKindChart = "chart"
	OutputKindHTML  = "html"
)

const (
	ErrCodeInputUnreadable     = "input_unreadable"
	ErrCodeInputNoHeader       = "input_no_header"
	ErrCodeInputMissingColumns = "input_missing_columns"
	ErrCodeInputInvalid        = "input_invalid"
	ErrCodeWriteFailed         = "write_failed"
	ErrCodeTargetConflict      = "target_conflict"
	ErrCodeRenderFailed        = "render_failed"
	ErrCodeConfigInvalid       = "config_invalid"
	ErrCodeConfigMissingInput  = "config_missing_input"
	ErrCodeCanceled            = "canceled"
)

// RunReport 是对外稳定输出（report.json / stdout JSON）的结构。
type RunReport struct {
	RunID  string `json:"run_id"`
	Input  string `json:"input"`
	OutDir string `json:"out_dir"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// ErrorCode/ErrorMsg 仅在致命错误（配置/输入不可读）时非空；此时 Outputs 为空。
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Summary ReportSummary  `json:"summary"`
	Outputs []OutputResult `json:"outputs"`

	// Paths 是成功写出的产物：symbolic name -> 文件路径。
	Paths map[string]string `json:"paths"`
}

type ReportSummary struct {
	Records         int `json:"records"`
	Movies          int `json:"movies"`
	TVShows         int `json:"tv_shows"`
	MissingYear     int `json:"missing_year"`
	DurationMinute  int `json:"duration_minute"`
	DurationSeason  int `json:"duration_season"`
	DurationUnknown int `json:"duration_unknown"`
	DurationMissing int `json:"duration_missing"`

	Written int `json:"written"`
	Failed  int `json:"failed"`
}

type OutputResult struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Failed 报告 report 是否应以非 0 退出：致命错误，或任一 table 产物写入失败。
// chart/html 失败只记录不影响退出码。
func (r RunReport) Failed() bool {
	if r.ErrorCode != "" {
		return true
	}
	for _, o := range r.Outputs {
		if o.Kind == OutputKindTable && o.Status == OutputStatusFailed {
			return true
		}
	}
	return false
}

// Finalize 做三件事：
// 1) 时间统一为 UTC
// 2) outputs 稳定排序：先按 kind（table/chart/html），再按 name
// 3) written/failed 计数与 paths 由 outputs 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	if r.Outputs == nil {
		r.Outputs = []OutputResult{}
	}
	sort.SliceStable(r.Outputs, func(i, j int) bool {
		a, b := kindRank(r.Outputs[i].Kind), kindRank(r.Outputs[j].Kind)
		if a != b {
			return a < b
		}
		return r.Outputs[i].Name < r.Outputs[j].Name
	})

	r.Summary.Written, r.Summary.Failed = 0, 0
	for _, o := range r.Outputs {
		switch o.Status {
		case OutputStatusWritten:
			r.Summary.Written++
		case OutputStatusFailed:
			r.Summary.Failed++
		}
	}
	r.Paths = WrittenPaths(r.Outputs)
}

// WrittenPaths 返回成功写出的产物：symbolic name -> 路径。
func WrittenPaths(outputs []OutputResult) map[string]string {
	out := make(map[string]string, len(outputs))
	for _, o := range outputs {
		if o.Status == OutputStatusWritten {
			out[o.Name] = o.Path
		}
	}
	return out
}

func kindRank(kind string) int {
	switch kind {
	case OutputKindTable:
		return 0
	case OutputKindChart:
		return 1
	case OutputKindHTML:
		return 2
	default:
		return 3
	}
}
