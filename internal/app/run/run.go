package run

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/John-Robertt/VCStat/internal/app"
	"github.com/John-Robertt/VCStat/internal/app/planner"
	"github.com/John-Robertt/VCStat/internal/config"
	"github.com/John-Robertt/VCStat/internal/domain"
	"github.com/John-Robertt/VCStat/internal/duration"
	"github.com/John-Robertt/VCStat/internal/infra/fsx"
	"github.com/John-Robertt/VCStat/internal/load"
	"github.com/John-Robertt/VCStat/internal/logger"
	"github.com/John-Robertt/VCStat/internal/multivalue"
	"github.com/John-Robertt/VCStat/internal/report"
)

// ReportFileName 是输出目录下机器可读运行报告的文件名。
const ReportFileName = domain.ReportFileName

// 阶段名（Observer.OnPhaseDone 的 name）。
const (
	PhaseLoad      = "load"
	PhaseParse     = "parse"
	PhaseAggregate = "aggregate"
	PhaseTables    = "tables"
	PhaseCharts    = "charts"
	PhaseHTML      = "html"
)

// Result 是一次 run 的全部产出：对外稳定的 RunReport，以及（非致命时）聚合结果。
type Result struct {
	Report     domain.RunReport
	Aggregates domain.Aggregates
	// Loaded 为 false 表示致命错误发生在聚合之前，Aggregates 无意义。
	Loaded     bool
}

// Execute 执行一次统计运行，并返回结果。
// 输入/规划失败是致命的（RunReport.ErrorCode 非空）；单个产物写入失败只记录在对应 OutputResult 上。
func Execute(ctx context.Context, eff config.EffectiveConfig, log *logger.Logger) Result {
	return ExecuteWithObserver(ctx, eff, log, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度/阶段信息（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, log *logger.Logger, obs Observer) Result {
	if log == nil {
		log = logger.Nop()
	}
	runID := uuid.NewString()
	log = log.WithRun(runID)

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		RunID:     runID,
		Input:     eff.Input,
		OutDir:    eff.OutDir,
		StartedAt: time.Now().UTC(),
		Outputs:   make([]domain.OutputResult, 0, len(domain.TableOutputs)+len(domain.ChartOutputs)+1),
	}
	fatal := func(code, msg string) Result {
		log.Error().Str("error_code", code).Msg(msg)
		rr.ErrorCode = code
		rr.ErrorMsg = msg
		rr.Outputs = nil
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return Result{Report: rr}
	}

	log.Debug().Str("input", eff.Input).Str("out_dir", eff.OutDir).Msg("run started")

	// 规划先于加载：输出路径覆盖有误时不必读整张表。
	tables, err := planner.PlanTables(eff.OutDir, eff.Outputs)
	if err != nil {
		return fatal(domain.ErrCodeConfigInvalid, fmt.Sprintf("规划输出失败：%v", err))
	}

	loadLog := log.WithComponent("load")
	started := time.Now()
	records, err := load.ReadFile(eff.Input)
	if err != nil {
		code := load.Code(err)
		if code == "" {
			code = domain.ErrCodeInputInvalid
		}
		return fatal(code, err.Error())
	}
	emitPhase(obs, PhaseLoad, map[string]any{"records": len(records)}, time.Since(started))
	loadLog.Debug().Int("records", len(records)).Dur("dur", time.Since(started)).Msg("input loaded")

	if err := ctx.Err(); err != nil {
		return fatal(domain.ErrCodeCanceled, err.Error())
	}

	started = time.Now()
	duration.Apply(records)
	multivalue.Apply(records)
	rr.Summary = summarize(records)
	loadLog.Debug().
		Int("minute", rr.Summary.DurationMinute).
		Int("season", rr.Summary.DurationSeason).
		Int("unknown", rr.Summary.DurationUnknown).
		Int("missing", rr.Summary.DurationMissing).
		Msg("durations parsed")
	emitPhase(obs, PhaseParse, map[string]any{
		"minute":  rr.Summary.DurationMinute,
		"season":  rr.Summary.DurationSeason,
		"unknown": rr.Summary.DurationUnknown,
		"missing": rr.Summary.DurationMissing,
	}, time.Since(started))

	started = time.Now()
	agg := app.Aggregate(records)
	emitPhase(obs, PhaseAggregate, map[string]any{
		"categories": len(agg.Categories),
		"countries":  len(agg.Countries),
		"genres":     len(agg.Genres),
		"years":      len(agg.Years),
	}, time.Since(started))

	if err := ctx.Err(); err != nil {
		return fatal(domain.ErrCodeCanceled, err.Error())
	}

	total := len(tables)
	if eff.Charts {
		total += len(domain.ChartOutputs)
	}
	if eff.HTML {
		total++
	}
	w := &writer{obs: obs, log: log.WithComponent("report"), total: total, rr: &rr}

	started = time.Now()
	for _, tg := range tables {
		w.do(func() domain.OutputResult { return report.WriteTables([]domain.OutputTarget{tg}, agg)[0] })
	}
	emitPhase(obs, PhaseTables, w.phaseFields(domain.OutputKindTable), time.Since(started))

	var charts []domain.OutputResult
	if eff.Charts {
		started = time.Now()
		for _, tg := range planner.PlanCharts(eff.OutDir) {
			res := w.do(func() domain.OutputResult { return report.RenderCharts([]domain.OutputTarget{tg}, agg)[0] })
			charts = append(charts, res)
		}
		emitPhase(obs, PhaseCharts, w.phaseFields(domain.OutputKindChart), time.Since(started))
	}

	if eff.HTML {
		started = time.Now()
		now := time.Now()
		w.do(func() domain.OutputResult {
			return report.WriteHTML(planner.PlanHTML(eff.OutDir), agg, len(records), charts, now)
		})
		emitPhase(obs, PhaseHTML, w.phaseFields(domain.OutputKindHTML), time.Since(started))
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()

	if err := WriteReport(filepath.Join(eff.OutDir, ReportFileName), rr); err != nil {
		log.Warn().Err(err).Msg("写入 report.json 失败")
	}
	log.Info().
		Int("records", rr.Summary.Records).
		Int("written", rr.Summary.Written).
		Int("failed", rr.Summary.Failed).
		Msg("run finished")

	return Result{Report: rr, Aggregates: agg, Loaded: true}
}

// WriteReport 把 RunReport 以缩进 JSON 原子写入 path。
func WriteReport(path string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(path, append(b, '\n'))
}

// writer 负责逐个产物写入并发出 OutputDone 事件，同时把结果追加到 RunReport。
type writer struct {
	obs   Observer
	log   *logger.Logger
	total int
	done  int
	rr    *domain.RunReport
}

func (w *writer) do(fn func() domain.OutputResult) domain.OutputResult {
	started := time.Now()
	res := fn()
	dur := time.Since(started)

	w.done++
	w.rr.Outputs = append(w.rr.Outputs, res)

	if res.Status == domain.OutputStatusFailed {
		w.log.Warn().
			Str("output", res.Name).
			Str("kind", res.Kind).
			Str("error_code", res.ErrorCode).
			Msg(res.ErrorMsg)
	} else {
		w.log.Debug().Str("output", res.Name).Str("path", res.Path).Dur("dur", dur).Msg("output written")
	}
	if w.obs != nil {
		w.obs.OnOutputDone(w.done, w.total, res, dur)
	}
	return res
}

func (w *writer) phaseFields(kind string) map[string]any {
	written, failed := 0, 0
	for _, o := range w.rr.Outputs {
		if o.Kind != kind {
			continue
		}
		if o.Status == domain.OutputStatusWritten {
			written++
		} else {
			failed++
		}
	}
	return map[string]any{"written": written, "failed": failed}
}

func emitPhase(obs Observer, name string, fields map[string]any, dur time.Duration) {
	if obs != nil {
		obs.OnPhaseDone(name, fields, dur)
	}
}

// summarize 统计记录层面的计数（产物计数由 Finalize 负责）。
func summarize(records []domain.Record) domain.ReportSummary {
	s := domain.ReportSummary{Records: len(records)}
	for i := range records {
		r := &records[i]
		switch {
		case strings.EqualFold(r.Category, "movie"):
			s.Movies++
		case strings.EqualFold(r.Category, "tv show"):
			s.TVShows++
		}
		if !r.HasReleaseYear() {
			s.MissingYear++
		}
		switch r.DurationUnit {
		case domain.UnitMinute:
			s.DurationMinute++
		case domain.UnitSeason:
			s.DurationSeason++
		case domain.UnitUnknown:
			s.DurationUnknown++
		default:
			s.DurationMissing++
		}
	}
	return s
}
