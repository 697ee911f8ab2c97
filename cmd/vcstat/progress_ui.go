package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/John-Robertt/VCStat/internal/app/run"
	"github.com/John-Robertt/VCStat/internal/config"
	"github.com/John-Robertt/VCStat/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的简洁进度输出。
//
// 设计目标：
// - 所有过程信息写到 stderr，不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
// - keepalive：大文件加载期间长时间无事件时也会定期输出一行
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	phase string
	total int
	done  int
	ok    int
	fail  int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

// nextPhase 给出某阶段结束后正在进行的阶段（用于 keepalive 展示）。
var nextPhase = map[string]string{
	run.PhaseLoad:      run.PhaseParse,
	run.PhaseParse:     run.PhaseAggregate,
	run.PhaseAggregate: run.PhaseTables,
	run.PhaseTables:    run.PhaseCharts,
	run.PhaseCharts:    run.PhaseHTML,
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.startedAt.IsZero() {
		p.startedAt = now
	}
	p.phase = run.PhaseLoad

	fmt.Fprintf(p.w, "[%s] VCStat run\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  input: %s\n", eff.Input)
	fmt.Fprintf(p.w, "  config: %s\n", orDash(eff.ConfigFile))
	fmt.Fprintf(p.w, "  charts: %s\n", onOff(eff.Charts))
	fmt.Fprintf(p.w, "  html: %s\n", onOff(eff.HTML))
	fmt.Fprintf(p.w, "  display: %s\n", onOff(eff.Display))
	fmt.Fprintf(p.w, "  outputs: %s\n", formatOverrides(eff.Outputs))
	fmt.Fprintf(p.w, "  log: level=%s format=%s dir=%s\n", orDash(eff.Log.Level), orDash(eff.Log.Format), orDash(eff.Log.Dir))

	fmt.Fprintln(p.w, "输出:")
	fmt.Fprintf(p.w, "  out: %s\n", eff.OutDir)
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
	if !p.tickerStarted {
		p.startTickerLocked()
	}
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case run.PhaseLoad:
		fmt.Fprintf(p.w, "加载: records=%d (%s)\n", intField(fields, "records"), formatShortDuration(dur))
	case run.PhaseParse:
		fmt.Fprintf(p.w, "解析: minute=%d season=%d unknown=%d missing=%d (%s)\n",
			intField(fields, "minute"),
			intField(fields, "season"),
			intField(fields, "unknown"),
			intField(fields, "missing"),
			formatShortDuration(dur),
		)
	case run.PhaseAggregate:
		fmt.Fprintf(p.w, "聚合: categories=%d countries=%d genres=%d years=%d (%s)\n\n",
			intField(fields, "categories"),
			intField(fields, "countries"),
			intField(fields, "genres"),
			intField(fields, "years"),
			formatShortDuration(dur),
		)
	case run.PhaseTables, run.PhaseCharts, run.PhaseHTML:
		fmt.Fprintf(p.w, "%s: written=%d failed=%d (%s)\n",
			name, intField(fields, "written"), intField(fields, "failed"), formatShortDuration(dur),
		)
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}

	p.phase = nextPhase[name]
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnOutputDone(idx, total int, res domain.OutputResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	if res.Status == domain.OutputStatusFailed {
		p.fail++
		fmt.Fprintf(p.w, "[%d/%d] %s FAIL %s: %s (%s)\n",
			idx, total, res.Name, res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur),
		)
	} else {
		p.ok++
		fmt.Fprintf(p.w, "[%d/%d] %s OK (%s)\n", idx, total, res.Name, formatShortDuration(dur))
	}
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnProgress(phase string, done, total int, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.printProgressLocked(phase, done, total, elapsed)
}

func (p *progressUI) printProgressLocked(phase string, done, total int, elapsed time.Duration) {
	if phase == "" {
		phase = "-"
	}
	fmt.Fprintf(p.w, "进度: phase=%s outputs=%d/%d elapsed=%s\n", phase, done, total, formatElapsed(elapsed))
	p.lastPrinted = time.Now()
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}
	stopCh := p.stopCh

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if time.Since(p.lastPrinted) > threshold {
					p.printProgressLocked(p.phase, p.done, p.total, time.Since(p.startedAt))
				}
				p.mu.Unlock()
			case <-stopCh:
				return
			}
		}
	}()
}

// stop 停止 keepalive ticker；可重复调用。
func (p *progressUI) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tickerStarted {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func formatOverrides(m map[string]string) string {
	if len(m) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, " ")
}

// truncate 按字节上限截断，但只在 rune 边界处切（错误信息多为中文）。
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:runeBoundary(s, max)]
	}
	return s[:runeBoundary(s, max-3)] + "..."
}

// runeBoundary 返回 <= n 的最大 rune 起始下标。
func runeBoundary(s string, n int) int {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	default:
		return 0
	}
}
