package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/John-Robertt/VCStat/internal/app/run"
	"github.com/John-Robertt/VCStat/internal/config"
	"github.com/John-Robertt/VCStat/internal/domain"
	"github.com/John-Robertt/VCStat/internal/logger"
	"github.com/John-Robertt/VCStat/internal/report"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage(os.Stdout)
		return
	}

	switch args[0] {
	case "run":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		code := runCmd(ctx, args[1:], stdStreams())
		stop()
		if code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage(os.Stderr)
		os.Exit(2)
	}
}

// streams 收拢 CLI 的输出端，便于测试时替换为 buffer。
type streams struct {
	stdout io.Writer
	stderr io.Writer

	stdoutTTY bool
	// progress 为 nil 表示非交互环境：不输出进度。
	progress  io.Writer
}

func stdStreams() streams {
	s := streams{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		stdoutTTY: isTTY(os.Stdout),
	}
	s.progress = pickProgressWriter()
	return s
}

func runCmd(ctx context.Context, args []string, s streams) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage(s.stdout)
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(s.stderr, "参数错误：%v\n\n", err)
		printRunUsage(s.stderr)
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(s.stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		Input:      ra.Input,
		OutDir:     ra.OutDir,
		ConfigPath: ra.ConfigPath,
	})
	if err != nil {
		emitReport(s, reportForConfigError(cwd, ra, err))
		return 1
	}

	log := logger.New(eff.Log)
	defer log.Close()
	if eff.ConfigFile != "" {
		log.Debug().Str("config", eff.ConfigFile).Msg("config loaded")
	}

	var obs run.Observer
	var ui *progressUI
	if s.progress != nil {
		ui = newProgressUI(s.progress)
		obs = ui
	}

	res := run.ExecuteWithObserver(ctx, eff, log, obs)
	if ui != nil {
		ui.stop()
	}

	if res.Loaded && eff.Display {
		// TTY：表格直接展示在 stdout；否则 stdout 只留给 JSON，表格改走 stderr。
		w := s.stderr
		if s.stdoutTTY {
			w = s.stdout
		}
		if err := report.Display(w, res.Aggregates); err != nil {
			log.Warn().Err(err).Msg("展示表格失败")
		}
	}

	emitReport(s, res.Report)
	if s.progress != nil && res.Loaded {
		emitLocations(s.progress, eff)
	}
	if res.Report.Failed() {
		return 1
	}
	return 0
}

type runArgs struct {
	Input      string
	OutDir     string
	ConfigPath string
}

func parseRunArgs(args []string) (runArgs, error) {
	ra := runArgs{}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--out" || a == "--config":
			if i+1 >= len(args) {
				return runArgs{}, fmt.Errorf("%s 需要一个值", a)
			}
			i++
			if err := ra.setFlag(a, args[i]); err != nil {
				return runArgs{}, err
			}
		case strings.HasPrefix(a, "--out="):
			if err := ra.setFlag("--out", strings.TrimPrefix(a, "--out=")); err != nil {
				return runArgs{}, err
			}
		case strings.HasPrefix(a, "--config="):
			if err := ra.setFlag("--config", strings.TrimPrefix(a, "--config=")); err != nil {
				return runArgs{}, err
			}
		case strings.HasPrefix(a, "-") && a != "-":
			return runArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			if ra.Input != "" {
				return runArgs{}, fmt.Errorf("重复的输入文件：%q 与 %q", ra.Input, a)
			}
			ra.Input = a
		}
	}
	return ra, nil
}

func (ra *runArgs) setFlag(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s 不能为空", name)
	}
	switch name {
	case "--out":
		ra.OutDir = v
	case "--config":
		ra.ConfigPath = v
	}
	return nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `用法：
  vcstat run [file] [--out DIR] [--config FILE]

命令：
  run    读取影视目录表，输出统计表格、图表与汇总页

使用 "vcstat run --help" 查看详细说明。
`)
}

func printRunUsage(w io.Writer) {
	fmt.Fprint(w, `用法：
  vcstat run [file] [--out DIR] [--config FILE]

参数：
  file        输入文件（CSV；未指定则读配置项 input）
  --out       输出目录（默认 <输入文件所在目录>/vcstat-out）
  --config    配置文件（默认读取当前目录下的 vcstat.yaml，不存在则忽略）
  -h, --help  显示帮助
`)
}

func emitReport(s streams, rr domain.RunReport) {
	summary := fmt.Sprintf("完成：records=%d written=%d failed=%d",
		rr.Summary.Records, rr.Summary.Written, rr.Summary.Failed,
	)

	if s.stdoutTTY {
		fmt.Fprintln(s.stdout, summary)
		printFailures(s.stderr, rr)
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	_ = json.NewEncoder(s.stdout).Encode(rr)
	fmt.Fprintln(s.stderr, summary)
	printFailures(s.stderr, rr)
}

func printFailures(w io.Writer, rr domain.RunReport) {
	if rr.ErrorCode != "" {
		fmt.Fprintf(w, "%s: %s\n", rr.ErrorCode, rr.ErrorMsg)
	}
	for _, o := range rr.Outputs {
		if o.Status != domain.OutputStatusFailed {
			continue
		}
		fmt.Fprintf(w, "%s %s: %s\n", o.Name, o.ErrorCode, o.ErrorMsg)
	}
}

func reportForConfigError(cwd string, ra runArgs, err error) domain.RunReport {
	now := time.Now().UTC()
	input := ""
	if strings.TrimSpace(ra.Input) != "" {
		input = filepath.Clean(ra.Input)
		if !filepath.IsAbs(input) {
			input = filepath.Join(cwd, input)
		}
	}
	code := config.Code(err)
	if code == "" {
		code = domain.ErrCodeConfigInvalid
	}
	rr := domain.RunReport{
		Input:      input,
		StartedAt:  now,
		FinishedAt: now,
		ErrorCode:  code,
		ErrorMsg:   err.Error(),
	}
	rr.Finalize()
	return rr
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() io.Writer {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr
	}
	return nil
}

func emitLocations(w io.Writer, eff config.EffectiveConfig) {
	fmt.Fprintf(w, "report: %s\n", filepath.Join(eff.OutDir, run.ReportFileName))
	fmt.Fprintf(w, "out: %s\n", eff.OutDir)
}
