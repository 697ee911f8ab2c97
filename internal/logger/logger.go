package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName 是日志目录下的日志文件名。
const FileName = "vcstat.log"

// Logger 包装 zerolog；若配置了日志目录，则额外写入按大小滚动的日志文件。
type Logger struct {
	zerolog.Logger
	rotator *lumberjack.Logger
}

// Config 对应配置文件中的 log 段。
type Config struct {
	Level  string // trace|debug|info|warn|error
	Format string // console|json
	Dir    string // 为空则不写文件
}

// New 创建 Logger。日志只写 stderr（或文件），stdout 留给 RunReport JSON / 表格展示。
func New(cfg Config) *Logger {
	return newWithWriter(cfg, os.Stderr)
}

func newWithWriter(cfg Config, w io.Writer) *Logger {
	var console io.Writer = w
	if strings.ToLower(cfg.Format) != "json" {
		console = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	output := console
	var rotator *lumberjack.Logger
	if dir := strings.TrimSpace(cfg.Dir); dir != "" {
		// 目录创建失败时退化为只写 stderr：日志不应阻断一次统计运行。
		if err := os.MkdirAll(dir, 0o755); err == nil {
			rotator = &lumberjack.Logger{
				Filename:   filepath.Join(dir, FileName),
				MaxSize:    10,
				MaxBackups: 5,
				MaxAge:     30,
				LocalTime:  true,
			}
			output = io.MultiWriter(console, rotator)
		}
	}

	l := zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
	return &Logger{Logger: l, rotator: rotator}
}

// Nop 返回丢弃全部输出的 Logger（测试与库调用方使用）。
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// Close 关闭日志文件（若有）。
func (l *Logger) Close() error {
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// WithRun 返回带 run_id 字段的子 Logger（共享同一个 rotator，Close 仍由父 Logger 负责）。
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{Logger: l.Logger.With().Str("run_id", runID).Logger()}
}

// WithComponent 返回带 component 字段的子 Logger。
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With().Str("component", component).Logger()}
}

// ParseLevel 把字符串级别转为 zerolog.Level；未知值回退到 info。
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
