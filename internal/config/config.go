package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/John-Robertt/VCStat/internal/domain"
	"github.com/John-Robertt/VCStat/internal/logger"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = domain.ErrCodeConfigInvalid
	// ErrCodeMissingInput 表示 CLI 与配置文件都没有给出输入文件。
	ErrCodeMissingInput = domain.ErrCodeConfigMissingInput
)

const (
	// FileName 是工作目录下自动发现的配置文件名。
	FileName = "vcstat.yaml"
	// DefaultOutDirName 是未指定 out_dir 时，在输入文件所在目录下创建的输出目录名。
	DefaultOutDirName = "vcstat-out"
)

// CLIArgs 是 CLI 暴露的入口参数。空串表示未指定。
type CLIArgs struct {
	Input      string
	OutDir     string
	ConfigPath string
}

// FileConfig 对应 vcstat.yaml 的解析结构。
type FileConfig struct {
	Input   string            `mapstructure:"input"`
	OutDir  string            `mapstructure:"out_dir"`
	Charts  bool              `mapstructure:"charts"`
	HTML    bool              `mapstructure:"html"`
	Display bool              `mapstructure:"display"`
	Outputs map[string]string `mapstructure:"outputs" validate:"omitempty,dive,keys,oneof=top_10_longest_movies top_10_shortest_movies top_20_countries top_30_genres content_by_release_year movies_tv_distribution,endkeys,required"`
	Log     LogConfig         `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn warning error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=console json"`
	Dir    string `mapstructure:"dir"`
}

// EffectiveConfig 是合并并规范化后的最终配置：路径均为绝对路径。
type EffectiveConfig struct {
	Input  string
	OutDir string

	Charts  bool
	HTML    bool
	Display bool

	// Outputs 是表格产物的路径覆盖（symbolic name -> 路径，相对路径以 OutDir 为基准）。
	Outputs map[string]string

	Log logger.Config

	// ConfigFile 是实际读取的配置文件（未读取则为空）。
	ConfigFile string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeMissingInput:
		return fmt.Sprintf("%s：未指定输入文件（命令行参数或配置项 input）", e.Code)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

var validate = validator.New()

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则：
// 1) CLI 提供 --config：该文件必须存在且可解析
// 2) 否则读取 <cwd>/vcstat.yaml（可选，不存在不报错）
//
// 覆盖优先级：CLI > 配置文件 > 默认值。
// CLI 相对路径以 cwd 为基准；配置文件中的相对路径以配置文件所在目录为基准。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	required := false
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		required = true
	}

	fc, exists, err := readFileConfig(cfgPath, required)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if err := validate.Struct(fc); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	cfgDir := filepath.Dir(cfgPath)
	eff := EffectiveConfig{
		Charts:  fc.Charts,
		HTML:    fc.HTML,
		Display: fc.Display,
		Log: logger.Config{
			Level:  fc.Log.Level,
			Format: fc.Log.Format,
		},
	}
	if exists {
		eff.ConfigFile = cfgPath
	}

	// input：CLI > config
	switch {
	case strings.TrimSpace(cli.Input) != "":
		eff.Input = absCleanFrom(cwdAbs, cli.Input)
	case strings.TrimSpace(fc.Input) != "":
		eff.Input = absCleanFrom(cfgDir, fc.Input)
	default:
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingInput, Path: cfgPath}
	}

	// out_dir：CLI > config > <input 所在目录>/vcstat-out
	switch {
	case strings.TrimSpace(cli.OutDir) != "":
		eff.OutDir = absCleanFrom(cwdAbs, cli.OutDir)
	case strings.TrimSpace(fc.OutDir) != "":
		eff.OutDir = absCleanFrom(cfgDir, fc.OutDir)
	default:
		eff.OutDir = filepath.Join(filepath.Dir(eff.Input), DefaultOutDirName)
	}

	if strings.TrimSpace(fc.Log.Dir) != "" {
		eff.Log.Dir = absCleanFrom(cfgDir, fc.Log.Dir)
	}
	if len(fc.Outputs) > 0 {
		eff.Outputs = make(map[string]string, len(fc.Outputs))
		for k, v := range fc.Outputs {
			eff.Outputs[k] = strings.TrimSpace(v)
		}
	}
	return eff, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("charts", true)
	v.SetDefault("html", true)
	v.SetDefault("display", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// readFileConfig 用 viper 读取 YAML 配置文件。
// 返回值 exists 表示该文件是否存在；required=false 时不存在不算错误（此时返回默认值）。
func readFileConfig(path string, required bool) (fc FileConfig, exists bool, err error) {
	v := viper.New()
	setDefaults(v)

	st, statErr := os.Stat(path)
	switch {
	case statErr == nil && st.IsDir():
		return FileConfig{}, false, fmt.Errorf("配置路径是目录")
	case statErr == nil:
		exists = true
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return FileConfig{}, true, err
		}
	case os.IsNotExist(statErr) && !required:
		// 使用默认值
	default:
		return FileConfig{}, false, statErr
	}

	if err := v.Unmarshal(&fc); err != nil {
		return FileConfig{}, exists, err
	}
	return fc, exists, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}
