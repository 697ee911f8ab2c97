package domain

import "time"

// DurationUnit 是 Duration 文本解析后的单位标签。
//
// 空串表示 absent（没有解析出任何数字）。
type DurationUnit string

const (
	UnitNone    DurationUnit = ""
	UnitMinute  DurationUnit = "minute"
	UnitSeason  DurationUnit = "season"
	UnitUnknown DurationUnit = "unknown"
)

// Record 描述输入表中的一行（一个片目条目）。
//
// 不变量：
// - Record 在 load 阶段创建；duration/multivalue 阶段原地补全派生字段；之后只读
// - DurationValue 仅在 DurationUnit != UnitNone 时有意义
// - ReleaseYear == 0 表示缺失（日期无法解析或为空）
type Record struct {
	Row    int // 数据行号（从 1 开始，不含表头），作为隐式主键
	ShowID string

	Title    string
	Director string
	Category string
	Type     string // 原始逗号拼接的类型/题材列表
	Country  string // 原始逗号拼接的国家列表

	ReleaseDateRaw string
	ReleaseDate    time.Time
	ReleaseYear    int

	Duration      string
	DurationValue int
	DurationUnit  DurationUnit

	Countries []string
	Genres    []string
}

// HasDuration 报告 Duration 是否解析出了数值。
func (r Record) HasDuration() bool { return r.DurationUnit != UnitNone }

// HasReleaseYear 报告发行年份是否可用。
func (r Record) HasReleaseYear() bool { return r.ReleaseYear != 0 }
