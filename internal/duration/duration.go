package duration

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/John-Robertt/VCStat/internal/domain"
)

// ws 是数字与单位之间允许的空白：RE2 的 \s 只含 ASCII 空白，
// 这里补上 \v、信息分隔符 0x1C-0x1F、NEL 以及 Unicode 分隔符（NBSP、细空格等）。
const ws = `[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]*`

// 匹配顺序即优先级：min > season > 裸数字。
// 三条规则都是子串匹配（search 语义），只取第一个命中。
var (
	minuteRE = regexp.MustCompile(`(?i)(\d+)` + ws + `min`)
	seasonRE = regexp.MustCompile(`(?i)(\d+)` + ws + `season`)
	digitsRE = regexp.MustCompile(`(\d+)`)
)

// placeholders 是导出工具常见的“缺失值”字面量（小写比较）。
var placeholders = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"n/a":  {},
	"na":   {},
	"-":    {},
}

// Parse 从自由文本时长中提取 (数值, 单位)。
//
// 规则（严格按顺序，命中即返回）：
// 1) 空串/占位符 -> (0, UnitNone)
// 2) "<int>\s*min"（大小写不敏感）-> (int, UnitMinute)
// 3) "<int>\s*season"（含 seasons）-> (int, UnitSeason)
// 4) 任意数字串 -> (int, UnitUnknown)
// 5) 其他 -> (0, UnitNone)
//
// 数字溢出 int 时视为该条规则未命中，继续尝试下一条。
func Parse(text string) (int, domain.DurationUnit) {
	s := strings.TrimSpace(text)
	if IsPlaceholder(s) {
		return 0, domain.UnitNone
	}

	if n, ok := firstInt(minuteRE, s); ok {
		return n, domain.UnitMinute
	}
	if n, ok := firstInt(seasonRE, s); ok {
		return n, domain.UnitSeason
	}
	if n, ok := firstInt(digitsRE, s); ok {
		return n, domain.UnitUnknown
	}
	return 0, domain.UnitNone
}

// IsPlaceholder 判断已 trim 的文本是否表示“缺失”。
func IsPlaceholder(s string) bool {
	if s == "" {
		return true
	}
	_, ok := placeholders[strings.ToLower(s)]
	return ok
}

// Apply 对每条 Record 原地写入 DurationValue/DurationUnit。
func Apply(records []domain.Record) {
	for i := range records {
		records[i].DurationValue, records[i].DurationUnit = Parse(records[i].Duration)
	}
}

func firstInt(re *regexp.Regexp, s string) (int, bool) {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
