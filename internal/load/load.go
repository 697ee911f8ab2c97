package load

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/John-Robertt/VCStat/internal/domain"
)

// 规范列名（输入表头 trim 后按大小写不敏感匹配）。
const (
	ColShowID      = "Show_Id"
	ColCategory    = "Category"
	ColTitle       = "Title"
	ColDirector    = "Director"
	ColCountry     = "Country"
	ColReleaseDate = "Release_Date"
	ColDuration    = "Duration"
	ColType        = "Type"
)

// RequiredColumns 缺任何一列都视为致命错误。
var RequiredColumns = []string{
	ColCategory,
	ColType,
	ColCountry,
	ColReleaseDate,
	ColDuration,
	ColTitle,
	ColDirector,
}

// Error 是加载阶段的结构化错误（带 error_code）。
// 加载失败时不返回任何部分结果。
type Error struct {
	Code    string
	Path    string
	Missing []string // 仅 input_missing_columns 时非空
	Err     error
}

func (e *Error) Error() string {
	switch e.Code {
	case domain.ErrCodeInputUnreadable:
		return fmt.Sprintf("%s：无法读取输入文件 %q：%v", e.Code, e.Path, e.Err)
	case domain.ErrCodeInputNoHeader:
		return fmt.Sprintf("%s：输入文件 %q 没有可识别的表头", e.Code, e.Path)
	case domain.ErrCodeInputMissingColumns:
		return fmt.Sprintf("%s：输入文件 %q 缺少必需列：%s", e.Code, e.Path, strings.Join(e.Missing, ", "))
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：输入文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：输入文件 %q 无效", e.Code, e.Path)
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

// ReadFile 读取 path 指向的分隔表，并返回规范化后的 Record 序列。
func ReadFile(path string) ([]domain.Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeInputUnreadable, Path: path, Err: err}
	}
	return parse(path, b)
}

// Read 与 ReadFile 相同，但从 r 读取（name 仅用于错误信息）。
func Read(name string, r io.Reader) ([]domain.Record, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeInputUnreadable, Path: name, Err: err}
	}
	return parse(name, b)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func parse(name string, b []byte) ([]domain.Record, error) {
	b = bytes.TrimPrefix(b, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(b))
	cr.Comma = detectDelimiter(b)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &Error{Code: domain.ErrCodeInputNoHeader, Path: name}
	}
	if err != nil {
		return nil, &Error{Code: domain.ErrCodeInputInvalid, Path: name, Err: err}
	}

	cols, err := mapColumns(name, header)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, 1024)
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &Error{Code: domain.ErrCodeInputInvalid, Path: name, Err: err}
		}
		records = append(records, toRecord(row, cols, fields))
	}
	return records, nil
}

// detectDelimiter 只看首行：';' 或 '\t' 明显多于 ',' 时才切换，否则默认 ','。
func detectDelimiter(b []byte) rune {
	line := b
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		line = b[:i]
	}
	comma := bytes.Count(line, []byte{','})
	best, bestN := ',', comma
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// columns 是规范列名 -> 字段下标；-1 表示不存在。
type columns map[string]int

func mapColumns(name string, header []string) (columns, error) {
	known := append([]string{ColShowID}, RequiredColumns...)
	cols := make(columns, len(known))
	for _, k := range known {
		cols[k] = -1
	}

	found := 0
	for i, h := range header {
		h = strings.TrimSpace(h)
		for _, k := range known {
			if cols[k] < 0 && strings.EqualFold(h, k) {
				cols[k] = i
				found++
				break
			}
		}
	}
	if found == 0 {
		return nil, &Error{Code: domain.ErrCodeInputNoHeader, Path: name}
	}

	var missing []string
	for _, k := range RequiredColumns {
		if cols[k] < 0 {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, &Error{Code: domain.ErrCodeInputMissingColumns, Path: name, Missing: missing}
	}
	return cols, nil
}

func (c columns) get(fields []string, col string) string {
	i := c[col]
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

func toRecord(row int, cols columns, fields []string) domain.Record {
	r := domain.Record{
		Row:            row,
		ShowID:         strings.TrimSpace(cols.get(fields, ColShowID)),
		Title:          cols.get(fields, ColTitle),
		Director:       cols.get(fields, ColDirector),
		Category:       strings.TrimSpace(cols.get(fields, ColCategory)),
		Type:           strings.TrimSpace(cols.get(fields, ColType)),
		Country:        cols.get(fields, ColCountry),
		ReleaseDateRaw: cols.get(fields, ColReleaseDate),
		Duration:       cols.get(fields, ColDuration),
	}
	if t, ok := ParseDate(r.ReleaseDateRaw); ok {
		r.ReleaseDate = t
		r.ReleaseYear = t.Year()
	}
	return r
}

// ParseDate 尽力解析发行日期；无法解析时返回 ok=false（缺失而不是失败）。
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
