package report

import (
	"bytes"
	"html/template"
	"path/filepath"
	"time"

	"github.com/John-Robertt/VCStat/internal/domain"
	"github.com/John-Robertt/VCStat/internal/infra/fsx"
)

var pageTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:sans-serif;margin:2em}
table{border-collapse:collapse;margin-bottom:2em}
th,td{border:1px solid #ccc;padding:4px 8px;text-align:left}
th{background:#f0f0f0}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">records: <span id="records">{{.Records}}</span> · generated: {{.Generated}}</p>
{{range .Charts}}<figure id="{{.Name}}"><img src="{{.Src}}" alt="{{.Name}}"></figure>
{{end}}{{range .Tables}}<section id="{{.Name}}">
<h2>{{.Title}}</h2>
<table>
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</section>
{{end}}</body>
</html>
`))

type pageData struct {
	Title     string
	Records   int
	Generated string
	Charts    []pageChart
	Tables    []Table
}

type pageChart struct {
	Name string
	Src  string
}

// WriteHTML 生成汇总页：全部表（含仅展示的 TV 季数榜与时长统计）+ 已成功渲染的图表。
// 图表以相对于汇总页所在目录的路径引用。
func WriteHTML(tg domain.OutputTarget, agg domain.Aggregates, records int, charts []domain.OutputResult, now time.Time) domain.OutputResult {
	res := domain.OutputResult{
		Name:   tg.Name,
		Kind:   domain.OutputKindHTML,
		Path:   tg.Path,
		Status: domain.OutputStatusWritten,
	}

	data := pageData{
		Title:     "Video Catalog Statistics",
		Records:   records,
		Generated: now.UTC().Format(time.RFC3339),
		Tables:    Tables(agg),
	}
	base := filepath.Dir(tg.Path)
	for _, c := range charts {
		if c.Status != domain.OutputStatusWritten {
			continue
		}
		src, err := filepath.Rel(base, c.Path)
		if err != nil {
			src = c.Path
		}
		data.Charts = append(data.Charts, pageChart{Name: c.Name, Src: filepath.ToSlash(src)})
	}

	// 先完整渲染再落盘：模板错误是 render_failed，落盘错误是 write_failed/target_conflict。
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return failOutput(res, domain.ErrCodeRenderFailed, err)
	}
	if err := fsx.WriteFileAtomic(tg.Path, buf.Bytes()); err != nil {
		return failOutput(res, writeErrCode(err), err)
	}
	return res
}

// writeErrCode 把 fsx 的落盘错误映射为 error_code。
func writeErrCode(err error) string {
	if fsx.IsPathTypeConflict(err) {
		return domain.ErrCodeTargetConflict
	}
	return domain.ErrCodeWriteFailed
}

func failOutput(res domain.OutputResult, code string, err error) domain.OutputResult {
	res.Status = domain.OutputStatusFailed
	res.ErrorCode = code
	res.ErrorMsg = err.Error()
	return res
}
