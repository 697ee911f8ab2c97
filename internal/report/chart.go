package report

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/John-Robertt/VCStat/internal/domain"
	"github.com/John-Robertt/VCStat/internal/infra/fsx"
)

var errNoData = errors.New("无数据可绘制")

var barColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// chartSpec 描述一张图：尺寸 + 如何从 agg 构建 plot。
type chartSpec struct {
	width, height vg.Length
	build         func(agg domain.Aggregates) (*plot.Plot, error)
}

var chartSpecs = map[string]chartSpec{
	domain.ChartCategoryDist: {6 * vg.Inch, 4 * vg.Inch, func(agg domain.Aggregates) (*plot.Plot, error) {
		return barChart("Distribution: Movies vs TV Shows", "Category", agg.Categories, 0)
	}},
	domain.ChartTopCountries: {10 * vg.Inch, 5 * vg.Inch, func(agg domain.Aggregates) (*plot.Plot, error) {
		return barChart("Top 20 Countries by Content Count", "Country", agg.Countries, math.Pi/4)
	}},
	domain.ChartTopGenres: {10 * vg.Inch, 6 * vg.Inch, func(agg domain.Aggregates) (*plot.Plot, error) {
		return barChart("Top Genres in Dataset (Top 30)", "Genre", agg.Genres, math.Pi/2)
	}},
	domain.ChartYearTrend: {10 * vg.Inch, 5 * vg.Inch, func(agg domain.Aggregates) (*plot.Plot, error) {
		return yearChart(agg.Years)
	}},
}

// RenderCharts 把每个图表产物渲染为 PNG。
//
// 渲染失败（包括绘图库 panic）只记录在对应 OutputResult 上：图表是展示层，
// 不影响已经算好的聚合结果与其余产物。
func RenderCharts(targets []domain.OutputTarget, agg domain.Aggregates) []domain.OutputResult {
	results := make([]domain.OutputResult, 0, len(targets))
	for _, tg := range targets {
		res := domain.OutputResult{
			Name:   tg.Name,
			Kind:   domain.OutputKindChart,
			Path:   tg.Path,
			Status: domain.OutputStatusWritten,
		}
		png, err := renderOne(tg.Name, agg)
		if err != nil {
			res = failOutput(res, domain.ErrCodeRenderFailed, err)
		} else if err := fsx.WriteFileAtomic(tg.Path, png); err != nil {
			res = failOutput(res, writeErrCode(err), err)
		}
		results = append(results, res)
	}
	return results
}

// renderOne 把图表渲染为 PNG 字节（不落盘）。
func renderOne(name string, agg domain.Aggregates) (png []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			png, err = nil, fmt.Errorf("绘图失败：%v", r)
		}
	}()

	cs, ok := chartSpecs[name]
	if !ok {
		return nil, fmt.Errorf("未知的图表产物：%q", name)
	}
	p, err := cs.build(agg)
	if err != nil {
		return nil, err
	}
	wt, err := p.WriterTo(cs.width, cs.height, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// barChart 用于频次表；rotation 为 x 轴标签的旋转弧度（0 表示不旋转）。
func barChart(title, xLabel string, rows []domain.CountRow, rotation float64) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, errNoData
	}

	values := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, r := range rows {
		values[i] = float64(r.Count)
		names[i] = r.Key
		if names[i] == "" {
			names[i] = "(blank)"
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Count"

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return nil, err
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)

	if rotation != 0 {
		p.X.Tick.Label.Rotation = rotation
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	return p, nil
}

// yearChart 是带圆点标记的折线图，加虚线网格。
func yearChart(rows []domain.YearCount) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, errNoData
	}

	pts := make(plotter.XYs, len(rows))
	for i, r := range rows {
		pts[i].X = float64(r.Year)
		pts[i].Y = float64(r.Count)
	}

	p := plot.New()
	p.Title.Text = "Content Added by Release Year"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Count"

	grid := plotter.NewGrid()
	dashes := []vg.Length{vg.Points(4), vg.Points(2)}
	grid.Vertical.Dashes = dashes
	grid.Vertical.Width = vg.Points(0.5)
	grid.Horizontal.Dashes = dashes
	grid.Horizontal.Width = vg.Points(0.5)
	p.Add(grid)

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	line.Color = barColor
	points.Shape = draw.CircleGlyph{}
	points.Color = barColor
	p.Add(line, points)
	return p, nil
}
