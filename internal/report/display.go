package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/John-Robertt/VCStat/internal/domain"
)

// tab/换行会破坏列对齐。
var cellReplacer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// Display 把全部表以带标题的纯文本表格写到 w（供交互终端查看）。
// 年份趋势只展示最近 YearTrendDisplayRows 年。
func Display(w io.Writer, agg domain.Aggregates) error {
	for i, t := range Tables(agg) {
		if t.Name == domain.OutputYearTrend && len(t.Rows) > YearTrendDisplayRows {
			t.Rows = t.Rows[len(t.Rows)-YearTrendDisplayRows:]
		}
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := DisplayTable(w, t); err != nil {
			return err
		}
	}
	return nil
}

// DisplayTable 输出单张表：标题行 + 列对齐的表体；空表显示 "(empty)"。
func DisplayTable(w io.Writer, t Table) error {
	if _, err := fmt.Fprintf(w, "== %s ==\n", t.Title); err != nil {
		return err
	}
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = cellReplacer.Replace(c)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
