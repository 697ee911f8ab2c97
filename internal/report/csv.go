package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/John-Robertt/VCStat/internal/domain"
	"github.com/John-Robertt/VCStat/internal/infra/fsx"
)

// WriteTables 把 targets 中的每个表格产物写为 CSV（header + rows）。
//
// 每个文件独立原子写入：单个失败只记录在对应的 OutputResult 上，不影响其余文件，
// 也不会回收已计算好的 agg。
func WriteTables(targets []domain.OutputTarget, agg domain.Aggregates) []domain.OutputResult {
	results := make([]domain.OutputResult, 0, len(targets))
	for _, tg := range targets {
		res := domain.OutputResult{
			Name:   tg.Name,
			Kind:   domain.OutputKindTable,
			Path:   tg.Path,
			Status: domain.OutputStatusWritten,
		}

		t, ok := TableByName(agg, tg.Name)
		if !ok {
			results = append(results, failOutput(res, domain.ErrCodeWriteFailed, fmt.Errorf("未知的表格产物：%q", tg.Name)))
			continue
		}

		if err := fsx.WriteAtomic(tg.Path, func(w io.Writer) error { return EncodeCSV(w, t) }); err != nil {
			res = failOutput(res, writeErrCode(err), err)
		}
		results = append(results, res)
	}
	return results
}

// EncodeCSV 把 t 编码为 CSV（带表头，不带行号）。
func EncodeCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
