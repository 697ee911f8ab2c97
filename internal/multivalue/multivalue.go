// Package multivalue 拆分“逗号拼接”的多值字段（国家、类型/题材）。
package multivalue

import (
	"strings"

	"github.com/John-Robertt/VCStat/internal/domain"
)

// Split 按 ',' 拆分并 trim，丢弃空 token；空输入返回 nil。
// 输出保持原始顺序，不去重（同一字段里重复出现就计两次）。
func Split(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Apply 对每条 Record 原地写入 Countries/Genres。
func Apply(records []domain.Record) {
	for i := range records {
		records[i].Countries = Split(records[i].Country)
		records[i].Genres = Split(records[i].Type)
	}
}
