package app

import (
	"sort"
	"strings"

	"github.com/John-Robertt/VCStat/internal/domain"
)

// 报表的固定榜单长度。
const (
	TopCountries = 20
	TopGenres    = 30
	TopTitles    = 10
)

const (
	categoryMovie  = "movie"
	categoryTVShow = "tv show"
)

// Aggregate 一次性计算全部派生表。每个子计算都是纯函数，互不共享状态。
func Aggregate(records []domain.Record) domain.Aggregates {
	longest, shortest := MovieExtremes(records, TopTitles)
	return domain.Aggregates{
		Categories:     CategoryDistribution(records),
		Countries:      CountryFrequency(records, TopCountries),
		Genres:         GenreFrequency(records, TopGenres),
		Years:          YearTrend(records),
		LongestMovies:  longest,
		ShortestMovies: shortest,
		MovieDuration:  DurationSummary(records),
		TVBySeasons:    TVSeasonLeaders(records, TopTitles),
	}
}

// CategoryDistribution 统计每个 Category 的条目数（降序；并列按首次出现顺序）。
// 空 Category 也是一个独立 key（""），保证计数之和等于记录数。
func CategoryDistribution(records []domain.Record) []domain.CountRow {
	c := newCounter(8)
	for i := range records {
		c.add(records[i].Category)
	}
	return c.top(0)
}

// CountryFrequency 展平所有记录的国家 token 后计数，返回前 n 名。
func CountryFrequency(records []domain.Record, n int) []domain.CountRow {
	c := newCounter(128)
	for i := range records {
		for _, tok := range records[i].Countries {
			c.add(tok)
		}
	}
	return c.top(n)
}

// GenreFrequency 与 CountryFrequency 相同，但作用于类型/题材字段。
func GenreFrequency(records []domain.Record, n int) []domain.CountRow {
	c := newCounter(64)
	for i := range records {
		for _, tok := range records[i].Genres {
			c.add(tok)
		}
	}
	return c.top(n)
}

// YearTrend 统计每个发行年份的条目数（缺失年份排除），按年份升序。
func YearTrend(records []domain.Record) []domain.YearCount {
	counts := make(map[int]int, 64)
	for i := range records {
		if !records[i].HasReleaseYear() {
			continue
		}
		counts[records[i].ReleaseYear]++
	}

	out := make([]domain.YearCount, 0, len(counts))
	for y, n := range counts {
		out = append(out, domain.YearCount{Year: y, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// MovieExtremes 返回时长（分钟）最长与最短的各 n 部电影。
// 只考虑 Category 为 movie（大小写不敏感）且单位为 minute 的记录；并列保持原始顺序。
func MovieExtremes(records []domain.Record, n int) (longest, shortest []domain.TitleRow) {
	movies := filter(records, categoryMovie, domain.UnitMinute)

	desc := append([]domain.Record(nil), movies...)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].DurationValue > desc[j].DurationValue })

	asc := append([]domain.Record(nil), movies...)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].DurationValue < asc[j].DurationValue })

	return project(desc, n), project(asc, n)
}

// TVSeasonLeaders 返回季数最多的 n 部剧集（只有 top 榜：不做 bottom 榜，也不做统计）。
func TVSeasonLeaders(records []domain.Record, n int) []domain.TitleRow {
	shows := filter(records, categoryTVShow, domain.UnitSeason)
	sort.SliceStable(shows, func(i, j int) bool { return shows[i].DurationValue > shows[j].DurationValue })
	return project(shows, n)
}

// DurationSummary 对 MovieExtremes 同一过滤集合的时长做描述统计。
func DurationSummary(records []domain.Record) domain.DurationStats {
	movies := filter(records, categoryMovie, domain.UnitMinute)
	values := make([]float64, 0, len(movies))
	for i := range movies {
		values = append(values, float64(movies[i].DurationValue))
	}
	return Describe(values)
}

// filter 返回新切片（不与输入共享底层数组），调用方可以就地排序。
func filter(records []domain.Record, category string, unit domain.DurationUnit) []domain.Record {
	out := make([]domain.Record, 0, len(records)/2)
	for i := range records {
		r := records[i]
		if r.DurationUnit != unit {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(r.Category), category) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func project(records []domain.Record, n int) []domain.TitleRow {
	if n >= 0 && len(records) > n {
		records = records[:n]
	}
	out := make([]domain.TitleRow, 0, len(records))
	for _, r := range records {
		out = append(out, domain.TitleRow{
			Title:         r.Title,
			Director:      r.Director,
			Country:       r.Country,
			ReleaseYear:   r.ReleaseYear,
			Duration:      r.Duration,
			DurationValue: r.DurationValue,
		})
	}
	return out
}

// counter 记录 key 的首次出现顺序，用于并列时的稳定排序。
type counter struct {
	index map[string]int
	rows  []domain.CountRow
}

func newCounter(capHint int) *counter {
	return &counter{
		index: make(map[string]int, capHint),
		rows:  make([]domain.CountRow, 0, capHint),
	}
}

func (c *counter) add(key string) {
	if idx, ok := c.index[key]; ok {
		c.rows[idx].Count++
		return
	}
	c.index[key] = len(c.rows)
	c.rows = append(c.rows, domain.CountRow{Key: key, Count: 1})
}

// top 返回按计数降序的前 n 行；n<=0 表示全部。
func (c *counter) top(n int) []domain.CountRow {
	out := append([]domain.CountRow(nil), c.rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []domain.CountRow{}
	}
	return out
}
