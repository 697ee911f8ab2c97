package report

import (
	"math"
	"strconv"

	"github.com/John-Robertt/VCStat/internal/domain"
)

// 仅用于展示（终端/HTML），不落盘为 CSV 的表。
const (
	TableTVBySeasons   = "top_10_tvshows_by_seasons"
	TableMovieDuration = "movie_duration_statistics"
)

// YearTrendDisplayRows 是终端展示年份趋势时保留的最近年份数（CSV 不受影响）。
const YearTrendDisplayRows = 50

// Table 是一个已格式化为字符串的二维表：CSV、终端、HTML 共用同一份数据。
type Table struct {
	Name   string // symbolic name
	Title  string // 展示用标题
	Header []string
	Rows   [][]string
}

var titleHeader = []string{"Title", "Director", "Country", "Release_Year", "Duration", "Duration_Value"}

// Tables 按固定顺序返回全部表：先是六个落盘表，再是两个仅展示的表。
func Tables(agg domain.Aggregates) []Table {
	return []Table{
		CategoryTable(agg.Categories),
		countTable(domain.OutputTopCountries, "Top 20 Countries by Content Count", "Country", agg.Countries),
		countTable(domain.OutputTopGenres, "Top 30 Genres", "Genre", agg.Genres),
		YearTable(agg.Years),
		titleTable(domain.OutputLongestMovies, "Top 10 Longest Movies", agg.LongestMovies),
		titleTable(domain.OutputShortestMovies, "Top 10 Shortest Movies", agg.ShortestMovies),
		titleTable(TableTVBySeasons, "Top 10 TV Shows by Seasons", agg.TVBySeasons),
		StatsTable(agg.MovieDuration),
	}
}

// TableByName 返回 name 对应的表；不存在时 ok=false。
func TableByName(agg domain.Aggregates, name string) (Table, bool) {
	for _, t := range Tables(agg) {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

func CategoryTable(rows []domain.CountRow) Table {
	return countTable(domain.OutputCategoryDist, "Distribution: Movies vs TV Shows", "Category", rows)
}

func YearTable(rows []domain.YearCount) Table {
	t := Table{
		Name:   domain.OutputYearTrend,
		Title:  "Content by Release Year",
		Header: []string{"Year", "Count"},
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{strconv.Itoa(r.Year), strconv.Itoa(r.Count)})
	}
	return t
}

func StatsTable(s domain.DurationStats) Table {
	t := Table{
		Name:   TableMovieDuration,
		Title:  "Movie Duration Statistics (minutes)",
		Header: []string{"Metric", "Value"},
	}
	for _, m := range s.Metrics() {
		t.Rows = append(t.Rows, []string{m.Name, formatMetric(m.Name, m.Value)})
	}
	return t
}

func countTable(name, title, keyHeader string, rows []domain.CountRow) Table {
	t := Table{
		Name:   name,
		Title:  title,
		Header: []string{keyHeader, "Count"},
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Key, strconv.Itoa(r.Count)})
	}
	return t
}

func titleTable(name, title string, rows []domain.TitleRow) Table {
	t := Table{
		Name:   name,
		Title:  title,
		Header: titleHeader,
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		year := ""
		if r.ReleaseYear != 0 {
			year = strconv.Itoa(r.ReleaseYear)
		}
		t.Rows = append(t.Rows, []string{
			r.Title,
			r.Director,
			r.Country,
			year,
			r.Duration,
			strconv.Itoa(r.DurationValue),
		})
	}
	return t
}

func formatMetric(name string, v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if name == "count" {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
