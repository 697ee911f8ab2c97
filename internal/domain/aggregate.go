package domain

// CountRow 是频次表中的一行（category/country/genre 共用）。
type CountRow struct {
	Key   string
	Count int
}

// YearCount 是发行年份趋势中的一行。
type YearCount struct {
	Year  int
	Count int
}

// TitleRow 是时长极值榜单中的一行（只投影出展示需要的列）。
type TitleRow struct {
	Title         string
	Director      string
	Country       string
	ReleaseYear   int // 0 表示缺失
	Duration      string
	DurationValue int
}

// DurationStats 是电影时长（分钟）的描述统计。
//
// Count==0 时其余字段均为 NaN；Count==1 时 Std 为 NaN（样本标准差无定义）。
type DurationStats struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// Metrics 按固定顺序返回 (指标名, 值)，供表格与 CSV 输出使用。
func (s DurationStats) Metrics() []Metric {
	return []Metric{
		{Name: "count", Value: float64(s.Count)},
		{Name: "mean", Value: s.Mean},
		{Name: "std", Value: s.Std},
		{Name: "min", Value: s.Min},
		{Name: "25%", Value: s.Q25},
		{Name: "50%", Value: s.Q50},
		{Name: "75%", Value: s.Q75},
		{Name: "max", Value: s.Max},
	}
}

type Metric struct {
	Name  string
	Value float64
}

// Aggregates 汇总一次运行得到的全部派生表。创建后不再修改。
type Aggregates struct {
	Categories []CountRow
	Countries  []CountRow
	Genres     []CountRow
	Years      []YearCount

	LongestMovies  []TitleRow
	ShortestMovies []TitleRow
	MovieDuration  DurationStats

	// TVBySeasons 只有 top 榜，没有 bottom 榜与统计：与原始报表保持一致。
	TVBySeasons []TitleRow
}
