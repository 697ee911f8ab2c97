package domain

// 表格产物的 symbolic name（也是默认文件名，不含扩展名）。
const (
	OutputLongestMovies  = "top_10_longest_movies"
	OutputShortestMovies = "top_10_shortest_movies"
	OutputTopCountries   = "top_20_countries"
	OutputTopGenres      = "top_30_genres"
	OutputYearTrend      = "content_by_release_year"
	OutputCategoryDist   = "movies_tv_distribution"
)

// 图表与汇总页的 symbolic name。
const (
	ChartCategoryDist = "chart_movies_tv_distribution"
	ChartTopCountries = "chart_top_20_countries"
	ChartTopGenres    = "chart_top_30_genres"
	ChartYearTrend    = "chart_content_by_release_year"
	OutputIndexHTML   = "index"
)

// ReportFileName 是输出目录下机器可读运行报告的文件名。
const ReportFileName = "report.json"

// TableOutputs 是需要落盘为 CSV 的产物，顺序即写入顺序。
var TableOutputs = []string{
	OutputLongestMovies,
	OutputShortestMovies,
	OutputTopCountries,
	OutputTopGenres,
	OutputYearTrend,
	OutputCategoryDist,
}

// ChartOutputs 是需要渲染为图片的产物，顺序即渲染顺序。
var ChartOutputs = []string{
	ChartCategoryDist,
	ChartTopCountries,
	ChartTopGenres,
	ChartYearTrend,
}

// OutputTarget 是一次写入的计划：写什么（Name/Kind）写到哪（Path，clean + absolute）。
type OutputTarget struct {
	Name string
	Kind string
	Path string
}
