package load

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/VCStat/internal/domain"
)

const sampleCSV = "\ufeffShow_Id, Category ,Title,Director,Cast,Country,Release_Date,Rating,Duration,Type,Description\n" +
	"s1,TV Show ,3%,,João Miguel,Brazil,\"August 14, 2020\",TV-MA,4 Seasons,\" International TV Shows, TV Dramas \",desc\n" +
	"s2,Movie,7:19,Jorge Michel Grau,Demián Bichir,Mexico,\"December 23, 2016\",TV-MA,93 min,\"Dramas, International Movies\",desc\n" +
	"s3,Movie,23:59,Gilbert Chan,Tedd Chan,\"Singapore, United States\",coming soon,R,78 min,Horror Movies,desc\n"

func TestReadFile_NormalizesAndParsesDates(t *testing.T) {
	path := writeFile(t, "netflix.csv", sampleCSV)

	recs, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, 1, recs[0].Row)
	assert.Equal(t, "s1", recs[0].ShowID)
	assert.Equal(t, "TV Show", recs[0].Category)
	assert.Equal(t, "International TV Shows, TV Dramas", recs[0].Type)
	assert.Equal(t, 2020, recs[0].ReleaseYear)
	assert.Equal(t, "4 Seasons", recs[0].Duration)

	assert.Equal(t, "Jorge Michel Grau", recs[1].Director)
	assert.Equal(t, 2016, recs[1].ReleaseYear)
	assert.Equal(t, 12, int(recs[1].ReleaseDate.Month()))

	// 无法解析的日期降级为缺失，不影响整表加载。
	assert.False(t, recs[2].HasReleaseYear())
	assert.True(t, recs[2].ReleaseDate.IsZero())
	assert.Equal(t, "Singapore, United States", recs[2].Country)
}

func TestReadFile_SemicolonDelimiter(t *testing.T) {
	body := "Category;Type;Country;Release_Date;Duration;Title;Director\n" +
		"Movie;Dramas;India;2019-05-01;120 min;Some Title;Someone\n"
	path := writeFile(t, "semi.csv", body)

	recs, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "India", recs[0].Country)
	assert.Equal(t, 2019, recs[0].ReleaseYear)
}

func TestReadFile_ShortRowsTolerated(t *testing.T) {
	body := "Category,Type,Country,Release_Date,Duration,Title,Director\n" +
		"Movie,Dramas\n"
	recs, err := Read("short.csv", strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "", recs[0].Duration)
	assert.Equal(t, "", recs[0].Title)
}

func TestReadFile_Unreadable(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInputUnreadable, Code(err))
}

func TestRead_EmptyIsNoHeader(t *testing.T) {
	_, err := Read("empty.csv", strings.NewReader(""))
	assert.Equal(t, domain.ErrCodeInputNoHeader, Code(err))
}

func TestRead_UnrecognizedHeader(t *testing.T) {
	_, err := Read("x.csv", strings.NewReader("a,b,c\n1,2,3\n"))
	assert.Equal(t, domain.ErrCodeInputNoHeader, Code(err))
}

func TestRead_MissingColumns(t *testing.T) {
	_, err := Read("x.csv", strings.NewReader("Category,Title,Country\nMovie,T,India\n"))
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInputMissingColumns, Code(err))

	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, []string{ColType, ColReleaseDate, ColDuration, ColDirector}, le.Missing)
}

func TestParseDate(t *testing.T) {
	_, ok := ParseDate("nan")
	assert.False(t, ok)
	_, ok = ParseDate("  ")
	assert.False(t, ok)

	d, ok := ParseDate(" January 1, 2020")
	require.True(t, ok)
	assert.Equal(t, 2020, d.Year())
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
