package duration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/John-Robertt/VCStat/internal/domain"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in       string
		wantVal  int
		wantUnit domain.DurationUnit
	}{
		{"94 min", 94, domain.UnitMinute},
		{"94min", 94, domain.UnitMinute},
		{"  312   MIN ", 312, domain.UnitMinute},
		{"90 Minutes", 90, domain.UnitMinute},
		{"3 Seasons", 3, domain.UnitSeason},
		{"1 Season", 1, domain.UnitSeason},
		{"2 SEASONS", 2, domain.UnitSeason},
		{"45", 45, domain.UnitUnknown},
		{"approx 7 episodes", 7, domain.UnitUnknown},
		{"", 0, domain.UnitNone},
		{"   ", 0, domain.UnitNone},
		{"nan", 0, domain.UnitNone},
		{"NaN", 0, domain.UnitNone},
		{"N/A", 0, domain.UnitNone},
		{"unknown", 0, domain.UnitNone},
		{"90\u00a0min", 90, domain.UnitMinute},
		{"90\u2009min", 90, domain.UnitMinute},
		{"90\vmin", 90, domain.UnitMinute},
		{"90\u3000\u00a0MIN", 90, domain.UnitMinute},
		{"3\u00a0Seasons", 3, domain.UnitSeason},
		{"2\u202fSeason", 2, domain.UnitSeason},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			v, u := Parse(tc.in)
			assert.Equal(t, tc.wantUnit, u)
			assert.Equal(t, tc.wantVal, v)
		})
	}
}

func TestParse_MinuteBeatsSeason(t *testing.T) {
	// 同时出现时，min 的优先级高于 season，即便 season 在前。
	v, u := Parse("2 Seasons, 45 min each")
	assert.Equal(t, domain.UnitMinute, u)
	assert.Equal(t, 45, v)
}

func TestParse_FirstMatchOnly(t *testing.T) {
	v, u := Parse("90 min / 120 min")
	assert.Equal(t, domain.UnitMinute, u)
	assert.Equal(t, 90, v)

	v, u = Parse("12 to 15")
	assert.Equal(t, domain.UnitUnknown, u)
	assert.Equal(t, 12, v)
}

func TestParse_OverflowFallsThrough(t *testing.T) {
	v, u := Parse("99999999999999999999999 min")
	assert.Equal(t, domain.UnitNone, u)
	assert.Equal(t, 0, v)
}

func TestApply(t *testing.T) {
	recs := []domain.Record{
		{Duration: "94 min"},
		{Duration: "3 Seasons"},
		{Duration: ""},
	}
	Apply(recs)

	assert.Equal(t, domain.UnitMinute, recs[0].DurationUnit)
	assert.Equal(t, 94, recs[0].DurationValue)
	assert.Equal(t, domain.UnitSeason, recs[1].DurationUnit)
	assert.Equal(t, 3, recs[1].DurationValue)
	assert.False(t, recs[2].HasDuration())
}
