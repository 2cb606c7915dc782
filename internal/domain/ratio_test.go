package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(date string, value float64) Observation {
	return Observation{Date: date, Value: &value}
}

func TestComputeRatio_MatchingDates(t *testing.T) {
	num := []Observation{obs("2019", 10), obs("2020", 20), obs("2021", 30)}
	den := []Observation{obs("2019", 100), obs("2020", 200), obs("2021", 300)}

	ratios := ComputeRatio(num, den, 1)

	require.Len(t, ratios, 3)
	for i, r := range ratios {
		assert.InDelta(t, 0.1, r.Value, 1e-12)
		assert.Equal(t, den[i], r.Denominator)
	}
}

func TestComputeRatio_ScalingFactor(t *testing.T) {
	ratios := ComputeRatio([]Observation{obs("2020", 10)}, []Observation{obs("2020", 100)}, 0.05)
	require.Len(t, ratios, 1)
	assert.InDelta(t, 2.0, ratios[0].Value, 1e-12)
}

func TestComputeRatio_EmptyDenominator(t *testing.T) {
	num := []Observation{obs("2020", 1), obs("2021", 2)}
	assert.Empty(t, ComputeRatio(num, nil, 1))
	assert.Empty(t, ComputeRatio(num, []Observation{}, 1))
}

func TestComputeRatio_ZeroDenominator(t *testing.T) {
	ratios := ComputeRatio([]Observation{obs("2020", 5)}, []Observation{obs("2020", 0)}, 1)
	require.Len(t, ratios, 1)
	assert.Zero(t, ratios[0].Value)
	assert.False(t, math.IsNaN(ratios[0].Value))
	assert.False(t, math.IsInf(ratios[0].Value, 0))
}

func TestComputeRatio_ClosestDate(t *testing.T) {
	den := []Observation{obs("2000", 1), obs("2010", 2), obs("2020", 4)}
	num := []Observation{obs("1990", 1), obs("2004", 1), obs("2016", 1), obs("2030", 1)}

	ratios := ComputeRatio(num, den, 1)

	require.Len(t, ratios, 4)
	got := make([]string, len(ratios))
	for i, r := range ratios {
		got[i] = r.Denominator.Date
	}
	assert.Equal(t, []string{"2000", "2000", "2020", "2020"}, got)
}

func TestComputeRatio_MinimizesDistance(t *testing.T) {
	den := []Observation{obs("2001-01", 1), obs("2003-06", 1), obs("2007-03", 1), obs("2008-11", 1), obs("2015", 1)}
	num := []Observation{obs("2000", 1), obs("2003", 1), obs("2005-06", 1), obs("2008", 1), obs("2012", 1), obs("2019", 1)}

	ratios := ComputeRatio(num, den, 1)
	require.Len(t, ratios, len(num))

	for i, n := range num {
		nt, _ := ParseDate(n.Date)
		best := math.Inf(1)
		for _, d := range den {
			best = math.Min(best, dateDistance(nt, true, d.Date))
		}
		assert.Equal(t, best, dateDistance(nt, true, ratios[i].Denominator.Date), "numerator %s", n.Date)
	}
}

func TestComputeRatio_TiePrefersEarlier(t *testing.T) {
	den := []Observation{obs("2020-01-01", 1), obs("2020-01-03", 2)}
	ratios := ComputeRatio([]Observation{obs("2020-01-02", 1)}, den, 1)
	require.Len(t, ratios, 1)
	assert.Equal(t, "2020-01-01", ratios[0].Denominator.Date)
}

func TestClosestObservation(t *testing.T) {
	den := []Observation{obs("2018", 1), obs("2020", 2), obs("2022", 3)}

	got, ok := ClosestObservation(den, "2021-03")
	require.True(t, ok)
	assert.Equal(t, "2022", got.Date)

	got, ok = ClosestObservation(den, "")
	require.True(t, ok)
	assert.Equal(t, "2022", got.Date, "no target date selects the most recent")

	got, ok = ClosestObservation(den, "2010")
	require.True(t, ok)
	assert.Equal(t, "2018", got.Date)

	_, ok = ClosestObservation(nil, "2020")
	assert.False(t, ok)
}

func TestPointRatio(t *testing.T) {
	r, ok := PointRatio(obs("2023", 3), []Observation{obs("2021", 10), obs("2023", 30)}, 1)
	require.True(t, ok)
	assert.InDelta(t, 0.1, r.Value, 1e-12)
	assert.Equal(t, "2023", r.Denominator.Date)

	_, ok = PointRatio(obs("2023", 3), nil, 1)
	assert.False(t, ok)
}

func TestPointRatio_AbsentNumeratorValue(t *testing.T) {
	_, ok := PointRatio(Observation{Date: "2023"}, []Observation{obs("2023", 30)}, 1)
	assert.False(t, ok, "an absent value is not a zero value")

	r, ok := PointRatio(obs("2023", 0), []Observation{obs("2023", 30)}, 1)
	require.True(t, ok)
	assert.Zero(t, r.Value)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2023", "2023-01-01", true},
		{"2023-05", "2023-05-01", true},
		{"2023-05-17", "2023-05-17", true},
		{"2023-05-17T10:00:00", "2023-05-17", true},
		{"", "", false},
		{"latest", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.Format("2006-01-02"))
			}
		})
	}
}

func TestInDateRange(t *testing.T) {
	tests := []struct {
		date, start, end string
		want             bool
	}{
		{"2020", "2020", "2021", true},
		{"2021", "2020", "2021", true},
		{"2019", "2020", "2021", false},
		{"2022", "2020", "2021", false},
		{"2021-12", "2020", "2021", true},
		{"2020-01", "2020-02", "", false},
		{"2030", "", "", true},
		{"", "2020", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InDateRange(tt.date, tt.start, tt.end), "%s in [%s,%s]", tt.date, tt.start, tt.end)
	}
}
