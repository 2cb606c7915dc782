package domain

// Ratio pairs the denominator observation matched to a numerator observation
// with the computed per-capita value.
type Ratio struct {
	Denominator Observation
	Value       float64
}

// ComputeRatio matches every numerator observation to the closest-dated
// denominator observation and divides. Both series must be sorted ascending
// by date; the denominator cursor only moves forward, so the scan is O(n+m).
// An empty denominator yields no ratios.
func ComputeRatio(numerator, denominator []Observation, scalingFactor float64) []Ratio {
	if len(denominator) == 0 {
		return nil
	}
	out := make([]Ratio, 0, len(numerator))
	j := 0
	for _, num := range numerator {
		j = advanceCursor(denominator, j, num.Date)
		den := denominator[j]
		out = append(out, Ratio{
			Denominator: den,
			Value:       divide(num.Float(), den.Float(), scalingFactor),
		})
	}
	return out
}

// ClosestObservation returns the denominator observation closest to date.
// With no date the most recent observation is returned.
func ClosestObservation(denominator []Observation, date string) (Observation, bool) {
	if len(denominator) == 0 {
		return Observation{}, false
	}
	if date == "" {
		return denominator[len(denominator)-1], true
	}
	return denominator[advanceCursor(denominator, 0, date)], true
}

// advanceCursor moves j forward while the next observation is strictly closer
// to date than the current one. Ties keep the earlier observation.
func advanceCursor(series []Observation, j int, date string) int {
	target, ok := ParseDate(date)
	for j+1 < len(series) {
		if dateDistance(target, ok, series[j+1].Date) >= dateDistance(target, ok, series[j].Date) {
			break
		}
		j++
	}
	return j
}

// divide computes num / den / scale. A zero denominator yields 0.
func divide(num, den, scale float64) float64 {
	if den == 0 {
		return 0
	}
	if scale == 0 {
		scale = 1
	}
	return num / den / scale
}

// PointRatio matches a single numerator observation to the closest
// denominator observation. The second result is false when the numerator has
// no value or the denominator series is empty.
func PointRatio(numerator Observation, denominator []Observation, scalingFactor float64) (Ratio, bool) {
	if numerator.Value == nil {
		return Ratio{}, false
	}
	den, ok := ClosestObservation(denominator, numerator.Date)
	if !ok {
		return Ratio{}, false
	}
	return Ratio{Denominator: den, Value: divide(numerator.Float(), den.Float(), scalingFactor)}, true
}
