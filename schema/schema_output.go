package schema

// ChannelRecord is one (bucket, channel) pair of an aggregated result.
type ChannelRecord struct {
	Period  string  `json:"period"`
	Channel string  `json:"channel"`
	Value   float64 `json:"value"`
}

// AggregatedResult holds multi-channel sums at every calendar granularity.
type AggregatedResult struct {
	Year    []ChannelRecord `json:"year"`
	Quarter []ChannelRecord `json:"quarter"`
	Month   []ChannelRecord `json:"month"`
}

// QuantileRecord holds the five quantile values of one period.
type QuantileRecord struct {
	Period string                 `json:"period"`
	Values [QuantileCount]float64 `json:"values"`
}

// QuantileResult holds reconstructed quantile arrays at every calendar granularity.
type QuantileResult struct {
	Year    []QuantileRecord `json:"year"`
	Quarter []QuantileRecord `json:"quarter"`
	Month   []QuantileRecord `json:"month"`
}

// HeatmapSample is one hour of one weekday.
type HeatmapSample struct {
	Day   string  `json:"day"`
	Hour  int     `json:"hour"`
	Value float64 `json:"value"`
}

// HeatmapResult holds the latest snapshot of each granularity reshaped into samples.
type HeatmapResult struct {
	YearPeriod    string          `json:"year_period"`
	Year          []HeatmapSample `json:"year"`
	QuarterPeriod string          `json:"quarter_period"`
	Quarter       []HeatmapSample `json:"quarter"`
	MonthPeriod   string          `json:"month_period"`
	Month         []HeatmapSample `json:"month"`
}

// SeriesRecord is a single-valued period.
type SeriesRecord struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// SeriesResult holds a single-valued series at every calendar granularity.
type SeriesResult struct {
	Year    []SeriesRecord `json:"year"`
	Quarter []SeriesRecord `json:"quarter"`
	Month   []SeriesRecord `json:"month"`
}

// ActivityDetail is one user's activity value.
type ActivityDetail struct {
	User  string  `json:"user"`
	Value float64 `json:"value"`
}

// ActivityResult is the activity breakdown of the latest month.
type ActivityResult struct {
	Period  string           `json:"period"`
	Details []ActivityDetail `json:"details"`
}

// Overview summarizes a GitHub repository.
type Overview struct {
	Stars   int `json:"stars"`
	Forks   int `json:"forks"`
	Commits int `json:"commits"`
}

// APIResponse is the envelope returned by the HTTP API.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// EmptyAggregatedResult returns a result with three empty sequences.
func EmptyAggregatedResult() AggregatedResult {
	return AggregatedResult{Year: []ChannelRecord{}, Quarter: []ChannelRecord{}, Month: []ChannelRecord{}}
}

// EmptyQuantileResult returns a result with three empty sequences.
func EmptyQuantileResult() QuantileResult {
	return QuantileResult{Year: []QuantileRecord{}, Quarter: []QuantileRecord{}, Month: []QuantileRecord{}}
}

// EmptyHeatmapResult returns a result with three empty sequences.
func EmptyHeatmapResult() HeatmapResult {
	return HeatmapResult{Year: []HeatmapSample{}, Quarter: []HeatmapSample{}, Month: []HeatmapSample{}}
}

// EmptySeriesResult returns a result with three empty sequences.
func EmptySeriesResult() SeriesResult {
	return SeriesResult{Year: []SeriesRecord{}, Quarter: []SeriesRecord{}, Month: []SeriesRecord{}}
}

// EmptyActivityResult returns a result without any details.
func EmptyActivityResult() ActivityResult {
	return ActivityResult{Details: []ActivityDetail{}}
}

// IsEmpty reports whether no granularity carries a record.
func (r AggregatedResult) IsEmpty() bool {
	return len(r.Year) == 0 && len(r.Quarter) == 0 && len(r.Month) == 0
}

// Only keeps the sequence of a single granularity. AllGranularity keeps everything.
func (r AggregatedResult) Only(g Granularity) AggregatedResult {
	out := EmptyAggregatedResult()
	if keeps(g, YearGranularity) {
		out.Year = r.Year
	}
	if keeps(g, QuarterGranularity) {
		out.Quarter = r.Quarter
	}
	if keeps(g, MonthGranularity) {
		out.Month = r.Month
	}
	return out
}

// Only keeps the sequence of a single granularity. AllGranularity keeps everything.
func (r QuantileResult) Only(g Granularity) QuantileResult {
	out := EmptyQuantileResult()
	if keeps(g, YearGranularity) {
		out.Year = r.Year
	}
	if keeps(g, QuarterGranularity) {
		out.Quarter = r.Quarter
	}
	if keeps(g, MonthGranularity) {
		out.Month = r.Month
	}
	return out
}

// Only keeps the samples of a single granularity. AllGranularity keeps everything.
func (r HeatmapResult) Only(g Granularity) HeatmapResult {
	out := EmptyHeatmapResult()
	if keeps(g, YearGranularity) {
		out.YearPeriod, out.Year = r.YearPeriod, r.Year
	}
	if keeps(g, QuarterGranularity) {
		out.QuarterPeriod, out.Quarter = r.QuarterPeriod, r.Quarter
	}
	if keeps(g, MonthGranularity) {
		out.MonthPeriod, out.Month = r.MonthPeriod, r.Month
	}
	return out
}

// Only keeps the sequence of a single granularity. AllGranularity keeps everything.
func (r SeriesResult) Only(g Granularity) SeriesResult {
	out := EmptySeriesResult()
	if keeps(g, YearGranularity) {
		out.Year = r.Year
	}
	if keeps(g, QuarterGranularity) {
		out.Quarter = r.Quarter
	}
	if keeps(g, MonthGranularity) {
		out.Month = r.Month
	}
	return out
}

// keeps reports whether filter admits granularity g.
func keeps(filter, g Granularity) bool {
	return filter == "" || filter == AllGranularity || filter == g
}

// InsightBundle gathers every metric group of one repository.
type InsightBundle struct {
	Repo          string           `json:"repo"`
	Issues        AggregatedResult `json:"issues"`
	Resolution    QuantileResult   `json:"resolution"`
	PRs           AggregatedResult `json:"prs"`
	CodeFrequency AggregatedResult `json:"code_frequency"`
	Contributors  SeriesResult     `json:"contributors"`
	Activity      ActivityResult   `json:"activity"`
	Heatmap       HeatmapResult    `json:"heatmap"`
	Overview      *Overview        `json:"overview"`
}
