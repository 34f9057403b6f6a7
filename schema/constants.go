package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// Granularity represents the calendar resolution of a period key.
	Granularity string

	// MetricGroup names one family of repository metrics served together.
	MetricGroup string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All granularities a period key can classify into.
const (
	YearGranularity    Granularity = "year"
	QuarterGranularity Granularity = "quarter"
	MonthGranularity   Granularity = "month"
	OtherGranularity   Granularity = "other"

	// AllGranularity is only used as an output filter.
	AllGranularity Granularity = "all"

	// SnapshotGranularity labels rows that describe a single point in time.
	SnapshotGranularity Granularity = "snapshot"
)

// All metric groups supported.
const (
	IssueStatisticsGroup       MetricGroup = "issue.statistics"
	IssueResolutionGroup       MetricGroup = "issue.resolution_duration"
	PRStatisticsGroup          MetricGroup = "pr.statistics"
	CodeFrequencyGroup         MetricGroup = "pr.code_frequency"
	ContributorStatisticsGroup MetricGroup = "contributor.statistics"
	ActivityStatisticsGroup    MetricGroup = "activity.statistics"
	ActiveDatesAndTimesGroup   MetricGroup = "activity.dates_and_times"
	OverviewGroup              MetricGroup = "overview"
)

// QueryKey returns the name used to key cached query results.
func (g MetricGroup) QueryKey() string {
	return "insight." + string(g)
}

// AllMetricGroups lists every metric group in presentation order.
var AllMetricGroups = []MetricGroup{
	IssueStatisticsGroup,
	IssueResolutionGroup,
	PRStatisticsGroup,
	CodeFrequencyGroup,
	ContributorStatisticsGroup,
	ActivityStatisticsGroup,
	ActiveDatesAndTimesGroup,
	OverviewGroup,
}

// CalendarGranularities lists the granularities produced by the aggregation engine, coarsest first.
var CalendarGranularities = []Granularity{YearGranularity, QuarterGranularity, MonthGranularity}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidGranularityFilters lists all valid values for the granularity filter.
var ValidGranularityFilters = map[Granularity]struct{}{
	AllGranularity:     {},
	YearGranularity:    {},
	QuarterGranularity: {},
	MonthGranularity:   {},
}

// Weekdays are the heatmap day labels in slot order.
var Weekdays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Fixed shapes of the upstream documents.
const (
	QuantileCount  = 5
	HoursPerDay    = 24
	HeatmapSlots   = 7 * HoursPerDay
	MaxActivityTop = 1000
)
