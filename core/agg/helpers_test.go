package agg

import (
	"fmt"

	"github.com/huangsam/gitinsight/schema"
)

// seriesOf builds a RawSeries from alternating key and value arguments.
func seriesOf(kv ...any) schema.RawSeries {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("seriesOf needs key/value pairs, got %d arguments", len(kv)))
	}
	series := make(schema.RawSeries, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		var value float64
		switch v := kv[i+1].(type) {
		case int:
			value = float64(v)
		case float64:
			value = v
		default:
			panic(fmt.Sprintf("unsupported value type %T", v))
		}
		series = append(series, schema.SeriesPoint{Key: kv[i].(string), Value: value})
	}
	return series
}

// monthlySeries generates one point per month between two years, inclusive.
func monthlySeries(fromYear, toYear int, value func(year, month int) float64) schema.RawSeries {
	var series schema.RawSeries
	for y := fromYear; y <= toYear; y++ {
		for m := 1; m <= 12; m++ {
			series = append(series, schema.SeriesPoint{Key: fmt.Sprintf("%04d-%02d", y, m), Value: value(y, m)})
		}
	}
	return series
}
