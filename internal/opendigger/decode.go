package opendigger

import (
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/huangsam/gitinsight/schema"
)

// ErrNotObject is returned when a metric document is not a JSON object.
var ErrNotObject = errors.New("metric document is not a JSON object")

// requireObject checks that data is a JSON object at the top level.
func requireObject(data []byte) error {
	_, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return fmt.Errorf("malformed metric document: %w", err)
	}
	if dataType != jsonparser.Object {
		return ErrNotObject
	}
	return nil
}

// DecodeSeries decodes a date-keyed document such as issues_new.json.
// Entries whose value is not a number are skipped.
func DecodeSeries(data []byte) (schema.RawSeries, error) {
	if err := requireObject(data); err != nil {
		return nil, err
	}
	series := schema.RawSeries{}
	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.Number {
			return nil
		}
		v, err := jsonparser.ParseFloat(value)
		if err != nil {
			return fmt.Errorf("invalid value for %q: %w", key, err)
		}
		series = append(series, schema.SeriesPoint{Key: string(key), Value: v})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("malformed metric document: %w", err)
	}
	return series, nil
}

// DecodeQuantiles decodes issue_resolution_duration.json style documents.
// A missing quantile_N member leaves slot N empty.
func DecodeQuantiles(data []byte) (schema.QuantileSet, error) {
	var set schema.QuantileSet
	if err := requireObject(data); err != nil {
		return set, err
	}
	for i := range set {
		name := fmt.Sprintf("quantile_%d", i)
		member, dataType, _, err := jsonparser.Get(data, name)
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			set[i] = schema.RawSeries{}
			continue
		}
		if err != nil {
			return set, fmt.Errorf("malformed %s: %w", name, err)
		}
		if dataType != jsonparser.Object {
			return set, fmt.Errorf("malformed %s: %w", name, ErrNotObject)
		}
		series, err := DecodeSeries(member)
		if err != nil {
			return set, fmt.Errorf("malformed %s: %w", name, err)
		}
		set[i] = series
	}
	return set, nil
}

// DecodeHeatmap decodes active_dates_and_times.json style documents.
func DecodeHeatmap(data []byte) (schema.HeatmapSeries, error) {
	if err := requireObject(data); err != nil {
		return nil, err
	}
	series := schema.HeatmapSeries{}
	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.Array {
			return nil
		}
		values := []float64{}
		var itemErr error
		_, err := jsonparser.ArrayEach(value, func(item []byte, itemType jsonparser.ValueType, _ int, _ error) {
			if itemErr != nil {
				return
			}
			if itemType != jsonparser.Number {
				itemErr = fmt.Errorf("non-numeric slot in %q", key)
				return
			}
			v, err := jsonparser.ParseFloat(item)
			if err != nil {
				itemErr = fmt.Errorf("invalid slot in %q: %w", key, err)
				return
			}
			values = append(values, v)
		})
		if err != nil {
			return err
		}
		if itemErr != nil {
			return itemErr
		}
		series = append(series, schema.HeatmapSnapshot{Key: string(key), Values: values})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("malformed heatmap document: %w", err)
	}
	return series, nil
}

// DecodeActivity decodes activity_details.json style documents, where each period
// holds a list of [user, value] pairs.
func DecodeActivity(data []byte) (schema.ActivitySeries, error) {
	if err := requireObject(data); err != nil {
		return nil, err
	}
	series := schema.ActivitySeries{}
	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.Array {
			return nil
		}
		entries := []schema.ActivityDetail{}
		var pairErr error
		_, err := jsonparser.ArrayEach(value, func(pair []byte, pairType jsonparser.ValueType, _ int, _ error) {
			if pairErr != nil {
				return
			}
			if pairType != jsonparser.Array {
				pairErr = fmt.Errorf("non-pair entry in %q", key)
				return
			}
			user, err := jsonparser.GetString(pair, "[0]")
			if err != nil {
				pairErr = fmt.Errorf("invalid user in %q: %w", key, err)
				return
			}
			v, err := jsonparser.GetFloat(pair, "[1]")
			if err != nil {
				pairErr = fmt.Errorf("invalid value for %s in %q: %w", user, key, err)
				return
			}
			entries = append(entries, schema.ActivityDetail{User: user, Value: v})
		})
		if err != nil {
			return err
		}
		if pairErr != nil {
			return pairErr
		}
		series = append(series, schema.ActivitySnapshot{Key: string(key), Entries: entries})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("malformed activity document: %w", err)
	}
	return series, nil
}
