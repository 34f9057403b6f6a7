package core

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/internal/iocache"
	"github.com/huangsam/gitinsight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// managerWithQueryStore returns a cache manager serving only store.
func managerWithQueryStore(store contract.CacheStore) *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetQueryStore").Return(store)
	mgr.On("GetHistoryStore").Return(nil).Maybe()
	return mgr
}

func TestGenerateCacheKey(t *testing.T) {
	a := generateCacheKey(schema.IssueStatisticsGroup, "octo/widgets")
	b := generateCacheKey(schema.IssueStatisticsGroup, "octo/widgets")
	c := generateCacheKey(schema.IssueStatisticsGroup, "octo/gadgets")
	d := generateCacheKey(schema.PRStatisticsGroup, "octo/widgets")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Len(t, a, 64)
}

func TestCachedResultHit(t *testing.T) {
	cached := schema.SeriesResult{Year: []schema.SeriesRecord{{Period: "2020", Value: 42}}}
	data, err := json.Marshal(cached)
	require.NoError(t, err)

	store := &iocache.MockCacheStore{}
	key := generateCacheKey(schema.ContributorStatisticsGroup, testRepo)
	store.On("Get", key).Return(data, currentCacheVersion, time.Now().Unix(), nil)

	// No Fetch expectation: a hit must not reach the source.
	source := &contract.MockSeriesSource{}
	in := NewInsight(source, nil, managerWithQueryStore(store), 1, time.Hour)

	result := in.ContributorStatistics(context.Background(), testRepo)
	assert.Equal(t, cached.Year, result.Year)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	source.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedResultStaleEntryRecomputes(t *testing.T) {
	store := &iocache.MockCacheStore{}
	key := generateCacheKey(schema.ContributorStatisticsGroup, testRepo)
	stale := time.Now().Add(-2 * time.Hour).Unix()
	store.On("Get", key).Return([]byte(`{"year":[]}`), currentCacheVersion, stale, nil)
	store.On("Set", key, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)

	source := &contract.MockSeriesSource{}
	stubFetch(source, "contributors", `{"2023": 5}`)

	in := NewInsight(source, nil, managerWithQueryStore(store), 1, time.Hour)
	result := in.ContributorStatistics(context.Background(), testRepo)

	assert.Equal(t, []schema.SeriesRecord{{Period: "2023", Value: 5}}, result.Year)
	store.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestCachedResultVersionMismatchRecomputes(t *testing.T) {
	store := &iocache.MockCacheStore{}
	key := generateCacheKey(schema.ContributorStatisticsGroup, testRepo)
	store.On("Get", key).Return([]byte(`{}`), currentCacheVersion+1, time.Now().Unix(), nil)
	store.On("Set", key, mock.Anything, currentCacheVersion, mock.Anything).Return(nil)

	source := &contract.MockSeriesSource{}
	stubFetch(source, "contributors", `{"2023-01": 2}`)

	in := NewInsight(source, nil, managerWithQueryStore(store), 1, time.Hour)
	result := in.ContributorStatistics(context.Background(), testRepo)

	assert.Len(t, result.Month, 1)
	source.AssertExpectations(t)
}

func TestCachedResultFailureNotStored(t *testing.T) {
	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), sql.ErrNoRows)

	source := &contract.MockSeriesSource{}
	source.On("Fetch", mock.Anything, testRepo, "contributors").Return(nil, errors.New("timeout"))

	in := NewInsight(source, nil, managerWithQueryStore(store), 1, time.Hour)
	result := in.ContributorStatistics(context.Background(), testRepo)

	assert.Equal(t, schema.EmptySeriesResult(), result)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedResultStoreErrorIsIgnored(t *testing.T) {
	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), sql.ErrNoRows)
	store.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	source := &contract.MockSeriesSource{}
	stubFetch(source, "contributors", `{"2023": 1}`)

	in := NewInsight(source, nil, managerWithQueryStore(store), 1, time.Hour)
	result := in.ContributorStatistics(context.Background(), testRepo)

	assert.Len(t, result.Year, 1)
}

func TestCachedResultWithoutStore(t *testing.T) {
	source := &contract.MockSeriesSource{}
	stubFetch(source, "contributors", `{"2023": 1}`).Twice()

	in := NewInsight(source, nil, managerWithQueryStore(nil), 1, time.Hour)
	in.ContributorStatistics(context.Background(), testRepo)
	in.ContributorStatistics(context.Background(), testRepo)

	source.AssertExpectations(t)
}
