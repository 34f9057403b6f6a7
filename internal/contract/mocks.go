package contract

import (
	"context"

	"github.com/huangsam/gitinsight/schema"
	"github.com/stretchr/testify/mock"
)

// --- MockSeriesSource Implementation ---

// MockSeriesSource is a mock type for the SeriesSource type.
type MockSeriesSource struct {
	mock.Mock
}

var _ SeriesSource = &MockSeriesSource{} // Compile-time check

// Fetch implements the contract.SeriesSource interface.
func (m *MockSeriesSource) Fetch(ctx context.Context, repo string, metric string) ([]byte, error) {
	ret := m.Called(ctx, repo, metric)
	data, _ := ret.Get(0).([]byte)
	return data, ret.Error(1)
}

// --- MockOverviewClient Implementation ---

// MockOverviewClient is a mock type for the OverviewClient type.
type MockOverviewClient struct {
	mock.Mock
}

var _ OverviewClient = &MockOverviewClient{} // Compile-time check

// Overview implements the contract.OverviewClient interface.
func (m *MockOverviewClient) Overview(ctx context.Context, repo string) (*schema.Overview, error) {
	ret := m.Called(ctx, repo)
	overview, _ := ret.Get(0).(*schema.Overview)
	return overview, ret.Error(1)
}
