package mocks

import (
	"context"
	"io"

	"github.com/guimauveb/guimauve.io/internal/models"
	"github.com/guimauveb/guimauve.io/internal/service"
)

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	ExportFunc func(ctx context.Context, w io.Writer, format string) (int, error)
	Formats    []string
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{Formats: make([]string, 0)}
}

func (m *MockExportService) ExportArticles(ctx context.Context, w io.Writer, format string) (int, error) {
	m.Formats = append(m.Formats, format)
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, w, format)
	}
	return 0, nil
}

// MockStatsService is a mock implementation of StatsService
type MockStatsService struct {
	Counts models.Stats
	Err    error
}

// Verify interface compliance
var _ service.StatsService = (*MockStatsService)(nil)

func (m *MockStatsService) Stats(ctx context.Context) (*models.Stats, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	counts := m.Counts
	return &counts, nil
}
