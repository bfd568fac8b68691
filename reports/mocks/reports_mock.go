package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/reports"
)

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) ExportAudit(ctx context.Context, run models.AuditRun) (reports.Export, error) {
	args := m.Called(ctx, run)
	return args.Get(0).(reports.Export), args.Error(1)
}
