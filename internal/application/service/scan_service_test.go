package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cyberrisk/internal/application/dto"
	"github.com/turtacn/cyberrisk/internal/domain/models"
	"github.com/turtacn/cyberrisk/pkg/constants"
	"github.com/turtacn/cyberrisk/pkg/errors"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

const historyBody = `[
	{"id":1,"organizationName":"Acme","targetDomain":"acme.com","riskScore":30,"riskLevel":"LOW","scanDate":"2024-01-01T09:00:00"},
	{"id":2,"organizationName":"Acme","targetDomain":"acme.com","riskScore":85,"riskLevel":"CRITICAL","scanDate":"2024-03-01T09:00:00"},
	{"id":3,"organizationName":"Acme","targetDomain":"acme.com","riskScore":55,"riskLevel":"MEDIUM","scanDate":"2024-02-01T09:00:00"}
]`

func TestScanGateway_PerformScan(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPIClient)
	gw := NewScanGateway(api, logger.NewNoopLogger())

	want := dto.NewScanRequest("Acme", "acme.com", "")
	api.On("Post", ctx, constants.PathScanPerform, want, mock.Anything).
		Run(respondWith(3, `{"id":"9","organizationName":"Acme","targetDomain":"acme.com","riskScore":72,"riskLevel":"HIGH","scanDate":"2024-05-01T12:00:00","status":"COMPLETED"}`)).
		Return(nil).Once()

	res := gw.PerformScan(ctx, "Acme", "acme.com", "")
	require.True(t, res.Success, res.Error)
	assert.Equal(t, models.ID("9"), res.Data.ID)
	assert.Equal(t, models.RiskLevelHigh, res.Data.RiskLevel)
	assert.Equal(t, models.ScanStatusCompleted, res.Data.Status)
	api.AssertExpectations(t)
}

func TestScanGateway_Fallbacks(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPIClient)
	gw := NewScanGateway(api, logger.NewNoopLogger())

	api.On("Post", ctx, constants.PathScanPerform, mock.Anything, mock.Anything).Return(errors.ErrNetwork(assert.AnError))
	api.On("Get", ctx, "/scan/42", mock.Anything).Return(errors.ErrHTTP(404, ""))
	api.On("Get", ctx, constants.PathScanHistory, mock.Anything).Return(errors.ErrHTTP(500, "Database offline"))

	assert.Equal(t, MsgScanFailed, gw.PerformScan(ctx, "Acme", "acme.com", "").Error)
	assert.Equal(t, MsgScanResultFailed, gw.GetScanResult(ctx, "42").Error)
	assert.Equal(t, "Database offline", gw.GetScanHistory(ctx).Error)

	latest := gw.GetLatestScan(ctx)
	assert.False(t, latest.Success)
	assert.Equal(t, MsgNoScansFound, latest.Error)
	assert.Error(t, latest.Err)
}

func TestScanGateway_GetLatestScan(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPIClient)
	gw := NewScanGateway(api, logger.NewNoopLogger())

	api.On("Get", ctx, constants.PathScanHistory, mock.Anything).Run(respondWith(2, historyBody)).Return(nil).Once()

	res := gw.GetLatestScan(ctx)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, models.ID("2"), res.Data.ID)
	assert.Equal(t, "2024-03-01", res.Data.ScanDate.Format("2006-01-02"))
}

func TestScanGateway_GetLatestScanEmpty(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPIClient)
	gw := NewScanGateway(api, logger.NewNoopLogger())

	api.On("Get", ctx, constants.PathScanHistory, mock.Anything).Run(respondWith(2, `[]`)).Return(nil).Once()

	history := gw.GetScanHistory(ctx)
	require.True(t, history.Success)
	assert.NotNil(t, history.Data)
	assert.Empty(t, history.Data)

	api.On("Get", ctx, constants.PathScanHistory, mock.Anything).Run(respondWith(2, `null`)).Return(nil).Once()
	res := gw.GetLatestScan(ctx)
	assert.False(t, res.Success)
	assert.Equal(t, MsgNoScansFound, res.Error)
	assert.NoError(t, res.Err)
}

func TestScanGateway_EscapesID(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPIClient)
	gw := NewScanGateway(api, logger.NewNoopLogger())

	api.On("Get", ctx, "/scan/a%2Fb", mock.Anything).Run(respondWith(2, `{"id":"a/b"}`)).Return(nil).Once()
	res := gw.GetScanResult(ctx, "a/b")
	require.True(t, res.Success)
	api.AssertExpectations(t)
}
