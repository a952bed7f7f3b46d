package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/turtacn/cyberrisk/internal/application/dto"
	"github.com/turtacn/cyberrisk/internal/domain/models"
	domainService "github.com/turtacn/cyberrisk/internal/domain/service"
	"github.com/turtacn/cyberrisk/pkg/constants"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// ScanGateway submits scans and fetches their results.
type ScanGateway interface {
	// PerformScan requests a comprehensive scan. targetIP may be empty.
	PerformScan(ctx context.Context, organizationName, targetDomain, targetIP string) dto.Result[*models.ScanRecord]

	// GetScanResult fetches one scan by id.
	GetScanResult(ctx context.Context, id string) dto.Result[*models.ScanRecord]

	// GetScanHistory fetches every scan visible to the current session.
	GetScanHistory(ctx context.Context) dto.Result[[]models.ScanRecord]

	// GetLatestScan returns the history entry with the newest scan date.
	GetLatestScan(ctx context.Context) dto.Result[*models.ScanRecord]
}

type scanGatewayImpl struct {
	api    APIClient
	logger logger.Logger
}

// NewScanGateway creates a ScanGateway.
func NewScanGateway(api APIClient, log logger.Logger) ScanGateway {
	return &scanGatewayImpl{api: api, logger: log.WithComponent("scan")}
}

func (g *scanGatewayImpl) PerformScan(ctx context.Context, organizationName, targetDomain, targetIP string) dto.Result[*models.ScanRecord] {
	req := dto.NewScanRequest(organizationName, targetDomain, targetIP)

	var record models.ScanRecord
	if err := g.api.Post(ctx, constants.PathScanPerform, req, &record); err != nil {
		g.logger.Warn(ctx, "scan request failed", logger.String("target_domain", targetDomain), logger.Err(err))
		return dto.Fail[*models.ScanRecord](err, MsgScanFailed)
	}
	g.logger.Info(ctx, "scan completed",
		logger.String("scan_id", record.ID.String()),
		logger.Int("risk_score", record.RiskScore),
		logger.String("risk_level", string(record.RiskLevel)),
	)
	return dto.Ok(&record)
}

func (g *scanGatewayImpl) GetScanResult(ctx context.Context, id string) dto.Result[*models.ScanRecord] {
	var record models.ScanRecord
	if err := g.api.Get(ctx, fmt.Sprintf(constants.PathScanByID, url.PathEscape(id)), &record); err != nil {
		return dto.Fail[*models.ScanRecord](err, MsgScanResultFailed)
	}
	return dto.Ok(&record)
}

func (g *scanGatewayImpl) GetScanHistory(ctx context.Context) dto.Result[[]models.ScanRecord] {
	var records []models.ScanRecord
	if err := g.api.Get(ctx, constants.PathScanHistory, &records); err != nil {
		return dto.Fail[[]models.ScanRecord](err, MsgScanHistoryFailed)
	}
	if records == nil {
		records = []models.ScanRecord{}
	}
	return dto.Ok(records)
}

func (g *scanGatewayImpl) GetLatestScan(ctx context.Context) dto.Result[*models.ScanRecord] {
	history := g.GetScanHistory(ctx)
	if !history.Success {
		return dto.Result[*models.ScanRecord]{Error: MsgNoScansFound, Err: history.Err}
	}
	latest, ok := domainService.LatestScan(history.Data)
	if !ok {
		return dto.FailMessage[*models.ScanRecord](MsgNoScansFound)
	}
	return dto.Ok(&latest)
}
