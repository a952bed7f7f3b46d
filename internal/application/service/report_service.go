package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/turtacn/cyberrisk/internal/application/dto"
	"github.com/turtacn/cyberrisk/internal/domain/models"
	"github.com/turtacn/cyberrisk/pkg/constants"
)

// ReportGateway reads scan reports.
type ReportGateway interface {
	// GetUserReports lists the reports of another user (admins) or of the
	// caller.
	GetUserReports(ctx context.Context, userID string) dto.Result[*models.ReportList]
	GetMyReports(ctx context.Context) dto.Result[*models.ReportList]
	GetComprehensiveReport(ctx context.Context) dto.Result[*models.ComprehensiveReport]
}

type reportGatewayImpl struct {
	api APIClient
}

// NewReportGateway creates a ReportGateway.
func NewReportGateway(api APIClient) ReportGateway {
	return &reportGatewayImpl{api: api}
}

func (g *reportGatewayImpl) GetUserReports(ctx context.Context, userID string) dto.Result[*models.ReportList] {
	var list models.ReportList
	if err := g.api.Get(ctx, fmt.Sprintf(constants.PathReportsByUser, url.PathEscape(userID)), &list); err != nil {
		return dto.Fail[*models.ReportList](err, MsgReportsFailed)
	}
	return dto.Ok(&list)
}

func (g *reportGatewayImpl) GetMyReports(ctx context.Context) dto.Result[*models.ReportList] {
	var list models.ReportList
	if err := g.api.Get(ctx, constants.PathMyReports, &list); err != nil {
		return dto.Fail[*models.ReportList](err, MsgReportsFailed)
	}
	return dto.Ok(&list)
}

func (g *reportGatewayImpl) GetComprehensiveReport(ctx context.Context) dto.Result[*models.ComprehensiveReport] {
	var report models.ComprehensiveReport
	if err := g.api.Get(ctx, constants.PathComprehensiveReport, &report); err != nil {
		return dto.Fail[*models.ComprehensiveReport](err, MsgComprehensiveFailed)
	}
	return dto.Ok(&report)
}
