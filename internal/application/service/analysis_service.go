package service

import (
	"context"

	"github.com/turtacn/cyberrisk/internal/application/dto"
	"github.com/turtacn/cyberrisk/internal/domain/models"
	"github.com/turtacn/cyberrisk/pkg/constants"
)

// AnalysisGateway reads the server-computed analysis views.
type AnalysisGateway interface {
	GetRiskAnalysis(ctx context.Context) dto.Result[*models.RiskAnalysis]
	GetScoreSummary(ctx context.Context) dto.Result[*models.ScoreSummary]
}

type analysisGatewayImpl struct {
	api APIClient
}

// NewAnalysisGateway creates an AnalysisGateway.
func NewAnalysisGateway(api APIClient) AnalysisGateway {
	return &analysisGatewayImpl{api: api}
}

func (g *analysisGatewayImpl) GetRiskAnalysis(ctx context.Context) dto.Result[*models.RiskAnalysis] {
	var analysis models.RiskAnalysis
	if err := g.api.Get(ctx, constants.PathRiskAnalysis, &analysis); err != nil {
		return dto.Fail[*models.RiskAnalysis](err, MsgRiskAnalysisFailed)
	}
	return dto.Ok(&analysis)
}

func (g *analysisGatewayImpl) GetScoreSummary(ctx context.Context) dto.Result[*models.ScoreSummary] {
	var summary models.ScoreSummary
	if err := g.api.Get(ctx, constants.PathScoreSummary, &summary); err != nil {
		return dto.Fail[*models.ScoreSummary](err, MsgScoreSummaryFailed)
	}
	return dto.Ok(&summary)
}
