package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/turtacn/cyberrisk/internal/application/dto"
	"github.com/turtacn/cyberrisk/internal/domain/models"
	"github.com/turtacn/cyberrisk/pkg/constants"
)

// AdminGateway reads the privileged administrative views. Calls are sent
// regardless of the local role; the server decides access.
type AdminGateway interface {
	GetSystemStats(ctx context.Context) dto.Result[*models.SystemStats]
	GetAllUsers(ctx context.Context) dto.Result[*models.UserList]
	GetUsersByRole(ctx context.Context, role models.Role) dto.Result[*models.UserList]
	GetSystemHealth(ctx context.Context) dto.Result[*models.ServiceHealth]
}

type adminGatewayImpl struct {
	api APIClient
}

// NewAdminGateway creates an AdminGateway.
func NewAdminGateway(api APIClient) AdminGateway {
	return &adminGatewayImpl{api: api}
}

func (g *adminGatewayImpl) GetSystemStats(ctx context.Context) dto.Result[*models.SystemStats] {
	var stats models.SystemStats
	if err := g.api.Get(ctx, constants.PathAdminStats, &stats); err != nil {
		return dto.Fail[*models.SystemStats](err, MsgSystemStatsFailed)
	}
	return dto.Ok(&stats)
}

func (g *adminGatewayImpl) GetAllUsers(ctx context.Context) dto.Result[*models.UserList] {
	var users models.UserList
	if err := g.api.Get(ctx, constants.PathAdminUsers, &users); err != nil {
		return dto.Fail[*models.UserList](err, MsgUsersFailed)
	}
	return dto.Ok(&users)
}

func (g *adminGatewayImpl) GetUsersByRole(ctx context.Context, role models.Role) dto.Result[*models.UserList] {
	var users models.UserList
	path := fmt.Sprintf(constants.PathAdminUsersByRole, url.PathEscape(string(role)))
	if err := g.api.Get(ctx, path, &users); err != nil {
		return dto.Fail[*models.UserList](err, MsgUsersFailed)
	}
	return dto.Ok(&users)
}

func (g *adminGatewayImpl) GetSystemHealth(ctx context.Context) dto.Result[*models.ServiceHealth] {
	var health models.ServiceHealth
	if err := g.api.Get(ctx, constants.PathAdminHealth, &health); err != nil {
		return dto.Fail[*models.ServiceHealth](err, MsgSystemHealthFailed)
	}
	return dto.Ok(&health)
}
