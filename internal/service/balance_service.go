package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/hearthledger/internal/engine"
	"github.com/mmynk/hearthledger/pkg/api"
	"github.com/mmynk/hearthledger/pkg/api/apiconnect"
)

// BalanceService implements the Connect BalanceService.
type BalanceService struct {
	apiconnect.UnimplementedBalanceServiceHandler
	engine    *engine.Engine
	validator *Validator
}

// NewBalanceService creates a new BalanceService backed by the engine.
func NewBalanceService(eng *engine.Engine, v *Validator) *BalanceService {
	return &BalanceService{engine: eng, validator: v}
}

// GetBalances computes every member's balance from the unpaid shares.
func (s *BalanceService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	balances, err := s.engine.HouseholdBalances(ctx, userID, req.Msg.HouseholdID)
	if err != nil {
		return nil, toConnectError(ctx, "GetBalances", err)
	}

	return connect.NewResponse(&api.GetBalancesResponse{Balances: toAPIBalances(balances)}), nil
}

// SuggestSettlements proposes transfers that would zero every balance.
func (s *BalanceService) SuggestSettlements(ctx context.Context, req *connect.Request[api.SuggestSettlementsRequest]) (*connect.Response[api.SuggestSettlementsResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	settlements, err := s.engine.SuggestSettlements(ctx, userID, req.Msg.HouseholdID)
	if err != nil {
		return nil, toConnectError(ctx, "SuggestSettlements", err)
	}

	return connect.NewResponse(&api.SuggestSettlementsResponse{Settlements: toAPISettlements(settlements)}), nil
}
