package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/hearthledger/internal/engine"
	"github.com/mmynk/hearthledger/internal/models"
	"github.com/mmynk/hearthledger/pkg/api"
	"github.com/mmynk/hearthledger/pkg/api/apiconnect"
)

// HouseholdService implements the Connect HouseholdService.
type HouseholdService struct {
	apiconnect.UnimplementedHouseholdServiceHandler
	engine    *engine.Engine
	validator *Validator
}

// NewHouseholdService creates a new HouseholdService backed by the engine.
func NewHouseholdService(eng *engine.Engine, v *Validator) *HouseholdService {
	return &HouseholdService{engine: eng, validator: v}
}

// CreateHousehold creates a household with the caller as its admin.
func (s *HouseholdService) CreateHousehold(ctx context.Context, req *connect.Request[api.CreateHouseholdRequest]) (*connect.Response[api.CreateHouseholdResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	view, err := s.engine.CreateHousehold(ctx, userID, engine.CreateHouseholdInput{
		Name:        req.Msg.Name,
		Currency:    req.Msg.Currency,
		DisplayName: req.Msg.DisplayName,
	})
	if err != nil {
		return nil, toConnectError(ctx, "CreateHousehold", err)
	}

	slog.Info("Household created", "household_id", view.Household.ID, "user_id", userID)

	return connect.NewResponse(&api.CreateHouseholdResponse{Household: toAPIHousehold(view)}), nil
}

// GetHousehold returns a household and its members.
func (s *HouseholdService) GetHousehold(ctx context.Context, req *connect.Request[api.GetHouseholdRequest]) (*connect.Response[api.GetHouseholdResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	view, err := s.engine.GetHousehold(ctx, userID, req.Msg.HouseholdID)
	if err != nil {
		return nil, toConnectError(ctx, "GetHousehold", err)
	}

	return connect.NewResponse(&api.GetHouseholdResponse{Household: toAPIHousehold(view)}), nil
}

// AddMember adds a user to a household.
func (s *HouseholdService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	member, err := s.engine.AddMember(ctx, userID, req.Msg.HouseholdID, engine.AddMemberInput{
		UserID:      req.Msg.UserID,
		DisplayName: req.Msg.DisplayName,
		Role:        models.Role(req.Msg.Role),
	})
	if err != nil {
		return nil, toConnectError(ctx, "AddMember", err)
	}

	slog.Info("Member added", "household_id", req.Msg.HouseholdID, "member_id", member.ID)

	return connect.NewResponse(&api.AddMemberResponse{Member: toAPIMember(member)}), nil
}

// RemoveMember removes a member together with their shares.
func (s *HouseholdService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	if err := s.engine.RemoveMember(ctx, userID, req.Msg.HouseholdID, req.Msg.MemberID); err != nil {
		return nil, toConnectError(ctx, "RemoveMember", err)
	}

	slog.Info("Member removed", "household_id", req.Msg.HouseholdID, "member_id", req.Msg.MemberID)

	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}
