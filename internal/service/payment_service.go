package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/hearthledger/internal/engine"
	"github.com/mmynk/hearthledger/internal/models"
	"github.com/mmynk/hearthledger/pkg/api"
	"github.com/mmynk/hearthledger/pkg/api/apiconnect"
)

// PaymentService implements the Connect PaymentService.
type PaymentService struct {
	apiconnect.UnimplementedPaymentServiceHandler
	engine    *engine.Engine
	validator *Validator
}

// NewPaymentService creates a new PaymentService backed by the engine.
func NewPaymentService(eng *engine.Engine, v *Validator) *PaymentService {
	return &PaymentService{engine: eng, validator: v}
}

// CreatePayment records a payment, optionally allocating it to shares.
func (s *PaymentService) CreatePayment(ctx context.Context, req *connect.Request[api.CreatePaymentRequest]) (*connect.Response[api.CreatePaymentResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("CreatePayment request received",
		"household_id", req.Msg.HouseholdID,
		"amount", req.Msg.Amount,
		"allocations", len(req.Msg.Allocations),
		"auto_allocate", req.Msg.AutoAllocate,
	)

	var paymentDate time.Time
	if req.Msg.PaymentDate != nil {
		paymentDate = *req.Msg.PaymentDate
	}
	allocations := make([]engine.AllocationInput, len(req.Msg.Allocations))
	for i, a := range req.Msg.Allocations {
		allocations[i] = engine.AllocationInput{ShareID: a.ShareID, Amount: a.Amount}
	}

	payment, err := s.engine.CreatePayment(ctx, userID, req.Msg.HouseholdID, engine.CreatePaymentInput{
		PayerID:      req.Msg.PayerID,
		PayeeID:      req.Msg.PayeeID,
		Amount:       req.Msg.Amount,
		Currency:     req.Msg.Currency,
		Type:         models.PaymentType(req.Msg.Type),
		Method:       req.Msg.Method,
		PaymentDate:  paymentDate,
		Description:  req.Msg.Description,
		Allocations:  allocations,
		AutoAllocate: req.Msg.AutoAllocate,
	})
	if err != nil {
		return nil, toConnectError(ctx, "CreatePayment", err)
	}

	slog.Info("Payment created", "payment_id", payment.ID, "unallocated", payment.UnallocatedAmount())

	return connect.NewResponse(&api.CreatePaymentResponse{Payment: toAPIPayment(payment)}), nil
}

// LinkPayment applies part of a payment to a share.
func (s *PaymentService) LinkPayment(ctx context.Context, req *connect.Request[api.LinkPaymentRequest]) (*connect.Response[api.LinkPaymentResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	allocation, err := s.engine.LinkPayment(ctx, userID, req.Msg.PaymentID, req.Msg.ShareID, req.Msg.Amount)
	if err != nil {
		return nil, toConnectError(ctx, "LinkPayment", err)
	}

	return connect.NewResponse(&api.LinkPaymentResponse{Allocation: toAPIAllocation(allocation)}), nil
}

// UnlinkPayment removes the allocation of a payment to a share.
func (s *PaymentService) UnlinkPayment(ctx context.Context, req *connect.Request[api.UnlinkPaymentRequest]) (*connect.Response[api.UnlinkPaymentResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	if err := s.engine.UnlinkPayment(ctx, userID, req.Msg.PaymentID, req.Msg.ShareID); err != nil {
		return nil, toConnectError(ctx, "UnlinkPayment", err)
	}

	return connect.NewResponse(&api.UnlinkPaymentResponse{}), nil
}

// DeletePayment soft-deletes a payment and reverts the shares it alone covered.
func (s *PaymentService) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	reverted, err := s.engine.DeletePayment(ctx, userID, req.Msg.PaymentID)
	if err != nil {
		return nil, toConnectError(ctx, "DeletePayment", err)
	}

	slog.Info("Payment deleted", "payment_id", req.Msg.PaymentID, "reverted_shares", len(reverted))

	if reverted == nil {
		reverted = []string{}
	}
	return connect.NewResponse(&api.DeletePaymentResponse{RevertedShareIDs: reverted}), nil
}

// GetPayment returns a payment with its active allocations.
func (s *PaymentService) GetPayment(ctx context.Context, req *connect.Request[api.GetPaymentRequest]) (*connect.Response[api.GetPaymentResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	payment, err := s.engine.GetPayment(ctx, userID, req.Msg.PaymentID)
	if err != nil {
		return nil, toConnectError(ctx, "GetPayment", err)
	}

	return connect.NewResponse(&api.GetPaymentResponse{Payment: toAPIPayment(payment)}), nil
}

// ListPayments returns the active payments of a household, newest first.
func (s *PaymentService) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	payments, err := s.engine.ListPayments(ctx, userID, req.Msg.HouseholdID)
	if err != nil {
		return nil, toConnectError(ctx, "ListPayments", err)
	}

	out := make([]*api.Payment, len(payments))
	for i, p := range payments {
		out[i] = toAPIPayment(p)
	}
	return connect.NewResponse(&api.ListPaymentsResponse{Payments: out}), nil
}
