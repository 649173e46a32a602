package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/hearthledger/internal/engine"
	"github.com/mmynk/hearthledger/pkg/api"
	"github.com/mmynk/hearthledger/pkg/api/apiconnect"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	apiconnect.UnimplementedExpenseServiceHandler
	engine    *engine.Engine
	validator *Validator
}

// NewExpenseService creates a new ExpenseService backed by the engine.
func NewExpenseService(eng *engine.Engine, v *Validator) *ExpenseService {
	return &ExpenseService{engine: eng, validator: v}
}

// CreateExpense records an expense split among household members.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("CreateExpense request received",
		"household_id", req.Msg.HouseholdID,
		"amount", req.Msg.Amount,
		"method", req.Msg.Split.Method,
	)

	var expenseDate time.Time
	if req.Msg.ExpenseDate != nil {
		expenseDate = *req.Msg.ExpenseDate
	}

	expense, err := s.engine.CreateExpense(ctx, userID, req.Msg.HouseholdID, engine.CreateExpenseInput{
		Description: req.Msg.Description,
		Amount:      req.Msg.Amount,
		Currency:    req.Msg.Currency,
		Category:    req.Msg.Category,
		ExpenseDate: expenseDate,
		Split:       toSplitInput(req.Msg.Split),
	})
	if err != nil {
		return nil, toConnectError(ctx, "CreateExpense", err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "shares", len(expense.Shares))

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// UpdateExpenseSplits replaces the shares of an expense.
func (s *ExpenseService) UpdateExpenseSplits(ctx context.Context, req *connect.Request[api.UpdateExpenseSplitsRequest]) (*connect.Response[api.UpdateExpenseSplitsResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.engine.UpdateExpenseSplits(ctx, userID, req.Msg.ExpenseID, toSplitInput(req.Msg.Split))
	if err != nil {
		return nil, toConnectError(ctx, "UpdateExpenseSplits", err)
	}

	slog.Info("Expense splits updated", "expense_id", expense.ID, "method", expense.Method)

	return connect.NewResponse(&api.UpdateExpenseSplitsResponse{Expense: toAPIExpense(expense)}), nil
}

// GetExpense returns an expense with its active shares.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.engine.GetExpense(ctx, userID, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(ctx, "GetExpense", err)
	}

	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ListExpenses returns the active expenses of a household, oldest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	expenses, err := s.engine.ListExpenses(ctx, userID, req.Msg.HouseholdID)
	if err != nil {
		return nil, toConnectError(ctx, "ListExpenses", err)
	}

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: toAPIExpenses(expenses)}), nil
}

// DeleteExpense soft-deletes an expense and its shares.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	if err := s.engine.DeleteExpense(ctx, userID, req.Msg.ExpenseID); err != nil {
		return nil, toConnectError(ctx, "DeleteExpense", err)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ExpenseID)

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// MarkSharePaid records that a share was settled outside the payment ledger.
func (s *ExpenseService) MarkSharePaid(ctx context.Context, req *connect.Request[api.MarkSharePaidRequest]) (*connect.Response[api.MarkSharePaidResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	share, err := s.engine.MarkSharePaid(ctx, userID, req.Msg.ShareID, req.Msg.PaymentMethod, req.Msg.Notes)
	if err != nil {
		return nil, toConnectError(ctx, "MarkSharePaid", err)
	}

	return connect.NewResponse(&api.MarkSharePaidResponse{Share: toAPIShare(share)}), nil
}

// MarkShareUnpaid reverts a paid share.
func (s *ExpenseService) MarkShareUnpaid(ctx context.Context, req *connect.Request[api.MarkShareUnpaidRequest]) (*connect.Response[api.MarkShareUnpaidResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Check(req.Msg); err != nil {
		return nil, err
	}

	share, err := s.engine.MarkShareUnpaid(ctx, userID, req.Msg.ShareID)
	if err != nil {
		return nil, toConnectError(ctx, "MarkShareUnpaid", err)
	}

	return connect.NewResponse(&api.MarkShareUnpaidResponse{Share: toAPIShare(share)}), nil
}
