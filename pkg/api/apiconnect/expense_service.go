package apiconnect

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/hearthledger/pkg/api"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService.
const ExpenseServiceName = "hearthledger.v1.ExpenseService"

// Procedure paths of the ExpenseService.
const (
	ExpenseServiceCreateExpenseProcedure       = "/hearthledger.v1.ExpenseService/CreateExpense"
	ExpenseServiceUpdateExpenseSplitsProcedure = "/hearthledger.v1.ExpenseService/UpdateExpenseSplits"
	ExpenseServiceGetExpenseProcedure          = "/hearthledger.v1.ExpenseService/GetExpense"
	ExpenseServiceListExpensesProcedure        = "/hearthledger.v1.ExpenseService/ListExpenses"
	ExpenseServiceDeleteExpenseProcedure       = "/hearthledger.v1.ExpenseService/DeleteExpense"
	ExpenseServiceMarkSharePaidProcedure       = "/hearthledger.v1.ExpenseService/MarkSharePaid"
	ExpenseServiceMarkShareUnpaidProcedure     = "/hearthledger.v1.ExpenseService/MarkShareUnpaid"
)

// ExpenseServiceClient is a client for the hearthledger.v1.ExpenseService.
type ExpenseServiceClient interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	UpdateExpenseSplits(context.Context, *connect.Request[api.UpdateExpenseSplitsRequest]) (*connect.Response[api.UpdateExpenseSplitsResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	MarkSharePaid(context.Context, *connect.Request[api.MarkSharePaidRequest]) (*connect.Response[api.MarkSharePaidResponse], error)
	MarkShareUnpaid(context.Context, *connect.Request[api.MarkShareUnpaidRequest]) (*connect.Response[api.MarkShareUnpaidResponse], error)
}

// NewExpenseServiceClient constructs a client for the hearthledger.v1.ExpenseService. baseURL is the
// server root, e.g. http://localhost:8080.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	opts = append([]connect.ClientOption{withCodec}, opts...)
	return &expenseServiceClient{
		createExpense:       connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		updateExpenseSplits: connect.NewClient[api.UpdateExpenseSplitsRequest, api.UpdateExpenseSplitsResponse](httpClient, baseURL+ExpenseServiceUpdateExpenseSplitsProcedure, opts...),
		getExpense:          connect.NewClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL+ExpenseServiceGetExpenseProcedure, opts...),
		listExpenses:        connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
		deleteExpense:       connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
		markSharePaid:       connect.NewClient[api.MarkSharePaidRequest, api.MarkSharePaidResponse](httpClient, baseURL+ExpenseServiceMarkSharePaidProcedure, opts...),
		markShareUnpaid:     connect.NewClient[api.MarkShareUnpaidRequest, api.MarkShareUnpaidResponse](httpClient, baseURL+ExpenseServiceMarkShareUnpaidProcedure, opts...),
	}
}

type expenseServiceClient struct {
	createExpense       *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	updateExpenseSplits *connect.Client[api.UpdateExpenseSplitsRequest, api.UpdateExpenseSplitsResponse]
	getExpense          *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	listExpenses        *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	deleteExpense       *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	markSharePaid       *connect.Client[api.MarkSharePaidRequest, api.MarkSharePaidResponse]
	markShareUnpaid     *connect.Client[api.MarkShareUnpaidRequest, api.MarkShareUnpaidResponse]
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) UpdateExpenseSplits(ctx context.Context, req *connect.Request[api.UpdateExpenseSplitsRequest]) (*connect.Response[api.UpdateExpenseSplitsResponse], error) {
	return c.updateExpenseSplits.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) MarkSharePaid(ctx context.Context, req *connect.Request[api.MarkSharePaidRequest]) (*connect.Response[api.MarkSharePaidResponse], error) {
	return c.markSharePaid.CallUnary(ctx, req)
}

func (c *expenseServiceClient) MarkShareUnpaid(ctx context.Context, req *connect.Request[api.MarkShareUnpaidRequest]) (*connect.Response[api.MarkShareUnpaidResponse], error) {
	return c.markShareUnpaid.CallUnary(ctx, req)
}

// ExpenseServiceHandler is implemented by the server side of the hearthledger.v1.ExpenseService,
// which records expenses, their splits and the paid status of shares.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	UpdateExpenseSplits(context.Context, *connect.Request[api.UpdateExpenseSplitsRequest]) (*connect.Response[api.UpdateExpenseSplitsResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	MarkSharePaid(context.Context, *connect.Request[api.MarkSharePaidRequest]) (*connect.Response[api.MarkSharePaidResponse], error)
	MarkShareUnpaid(context.Context, *connect.Request[api.MarkShareUnpaidRequest]) (*connect.Response[api.MarkShareUnpaidResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{withCodec}, opts...)
	createExpenseHandler := connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...)
	updateExpenseSplitsHandler := connect.NewUnaryHandler(ExpenseServiceUpdateExpenseSplitsProcedure, svc.UpdateExpenseSplits, opts...)
	getExpenseHandler := connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...)
	listExpensesHandler := connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...)
	deleteExpenseHandler := connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...)
	markSharePaidHandler := connect.NewUnaryHandler(ExpenseServiceMarkSharePaidProcedure, svc.MarkSharePaid, opts...)
	markShareUnpaidHandler := connect.NewUnaryHandler(ExpenseServiceMarkShareUnpaidProcedure, svc.MarkShareUnpaid, opts...)
	return "/hearthledger.v1.ExpenseService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ExpenseServiceCreateExpenseProcedure:
			createExpenseHandler.ServeHTTP(w, r)
		case ExpenseServiceUpdateExpenseSplitsProcedure:
			updateExpenseSplitsHandler.ServeHTTP(w, r)
		case ExpenseServiceGetExpenseProcedure:
			getExpenseHandler.ServeHTTP(w, r)
		case ExpenseServiceListExpensesProcedure:
			listExpensesHandler.ServeHTTP(w, r)
		case ExpenseServiceDeleteExpenseProcedure:
			deleteExpenseHandler.ServeHTTP(w, r)
		case ExpenseServiceMarkSharePaidProcedure:
			markSharePaidHandler.ServeHTTP(w, r)
		case ExpenseServiceMarkShareUnpaidProcedure:
			markShareUnpaidHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedExpenseServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedExpenseServiceHandler struct{}

func (UnimplementedExpenseServiceHandler) CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.ExpenseService.CreateExpense is not implemented"))
}

func (UnimplementedExpenseServiceHandler) UpdateExpenseSplits(context.Context, *connect.Request[api.UpdateExpenseSplitsRequest]) (*connect.Response[api.UpdateExpenseSplitsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.ExpenseService.UpdateExpenseSplits is not implemented"))
}

func (UnimplementedExpenseServiceHandler) GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.ExpenseService.GetExpense is not implemented"))
}

func (UnimplementedExpenseServiceHandler) ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.ExpenseService.ListExpenses is not implemented"))
}

func (UnimplementedExpenseServiceHandler) DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.ExpenseService.DeleteExpense is not implemented"))
}

func (UnimplementedExpenseServiceHandler) MarkSharePaid(context.Context, *connect.Request[api.MarkSharePaidRequest]) (*connect.Response[api.MarkSharePaidResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.ExpenseService.MarkSharePaid is not implemented"))
}

func (UnimplementedExpenseServiceHandler) MarkShareUnpaid(context.Context, *connect.Request[api.MarkShareUnpaidRequest]) (*connect.Response[api.MarkShareUnpaidResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.ExpenseService.MarkShareUnpaid is not implemented"))
}
