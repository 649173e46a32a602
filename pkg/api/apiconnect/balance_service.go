package apiconnect

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/hearthledger/pkg/api"
)

// BalanceServiceName is the fully-qualified name of the BalanceService.
const BalanceServiceName = "hearthledger.v1.BalanceService"

// Procedure paths of the BalanceService.
const (
	BalanceServiceGetBalancesProcedure        = "/hearthledger.v1.BalanceService/GetBalances"
	BalanceServiceSuggestSettlementsProcedure = "/hearthledger.v1.BalanceService/SuggestSettlements"
)

// BalanceServiceClient is a client for the hearthledger.v1.BalanceService.
type BalanceServiceClient interface {
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	SuggestSettlements(context.Context, *connect.Request[api.SuggestSettlementsRequest]) (*connect.Response[api.SuggestSettlementsResponse], error)
}

// NewBalanceServiceClient constructs a client for the hearthledger.v1.BalanceService. baseURL is the
// server root, e.g. http://localhost:8080.
func NewBalanceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BalanceServiceClient {
	opts = append([]connect.ClientOption{withCodec}, opts...)
	return &balanceServiceClient{
		getBalances:        connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+BalanceServiceGetBalancesProcedure, opts...),
		suggestSettlements: connect.NewClient[api.SuggestSettlementsRequest, api.SuggestSettlementsResponse](httpClient, baseURL+BalanceServiceSuggestSettlementsProcedure, opts...),
	}
}

type balanceServiceClient struct {
	getBalances        *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	suggestSettlements *connect.Client[api.SuggestSettlementsRequest, api.SuggestSettlementsResponse]
}

func (c *balanceServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *balanceServiceClient) SuggestSettlements(ctx context.Context, req *connect.Request[api.SuggestSettlementsRequest]) (*connect.Response[api.SuggestSettlementsResponse], error) {
	return c.suggestSettlements.CallUnary(ctx, req)
}

// BalanceServiceHandler is implemented by the server side of the hearthledger.v1.BalanceService,
// which reports balances and settlement suggestions.
type BalanceServiceHandler interface {
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	SuggestSettlements(context.Context, *connect.Request[api.SuggestSettlementsRequest]) (*connect.Response[api.SuggestSettlementsResponse], error)
}

// NewBalanceServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewBalanceServiceHandler(svc BalanceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{withCodec}, opts...)
	getBalancesHandler := connect.NewUnaryHandler(BalanceServiceGetBalancesProcedure, svc.GetBalances, opts...)
	suggestSettlementsHandler := connect.NewUnaryHandler(BalanceServiceSuggestSettlementsProcedure, svc.SuggestSettlements, opts...)
	return "/hearthledger.v1.BalanceService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case BalanceServiceGetBalancesProcedure:
			getBalancesHandler.ServeHTTP(w, r)
		case BalanceServiceSuggestSettlementsProcedure:
			suggestSettlementsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedBalanceServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedBalanceServiceHandler struct{}

func (UnimplementedBalanceServiceHandler) GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.BalanceService.GetBalances is not implemented"))
}

func (UnimplementedBalanceServiceHandler) SuggestSettlements(context.Context, *connect.Request[api.SuggestSettlementsRequest]) (*connect.Response[api.SuggestSettlementsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.BalanceService.SuggestSettlements is not implemented"))
}
