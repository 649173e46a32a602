package apiconnect

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/hearthledger/pkg/api"
)

// HouseholdServiceName is the fully-qualified name of the HouseholdService.
const HouseholdServiceName = "hearthledger.v1.HouseholdService"

// Procedure paths of the HouseholdService.
const (
	HouseholdServiceCreateHouseholdProcedure = "/hearthledger.v1.HouseholdService/CreateHousehold"
	HouseholdServiceGetHouseholdProcedure    = "/hearthledger.v1.HouseholdService/GetHousehold"
	HouseholdServiceAddMemberProcedure       = "/hearthledger.v1.HouseholdService/AddMember"
	HouseholdServiceRemoveMemberProcedure    = "/hearthledger.v1.HouseholdService/RemoveMember"
)

// HouseholdServiceClient is a client for the hearthledger.v1.HouseholdService.
type HouseholdServiceClient interface {
	CreateHousehold(context.Context, *connect.Request[api.CreateHouseholdRequest]) (*connect.Response[api.CreateHouseholdResponse], error)
	GetHousehold(context.Context, *connect.Request[api.GetHouseholdRequest]) (*connect.Response[api.GetHouseholdResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
}

// NewHouseholdServiceClient constructs a client for the hearthledger.v1.HouseholdService. baseURL is the
// server root, e.g. http://localhost:8080.
func NewHouseholdServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) HouseholdServiceClient {
	opts = append([]connect.ClientOption{withCodec}, opts...)
	return &householdServiceClient{
		createHousehold: connect.NewClient[api.CreateHouseholdRequest, api.CreateHouseholdResponse](httpClient, baseURL+HouseholdServiceCreateHouseholdProcedure, opts...),
		getHousehold:    connect.NewClient[api.GetHouseholdRequest, api.GetHouseholdResponse](httpClient, baseURL+HouseholdServiceGetHouseholdProcedure, opts...),
		addMember:       connect.NewClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL+HouseholdServiceAddMemberProcedure, opts...),
		removeMember:    connect.NewClient[api.RemoveMemberRequest, api.RemoveMemberResponse](httpClient, baseURL+HouseholdServiceRemoveMemberProcedure, opts...),
	}
}

type householdServiceClient struct {
	createHousehold *connect.Client[api.CreateHouseholdRequest, api.CreateHouseholdResponse]
	getHousehold    *connect.Client[api.GetHouseholdRequest, api.GetHouseholdResponse]
	addMember       *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	removeMember    *connect.Client[api.RemoveMemberRequest, api.RemoveMemberResponse]
}

func (c *householdServiceClient) CreateHousehold(ctx context.Context, req *connect.Request[api.CreateHouseholdRequest]) (*connect.Response[api.CreateHouseholdResponse], error) {
	return c.createHousehold.CallUnary(ctx, req)
}

func (c *householdServiceClient) GetHousehold(ctx context.Context, req *connect.Request[api.GetHouseholdRequest]) (*connect.Response[api.GetHouseholdResponse], error) {
	return c.getHousehold.CallUnary(ctx, req)
}

func (c *householdServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *householdServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

// HouseholdServiceHandler is implemented by the server side of the hearthledger.v1.HouseholdService,
// which manages households and their members.
type HouseholdServiceHandler interface {
	CreateHousehold(context.Context, *connect.Request[api.CreateHouseholdRequest]) (*connect.Response[api.CreateHouseholdResponse], error)
	GetHousehold(context.Context, *connect.Request[api.GetHouseholdRequest]) (*connect.Response[api.GetHouseholdResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
}

// NewHouseholdServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewHouseholdServiceHandler(svc HouseholdServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{withCodec}, opts...)
	createHouseholdHandler := connect.NewUnaryHandler(HouseholdServiceCreateHouseholdProcedure, svc.CreateHousehold, opts...)
	getHouseholdHandler := connect.NewUnaryHandler(HouseholdServiceGetHouseholdProcedure, svc.GetHousehold, opts...)
	addMemberHandler := connect.NewUnaryHandler(HouseholdServiceAddMemberProcedure, svc.AddMember, opts...)
	removeMemberHandler := connect.NewUnaryHandler(HouseholdServiceRemoveMemberProcedure, svc.RemoveMember, opts...)
	return "/hearthledger.v1.HouseholdService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case HouseholdServiceCreateHouseholdProcedure:
			createHouseholdHandler.ServeHTTP(w, r)
		case HouseholdServiceGetHouseholdProcedure:
			getHouseholdHandler.ServeHTTP(w, r)
		case HouseholdServiceAddMemberProcedure:
			addMemberHandler.ServeHTTP(w, r)
		case HouseholdServiceRemoveMemberProcedure:
			removeMemberHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedHouseholdServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedHouseholdServiceHandler struct{}

func (UnimplementedHouseholdServiceHandler) CreateHousehold(context.Context, *connect.Request[api.CreateHouseholdRequest]) (*connect.Response[api.CreateHouseholdResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.HouseholdService.CreateHousehold is not implemented"))
}

func (UnimplementedHouseholdServiceHandler) GetHousehold(context.Context, *connect.Request[api.GetHouseholdRequest]) (*connect.Response[api.GetHouseholdResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.HouseholdService.GetHousehold is not implemented"))
}

func (UnimplementedHouseholdServiceHandler) AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.HouseholdService.AddMember is not implemented"))
}

func (UnimplementedHouseholdServiceHandler) RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.HouseholdService.RemoveMember is not implemented"))
}
