package apiconnect

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/hearthledger/pkg/api"
)

// PaymentServiceName is the fully-qualified name of the PaymentService.
const PaymentServiceName = "hearthledger.v1.PaymentService"

// Procedure paths of the PaymentService.
const (
	PaymentServiceCreatePaymentProcedure = "/hearthledger.v1.PaymentService/CreatePayment"
	PaymentServiceLinkPaymentProcedure   = "/hearthledger.v1.PaymentService/LinkPayment"
	PaymentServiceUnlinkPaymentProcedure = "/hearthledger.v1.PaymentService/UnlinkPayment"
	PaymentServiceDeletePaymentProcedure = "/hearthledger.v1.PaymentService/DeletePayment"
	PaymentServiceGetPaymentProcedure    = "/hearthledger.v1.PaymentService/GetPayment"
	PaymentServiceListPaymentsProcedure  = "/hearthledger.v1.PaymentService/ListPayments"
)

// PaymentServiceClient is a client for the hearthledger.v1.PaymentService.
type PaymentServiceClient interface {
	CreatePayment(context.Context, *connect.Request[api.CreatePaymentRequest]) (*connect.Response[api.CreatePaymentResponse], error)
	LinkPayment(context.Context, *connect.Request[api.LinkPaymentRequest]) (*connect.Response[api.LinkPaymentResponse], error)
	UnlinkPayment(context.Context, *connect.Request[api.UnlinkPaymentRequest]) (*connect.Response[api.UnlinkPaymentResponse], error)
	DeletePayment(context.Context, *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error)
	GetPayment(context.Context, *connect.Request[api.GetPaymentRequest]) (*connect.Response[api.GetPaymentResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
}

// NewPaymentServiceClient constructs a client for the hearthledger.v1.PaymentService. baseURL is the
// server root, e.g. http://localhost:8080.
func NewPaymentServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PaymentServiceClient {
	opts = append([]connect.ClientOption{withCodec}, opts...)
	return &paymentServiceClient{
		createPayment: connect.NewClient[api.CreatePaymentRequest, api.CreatePaymentResponse](httpClient, baseURL+PaymentServiceCreatePaymentProcedure, opts...),
		linkPayment:   connect.NewClient[api.LinkPaymentRequest, api.LinkPaymentResponse](httpClient, baseURL+PaymentServiceLinkPaymentProcedure, opts...),
		unlinkPayment: connect.NewClient[api.UnlinkPaymentRequest, api.UnlinkPaymentResponse](httpClient, baseURL+PaymentServiceUnlinkPaymentProcedure, opts...),
		deletePayment: connect.NewClient[api.DeletePaymentRequest, api.DeletePaymentResponse](httpClient, baseURL+PaymentServiceDeletePaymentProcedure, opts...),
		getPayment:    connect.NewClient[api.GetPaymentRequest, api.GetPaymentResponse](httpClient, baseURL+PaymentServiceGetPaymentProcedure, opts...),
		listPayments:  connect.NewClient[api.ListPaymentsRequest, api.ListPaymentsResponse](httpClient, baseURL+PaymentServiceListPaymentsProcedure, opts...),
	}
}

type paymentServiceClient struct {
	createPayment *connect.Client[api.CreatePaymentRequest, api.CreatePaymentResponse]
	linkPayment   *connect.Client[api.LinkPaymentRequest, api.LinkPaymentResponse]
	unlinkPayment *connect.Client[api.UnlinkPaymentRequest, api.UnlinkPaymentResponse]
	deletePayment *connect.Client[api.DeletePaymentRequest, api.DeletePaymentResponse]
	getPayment    *connect.Client[api.GetPaymentRequest, api.GetPaymentResponse]
	listPayments  *connect.Client[api.ListPaymentsRequest, api.ListPaymentsResponse]
}

func (c *paymentServiceClient) CreatePayment(ctx context.Context, req *connect.Request[api.CreatePaymentRequest]) (*connect.Response[api.CreatePaymentResponse], error) {
	return c.createPayment.CallUnary(ctx, req)
}

func (c *paymentServiceClient) LinkPayment(ctx context.Context, req *connect.Request[api.LinkPaymentRequest]) (*connect.Response[api.LinkPaymentResponse], error) {
	return c.linkPayment.CallUnary(ctx, req)
}

func (c *paymentServiceClient) UnlinkPayment(ctx context.Context, req *connect.Request[api.UnlinkPaymentRequest]) (*connect.Response[api.UnlinkPaymentResponse], error) {
	return c.unlinkPayment.CallUnary(ctx, req)
}

func (c *paymentServiceClient) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	return c.deletePayment.CallUnary(ctx, req)
}

func (c *paymentServiceClient) GetPayment(ctx context.Context, req *connect.Request[api.GetPaymentRequest]) (*connect.Response[api.GetPaymentResponse], error) {
	return c.getPayment.CallUnary(ctx, req)
}

func (c *paymentServiceClient) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	return c.listPayments.CallUnary(ctx, req)
}

// PaymentServiceHandler is implemented by the server side of the hearthledger.v1.PaymentService,
// which records payments and links them to expense shares.
type PaymentServiceHandler interface {
	CreatePayment(context.Context, *connect.Request[api.CreatePaymentRequest]) (*connect.Response[api.CreatePaymentResponse], error)
	LinkPayment(context.Context, *connect.Request[api.LinkPaymentRequest]) (*connect.Response[api.LinkPaymentResponse], error)
	UnlinkPayment(context.Context, *connect.Request[api.UnlinkPaymentRequest]) (*connect.Response[api.UnlinkPaymentResponse], error)
	DeletePayment(context.Context, *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error)
	GetPayment(context.Context, *connect.Request[api.GetPaymentRequest]) (*connect.Response[api.GetPaymentResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
}

// NewPaymentServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewPaymentServiceHandler(svc PaymentServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{withCodec}, opts...)
	createPaymentHandler := connect.NewUnaryHandler(PaymentServiceCreatePaymentProcedure, svc.CreatePayment, opts...)
	linkPaymentHandler := connect.NewUnaryHandler(PaymentServiceLinkPaymentProcedure, svc.LinkPayment, opts...)
	unlinkPaymentHandler := connect.NewUnaryHandler(PaymentServiceUnlinkPaymentProcedure, svc.UnlinkPayment, opts...)
	deletePaymentHandler := connect.NewUnaryHandler(PaymentServiceDeletePaymentProcedure, svc.DeletePayment, opts...)
	getPaymentHandler := connect.NewUnaryHandler(PaymentServiceGetPaymentProcedure, svc.GetPayment, opts...)
	listPaymentsHandler := connect.NewUnaryHandler(PaymentServiceListPaymentsProcedure, svc.ListPayments, opts...)
	return "/hearthledger.v1.PaymentService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PaymentServiceCreatePaymentProcedure:
			createPaymentHandler.ServeHTTP(w, r)
		case PaymentServiceLinkPaymentProcedure:
			linkPaymentHandler.ServeHTTP(w, r)
		case PaymentServiceUnlinkPaymentProcedure:
			unlinkPaymentHandler.ServeHTTP(w, r)
		case PaymentServiceDeletePaymentProcedure:
			deletePaymentHandler.ServeHTTP(w, r)
		case PaymentServiceGetPaymentProcedure:
			getPaymentHandler.ServeHTTP(w, r)
		case PaymentServiceListPaymentsProcedure:
			listPaymentsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedPaymentServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedPaymentServiceHandler struct{}

func (UnimplementedPaymentServiceHandler) CreatePayment(context.Context, *connect.Request[api.CreatePaymentRequest]) (*connect.Response[api.CreatePaymentResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.PaymentService.CreatePayment is not implemented"))
}

func (UnimplementedPaymentServiceHandler) LinkPayment(context.Context, *connect.Request[api.LinkPaymentRequest]) (*connect.Response[api.LinkPaymentResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.PaymentService.LinkPayment is not implemented"))
}

func (UnimplementedPaymentServiceHandler) UnlinkPayment(context.Context, *connect.Request[api.UnlinkPaymentRequest]) (*connect.Response[api.UnlinkPaymentResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.PaymentService.UnlinkPayment is not implemented"))
}

func (UnimplementedPaymentServiceHandler) DeletePayment(context.Context, *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.PaymentService.DeletePayment is not implemented"))
}

func (UnimplementedPaymentServiceHandler) GetPayment(context.Context, *connect.Request[api.GetPaymentRequest]) (*connect.Response[api.GetPaymentResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.PaymentService.GetPayment is not implemented"))
}

func (UnimplementedPaymentServiceHandler) ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("hearthledger.v1.PaymentService.ListPayments is not implemented"))
}
