package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/hearthledger/internal/auth"
	"github.com/mmynk/hearthledger/pkg/api"
	"github.com/mmynk/hearthledger/pkg/api/apiconnect"
)

// balanceStub answers GetBalances with the caller as the only member.
// Household "locked" fails with FailedPrecondition, "broken" with Internal.
type balanceStub struct {
	apiconnect.UnimplementedBalanceServiceHandler
}

func (balanceStub) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	switch req.Msg.HouseholdID {
	case "locked":
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("household is locked"))
	case "broken":
		return nil, connect.NewError(connect.CodeInternal, errors.New("disk on fire"))
	}
	return connect.NewResponse(&api.GetBalancesResponse{
		Balances: []*api.Balance{{MemberID: GetUserID(ctx)}},
	}), nil
}

type interceptorServer struct {
	client apiconnect.BalanceServiceClient
	jwt    *auth.JWTManager
	reg    *prometheus.Registry
	logs   *bytes.Buffer
}

// setupInterceptorServer mounts the stub behind the interceptors in the order
// the server uses.
func setupInterceptorServer(t *testing.T) *interceptorServer {
	t.Helper()

	s := &interceptorServer{
		jwt:  auth.NewJWTManager("test-secret", time.Hour),
		reg:  prometheus.NewRegistry(),
		logs: &bytes.Buffer{},
	}
	logger := slog.New(slog.NewJSONHandler(s.logs, nil))

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewBalanceServiceHandler(balanceStub{}, connect.WithInterceptors(
		MetricsInterceptor(s.reg),
		RequireAuth(s.jwt),
		LoggingInterceptor(logger),
	)))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	s.client = apiconnect.NewBalanceServiceClient(http.DefaultClient, server.URL)
	return s
}

func (s *interceptorServer) call(t *testing.T, header, householdID string) (*connect.Response[api.GetBalancesResponse], error) {
	t.Helper()
	req := connect.NewRequest(&api.GetBalancesRequest{HouseholdID: householdID})
	if header != "" {
		req.Header().Set("Authorization", header)
	}
	return s.client.GetBalances(context.Background(), req)
}

func (s *interceptorServer) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := s.jwt.Generate(userID)
	require.NoError(t, err)
	return "Bearer " + token
}

// logEntries decodes the JSON log lines written so far.
func (s *interceptorServer) logEntries(t *testing.T) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(s.logs.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

// counterValue returns hearthledger_rpc_requests_total for one code.
func (s *interceptorServer) counterValue(t *testing.T, code string) float64 {
	t.Helper()
	families, err := s.reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "hearthledger_rpc_requests_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["procedure"] == apiconnect.BalanceServiceGetBalancesProcedure && labels["code"] == code {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRequireAuth(t *testing.T) {
	s := setupInterceptorServer(t)
	valid := s.token(t, "u-alice")

	tests := []struct {
		name   string
		header string
		code   connect.Code
		user   string
	}{
		{name: "valid token", header: valid, user: "u-alice"},
		{name: "missing header", header: "", code: connect.CodeUnauthenticated},
		{name: "wrong scheme", header: strings.Replace(valid, "Bearer", "Basic", 1), code: connect.CodeUnauthenticated},
		{name: "extra parts", header: valid + " trailing", code: connect.CodeUnauthenticated},
		{name: "tampered token", header: valid + "x", code: connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.call(t, tt.header, "h1")
			if tt.code != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.code, connect.CodeOf(err))
				return
			}
			require.NoError(t, err)
			require.Len(t, resp.Msg.Balances, 1)
			assert.Equal(t, tt.user, resp.Msg.Balances[0].MemberID)
		})
	}
}

func TestRequireAuth_OtherSecret(t *testing.T) {
	s := setupInterceptorServer(t)
	other, err := auth.NewJWTManager("other-secret", time.Hour).Generate("u-alice")
	require.NoError(t, err)

	_, err = s.call(t, "Bearer "+other, "h1")
	require.Error(t, err)
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestLoggingInterceptor(t *testing.T) {
	s := setupInterceptorServer(t)
	token := s.token(t, "u-alice")

	_, err := s.call(t, token, "h1")
	require.NoError(t, err)
	_, err = s.call(t, token, "locked")
	require.Error(t, err)
	_, err = s.call(t, token, "broken")
	require.Error(t, err)
	_, err = s.call(t, "", "h1")
	require.Error(t, err)

	entries := s.logEntries(t)
	require.Len(t, entries, 3, "unauthenticated calls are rejected before logging")

	tests := []struct {
		level     string
		msg       string
		household string
		code      any
	}{
		{level: "INFO", msg: "RPC ok", household: "h1", code: nil},
		{level: "WARN", msg: "RPC rejected", household: "locked", code: "failed_precondition"},
		{level: "ERROR", msg: "RPC failed", household: "broken", code: "internal"},
	}

	for i, tt := range tests {
		entry := entries[i]
		assert.Equal(t, tt.level, entry["level"])
		assert.Equal(t, tt.msg, entry["msg"])
		assert.Equal(t, "u-alice", entry["user_id"])
		assert.Equal(t, tt.household, entry["household_id"])
		assert.Equal(t, apiconnect.BalanceServiceGetBalancesProcedure, entry["procedure"])
		assert.Equal(t, tt.code, entry["code"])
	}
	assert.Equal(t, "household is locked", entries[1]["error"])
}

func TestMetricsInterceptor(t *testing.T) {
	s := setupInterceptorServer(t)
	token := s.token(t, "u-alice")

	for range 2 {
		_, err := s.call(t, token, "h1")
		require.NoError(t, err)
	}
	_, err := s.call(t, token, "locked")
	require.Error(t, err)
	_, err = s.call(t, "", "h1")
	require.Error(t, err)

	assert.Equal(t, 2.0, s.counterValue(t, "ok"))
	assert.Equal(t, 1.0, s.counterValue(t, "failed_precondition"))
	assert.Equal(t, 1.0, s.counterValue(t, "unauthenticated"))
	assert.Equal(t, 0.0, s.counterValue(t, "internal"))
}
