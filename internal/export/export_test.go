package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/hearthledger/internal/engine"
	"github.com/mmynk/hearthledger/internal/middleware"
	"github.com/mmynk/hearthledger/internal/models"
	"github.com/mmynk/hearthledger/internal/storage/memstore"
)

// setupHousehold records a 90.00 dinner split between alice and bob, and a
// 20.00 payment from bob that is not linked to any share.
func setupHousehold(t *testing.T) (*engine.Engine, string) {
	t.Helper()
	ctx := context.Background()
	eng := engine.New(memstore.New())

	view, err := eng.CreateHousehold(ctx, "u-alice", engine.CreateHouseholdInput{Name: "Flat", DisplayName: "Alice"})
	require.NoError(t, err)
	alice := view.Members[0]
	bob, err := eng.AddMember(ctx, "u-alice", view.Household.ID, engine.AddMemberInput{UserID: "u-bob", DisplayName: "Bob"})
	require.NoError(t, err)

	_, err = eng.CreateExpense(ctx, "u-alice", view.Household.ID, engine.CreateExpenseInput{
		Description: "Dinner",
		Amount:      decimal.RequireFromString("90"),
		Category:    "food",
		Split:       engine.SplitInput{Method: models.SplitEqual, Members: []string{alice.ID, bob.ID}},
	})
	require.NoError(t, err)

	_, err = eng.CreatePayment(ctx, "u-bob", view.Household.ID, engine.CreatePaymentInput{
		PayerID: bob.ID,
		PayeeID: alice.ID,
		Amount:  decimal.RequireFromString("20"),
		Method:  "cash",
	})
	require.NoError(t, err)

	return eng, view.Household.ID
}

func serve(eng *engine.Engine, householdID, userID string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.Handle(Pattern, NewHandler(eng))

	req := httptest.NewRequest(http.MethodGet, "/households/"+householdID+"/export.xlsx", nil)
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestExport(t *testing.T) {
	eng, householdID := setupHousehold(t)

	rec := serve(eng, householdID, "u-bob")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetBalances, SheetSettlements, SheetExpenses, SheetPayments}, f.GetSheetList())

	balances, err := f.GetRows(SheetBalances)
	require.NoError(t, err)
	require.Len(t, balances, 3)
	assert.Equal(t, []string{"Member", "Owes", "Is Owed", "Net"}, balances[0])
	byMember := map[string][]string{}
	for _, row := range balances[1:] {
		byMember[row[0]] = row[1:]
	}
	assert.Equal(t, map[string][]string{
		"Alice": {"0.00", "45.00", "45.00"},
		"Bob":   {"45.00", "0.00", "-45.00"},
	}, byMember, "every amount column uses the money format")

	settlements, err := f.GetRows(SheetSettlements)
	require.NoError(t, err)
	require.Len(t, settlements, 2)
	assert.Equal(t, []string{"Bob", "Alice", "45.00"}, settlements[1])

	expenses, err := f.GetRows(SheetExpenses)
	require.NoError(t, err)
	require.Len(t, expenses, 3, "one row per share")
	assert.Equal(t, "Dinner", expenses[1][1])
	assert.Equal(t, "food", expenses[1][2])

	payments, err := f.GetRows(SheetPayments)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "Bob", payments[1][1])
	assert.Equal(t, "20.00", payments[1][7], "nothing allocated")
}

func TestExport_Errors(t *testing.T) {
	eng, householdID := setupHousehold(t)

	tests := []struct {
		name        string
		householdID string
		userID      string
		status      int
	}{
		{name: "no user", householdID: householdID, status: http.StatusUnauthorized},
		{name: "not a member", householdID: householdID, userID: "u-mallory", status: http.StatusForbidden},
		{name: "unknown household", householdID: "missing", userID: "u-alice", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(eng, tt.householdID, tt.userID)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
