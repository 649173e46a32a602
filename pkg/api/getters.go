package api

// Getters are nil-safe, so callers can use them on optional messages.

func (r *GetHouseholdRequest) GetHouseholdID() string {
	if r == nil {
		return ""
	}
	return r.HouseholdID
}

func (r *AddMemberRequest) GetHouseholdID() string {
	if r == nil {
		return ""
	}
	return r.HouseholdID
}

func (r *RemoveMemberRequest) GetHouseholdID() string {
	if r == nil {
		return ""
	}
	return r.HouseholdID
}

func (r *CreateExpenseRequest) GetHouseholdID() string {
	if r == nil {
		return ""
	}
	return r.HouseholdID
}

func (r *ListExpensesRequest) GetHouseholdID() string {
	if r == nil {
		return ""
	}
	return r.HouseholdID
}

func (r *CreatePaymentRequest) GetHouseholdID() string {
	if r == nil {
		return ""
	}
	return r.HouseholdID
}

func (r *ListPaymentsRequest) GetHouseholdID() string {
	if r == nil {
		return ""
	}
	return r.HouseholdID
}

func (r *GetBalancesRequest) GetHouseholdID() string {
	if r == nil {
		return ""
	}
	return r.HouseholdID
}

func (r *SuggestSettlementsRequest) GetHouseholdID() string {
	if r == nil {
		return ""
	}
	return r.HouseholdID
}
