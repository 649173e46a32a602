package engine

import (
	"context"
	"strings"

	"github.com/mmynk/hearthledger/internal/apperr"
	"github.com/mmynk/hearthledger/internal/events"
	"github.com/mmynk/hearthledger/internal/models"
	"github.com/mmynk/hearthledger/internal/storage"
)

// HouseholdView is a household with its active members.
type HouseholdView struct {
	Household *models.Household
	Members   []*models.Membership
}

// CreateHouseholdInput describes a new household.
type CreateHouseholdInput struct {
	Name     string
	Currency string
	// DisplayName is how the creator appears to the household.
	DisplayName string
}

// CreateHousehold creates a household with the calling user as its first admin.
func (e *Engine) CreateHousehold(ctx context.Context, userID string, in CreateHouseholdInput) (*HouseholdView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("household name is required")
	}
	currency, err := normalizeCurrency(in.Currency, e.defaultCurrency)
	if err != nil {
		return nil, err
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = userID
	}

	view := &HouseholdView{}
	err = e.run(ctx, func(tx storage.Tx, emit emitFunc) error {
		now := e.now().UTC()
		h := &models.Household{Name: name, Currency: currency, CreatedAt: now}
		if err := tx.CreateHousehold(ctx, h); err != nil {
			return err
		}
		admin := &models.Membership{
			HouseholdID: h.ID,
			UserID:      userID,
			DisplayName: displayName,
			Role:        models.RoleAdmin,
			JoinedAt:    now,
		}
		if err := tx.CreateMembership(ctx, admin); err != nil {
			return err
		}
		view.Household = h
		view.Members = []*models.Membership{admin}
		emit(events.Event{Kind: events.HouseholdCreated, HouseholdID: h.ID, ActorID: admin.ID, EntityID: h.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetHousehold returns a household and its members. Only members may read it.
func (e *Engine) GetHousehold(ctx context.Context, userID, householdID string) (*HouseholdView, error) {
	view := &HouseholdView{}
	err := e.run(ctx, func(tx storage.Tx, _ emitFunc) error {
		if _, err := actorIn(ctx, tx, householdID, userID); err != nil {
			return err
		}
		h, err := tx.GetHousehold(ctx, householdID)
		if err != nil {
			return err
		}
		members, err := tx.ListMemberships(ctx, householdID)
		if err != nil {
			return err
		}
		view.Household, view.Members = h, members
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AddMemberInput describes a user joining a household.
type AddMemberInput struct {
	UserID      string
	DisplayName string
	Role        models.Role
}

// AddMember adds a user to a household. Only admins may add members.
func (e *Engine) AddMember(ctx context.Context, userID, householdID string, in AddMemberInput) (*models.Membership, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, apperr.Validation("user_id is required")
	}
	if in.Role == "" {
		in.Role = models.RoleMember
	}
	if !in.Role.Valid() {
		return nil, apperr.Validation("unknown role %q", in.Role)
	}

	var member *models.Membership
	err := e.run(ctx, func(tx storage.Tx, emit emitFunc) error {
		actor, err := actorIn(ctx, tx, householdID, userID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() {
			return apperr.Permission("only household admins can add members")
		}

		_, err = tx.GetMembershipByUser(ctx, householdID, in.UserID)
		switch {
		case err == nil:
			return apperr.State("user %s is already a member of household %s", in.UserID, householdID)
		case !apperr.Is(err, apperr.KindNotFound):
			return err
		}

		displayName := strings.TrimSpace(in.DisplayName)
		if displayName == "" {
			displayName = in.UserID
		}
		member = &models.Membership{
			HouseholdID: householdID,
			UserID:      in.UserID,
			DisplayName: displayName,
			Role:        in.Role,
			JoinedAt:    e.now().UTC(),
		}
		if err := tx.CreateMembership(ctx, member); err != nil {
			return err
		}
		emit(events.Event{Kind: events.MemberAdded, HouseholdID: householdID, ActorID: actor.ID, EntityID: member.ID,
			Attrs: attrs("role", string(member.Role))})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember soft-deletes a membership together with the member's shares and
// the allocations covering them. Admins may remove anyone; members may leave.
// The last admin cannot leave.
func (e *Engine) RemoveMember(ctx context.Context, userID, householdID, membershipID string) error {
	return e.run(ctx, func(tx storage.Tx, emit emitFunc) error {
		actor, err := actorIn(ctx, tx, householdID, userID)
		if err != nil {
			return err
		}
		target, err := tx.GetMembership(ctx, membershipID)
		if err != nil {
			return err
		}
		if target.HouseholdID != householdID {
			return apperr.NotFound("membership", membershipID)
		}
		if !actor.IsAdmin() && actor.ID != target.ID {
			return apperr.Permission("only household admins can remove other members")
		}

		if target.IsAdmin() {
			members, err := tx.ListMemberships(ctx, householdID)
			if err != nil {
				return err
			}
			admins := 0
			for _, m := range members {
				if m.IsAdmin() {
					admins++
				}
			}
			if admins <= 1 {
				return apperr.State("cannot remove the last admin of household %s", householdID)
			}
		}

		shares, err := tx.ListSharesByMembership(ctx, target.ID)
		if err != nil {
			return err
		}
		for _, s := range shares {
			if err := deleteShare(ctx, tx, s); err != nil {
				return err
			}
		}

		target.State = models.StateDeleted
		if err := tx.UpdateMembership(ctx, target); err != nil {
			return err
		}
		emit(events.Event{Kind: events.MemberRemoved, HouseholdID: householdID, ActorID: actor.ID, EntityID: target.ID})
		return nil
	})
}

// deleteShare soft-deletes a share and deactivates the allocations covering it.
func deleteShare(ctx context.Context, tx storage.Tx, s *models.ExpenseShare) error {
	allocations, err := tx.ListAllocationsByShare(ctx, s.ID)
	if err != nil {
		return err
	}
	for _, a := range allocations {
		a.State = models.StateDeleted
		if err := tx.UpdateAllocation(ctx, a); err != nil {
			return err
		}
	}
	s.State = models.StateDeleted
	return tx.UpdateShare(ctx, s)
}
