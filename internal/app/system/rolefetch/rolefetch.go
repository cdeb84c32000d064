// Package rolefetch loads a contact's roles from the three role services at
// once and tolerates any of them failing.
//
// Every sub-query runs to completion ("settle all"); a failed slot becomes an
// empty list and its error is reported in Aggregate.Failed. No goroutine
// returns an error to the group, so one failure never cancels the others.
package rolefetch

import (
	"context"
	"sync"

	"github.com/dalemusser/contacthub/internal/app/system/contactsapi"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RoleLister lists one role type for a contact. *contactsapi.Client
// implements it.
type RoleLister interface {
	ListRoles(ctx context.Context, t models.RoleType, contactID string) ([]models.Role, error)
}

// SatelliteLister lists the other records linked to a contact.
// *contactsapi.Client implements it.
type SatelliteLister interface {
	ListGamingAccounts(ctx context.Context, contactID string) ([]models.GamingAccount, error)
	ListDeals(ctx context.Context, contactID string) ([]models.Deal, error)
}

// Aggregate is the settled result of FetchAll.
type Aggregate struct {
	Roles  models.RoleSet
	Failed map[models.RoleType]error
}

// OK reports whether every slot loaded.
func (a Aggregate) OK() bool { return len(a.Failed) == 0 }

// FailedTypes lists the failed role types in display order.
func (a Aggregate) FailedTypes() []models.RoleType {
	var out []models.RoleType
	for _, t := range models.RoleTypes() {
		if _, ok := a.Failed[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// FetchAll loads every role type for contactID concurrently.
func FetchAll(ctx context.Context, l RoleLister, contactID string, logger *zap.Logger) Aggregate {
	if logger == nil {
		logger = zap.NewNop()
	}
	types := models.RoleTypes()
	results := make([][]models.Role, len(types))

	var mu sync.Mutex
	failed := make(map[models.RoleType]error)

	var g errgroup.Group
	for i, t := range types {
		g.Go(func() error {
			roles, err := l.ListRoles(ctx, t, contactID)
			if err != nil {
				logger.Warn("role fetch failed",
					zap.String("contact_id", contactID),
					zap.String("role_type", string(t)),
					zap.Error(err))
				mu.Lock()
				failed[t] = err
				mu.Unlock()
				return nil
			}
			// The services may ignore contactId.
			results[i] = contactsapi.FilterRolesByContact(roles, contactID)
			return nil
		})
	}
	_ = g.Wait()

	agg := Aggregate{Failed: failed}
	for i, t := range types {
		roles := results[i]
		if roles == nil {
			roles = []models.Role{}
		}
		for j := range roles {
			roles[j].Type = t
		}
		agg.Roles.Set(t, roles)
	}
	return agg
}

// Satellites is the settled result of FetchSatellites.
type Satellites struct {
	GamingAccounts []models.GamingAccount
	Deals          []models.Deal
	GamingErr      error
	DealsErr       error
}

// FetchSatellites loads gaming accounts and deals concurrently, each slot
// failing on its own.
func FetchSatellites(ctx context.Context, l SatelliteLister, contactID string, logger *zap.Logger) Satellites {
	if logger == nil {
		logger = zap.NewNop()
	}
	var out Satellites
	var g errgroup.Group

	g.Go(func() error {
		accts, err := l.ListGamingAccounts(ctx, contactID)
		if err != nil {
			logger.Warn("gaming accounts fetch failed", zap.String("contact_id", contactID), zap.Error(err))
			out.GamingErr = err
			accts = nil
		}
		if accts == nil {
			accts = []models.GamingAccount{}
		}
		out.GamingAccounts = accts
		return nil
	})
	g.Go(func() error {
		deals, err := l.ListDeals(ctx, contactID)
		if err != nil {
			logger.Warn("deals fetch failed", zap.String("contact_id", contactID), zap.Error(err))
			out.DealsErr = err
			deals = nil
		}
		if deals == nil {
			deals = []models.Deal{}
		}
		out.Deals = deals
		return nil
	})
	_ = g.Wait()
	return out
}
