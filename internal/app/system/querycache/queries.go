package querycache

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/dalemusser/contacthub/internal/app/system/contactsapi"
	"github.com/dalemusser/contacthub/internal/app/system/rolefetch"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Source is the part of the contacts client the cached reads use.
type Source interface {
	ListContacts(ctx context.Context, p contactsapi.ListParams) (contactsapi.ContactPage, error)
	GetContact(ctx context.Context, id string) (models.Contact, error)
	rolefetch.RoleLister
}

// Queries reads through a Cache. Each read kind has its own key, so list,
// detail and roles fetches never overwrite each other. Cache failures are
// logged and the read goes to the service.
//
// gen counts invalidations. A fetch only stores its result when no
// invalidation happened while it ran, and fetches never join a flight
// started before the latest invalidation.
type Queries struct {
	src   Source
	cache Cache
	log   *zap.Logger
	group singleflight.Group
	gen   atomic.Uint64
}

// NewQueries returns Queries over src. A nil cache means Nop.
func NewQueries(src Source, cache Cache, logger *zap.Logger) *Queries {
	if cache == nil {
		cache = Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queries{src: src, cache: cache, log: logger}
}

func (q *Queries) lookup(ctx context.Context, key string, dst any) bool {
	hit, err := q.cache.Get(ctx, key, dst)
	if err != nil {
		q.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

// flight returns the singleflight key for key and the generation the fetch
// starts in.
func (q *Queries) flight(key string) (string, uint64) {
	g := q.gen.Load()
	return key + "#" + strconv.FormatUint(g, 10), g
}

// store writes v unless the cache was invalidated after generation g.
func (q *Queries) store(ctx context.Context, key string, g uint64, v any) {
	if q.gen.Load() != g {
		q.log.Debug("stale read not cached", zap.String("key", key))
		return
	}
	if err := q.cache.Set(ctx, key, v); err != nil {
		q.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	// An invalidation may have run between the check and the write.
	if q.gen.Load() != g {
		if err := q.cache.Invalidate(ctx, key); err != nil {
			q.log.Warn("cache drop failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// List returns the contacts for p as seen by scope.
func (q *Queries) List(ctx context.Context, scope string, p contactsapi.ListParams) (contactsapi.ContactPage, error) {
	key := ListKey(scope, p.Values().Encode())
	var page contactsapi.ContactPage
	if q.lookup(ctx, key, &page) {
		return page, nil
	}
	fk, g := q.flight(key)
	v, err, _ := q.group.Do(fk, func() (any, error) {
		page, err := q.src.ListContacts(ctx, p)
		if err != nil {
			return nil, err
		}
		q.store(ctx, key, g, page)
		return page, nil
	})
	if err != nil {
		return contactsapi.ContactPage{}, err
	}
	return v.(contactsapi.ContactPage), nil
}

// Detail returns one contact as seen by scope.
func (q *Queries) Detail(ctx context.Context, scope, id string) (models.Contact, error) {
	key := DetailKey(scope, id)
	var c models.Contact
	if q.lookup(ctx, key, &c) {
		return c, nil
	}
	fk, g := q.flight(key)
	v, err, _ := q.group.Do(fk, func() (any, error) {
		c, err := q.src.GetContact(ctx, id)
		if err != nil {
			return nil, err
		}
		q.store(ctx, key, g, c)
		return c, nil
	})
	if err != nil {
		return models.Contact{}, err
	}
	return v.(models.Contact), nil
}

// Roles returns the settled roles of a contact. Partial results are not
// cached, so a failed slot is retried on the next read.
func (q *Queries) Roles(ctx context.Context, scope, id string) rolefetch.Aggregate {
	key := RolesKey(scope, id)
	var set models.RoleSet
	if q.lookup(ctx, key, &set) {
		// Type is not serialized; restore it from the slot.
		for _, t := range models.RoleTypes() {
			roles := set.ByType(t)
			if roles == nil {
				roles = []models.Role{}
			}
			for i := range roles {
				roles[i].Type = t
			}
			set.Set(t, roles)
		}
		return rolefetch.Aggregate{Roles: set, Failed: map[models.RoleType]error{}}
	}
	fk, g := q.flight(key)
	v, _, _ := q.group.Do(fk, func() (any, error) {
		agg := rolefetch.FetchAll(ctx, q.src, id, q.log)
		if agg.OK() {
			q.store(ctx, key, g, agg.Roles)
		}
		return agg, nil
	})
	return v.(rolefetch.Aggregate)
}

// InvalidateContact drops every list and the detail and roles of id, for
// all scopes. Call it after any successful mutation of the contact or its
// roles.
func (q *Queries) InvalidateContact(ctx context.Context, id string) {
	q.gen.Add(1)
	prefixes := []string{prefixList}
	if id != "" {
		prefixes = append(prefixes, prefixDetail+id+":", prefixRoles+id+":")
	}
	if err := q.cache.Invalidate(ctx, prefixes...); err != nil {
		q.log.Error("cache invalidation failed", zap.String("contact_id", id), zap.Error(err))
	}
}
