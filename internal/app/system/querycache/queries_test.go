package querycache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/contacthub/internal/app/system/contactsapi"
	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSource struct {
	mu       sync.Mutex
	lists    int
	details  int
	roles    int
	name     string
	failRole models.RoleType
}

func (s *countingSource) ListContacts(ctx context.Context, p contactsapi.ListParams) (contactsapi.ContactPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	return contactsapi.ContactPage{Data: []models.Contact{{ID: "c1", DisplayName: s.name}}}, nil
}

func (s *countingSource) GetContact(ctx context.Context, id string) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details++
	if id == "missing" {
		return models.Contact{}, &contactsapi.APIError{Status: 404, Message: "Not Found"}
	}
	return models.Contact{ID: id, DisplayName: s.name}, nil
}

func (s *countingSource) ListRoles(ctx context.Context, t models.RoleType, contactID string) ([]models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles++
	if t == s.failRole {
		return nil, errors.New("500")
	}
	return []models.Role{{ID: string(t) + "-1", ContactID: contactID}}, nil
}

func (s *countingSource) rename(n string) {
	s.mu.Lock()
	s.name = n
	s.mu.Unlock()
}

func TestQueries_ReadThroughThenInvalidate(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{name: "Old"}
	q := NewQueries(src, NewMemory(time.Minute), zap.NewNop())
	p := contactsapi.ListParams{Search: "a", Limit: 500}

	page, err := q.List(ctx, "u1", p)
	require.NoError(t, err)
	_, err = q.List(ctx, "u1", p)
	require.NoError(t, err)
	assert.Equal(t, 1, src.lists, "second read is served from cache")
	assert.Equal(t, "Old", page.Data[0].DisplayName)

	c, err := q.Detail(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Old", c.DisplayName)
	_, _ = q.Detail(ctx, "u1", "c1")
	assert.Equal(t, 1, src.details)

	// A mutation happens server-side, then the handler invalidates.
	src.rename("New")
	q.InvalidateContact(ctx, "c1")

	page, err = q.List(ctx, "u1", p)
	require.NoError(t, err)
	assert.Equal(t, "New", page.Data[0].DisplayName)
	c, err = q.Detail(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "New", c.DisplayName)
	assert.Equal(t, 2, src.lists)
	assert.Equal(t, 2, src.details)
}

func TestQueries_ScopesAndParamsHaveOwnKeys(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{}
	q := NewQueries(src, NewMemory(time.Minute), nil)

	_, _ = q.List(ctx, "u1", contactsapi.ListParams{Search: "a"})
	_, _ = q.List(ctx, "u2", contactsapi.ListParams{Search: "a"})
	_, _ = q.List(ctx, "u1", contactsapi.ListParams{Search: "b"})
	assert.Equal(t, 3, src.lists)
}

func TestQueries_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{}
	q := NewQueries(src, NewMemory(time.Minute), nil)

	_, err := q.Detail(ctx, "u1", "missing")
	assert.True(t, contactsapi.IsNotFound(err))
	_, err = q.Detail(ctx, "u1", "missing")
	assert.True(t, contactsapi.IsNotFound(err))
	assert.Equal(t, 2, src.details)
}

func TestQueries_RolesCachedOnlyWhenComplete(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{failRole: models.RoleTypePartner}
	q := NewQueries(src, NewMemory(time.Minute), nil)

	agg := q.Roles(ctx, "u1", "c1")
	assert.Equal(t, []models.RoleType{models.RoleTypePartner}, agg.FailedTypes())
	assert.Len(t, agg.Roles.Players, 1)

	_ = q.Roles(ctx, "u1", "c1")
	assert.Equal(t, 6, src.roles, "partial result must not be cached")

	src.mu.Lock()
	src.failRole = ""
	src.mu.Unlock()

	_ = q.Roles(ctx, "u1", "c1")
	agg = q.Roles(ctx, "u1", "c1")
	assert.Equal(t, 9, src.roles)
	assert.True(t, agg.OK())
	require.Len(t, agg.Roles.HncMembers, 1)
	assert.Equal(t, models.RoleTypeHncMember, agg.Roles.HncMembers[0].Type, "type restored from cache slot")
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, any) (bool, error) { return false, errors.New("down") }
func (brokenCache) Set(context.Context, string, any) error         { return errors.New("down") }
func (brokenCache) Invalidate(context.Context, ...string) error    { return errors.New("down") }

func TestQueries_CacheFailuresFallThrough(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{name: "x"}
	q := NewQueries(src, brokenCache{}, zap.NewNop())

	c, err := q.Detail(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "x", c.DisplayName)
	q.InvalidateContact(ctx, "c1") // logged, not fatal
}

// gatedSource holds the first ListContacts call until release is closed.
type gatedSource struct {
	countingSource
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *gatedSource) ListContacts(ctx context.Context, p contactsapi.ListParams) (contactsapi.ContactPage, error) {
	first := false
	s.once.Do(func() { first = true })
	s.mu.Lock()
	name := s.name
	s.mu.Unlock()
	if first {
		close(s.started)
		<-s.release
	}
	page, err := s.countingSource.ListContacts(ctx, p)
	if err == nil {
		page.Data[0].DisplayName = name
	}
	return page, err
}

func TestQueries_ReadInFlightDuringInvalidationIsNotCached(t *testing.T) {
	ctx := context.Background()
	src := &gatedSource{
		countingSource: countingSource{name: "Old"},
		started:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	q := NewQueries(src, NewMemory(time.Minute), zap.NewNop())
	p := contactsapi.ListParams{Search: "a"}

	done := make(chan contactsapi.ContactPage)
	go func() {
		page, _ := q.List(ctx, "u1", p)
		done <- page
	}()
	<-src.started

	// The mutation lands and is invalidated while the old read is running.
	src.rename("New")
	q.InvalidateContact(ctx, "c1")

	// A read after the invalidation does not join the old flight.
	fresh, err := q.List(ctx, "u1", p)
	require.NoError(t, err)
	assert.Equal(t, "New", fresh.Data[0].DisplayName)

	close(src.release)
	stale := <-done
	assert.Equal(t, "Old", stale.Data[0].DisplayName)

	// The stale result must not replace the fresh one in the cache.
	got, err := q.List(ctx, "u1", p)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Data[0].DisplayName)
	assert.Equal(t, 2, src.lists)
}
