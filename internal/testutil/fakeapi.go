package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// FakeAPI is an in-memory stand-in for the contacts service and its role and
// satellite services. It reproduces the known backend defects: the list
// endpoint ignores isActive=false and the role endpoints ignore contactId.
type FakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	contacts []models.Contact
	roles    map[models.RoleType][]models.Role
	gaming   []models.GamingAccount
	deals    []models.Deal
	faults   map[string]fault
	hits     map[string]int
	nextID   int
	lastAuth string
}

type fault struct {
	status  int
	message string
}

// NewFakeAPI starts a fake API server that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		roles:  map[models.RoleType][]models.Role{},
		faults: map[string]fault{},
		hits:   map[string]int{},
	}

	r := chi.NewRouter()
	r.Use(f.track)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/contacts", f.listContacts)
	r.Post("/contacts", f.createContact)
	r.Get("/contacts/{id}", f.getContact)
	r.Patch("/contacts/{id}", f.updateContact)
	r.Delete("/contacts/{id}", f.deleteContact)
	for _, rt := range models.RoleTypes() {
		r.Get(rt.Path(), f.listRoles(rt))
		r.Post(rt.Path(), f.createRole(rt))
		r.Patch(rt.Path()+"/{id}", f.updateRole(rt))
		r.Delete(rt.Path()+"/{id}", f.deleteRole(rt))
	}
	r.Get("/gaming-accounts", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"data": f.gaming})
	})
	r.Get("/deals", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"data": f.deals})
	})

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Close)
	return f
}

// Fail makes every request for method and path answer status with message
// until Heal is called. path is matched exactly (no query string).
func (f *FakeAPI) Fail(method, path string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[method+" "+path] = fault{status: status, message: message}
}

// Heal removes an injected fault.
func (f *FakeAPI) Heal(method, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.faults, method+" "+path)
}

// Hits returns how many requests reached method and path.
func (f *FakeAPI) Hits(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" "+path]
}

// LastAuthorization returns the Authorization header of the latest request.
func (f *FakeAPI) LastAuthorization() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth
}

// AddContacts seeds contacts.
func (f *FakeAPI) AddContacts(cs ...models.Contact) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts = append(f.contacts, cs...)
}

// Contacts returns a copy of the stored contacts.
func (f *FakeAPI) Contacts() []models.Contact {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Contact(nil), f.contacts...)
}

// AddRoles seeds roles of type t.
func (f *FakeAPI) AddRoles(t models.RoleType, rs ...models.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[t] = append(f.roles[t], rs...)
}

// Roles returns a copy of the stored roles of type t.
func (f *FakeAPI) Roles(t models.RoleType) []models.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Role(nil), f.roles[t]...)
}

// AddGamingAccounts seeds gaming accounts.
func (f *FakeAPI) AddGamingAccounts(as ...models.GamingAccount) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gaming = append(f.gaming, as...)
}

// AddDeals seeds deals.
func (f *FakeAPI) AddDeals(ds ...models.Deal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deals = append(f.deals, ds...)
}

func (f *FakeAPI) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.hits[key]++
		f.lastAuth = r.Header.Get("Authorization")
		flt, failing := f.faults[key]
		f.mu.Unlock()
		if failing {
			writeJSON(w, flt.status, map[string]string{"message": flt.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) newID(prefix string) string {
	f.nextID++
	return prefix + "-" + strconv.Itoa(f.nextID)
}

func (f *FakeAPI) listContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Contact{}
	for _, c := range f.contacts {
		if t := q.Get("contactType"); t != "" && string(c.ContactType) != t {
			continue
		}
		// isActive=false is coerced away server-side; only "true" filters.
		if q.Get("isActive") == "true" && !c.IsActive {
			continue
		}
		if s := strings.ToLower(q.Get("search")); s != "" && !strings.Contains(strings.ToLower(c.DisplayName), s) {
			continue
		}
		if from := q.Get("joinDateFrom"); from != "" && (c.JoinDate == nil || *c.JoinDate < from) {
			continue
		}
		if to := q.Get("joinDateTo"); to != "" && (c.JoinDate == nil || *c.JoinDate > to) {
			continue
		}
		out = append(out, c)
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}
	total := len(out)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	writeJSON(w, http.StatusOK, map[string]any{
		"data": out[start:end],
		"pagination": models.Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: (total + limit - 1) / limit,
		},
	})
}

func (f *FakeAPI) findContact(id string) int {
	for i, c := range f.contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeAPI) getContact(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findContact(chi.URLParam(r, "id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Contact not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": f.contacts[i]})
}

func (f *FakeAPI) createContact(w http.ResponseWriter, r *http.Request) {
	var c models.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	if !c.ContactType.IsValid() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": map[string]string{"message": "contactType is invalid", "code": "VALIDATION"}})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.newID("c")
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	f.contacts = append(f.contacts, c)
	writeJSON(w, http.StatusCreated, map[string]any{"data": c})
}

func (f *FakeAPI) updateContact(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	if _, ok := patch["contactType"]; ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "contactType cannot be changed"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findContact(chi.URLParam(r, "id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Contact not found"})
		return
	}
	c := f.contacts[i]
	for k, v := range patch {
		var err error
		switch k {
		case "displayName":
			err = json.Unmarshal(v, &c.DisplayName)
		case "isActive":
			err = json.Unmarshal(v, &c.IsActive)
		case "joinDate":
			err = json.Unmarshal(v, &c.JoinDate)
		case "personDetails":
			err = json.Unmarshal(v, &c.PersonDetails)
		case "organizationDetails":
			err = json.Unmarshal(v, &c.OrganizationDetails)
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
	}
	c.UpdatedAt = time.Now().UTC()
	f.contacts[i] = c
	writeJSON(w, http.StatusOK, map[string]any{"data": c})
}

func (f *FakeAPI) deleteContact(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findContact(chi.URLParam(r, "id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Contact not found"})
		return
	}
	f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

// listRoles ignores the contactId filter, like the real services do.
func (f *FakeAPI) listRoles(t models.RoleType) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := f.roles[t]
		if out == nil {
			out = []models.Role{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": out})
	}
}

func (f *FakeAPI) createRole(t models.RoleType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var role models.Role
		if err := json.NewDecoder(r.Body).Decode(&role); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		role.ID = f.newID(string(t))
		role.CreatedAt = time.Now().UTC()
		role.UpdatedAt = role.CreatedAt
		f.roles[t] = append(f.roles[t], role)
		writeJSON(w, http.StatusCreated, map[string]any{"data": role})
	}
}

func (f *FakeAPI) updateRole(t models.RoleType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, role := range f.roles[t] {
			if role.ID != id {
				continue
			}
			if err := json.NewDecoder(r.Body).Decode(&role); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
				return
			}
			role.ID = id
			role.UpdatedAt = time.Now().UTC()
			f.roles[t][i] = role
			writeJSON(w, http.StatusOK, map[string]any{"data": role})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": fmt.Sprintf("%s not found", t.Label())})
	}
}

func (f *FakeAPI) deleteRole(t models.RoleType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, role := range f.roles[t] {
			if role.ID == id {
				f.roles[t] = append(f.roles[t][:i], f.roles[t][i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": fmt.Sprintf("%s not found", t.Label())})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
