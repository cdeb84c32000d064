package viewdata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"golang.org/x/oauth2"
)

func TestNewBaseVM_Anonymous(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/contacts", nil)

	vm := NewBaseVM(r, "Contacts", "/contacts")

	if vm.IsLoggedIn {
		t.Error("anonymous request should not be logged in")
	}
	if vm.Title != "Contacts" {
		t.Errorf("Title = %q", vm.Title)
	}
	if vm.Embedded {
		t.Error("plain request should not be embedded")
	}
	if vm.SiteName == "" {
		t.Error("SiteName should default")
	}
}

func TestNewBaseVM_Principal(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	r = r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{
		Subject: "user-1",
		Name:    "Ann Lee",
		Token:   &oauth2.Token{AccessToken: "t"},
	}))

	vm := NewBaseVM(r, "Contacts", "/contacts")

	if !vm.IsLoggedIn || vm.UserName != "Ann Lee" {
		t.Errorf("IsLoggedIn = %v, UserName = %q", vm.IsLoggedIn, vm.UserName)
	}
}

func TestNewBaseVM_Embedded(t *testing.T) {
	byHeader := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	byHeader.Header.Set("Authorization", "Bearer abc")
	if !NewBaseVM(byHeader, "", "/").Embedded {
		t.Error("Authorization header should mark the page embedded")
	}

	byQuery := httptest.NewRequest(http.MethodGet, "/contacts?embed=1", nil)
	if !NewBaseVM(byQuery, "", "/").Embedded {
		t.Error("embed=1 should mark the page embedded")
	}
}

func TestInit_IgnoresEmpty(t *testing.T) {
	Init("Partner Desk")
	t.Cleanup(func() { Init(DefaultSiteName) })
	Init("")

	vm := NewBaseVM(httptest.NewRequest(http.MethodGet, "/", nil), "", "/")
	if vm.SiteName != "Partner Desk" {
		t.Errorf("SiteName = %q, want Partner Desk", vm.SiteName)
	}
}
