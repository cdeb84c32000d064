// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"sync"

	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is shown in the header when Init was not called.
const DefaultSiteName = "ContactHub"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// Embedded means the page is rendered inside a host shell, which owns
	// the header and navigation.
	Embedded bool

	// User context (from auth middleware)
	IsLoggedIn bool
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string
}

var (
	mu       sync.RWMutex
	siteName = DefaultSiteName
)

// Init sets the site name shown in page headers.
// Call this once at startup from bootstrap.
func Init(name string) {
	mu.Lock()
	defer mu.Unlock()
	if name != "" {
		siteName = name
	}
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	p, signedIn := auth.CurrentPrincipal(r)

	mu.RLock()
	name := siteName
	mu.RUnlock()

	return BaseVM{
		SiteName:    name,
		Embedded:    r.Header.Get("Authorization") != "" || r.URL.Query().Get("embed") == "1",
		IsLoggedIn:  signedIn,
		UserName:    p.Name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
}
