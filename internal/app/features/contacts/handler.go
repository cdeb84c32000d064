// internal/app/features/contacts/handler.go
package contacts

import (
	"net/http"
	"net/url"
	"time"

	uierrors "github.com/dalemusser/contacthub/internal/app/features/errors"
	"github.com/dalemusser/contacthub/internal/app/system/auditlog"
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/app/system/contactsapi"
	"github.com/dalemusser/contacthub/internal/app/system/joindate"
	"github.com/dalemusser/contacthub/internal/app/system/liststate"
	"github.com/dalemusser/contacthub/internal/app/system/paging"
	"github.com/dalemusser/contacthub/internal/app/system/querycache"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the contacts feature.
// Reads go through Queries (cached); writes go straight to API and are
// followed by a cache invalidation and an audit event.
type Handler struct {
	API     *contactsapi.Client
	Queries *querycache.Queries
	Audit   *auditlog.Logger
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger

	// History feeds the recent-changes list on the status tab. Nil when
	// audit events are not stored.
	History HistoryReader

	// PageSize is the rows-per-page used when the URL does not name one.
	PageSize int

	// Loc anchors the join-date buckets. Defaults to time.Local.
	Loc *time.Location
}

// NewHandler constructs a contacts Handler. It is called from
// bootstrap.BuildHandler once the client, cache and audit logger exist.
func NewHandler(api *contactsapi.Client, queries *querycache.Queries, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, pageSize int, logger *zap.Logger) *Handler {
	if !paging.IsAllowedSize(pageSize) {
		pageSize = paging.DefaultPageSize
	}
	return &Handler{
		API:      api,
		Queries:  queries,
		Audit:    audit,
		ErrLog:   errLog,
		Log:      logger,
		PageSize: pageSize,
		Loc:      time.Local,
	}
}

// cacheScope scopes cached reads to the caller's token.
func cacheScope(r *http.Request) string {
	p, _ := auth.CurrentPrincipal(r)
	return p.CacheScope()
}

func principalSubject(r *http.Request) string {
	p, _ := auth.CurrentPrincipal(r)
	return p.Subject
}

func (h *Handler) today() time.Time {
	return joindate.Today(h.Loc)
}

// listState reads the list state from the request URL.
func (h *Handler) listState(r *http.Request) liststate.State {
	return liststate.FromQuery(r.URL.Query(), liststate.Default(h.PageSize))
}

// listURL is the list page for s.
func listURL(s liststate.State) string {
	return "/contacts" + trimQuery(s)
}

func contactURL(id string) string {
	return "/contacts/" + url.PathEscape(id)
}

// detailURL is the detail page of id opened on tab.
func detailURL(id, tab string) string {
	if tab == "" || tab == tabDetails {
		return contactURL(id)
	}
	return contactURL(id) + "?tab=" + url.QueryEscape(tab)
}

// loadError is the inline error state shown in place of a table or panel
// when a read fails.
type loadError struct {
	Status    int
	Message   string
	ReloadURL string
}

// HTTPStatus is the status used for a full-page response.
func (e *loadError) HTTPStatus() int {
	if e.Status >= 400 {
		return e.Status
	}
	return http.StatusBadGateway
}

func (h *Handler) readFailure(r *http.Request, what string, err error, reload string) *loadError {
	status := contactsapi.StatusOf(err)
	h.Log.Warn(what+" failed",
		zap.String("path", r.URL.Path),
		zap.Int("upstream_status", status),
		zap.Error(err))
	return &loadError{Status: status, Message: contactsapi.MessageOf(err), ReloadURL: reload}
}

// upstreamStatus maps a failed call to the status of the error page.
func upstreamStatus(err error) int {
	if s := contactsapi.StatusOf(err); s >= 400 {
		return s
	}
	return http.StatusBadGateway
}
