package handler_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"stowage.sh/core/log"
	"stowage.sh/core/rbac"
	"stowage.sh/core/registry/auth"
	"stowage.sh/core/registry/db"
	"stowage.sh/core/registry/models"
	"stowage.sh/core/registry/notify"
	"stowage.sh/core/registry/ownership"
	"stowage.sh/core/registry/retire"
	"stowage.sh/core/registry/web"
)

type testApp struct {
	db       *db.DB
	enforcer *rbac.Enforcer
	auth     *auth.Auth
	router   http.Handler
}

func setup(t *testing.T) *testApp {
	t.Helper()
	dir := t.TempDir()

	d, err := db.Make(filepath.Join(dir, "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	enforcer, err := rbac.NewEnforcer(filepath.Join(dir, "acl.db"))
	require.NoError(t, err)

	a := auth.New("00000000000000000000000000000000")
	resolver := ownership.NewResolver(enforcer)
	service := retire.NewService(log.New("test"), d, resolver, &notify.BaseNotifier{})

	return &testApp{
		db:       d,
		enforcer: enforcer,
		auth:     a,
		router:   web.Router(log.New("test"), d, a, service),
	}
}

// sessionCookie logs the account in and returns its session cookie.
func (app *testApp) sessionCookie(t *testing.T, account string) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, app.auth.SaveSession(w, r, account))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func (app *testApp) seedPackage(t *testing.T, name string, age time.Duration, owner string) int64 {
	t.Helper()

	id, err := db.AddPackage(app.db, models.Package{
		Name:    name,
		Created: time.Now().Add(-age),
	})
	require.NoError(t, err)
	require.NoError(t, db.AddOwner(app.db, id, models.Owner{
		Kind:    models.OwnerKindUser,
		Account: owner,
	}))
	return id
}

func (app *testApp) deletePackage(name string, cookie *http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodDelete, "/api/v1/packages/"+name, nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	for k, v := range headers {
		r.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, r)
	return w
}

func (app *testApp) assertPackageExists(t *testing.T, name string, exists bool) {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/packages/"+name, nil)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, r)

	expected := http.StatusOK
	if !exists {
		expected = http.StatusNotFound
	}
	assert.Equal(t, expected, w.Code)
}

func TestDeleteNewPackage(t *testing.T) {
	app := setup(t)
	id := app.seedPackage(t, "foo", 71*time.Hour, "alice")
	require.NoError(t, db.SetDownloads(app.db, id, 10_000))

	w := app.deletePackage("foo", app.sessionCookie(t, "alice"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	app.assertPackageExists(t, "foo", false)

	jobs, err := db.GetJobs(app.db)
	require.NoError(t, err)
	assert.Len(t, jobs, 3)
}

func TestDeleteOldPackage(t *testing.T) {
	app := setup(t)
	id := app.seedPackage(t, "foo", 73*time.Hour, "alice")
	require.NoError(t, db.SetDownloads(app.db, id, 100))

	w := app.deletePackage("foo", app.sessionCookie(t, "alice"), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	app.assertPackageExists(t, "foo", false)
}

func TestDeleteNoAuth(t *testing.T) {
	app := setup(t)
	app.seedPackage(t, "foo", 1*time.Hour, "alice")

	w := app.deletePackage("foo", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t,
		`{"errors":[{"detail":"this action requires authentication"}]}`,
		w.Body.String())

	app.assertPackageExists(t, "foo", true)
}

func TestDeleteTokenAuth(t *testing.T) {
	app := setup(t)
	app.seedPackage(t, "foo", 1*time.Hour, "alice")

	w := app.deletePackage("foo", nil, map[string]string{
		"Authorization": "Bearer sometoken",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t,
		`{"errors":[{"detail":"this action can only be performed on the stowage website"}]}`,
		w.Body.String())

	app.assertPackageExists(t, "foo", true)
}

func TestDeleteMissingPackage(t *testing.T) {
	app := setup(t)

	w := app.deletePackage("foo", app.sessionCookie(t, "alice"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t,
		"{\"errors\":[{\"detail\":\"crate `foo` does not exist\"}]}",
		w.Body.String())
}

func TestDeleteNotOwner(t *testing.T) {
	app := setup(t)
	app.seedPackage(t, "foo", 1*time.Hour, "alice")

	w := app.deletePackage("foo", app.sessionCookie(t, "bob"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t,
		`{"errors":[{"detail":"only owners have permission to delete crates"}]}`,
		w.Body.String())

	app.assertPackageExists(t, "foo", true)
}

func TestDeleteGroupMember(t *testing.T) {
	app := setup(t)
	id := app.seedPackage(t, "foo", 1*time.Hour, "alice")

	require.NoError(t, app.enforcer.AddGroup("rustaceans"))
	require.NoError(t, app.enforcer.AddGroupMember("rustaceans", "bob"))
	require.NoError(t, db.AddOwner(app.db, id, models.Owner{
		Kind:    models.OwnerKindGroup,
		Account: "rustaceans",
	}))

	w := app.deletePackage("foo", app.sessionCookie(t, "bob"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t,
		`{"errors":[{"detail":"group members don't have permission to delete crates"}]}`,
		w.Body.String())

	app.assertPackageExists(t, "foo", true)
}

func TestDeleteTooManyOwners(t *testing.T) {
	app := setup(t)
	id := app.seedPackage(t, "foo", 73*time.Hour, "alice")
	require.NoError(t, db.AddOwner(app.db, id, models.Owner{
		Kind:    models.OwnerKindUser,
		Account: "bob",
	}))

	w := app.deletePackage("foo", app.sessionCookie(t, "alice"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t,
		`{"errors":[{"detail":"only crates with a single owner can be deleted after 72 hours"}]}`,
		w.Body.String())

	app.assertPackageExists(t, "foo", true)
}

func TestDeleteTooManyDownloads(t *testing.T) {
	app := setup(t)
	id := app.seedPackage(t, "foo", 73*time.Hour, "alice")
	require.NoError(t, db.SetDownloads(app.db, id, 101))

	w := app.deletePackage("foo", app.sessionCookie(t, "alice"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t,
		`{"errors":[{"detail":"only crates with less than 100 downloads per month can be deleted after 72 hours"}]}`,
		w.Body.String())

	app.assertPackageExists(t, "foo", true)

	jobs, err := db.GetJobs(app.db)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestDeleteReverseDependency(t *testing.T) {
	app := setup(t)
	fooID := app.seedPackage(t, "foo", 73*time.Hour, "alice")
	barID := app.seedPackage(t, "bar", 1*time.Hour, "alice")

	versionID, err := db.AddVersion(app.db, models.Version{
		PackageID: barID,
		Num:       "1.0.0",
		Created:   time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, db.AddDependency(app.db, models.Dependency{
		VersionID: versionID,
		PackageID: fooID,
	}))

	w := app.deletePackage("foo", app.sessionCookie(t, "alice"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t,
		`{"errors":[{"detail":"only crates without reverse dependencies can be deleted after 72 hours"}]}`,
		w.Body.String())

	app.assertPackageExists(t, "foo", true)
}
