package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amrpyt/Finance-tracker-BmadMethod-sub000/internal/auth/entity"
)

func newTestHandler(strategy entity.Strategy) (*Handler, *fakeLegacyStore, *fakeIdentityStore) {
	legacy := newFakeLegacyStore()
	identity := newFakeIdentityStore()
	cfg := testConfig(strategy)
	svc := NewServiceWithStores(legacy, identity, fakeHasher{}, cfg, zap.NewNop().Sugar())
	return NewHandlerWithService(svc, cfg, zap.NewNop().Sugar()), legacy, identity
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSignupHandler_Created(t *testing.T) {
	h, _, _ := newTestHandler(entity.StrategyDual)

	rec := postJSON(t, h.Signup, `{"name":"Jane","email":"jane@x.com","password":"longenough"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Account created", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "jane@x.com", user["email"])
	assert.Equal(t, true, user["isMigrated"])

	sess := findCookie(rec.Result().Cookies(), SessionCookieName)
	require.NotNil(t, sess)
	assert.True(t, sess.HttpOnly)
	assert.NotEmpty(t, sess.Value)
}

func TestSignupHandler_ShortPasswordRejected(t *testing.T) {
	h, _, identity := newTestHandler(entity.StrategyDual)

	rec := postJSON(t, h.Signup, `{"name":"Jane","email":"jane@x.com","password":"short"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, identity.users)
}

func TestSignupHandler_DuplicateConflict(t *testing.T) {
	h, _, _ := newTestHandler(entity.StrategyDual)

	rec := postJSON(t, h.Signup, `{"name":"Jane","email":"jane@x.com","password":"longenough"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.Signup, `{"name":"Janet","email":"Jane@X.com","password":"longenough"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginHandler_FirstLoginSetsSessionAndMigratedFlag(t *testing.T) {
	h, legacy, _ := newTestHandler(entity.StrategyDual)
	legacy.add(&entity.LegacyUser{ID: "u1", Email: "jane@x.com", Name: "Jane", PasswordHash: "hashed:longenough"})

	rec := postJSON(t, h.Login, `{"email":"jane@x.com","password":"longenough"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["migrated"])

	cookies := rec.Result().Cookies()
	sess := findCookie(cookies, SessionCookieName)
	require.NotNil(t, sess)
	assert.NotEmpty(t, sess.Value)
	assert.Nil(t, findCookie(cookies, LegacyCookieName))

	// a second login is no longer a migration
	rec = postJSON(t, h.Login, `{"email":"jane@x.com","password":"longenough"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	_, present := body["migrated"]
	assert.False(t, present)
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	h, legacy, _ := newTestHandler(entity.StrategyDual)
	legacy.add(&entity.LegacyUser{ID: "u1", Email: "jane@x.com", PasswordHash: "hashed:longenough"})

	rec := postJSON(t, h.Login, `{"email":"jane@x.com","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication failed", decodeBody(t, rec)["error"])
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginHandler_UnknownEmailSameResponse(t *testing.T) {
	h, _, _ := newTestHandler(entity.StrategyDual)

	rec := postJSON(t, h.Login, `{"email":"nobody@x.com","password":"whatever"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication failed", decodeBody(t, rec)["error"])
}

func TestLoginHandler_NewStoreDownIssuesLegacyCookie(t *testing.T) {
	h, legacy, identity := newTestHandler(entity.StrategyDual)
	legacy.add(&entity.LegacyUser{ID: "u1", Email: "jane@x.com", PasswordHash: "hashed:longenough"})
	identity.failAll = fmt.Errorf("connection refused")

	rec := postJSON(t, h.Login, `{"email":"jane@x.com","password":"longenough"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	assert.NotNil(t, findCookie(cookies, LegacyCookieName))
	assert.Nil(t, findCookie(cookies, SessionCookieName))
}

func TestMeHandler_Unauthenticated(t *testing.T) {
	h, _, _ := newTestHandler(entity.StrategyDual)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeHandler_WithLegacyCookie(t *testing.T) {
	h, legacy, _ := newTestHandler(entity.StrategyDual)
	legacy.add(&entity.LegacyUser{ID: "u1", Email: "jane@x.com", Name: "Jane", PasswordHash: "hashed:pw"})
	tok, err := h.svc.tokens.Generate("u1", "jane@x.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: LegacyCookieName, Value: tok})
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, string(entity.AuthTypeLegacy), body["authType"])
	assert.Equal(t, false, body["isMigrated"])
}

func TestLogoutHandler_AlwaysOKAndClearsEveryCookie(t *testing.T) {
	h, _, identity := newTestHandler(entity.StrategyDual)
	identity.deleteSessionErr = fmt.Errorf("connection refused")

	rec := postJSON(t, h.Logout, "", &http.Cookie{Name: SessionCookieName, Value: "sess-1"})

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	for _, name := range append([]string{LegacyCookieName}, betterAuthCookieNames...) {
		c := findCookie(cookies, name)
		require.NotNil(t, c, "cookie %s must be cleared", name)
		assert.Less(t, c.MaxAge, 0)
		assert.Empty(t, c.Value)
	}
}

func TestLogoutHandler_NoCredentialsStillOK(t *testing.T) {
	h, _, _ := newTestHandler(entity.StrategyDual)

	rec := postJSON(t, h.Logout, "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_BlocksAndInjects(t *testing.T) {
	_, legacy, identity := newTestHandler(entity.StrategyDual)
	cfg := testConfig(entity.StrategyDual)
	svc := NewServiceWithStores(legacy, identity, fakeHasher{}, cfg, zap.NewNop().Sugar())

	var seen *entity.AuthenticatedUser
	protected := RequireAuth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	// no credentials
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)

	// legacy token is an acceptable credential during migration
	legacy.add(&entity.LegacyUser{ID: "u1", Email: "jane@x.com", PasswordHash: "hashed:pw"})
	tok, err := svc.tokens.Generate("u1", "jane@x.com")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	req.AddCookie(&http.Cookie{Name: LegacyCookieName, Value: tok})
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.ID)
}
