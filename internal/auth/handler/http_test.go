package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"task-forge/backend/internal/auth/service"
	"task-forge/backend/internal/db"
	"task-forge/backend/internal/security"
	sessiondomain "task-forge/backend/internal/session/domain"
	userdomain "task-forge/backend/internal/user/domain"
)

type memUserRepo struct {
	byEmail map[string]*userdomain.User
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	return r.byEmail[email], nil
}

func (r *memUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return db.ErrUniqueViolation
	}
	u2 := *u
	r.byEmail[u.Email] = &u2
	return nil
}

type memSessionRepo struct {
	byToken map[string]*sessiondomain.Session
}

func (r *memSessionRepo) GetByRefreshToken(ctx context.Context, refreshToken string) (*sessiondomain.Session, error) {
	return r.byToken[refreshToken], nil
}

func (r *memSessionRepo) Create(ctx context.Context, s *sessiondomain.Session) error {
	s2 := *s
	r.byToken[s.RefreshToken] = &s2
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *security.TokenProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := security.NewTokenProvider("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)
	svc := service.NewAuthService(
		&memUserRepo{byEmail: make(map[string]*userdomain.User)},
		&memSessionRepo{byToken: make(map[string]*sessiondomain.Session)},
		security.NewHasher(4),
		tokens,
	)
	h := NewHandler(svc, nil, 15*time.Minute, 24*time.Hour)

	r := gin.New()
	h.Register(r.Group("/auth"))
	return r, tokens
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegisterEndpoint(t *testing.T) {
	r, tokens := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/auth/register", `{"email":"a@b.com","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	token, _ := body["token"].(string)
	if tokens.VerifyAccess(token) == nil {
		t.Error("response token should verify as an access token")
	}
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("user field missing in %v", body)
	}
	if user["email"] != "a@b.com" {
		t.Errorf("user.email = %v, want a@b.com", user["email"])
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Error("password hash must not appear in the response")
	}
	if strings.Contains(w.Body.String(), "$2a$") {
		t.Error("bcrypt hash leaked into the response body")
	}
	// Register does not establish a session.
	if len(w.Result().Cookies()) != 0 {
		t.Errorf("register set %d cookies, want 0", len(w.Result().Cookies()))
	}
}

func TestRegisterEndpoint_DuplicateConflict(t *testing.T) {
	r, _ := newTestRouter(t)

	const body = `{"email":"a@b.com","password":"secret1"}`
	if w := doJSON(t, r, http.MethodPost, "/auth/register", body); w.Code != http.StatusOK {
		t.Fatalf("first register status = %d", w.Code)
	}
	w := doJSON(t, r, http.MethodPost, "/auth/register", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("second register status = %d, want 409", w.Code)
	}
	if decodeBody(t, w)["error"] != "user already exists" {
		t.Errorf("error = %v, want %q", decodeBody(t, w)["error"], "user already exists")
	}
}

func TestRegisterEndpoint_BadRequests(t *testing.T) {
	r, _ := newTestRouter(t)

	testCases := []struct {
		name      string
		body      string
		wantError string
	}{
		{"malformed json", `{"email":`, "invalid user format"},
		{"missing password", `{"email":"a@b.com"}`, "invalid user format"},
		{"missing email", `{"password":"secret1"}`, "invalid user format"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/auth/register", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if got := decodeBody(t, w)["error"]; got != tc.wantError {
				t.Errorf("error = %v, want %q", got, tc.wantError)
			}
		})
	}

	// Shape is valid but the values are not; the service-level message is
	// surfaced as-is.
	w := doJSON(t, r, http.MethodPost, "/auth/register", `{"email":"not-an-email","password":"secret1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid email status = %d, want 400", w.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	r, tokens := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/auth/register", `{"email":"a@b.com","password":"secret1"}`)

	w := doJSON(t, r, http.MethodPost, "/auth/login", `{"email":"a@b.com","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	accessToken, _ := body["accessToken"].(string)
	if tokens.VerifyAccess(accessToken) == nil {
		t.Error("accessToken should verify against the access secret")
	}

	access := cookieByName(w, AccessTokenCookie)
	refresh := cookieByName(w, RefreshTokenCookie)
	if access == nil || refresh == nil {
		t.Fatalf("login must set both token cookies; got %v", w.Result().Cookies())
	}
	for _, c := range []*http.Cookie{access, refresh} {
		if !c.HttpOnly {
			t.Errorf("cookie %s must be HttpOnly", c.Name)
		}
		if !c.Secure {
			t.Errorf("cookie %s must be Secure", c.Name)
		}
		if c.SameSite != http.SameSiteStrictMode {
			t.Errorf("cookie %s SameSite = %v, want Strict", c.Name, c.SameSite)
		}
		if c.Path != "/" {
			t.Errorf("cookie %s path = %q, want /", c.Name, c.Path)
		}
	}
	if access.Value != accessToken {
		t.Error("access cookie should carry the same token as the body")
	}
	if tokens.VerifyRefresh(refresh.Value) == nil {
		t.Error("refresh cookie should verify against the refresh secret")
	}
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/auth/register", `{"email":"a@b.com","password":"secret1"}`)

	for _, body := range []string{
		`{"email":"a@b.com","password":"wrong-password"}`,
		`{"email":"nobody@b.com","password":"secret1"}`,
	} {
		w := doJSON(t, r, http.MethodPost, "/auth/login", body)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("login %s status = %d, want 401", body, w.Code)
		}
		if decodeBody(t, w)["error"] != "invalid credentials" {
			t.Errorf("error = %v, want %q", decodeBody(t, w)["error"], "invalid credentials")
		}
		if len(w.Result().Cookies()) != 0 {
			t.Error("failed login must not set cookies")
		}
	}
}

func TestRefreshEndpoint(t *testing.T) {
	r, tokens := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/auth/register", `{"email":"a@b.com","password":"secret1"}`)
	login := doJSON(t, r, http.MethodPost, "/auth/login", `{"email":"a@b.com","password":"secret1"}`)
	refreshCookie := cookieByName(login, RefreshTokenCookie)
	if refreshCookie == nil {
		t.Fatal("login did not set a refresh cookie")
	}

	w := doJSON(t, r, http.MethodGet, "/auth/refresh", "", &http.Cookie{Name: RefreshTokenCookie, Value: refreshCookie.Value})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["message"] != "access token refreshed" {
		t.Errorf("message = %v, want %q", decodeBody(t, w)["message"], "access token refreshed")
	}

	access := cookieByName(w, AccessTokenCookie)
	if access == nil {
		t.Fatal("refresh must set a new access cookie")
	}
	if tokens.VerifyAccess(access.Value) == nil {
		t.Error("refreshed access cookie should verify")
	}
	if cookieByName(w, RefreshTokenCookie) != nil {
		t.Error("refresh must not rotate the refresh cookie")
	}
}

func TestRefreshEndpoint_NoCookie(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/auth/refresh", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if decodeBody(t, w)["error"] != "no refresh token" {
		t.Errorf("error = %v, want %q", decodeBody(t, w)["error"], "no refresh token")
	}
}

func TestRefreshEndpoint_WrongTokenType(t *testing.T) {
	r, tokens := newTestRouter(t)

	// A signed access token presented through the refresh cookie.
	access, _, err := tokens.IssueAccess("u1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	w := doJSON(t, r, http.MethodGet, "/auth/refresh", "", &http.Cookie{Name: RefreshTokenCookie, Value: access})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if decodeBody(t, w)["error"] != "invalid token type" {
		t.Errorf("error = %v, want %q", decodeBody(t, w)["error"], "invalid token type")
	}
}

func TestRefreshEndpoint_UnknownSession(t *testing.T) {
	r, tokens := newTestRouter(t)

	// Verifies fine but no session row exists for it.
	refresh, _, err := tokens.IssueRefresh("u1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	w := doJSON(t, r, http.MethodGet, "/auth/refresh", "", &http.Cookie{Name: RefreshTokenCookie, Value: refresh})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if decodeBody(t, w)["error"] != "token is either expired or invalid" {
		t.Errorf("error = %v, want %q", decodeBody(t, w)["error"], "token is either expired or invalid")
	}
}
