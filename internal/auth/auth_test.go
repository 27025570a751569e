package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restou/internal/admin"
)

var testAdmin = admin.Admin{ID: 7, Username: "chef", Role: admin.RoleAdmin}

func TestIssueAndVerify(t *testing.T) {
	iss := NewIssuer("secret", false)

	token, err := iss.Issue(testAdmin)
	require.NoError(t, err)

	claims, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.ID)
	assert.Equal(t, "chef", claims.Username)
	assert.Equal(t, admin.RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestVerify_Rejects(t *testing.T) {
	iss := NewIssuer("secret", false)

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := NewIssuer("other", false).Issue(testAdmin)
		require.NoError(t, err)
		_, err = iss.Verify(token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("Expired", func(t *testing.T) {
		old := NewIssuer("secret", false)
		old.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
		token, err := old.Issue(testAdmin)
		require.NoError(t, err)
		_, err = iss.Verify(token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("WrongAlgorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{ID: 1, Role: admin.RoleAdmin}).
			SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = iss.Verify(token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := iss.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestSetCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	NewIssuer("secret", true).SetCookie(rec, "abc")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestRequireRole(t *testing.T) {
	iss := NewIssuer("secret", false)
	called := false
	handler := iss.RequireRole(admin.RoleSuperadmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		claims, ok := ClaimsFrom(r.Context())
		assert.True(t, ok)
		assert.Equal(t, admin.RoleSuperadmin, claims.Role)
		w.WriteHeader(http.StatusNoContent)
	}))

	request := func(a *admin.Admin) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if a != nil {
			token, err := iss.Issue(*a)
			require.NoError(t, err)
			req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("NoCookie", func(t *testing.T) {
		called = false
		rec := request(nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, called)
	})

	t.Run("WrongRole", func(t *testing.T) {
		called = false
		rec := request(&testAdmin)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, called)
	})

	t.Run("Allowed", func(t *testing.T) {
		called = false
		rec := request(&admin.Admin{ID: 1, Username: "root", Role: admin.RoleSuperadmin})
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, called)
	})
}
