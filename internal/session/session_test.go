package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/otpauth/internal/pkg/errors"
)

func TestIssuerRoundTrip(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), 0)
	token, err := issuer.Issue("acc-1")
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "acc-1", claims.UserID)
	require.WithinDuration(t, claims.IssuedAt.Add(DefaultTTL), claims.ExpiresAt.Time, time.Second)
}

func TestIssuerExpiry(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), time.Hour)
	base := time.Now()
	issuer.now = func() time.Time { return base }
	token, err := issuer.Issue("acc-1")
	require.NoError(t, err)

	issuer.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, appErr.ErrTokenExpired)
}

func TestIssuerRejectsForeignSecret(t *testing.T) {
	token, err := NewIssuer([]byte("a"), time.Hour).Issue("acc-1")
	require.NoError(t, err)

	_, err = NewIssuer([]byte("b"), time.Hour).Verify(token)
	require.ErrorIs(t, err, appErr.ErrInvalidToken)
}

func TestCookiesSetAndClearShareAttributes(t *testing.T) {
	for _, secure := range []bool{false, true} {
		cookies := NewCookies(secure)

		setRec := httptest.NewRecorder()
		cookies.Set(setRec, "tok")
		set := setRec.Result().Cookies()
		require.Len(t, set, 1)

		clearRec := httptest.NewRecorder()
		cookies.Clear(clearRec)
		cleared := clearRec.Result().Cookies()
		require.Len(t, cleared, 1)

		require.Equal(t, "token", set[0].Name)
		require.Equal(t, "tok", set[0].Value)
		require.Zero(t, set[0].MaxAge)
		require.True(t, set[0].HttpOnly)
		require.Equal(t, http.SameSiteStrictMode, set[0].SameSite)
		require.Equal(t, secure, set[0].Secure)

		require.Equal(t, set[0].Name, cleared[0].Name)
		require.Equal(t, set[0].Path, cleared[0].Path)
		require.Equal(t, set[0].HttpOnly, cleared[0].HttpOnly)
		require.Equal(t, set[0].SameSite, cleared[0].SameSite)
		require.Equal(t, set[0].Secure, cleared[0].Secure)
		require.Empty(t, cleared[0].Value)
		require.Equal(t, -1, cleared[0].MaxAge)
	}
}

func TestCookiesRead(t *testing.T) {
	cookies := NewCookies(false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, cookies.Read(req))

	req.AddCookie(&http.Cookie{Name: "token", Value: "abc"})
	require.Equal(t, "abc", cookies.Read(req))
}
