package session

import (
	"net/http"
)

const CookieName = "token"

// Cookies writes the session cookie. Clear must use the same attributes as
// Set or some browsers keep the old cookie.
type Cookies struct {
	Name   string
	Secure bool
}

func NewCookies(secure bool) Cookies {
	return Cookies{Name: CookieName, Secure: secure}
}

func (c Cookies) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(token, 0))
}

func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c Cookies) Read(r *http.Request) string {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c Cookies) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
