// Package auth adapts the upstream authentication collaborator into a
// Requester: cookie sessions make interactive requesters, API tokens
// make non-interactive ones.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"stowage.sh/core/registry/models"
)

const (
	SessionName          = "stowage-session"
	SessionAccount       = "account"
	SessionAuthenticated = "authenticated"
)

var ErrUnauthenticated = errors.New("no valid session")

type Auth struct {
	store *sessions.CookieStore
}

func New(cookieSecret string) *Auth {
	return &Auth{
		store: sessions.NewCookieStore([]byte(cookieSecret)),
	}
}

func (a *Auth) SaveSession(w http.ResponseWriter, r *http.Request, account string) error {
	session, err := a.store.Get(r, SessionName)
	if err != nil {
		return err
	}

	session.Values[SessionAccount] = account
	session.Values[SessionAuthenticated] = true
	return session.Save(r, w)
}

func (a *Auth) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session, err := a.store.Get(r, SessionName)
	if err != nil {
		return err
	}

	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// RequesterFromRequest produces the caller's identity. A bearer token
// yields a non-interactive requester; the account behind the token is
// resolved by the token service where it is needed, which retirement
// never is, since non-interactive callers are rejected up front.
func (a *Auth) RequesterFromRequest(r *http.Request) (*models.Requester, error) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return &models.Requester{Interactive: false}, nil
	}

	session, err := a.store.Get(r, SessionName)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if session.IsNew {
		return nil, ErrUnauthenticated
	}

	auth, ok := session.Values[SessionAuthenticated].(bool)
	if !ok || !auth {
		return nil, ErrUnauthenticated
	}

	account, ok := session.Values[SessionAccount].(string)
	if !ok || account == "" {
		return nil, ErrUnauthenticated
	}

	return &models.Requester{Account: account, Interactive: true}, nil
}
