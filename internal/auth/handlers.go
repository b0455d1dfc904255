// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tmmbs/internal/logging"
	"github.com/tomtom215/tmmbs/internal/models"
)

const maxSignInBody = 64 << 10

// WebConfig is the Firebase web SDK configuration handed to the browser.
type WebConfig struct {
	APIKey            string `json:"apiKey"`
	AuthDomain        string `json:"authDomain"`
	ProjectID         string `json:"projectId"`
	StorageBucket     string `json:"storageBucket,omitempty"`
	MessagingSenderID string `json:"messagingSenderId,omitempty"`
	AppID             string `json:"appId"`
	MeasurementID     string `json:"measurementId,omitempty"`
}

// Handlers serves the sign-in and sign-out lifecycle.
type Handlers struct {
	verifier TokenVerifier
	roles    RoleDeriver
	cookies  *SessionCookies
	web      WebConfig
	security *logging.SecurityLogger
}

// NewHandlers wires the sign-in/sign-out handlers.
func NewHandlers(verifier TokenVerifier, roles RoleDeriver, cookies *SessionCookies, web WebConfig) *Handlers {
	return &Handlers{
		verifier: verifier,
		roles:    roles,
		cookies:  cookies,
		web:      web,
		security: logging.NewSecurityLogger(),
	}
}

// SignIn exchanges a freshly issued ID token for a session cookie.
// It accepts a form field idToken or a JSON body {"idToken": "..."}.
//
//	POST /auth/session      idToken=...&returnUrl=/Booking
//	200 {"uid":"...","roles":["admin"],"returnUrl":"/Booking"}
func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	req, err := readSignInRequest(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.IDToken) == "" {
		SignIns.WithLabelValues("missing_token").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing idToken"})
		return
	}

	claims, err := h.verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		kind := KindOf(err)
		h.cookies.Clear(w)
		SignIns.WithLabelValues(kind.String()).Inc()
		h.security.LogSignInFailure(kind.String(), ClientIP(r), r.UserAgent(), err.Error())
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		return
	}

	h.cookies.Set(w, strings.TrimSpace(req.IDToken))
	SignIns.WithLabelValues("success").Inc()
	h.security.LogSignIn(claims.Subject, claims.Email, ClientIP(r), r.UserAgent())

	writeJSON(w, http.StatusOK, models.SessionResponse{
		UID:       claims.Subject,
		Roles:     rolesFor(h.roles, claims).Strings(),
		ReturnURL: SanitizeReturnURL(req.ReturnURL),
	})
}

// SignOut clears the session cookie and always answers 200.
func (h *Handlers) SignOut(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w, r)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// SignOutRedirect clears the session cookie and sends the browser home.
func (h *Handlers) SignOutRedirect(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) clearSession(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	SignOuts.Inc()
	h.security.LogSignOut(PrincipalFromContext(r.Context()).Subject(), ClientIP(r))
}

// Me describes the current principal.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, models.PrincipalResponse{
		Authenticated: p.IsAuthenticated(),
		UID:           p.Subject(),
		Email:         p.Email(),
		DisplayName:   p.DisplayName(),
		Roles:         p.Roles().Strings(),
	})
}

// FirebaseConfigJS serves window.firebaseConfig for the web SDK.
func (h *Handlers) FirebaseConfigJS(w http.ResponseWriter, _ *http.Request) {
	body, err := json.Marshal(h.web)
	if err != nil {
		http.Error(w, "config unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = io.WriteString(w, "window.firebaseConfig = "+string(body)+";\n")
}

// SignInPage renders the sign-in page.
func (h *Handlers) SignInPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "signin")
}

// SignUpPage renders the account creation page.
func (h *Handlers) SignUpPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "signup")
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, mode string) {
	data := pageData{
		Mode:      mode,
		ReturnURL: SanitizeReturnURL(r.URL.Query().Get("returnUrl")),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := signInTemplate.Execute(w, data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("render sign-in page")
	}
}

// SanitizeReturnURL only lets local absolute paths through; anything else
// becomes "/".
func SanitizeReturnURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return raw
}

func readSignInRequest(w http.ResponseWriter, r *http.Request) (models.SignInRequest, error) {
	var req models.SignInRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxSignInBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return req, errors.New("invalid JSON body")
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, errors.New("invalid form body")
		}
		req.IDToken = r.PostForm.Get("idToken")
		req.ReturnURL = r.PostForm.Get("returnUrl")
	}
	if req.ReturnURL == "" {
		req.ReturnURL = r.URL.Query().Get("returnUrl")
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
