// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

var validToken = strings.Repeat("0f", csrfTokenLength)

func csrfHandler(secure bool, seen *string) http.Handler {
	return NewCSRF(secure)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = CSRFTokenFromCtx(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func csrfCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	return nil
}

func TestCSRFIssuesCookie(t *testing.T) {
	for _, secure := range []bool{true, false} {
		var seen string
		rec := httptest.NewRecorder()
		csrfHandler(secure, &seen).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/login", nil))

		c := csrfCookie(rec)
		if c == nil {
			t.Fatalf("secure=%v: no CSRF cookie", secure)
		}
		if c.Secure != secure || c.SameSite != http.SameSiteStrictMode || c.HttpOnly {
			t.Errorf("secure=%v: unexpected cookie attributes %+v", secure, c)
		}
		if !validCSRFToken(c.Value) {
			t.Errorf("token %q is not 64 hex chars", c.Value)
		}
		if seen != c.Value {
			t.Errorf("context token %q != cookie %q", seen, c.Value)
		}
	}
}

func TestCSRFCookieReuse(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		reused bool
	}{
		{"valid token kept", validToken, true},
		{"short token replaced", "tok", false},
		{"non-hex token replaced", strings.Repeat("zz", csrfTokenLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: tt.cookie})
			rec := httptest.NewRecorder()
			csrfHandler(false, &seen).ServeHTTP(rec, req)

			if got := seen == tt.cookie; got != tt.reused {
				t.Errorf("reused: got %v, want %v", got, tt.reused)
			}
			if issued := csrfCookie(rec) != nil; issued == tt.reused {
				t.Errorf("new cookie issued: %v", issued)
			}
		})
	}
}

func TestCSRFValidation(t *testing.T) {
	tests := []struct {
		name   string
		method string
		header string
		form   string
		want   int
	}{
		{"GET passes", http.MethodGet, "", "", http.StatusOK},
		{"HEAD passes", http.MethodHead, "", "", http.StatusOK},
		{"OPTIONS passes", http.MethodOptions, "", "", http.StatusOK},
		{"POST without token", http.MethodPost, "", "", http.StatusForbidden},
		{"POST wrong header", http.MethodPost, strings.Repeat("11", csrfTokenLength), "", http.StatusForbidden},
		{"POST header token", http.MethodPost, validToken, "", http.StatusOK},
		{"POST form token", http.MethodPost, "", validToken, http.StatusOK},
		{"PUT without token", http.MethodPut, "", "", http.StatusForbidden},
		{"PATCH without token", http.MethodPatch, "", "", http.StatusForbidden},
		{"DELETE header token", http.MethodDelete, validToken, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.form != "" {
				body := url.Values{CSRFFormField: {tt.form}}.Encode()
				req = httptest.NewRequest(tt.method, "/admin/products", strings.NewReader(body))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			} else {
				req = httptest.NewRequest(tt.method, "/admin/products", nil)
			}
			req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: validToken})
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}

			rec := httptest.NewRecorder()
			csrfHandler(false, nil).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestCSRFTokenFromCtx_Empty(t *testing.T) {
	if got := CSRFTokenFromCtx(httptest.NewRequest(http.MethodGet, "/", nil).Context()); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
