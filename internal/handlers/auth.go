package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"landingpress/internal/middleware"
	"landingpress/internal/models"
	"landingpress/internal/render"
	"landingpress/internal/session"
)

// totpIssuer is the account label shown in authenticator apps.
const totpIssuer = "LandingPress"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer  *render.Renderer
	sessions  Sessions
	operators OperatorStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions Sessions, operators OperatorStore) *Auth {
	return &Auth{
		renderer:  renderer,
		sessions:  sessions,
		operators: operators,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.TwoFADone {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Sign In",
		Data:  map[string]any{"Email": ""},
	})
}

// LoginSubmit processes the login form.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	op, err := a.operators.FindByEmail(r.Context(), email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.loginError(w, r, email, "An unexpected error occurred.")
		return
	}

	if op == nil || !a.operators.CheckPassword(op, password) {
		slog.Warn("failed login", "email", email, "ip", r.RemoteAddr)
		a.loginError(w, r, email, "Invalid email or password.")
		return
	}

	// TwoFADone starts false; the operator still has to pass TOTP.
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		OperatorID:  op.ID,
		Email:       op.Email,
		DisplayName: op.DisplayName,
		TwoFADone:   false,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if op.Needs2FASetup() {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
	} else {
		http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
	}
}

func (a *Auth) loginError(w http.ResponseWriter, r *http.Request, email, msg string) {
	a.renderer.PageStatus(w, r, http.StatusUnauthorized, "login", &render.PageData{
		Title: "Sign In",
		Data:  map[string]any{"Error": msg, "Email": email},
	})
}

// TwoFASetupPage generates a TOTP secret and displays the QR code.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	op, err := a.operators.FindByID(r.Context(), sess.OperatorID)
	if err != nil || op == nil {
		slog.Error("operator lookup for 2fa setup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	// Enrolled operators verify instead of re-enrolling.
	if !op.Needs2FASetup() {
		http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := a.operators.SetTOTPSecret(r.Context(), sess.OperatorID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	qr, err := qrBase64(key.URL())
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "2fa_setup", &render.PageData{
		Title: "Set Up Two-Factor Authentication",
		Data: map[string]any{
			"QRCode": qr,
			"Secret": key.Secret(),
		},
	})
}

// TwoFAVerifyPage renders the code entry form for enrolled operators.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "2fa_verify", &render.PageData{
		Title: "Two-Factor Authentication",
	})
}

// TwoFAVerifySubmit validates the TOTP code and completes authentication.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	code := strings.TrimSpace(r.FormValue("code"))

	op, err := a.operators.FindByID(r.Context(), sess.OperatorID)
	if err != nil || op == nil {
		slog.Error("operator lookup for 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if op.TOTPSecret == nil {
		http.Redirect(w, r, "/admin/2fa/setup", http.StatusSeeOther)
		return
	}

	if !totp.Validate(code, *op.TOTPSecret) {
		if op.Needs2FASetup() {
			a.setupError(w, r, op)
			return
		}
		a.renderer.PageStatus(w, r, http.StatusUnauthorized, "2fa_verify", &render.PageData{
			Title: "Two-Factor Authentication",
			Data:  map[string]any{"Error": "Invalid code. Please try again."},
		})
		return
	}

	if op.Needs2FASetup() {
		if err := a.operators.EnableTOTP(r.Context(), op.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("operator signed in", "operator_id", op.ID)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// setupError re-renders the enrollment page with the pending secret.
func (a *Auth) setupError(w http.ResponseWriter, r *http.Request, op *models.Operator) {
	v := url.Values{}
	v.Set("secret", *op.TOTPSecret)
	v.Set("issuer", totpIssuer)
	uri := "otpauth://totp/" + url.PathEscape(totpIssuer+":"+op.Email) + "?" + v.Encode()

	qr, _ := qrBase64(uri)
	a.renderer.PageStatus(w, r, http.StatusUnauthorized, "2fa_setup", &render.PageData{
		Title: "Set Up Two-Factor Authentication",
		Data: map[string]any{
			"Error":  "Invalid code. Please try again.",
			"QRCode": qr,
			"Secret": *op.TOTPSecret,
		},
	})
}

// Logout destroys the session and redirects to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func qrBase64(uri string) (string, error) {
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
