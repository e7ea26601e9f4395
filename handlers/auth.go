// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/community-forum/auth"
	"github.com/danielhkuo/community-forum/cliparse"
	"github.com/danielhkuo/community-forum/db"
	"github.com/danielhkuo/community-forum/mail"
	"github.com/danielhkuo/community-forum/middleware"
	"github.com/danielhkuo/community-forum/models"
)

const (
	// CodeTTL is how long a verification code stays valid.
	CodeTTL = 10 * time.Minute

	// codeGrace is how long after expiry a consumed code still proves the
	// email to signup and OTP sign-in.
	codeGrace = 5 * time.Minute

	// codeRetention is how long expired or used codes are kept.
	codeRetention = 24 * time.Hour

	otpPrefix = "OTP:"

	tooManyAttempts = "Too many attempts, please wait a minute"
)

var (
	usernameStrip  = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	otpCodePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

type AuthHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	mailer mail.Sender
	// emailLimiter bounds how many codes one address can be sent.
	emailLimiter *middleware.KeyedLimiter
	// attemptLimiter bounds code guesses per address.
	attemptLimiter *middleware.KeyedLimiter
}

func NewAuthHandler(db *sql.DB, cfg cliparse.Config, mailer mail.Sender) *AuthHandler {
	return &AuthHandler{
		db:           db,
		cfg:          cfg,
		mailer:       mailer,
		emailLimiter:   middleware.NewKeyedLimiter("otp_email", time.Minute, 3),
		attemptLimiter: middleware.NewKeyedLimiter("otp_attempt", time.Minute, 5),
	}
}

func codeType(purpose string) string {
	if purpose == "signup" {
		return models.CodeEmailVerification
	}
	return models.CodeSignIn
}

// SendOTP handles POST /api/auth/send-otp
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req models.SendOTPRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !h.emailLimiter.Allow(email) {
		middleware.ErrorResponse(w, http.StatusTooManyRequests, "Too many codes requested, please wait a minute")
		return
	}

	var (
		userID string
		banned bool
	)
	err := h.db.QueryRowContext(r.Context(), `SELECT id, is_banned FROM users WHERE email = $1`, email).Scan(&userID, &banned)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		serverError(w, "failed to look up user", err)
		return
	}

	if req.Type == "signup" {
		if exists {
			middleware.ErrorResponse(w, http.StatusBadRequest, "An account with this email already exists")
			return
		}
	} else {
		if !exists {
			// Same response as a real send so addresses cannot be probed.
			slog.Info("sign-in code requested for unknown email")
			middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
			return
		}
		if banned {
			middleware.ErrorResponse(w, http.StatusForbidden, "This account has been suspended")
			return
		}
	}

	code, err := CreateVerificationCode(r.Context(), h.db, email, codeType(req.Type), userID)
	if err != nil {
		serverError(w, "failed to create verification code", err)
		return
	}

	purpose := mail.PurposeSignIn
	if req.Type == "signup" {
		purpose = mail.PurposeSignUp
	}
	msg, err := mail.VerificationEmail(email, code, purpose, CodeTTL, now())
	if err != nil {
		serverError(w, "failed to build verification email", err)
		return
	}
	if err := h.mailer.Send(r.Context(), msg); err != nil {
		slog.Error("failed to send verification email", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to send verification email. Please try again.")
		return
	}

	middleware.OTPSentTotal.WithLabelValues(req.Type).Inc()
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// CreateVerificationCode stores a fresh code for email and invalidates any
// earlier unused code of the same type.
func CreateVerificationCode(ctx context.Context, conn *sql.DB, email, codeType, userID string) (string, error) {
	code, err := auth.GenerateOTP()
	if err != nil {
		return "", err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin code tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE verification_code SET used = TRUE
		WHERE email = $1 AND type = $2 AND used = FALSE
	`, email, codeType); err != nil {
		return "", fmt.Errorf("invalidate codes: %w", err)
	}

	t := now()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO verification_code (id, code, type, email, user_id, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
	`, auth.NewID(), code, codeType, email, nullable(userID), t.Add(CodeTTL), t); err != nil {
		return "", fmt.Errorf("insert code: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit code: %w", err)
	}
	return code, nil
}

// VerifyCode consumes a matching unused, unexpired code. It returns false
// when no such code exists.
func VerifyCode(ctx context.Context, conn *sql.DB, email, code, codeType string) (bool, *string, error) {
	t := now()

	var (
		id     string
		userID *string
	)
	err := conn.QueryRowContext(ctx, `
		SELECT id, user_id FROM verification_code
		WHERE email = $1 AND code = $2 AND type = $3 AND used = FALSE AND expires_at > $4
		ORDER BY created_at DESC
		LIMIT 1
	`, email, code, codeType, t).Scan(&id, &userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("find code: %w", err)
	}

	// The used = FALSE guard makes concurrent verifications consume it once.
	res, err := conn.ExecContext(ctx, `UPDATE verification_code SET used = TRUE WHERE id = $1 AND used = FALSE`, id)
	if err != nil {
		return false, nil, fmt.Errorf("consume code: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return false, nil, err
	}

	return true, userID, nil
}

// signInCodeConsumed reports whether the SIGN_IN code was verified for email
// and has not been expired longer than codeGrace.
func signInCodeConsumed(ctx context.Context, conn *sql.DB, email, code string) (bool, error) {
	var n int
	err := conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM verification_code
		WHERE email = $1 AND type = $2 AND code = $3 AND used = TRUE AND expires_at > $4
	`, email, models.CodeSignIn, code, now().Add(-codeGrace)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check sign-in code: %w", err)
	}
	return n > 0, nil
}

// emailVerifiedRecently reports whether any EMAIL_VERIFICATION code for email
// was verified and has not been expired longer than codeGrace.
func emailVerifiedRecently(ctx context.Context, conn *sql.DB, email string) (bool, error) {
	var n int
	err := conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM verification_code
		WHERE email = $1 AND type = $2 AND used = TRUE AND expires_at > $3
	`, email, models.CodeEmailVerification, now().Add(-codeGrace)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check email verification: %w", err)
	}
	return n > 0, nil
}

// CleanupExpiredCodes deletes expired or used codes older than a day.
func CleanupExpiredCodes(ctx context.Context, conn *sql.DB) (int64, error) {
	t := now()
	res, err := conn.ExecContext(ctx, `
		DELETE FROM verification_code
		WHERE (expires_at < $1 OR used = TRUE) AND created_at < $2
	`, t, t.Add(-codeRetention))
	if err != nil {
		return 0, fmt.Errorf("delete expired codes: %w", err)
	}
	return res.RowsAffected()
}

// VerifyOTP handles POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOTPRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := models.Validate(&req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid verification code format")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !h.attemptLimiter.Allow(email) {
		middleware.ErrorResponse(w, http.StatusTooManyRequests, tooManyAttempts)
		return
	}

	ok, userID, err := VerifyCode(r.Context(), h.db, email, req.Code, codeType(req.Type))
	if err != nil {
		serverError(w, "failed to verify code", err)
		return
	}
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid or expired verification code")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VerifyOTPResponse{
		Success:  true,
		Verified: true,
		UserID:   userID,
	})
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}
	ctx := r.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = $1`, email).Scan(&existing); err != nil {
		serverError(w, "failed to check email", err)
		return
	}
	if existing > 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "An account with this email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		serverError(w, "failed to hash password", err)
		return
	}

	verified, err := emailVerifiedRecently(ctx, h.db, email)
	if err != nil {
		serverError(w, "failed to check email verification", err)
		return
	}

	base := usernameStrip.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
	if base == "" {
		base = "user"
	}

	t := now()
	user := models.User{
		ID:           auth.NewID(),
		Name:         &req.Name,
		Email:        email,
		Role:         models.RoleUser,
		PasswordHash: &hash,
		CreatedAt:    t,
	}
	if verified {
		user.EmailVerified = &t
	}

	// Try base, base1, base2, ... and let the unique index arbitrate races.
	for counter := 0; ; counter++ {
		username := base
		if counter > 0 {
			username = base + strconv.Itoa(counter)
		}

		_, err = h.db.ExecContext(ctx, `
			INSERT INTO users (id, name, email, username, email_verified, role, password_hash, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, user.ID, req.Name, email, username, user.EmailVerified, user.Role, hash, t)
		if err == nil {
			user.Username = &username
			break
		}
		if !db.IsUniqueViolation(err) {
			serverError(w, "failed to create user", err)
			return
		}

		var emailTaken int
		if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = $1`, email).Scan(&emailTaken); err != nil {
			serverError(w, "failed to check email", err)
			return
		}
		if emailTaken > 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "An account with this email already exists")
			return
		}
	}

	slog.Info("user signed up", "user_id", user.ID, "username", *user.Username, "verified", verified)

	middleware.JSONResponse(w, http.StatusCreated, models.SignUpResponse{Success: true, User: user})
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}
	ctx := r.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	method := "password"
	if strings.HasPrefix(req.Password, otpPrefix) {
		method = "otp"
	}
	fail := func(status int, msg string) {
		middleware.SignInsTotal.WithLabelValues(method, "failure").Inc()
		middleware.ErrorResponse(w, status, msg)
	}

	var (
		user     models.SessionUser
		username sql.NullString
		banned   bool
		hash     *string
	)
	err := h.db.QueryRowContext(ctx, `
		SELECT id, username, role, reputation, is_banned, password_hash FROM users WHERE email = $1
	`, email).Scan(&user.ID, &username, &user.Role, &user.Reputation, &banned, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		fail(http.StatusUnauthorized, "No user found with this email")
		return
	}
	if err != nil {
		serverError(w, "failed to load user", err)
		return
	}
	user.Username = username.String

	if banned {
		fail(http.StatusForbidden, "This account has been suspended")
		return
	}

	if method == "otp" {
		code := strings.TrimPrefix(req.Password, otpPrefix)
		if !otpCodePattern.MatchString(code) {
			fail(http.StatusUnauthorized, "Invalid or expired verification code")
			return
		}
		if !h.attemptLimiter.Allow(email) {
			fail(http.StatusTooManyRequests, tooManyAttempts)
			return
		}
		ok, err := signInCodeConsumed(ctx, h.db, email, code)
		if err != nil {
			serverError(w, "failed to check sign-in code", err)
			return
		}
		if !ok {
			fail(http.StatusUnauthorized, "Invalid or expired verification code")
			return
		}
	} else {
		switch err := auth.CheckPassword(hash, req.Password); {
		case errors.Is(err, auth.ErrNoPassword):
			fail(http.StatusUnauthorized, "Please sign in with a verification code or set up a password")
			return
		case errors.Is(err, auth.ErrInvalidPassword):
			fail(http.StatusUnauthorized, "Invalid password")
			return
		case err != nil:
			serverError(w, "failed to check password", err)
			return
		}
	}

	token, expires, err := auth.IssueSession(user, h.cfg.SessionSecret, h.cfg.SessionTTL, now())
	if err != nil {
		serverError(w, "failed to issue session", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   strings.HasPrefix(h.cfg.BaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})

	middleware.SignInsTotal.WithLabelValues(method, "success").Inc()
	slog.Info("user signed in", "user_id", user.ID, "method", method)

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      user,
	})
}

// SignOut handles POST /api/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
