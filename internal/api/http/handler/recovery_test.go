package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/kapu-recovery/internal/mocks"
	"github.com/dtroode/kapu-recovery/internal/model"
	"github.com/dtroode/kapu-recovery/internal/testutil"
)

const (
	testToken    = "3f2a9c0d5e6b7a8190fedcba0123456789abcdef0123456789abcdef01234567"
	testPassword = "Str0ng!Passw0rd"
)

var testWallet = WalletData{
	StxPrivateKey: "753b7cc01a1a2e86221266a154af739463fce51219d97e4f856cd7200c3bd2a601",
	Address:       "SP1P72Z3704VMT3DMHPP2CB8TGQWGDBHD3RPR9GZS",
	Mnemonic:      "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
}

func do(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRecovery_SendEncryptedWallet(t *testing.T) {
	t.Parallel()

	validBody := fmt.Sprintf(`{"email":"user@example.com","password":%q,"walletData":{"stxPrivateKey":%q,"address":%q,"mnemonic":%q}}`,
		testPassword, testWallet.StxPrivateKey, testWallet.Address, testWallet.Mnemonic)

	tests := []struct {
		name       string
		body       string
		setup      func(s *mocks.RecoveryService)
		wantStatus int
		wantError  string
		wantDetail []string
	}{
		{
			name: "success",
			body: validBody,
			setup: func(s *mocks.RecoveryService) {
				s.On("IssueBackup", mock.Anything, model.IssueRequest{
					Email:    "user@example.com",
					Password: testPassword,
					Payload:  testWallet.toModel(),
				}).Return(model.IssueResult{
					Token:        testToken,
					RecoveryLink: "http://localhost:3000/auth/recover?token=" + testToken,
					EmailID:      "email-1",
				}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed json",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request body",
		},
		{
			name:       "missing wallet data",
			body:       `{"email":"user@example.com","password":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Email, password, and wallet data are required",
		},
		{
			name: "weak password",
			body: validBody,
			setup: func(s *mocks.RecoveryService) {
				s.On("IssueBackup", mock.Anything, mock.Anything).
					Return(model.IssueResult{}, &model.WeakPasswordError{Violations: []string{"a", "b"}})
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Password does not meet requirements",
			wantDetail: []string{"a", "b"},
		},
		{
			name: "invalid email",
			body: validBody,
			setup: func(s *mocks.RecoveryService) {
				s.On("IssueBackup", mock.Anything, mock.Anything).Return(model.IssueResult{}, model.ErrInvalidEmail)
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid email format",
		},
		{
			name: "invalid payload",
			body: validBody,
			setup: func(s *mocks.RecoveryService) {
				s.On("IssueBackup", mock.Anything, mock.Anything).Return(model.IssueResult{}, model.ErrInvalidPayload)
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid wallet data structure",
		},
		{
			name: "email delivery failure",
			body: validBody,
			setup: func(s *mocks.RecoveryService) {
				s.On("IssueBackup", mock.Anything, mock.Anything).
					Return(model.IssueResult{Token: testToken}, &model.EmailDeliveryError{Err: errors.New("smtp down")})
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to send recovery email",
		},
		{
			name: "internal failure",
			body: validBody,
			setup: func(s *mocks.RecoveryService) {
				s.On("IssueBackup", mock.Anything, mock.Anything).
					Return(model.IssueResult{}, fmt.Errorf("store: %w", model.ErrInternal))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal server error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := mocks.NewRecoveryService(t)
			if tt.setup != nil {
				tt.setup(svc)
			}
			h := NewRecovery(svc, testutil.MakeNoopLogger())

			rec := do(h.SendEncryptedWallet, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			if tt.wantStatus == http.StatusOK {
				var resp SendWalletResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
				assert.Equal(t, "Recovery email sent successfully", resp.Message)
				assert.Equal(t, "email-1", resp.EmailID)
				assert.NotContains(t, rec.Body.String(), testToken)
				return
			}

			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantDetail, resp.Details)
			assert.NotContains(t, rec.Body.String(), testToken)
		})
	}
}

func TestRecovery_ValidateRecoveryToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		err        error
		call       bool
		wantStatus int
	}{
		{name: "valid", body: `{"token":"` + testToken + `"}`, call: true, wantStatus: http.StatusOK},
		{name: "missing token", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "trailing data", body: `{"token":"a"} {}`, wantStatus: http.StatusBadRequest},
		{name: "malformed token", body: `{"token":"nope"}`, err: model.ErrMalformedToken, call: true, wantStatus: http.StatusBadRequest},
		{name: "unknown token", body: `{"token":"` + testToken + `"}`, err: model.ErrNotFound, call: true, wantStatus: http.StatusNotFound},
		{name: "store failure", body: `{"token":"` + testToken + `"}`, err: model.ErrInternal, call: true, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := mocks.NewRecoveryService(t)
			if tt.call {
				svc.On("ValidateToken", mock.Anything, mock.AnythingOfType("string")).Return(tt.err)
			}
			h := NewRecovery(svc, testutil.MakeNoopLogger())

			rec := do(h.ValidateRecoveryToken, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"valid":true}`, rec.Body.String())
			}
			if tt.wantStatus == http.StatusNotFound {
				assert.Equal(t, "Invalid recovery link", decodeError(t, rec).Error)
			}
		})
	}
}

func TestRecovery_RecoverWallet(t *testing.T) {
	t.Parallel()

	body := `{"token":"` + testToken + `","password":"` + testPassword + `"}`

	tests := []struct {
		name       string
		body       string
		err        error
		call       bool
		wantStatus int
		wantError  string
	}{
		{name: "success", body: body, call: true, wantStatus: http.StatusOK},
		{name: "missing password", body: `{"token":"` + testToken + `"}`, wantStatus: http.StatusBadRequest, wantError: "Token and password are required"},
		{name: "wrong password", body: body, err: model.ErrAuthentication, call: true, wantStatus: http.StatusUnauthorized,
			wantError: "Invalid password. Please check your password and try again."},
		{name: "already redeemed", body: body, err: model.ErrNotFound, call: true, wantStatus: http.StatusNotFound, wantError: "Invalid recovery link"},
		{name: "too many attempts", body: body, err: model.ErrTooManyAttempts, call: true, wantStatus: http.StatusTooManyRequests},
		{name: "internal", body: body, err: errors.New("boom"), call: true, wantStatus: http.StatusInternalServerError, wantError: "Internal server error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := mocks.NewRecoveryService(t)
			if tt.call {
				var payload model.SecretPayload
				if tt.err == nil {
					payload = testWallet.toModel()
				}
				svc.On("RedeemBackup", mock.Anything, testToken, testPassword).Return(payload, tt.err)
			}
			h := NewRecovery(svc, testutil.MakeNoopLogger())

			rec := do(h.RecoverWallet, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				var resp RecoverWalletResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
				assert.Equal(t, testWallet, resp.Wallet)
				return
			}
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, rec).Error)
			}
		})
	}
}

type pinger func(ctx context.Context) error

func (p pinger) Ping(ctx context.Context) error { return p(ctx) }

func TestHealth_Healthz(t *testing.T) {
	t.Parallel()

	ok := pinger(func(context.Context) error { return nil })
	down := pinger(func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name       string
		checks     map[string]Pinger
		wantStatus int
		wantBody   string
	}{
		{name: "no checks", wantStatus: http.StatusOK, wantBody: `{"status":"ok"}`},
		{name: "healthy", checks: map[string]Pinger{"db": ok}, wantStatus: http.StatusOK,
			wantBody: `{"status":"ok","checks":{"db":"ok"}}`},
		{name: "degraded", checks: map[string]Pinger{"db": ok, "storage": down}, wantStatus: http.StatusServiceUnavailable,
			wantBody: `{"status":"degraded","checks":{"db":"ok","storage":"unavailable"}}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			NewHealth(tt.checks).Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
