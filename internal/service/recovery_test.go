package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/kapu-recovery/internal/crypto"
	"github.com/dtroode/kapu-recovery/internal/mocks"
	"github.com/dtroode/kapu-recovery/internal/model"
	"github.com/dtroode/kapu-recovery/internal/storage/memory"
	"github.com/dtroode/kapu-recovery/internal/testutil"
	"github.com/dtroode/kapu-recovery/internal/token"
)

const (
	testEmail    = "a@b.com"
	testPassword = "Str0ng!Passw0rd"
	testBaseURL  = "https://kapu.app"
)

var testPayload = model.SecretPayload{
	PrivateKey: "0xAA11223344556677889900aabbccddeeff",
	Address:    "SP1P72Z3704VMT3DMHPP2CB8TGQWGDBHD3RPR9GZS",
	Mnemonic:   "twelve words of a perfectly ordinary seed phrase for tests only ok",
}

func testCipher(t *testing.T) *crypto.Cipher {
	t.Helper()
	c, err := crypto.NewCipher(model.KDFParams{Alg: model.KDFPBKDF2SHA256, Iterations: 100})
	require.NoError(t, err)
	return c
}

// countingStore records every store call.
type countingStore struct {
	model.BackupStore
	mu    sync.Mutex
	calls int
}

func (s *countingStore) count() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *countingStore) Get(ctx context.Context, token string) (model.Backup, error) {
	s.count()
	return s.BackupStore.Get(ctx, token)
}

func (s *countingStore) Put(ctx context.Context, b model.Backup) error {
	s.count()
	return s.BackupStore.Put(ctx, b)
}

func (s *countingStore) CompareAndDelete(ctx context.Context, b model.Backup) (bool, error) {
	s.count()
	return s.BackupStore.CompareAndDelete(ctx, b)
}

func newTestRecovery(t *testing.T, store model.BackupStore, m model.Mailer) *Recovery {
	t.Helper()
	return NewRecovery(store, testCipher(t), token.NewRandom(), m, nil, nil,
		testutil.MakeNoopLogger(), RecoveryConfig{BaseURL: testBaseURL})
}

func TestRecovery_HappyPath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewBackupStore()
	mailer := mocks.NewMailer(t)

	var sent model.Email
	mailer.On("Send", mock.Anything, mock.AnythingOfType("model.Email")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(model.Email) }).
		Return("email-1", nil).Once()

	s := newTestRecovery(t, store, mailer)

	res, err := s.IssueBackup(ctx, model.IssueRequest{Email: testEmail, Password: testPassword, Payload: testPayload})
	require.NoError(t, err)
	assert.Len(t, res.Token, token.Length)
	assert.Equal(t, testBaseURL+"/auth/recover?token="+res.Token, res.RecoveryLink)
	assert.Equal(t, "email-1", res.EmailID)
	assert.Equal(t, testEmail, sent.To)
	assert.Contains(t, sent.HTML, res.RecoveryLink)

	require.NoError(t, s.ValidateToken(ctx, res.Token))
	require.NoError(t, s.ValidateToken(ctx, strings.ToUpper(res.Token)))

	got, err := s.RedeemBackup(ctx, res.Token, testPassword)
	require.NoError(t, err)
	assert.Equal(t, testPayload, got)

	_, err = s.RedeemBackup(ctx, res.Token, testPassword)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.ValidateToken(ctx, res.Token), model.ErrNotFound)
}

func TestRecovery_IssueBackup_ValidationCreatesNothing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     model.IssueRequest
		wantErr error
	}{
		{
			name:    "weak password",
			req:     model.IssueRequest{Email: testEmail, Password: "short", Payload: testPayload},
			wantErr: model.ErrWeakPassword,
		},
		{
			name:    "invalid email",
			req:     model.IssueRequest{Email: "not an email", Password: testPassword, Payload: testPayload},
			wantErr: model.ErrInvalidEmail,
		},
		{
			name:    "email without domain dot",
			req:     model.IssueRequest{Email: "a@b", Password: testPassword, Payload: testPayload},
			wantErr: model.ErrInvalidEmail,
		},
		{
			name:    "missing mnemonic",
			req:     model.IssueRequest{Email: testEmail, Password: testPassword, Payload: model.SecretPayload{PrivateKey: "k", Address: "a"}},
			wantErr: model.ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := &countingStore{BackupStore: memory.NewBackupStore()}
			mailer := mocks.NewMailer(t)
			s := newTestRecovery(t, store, mailer)

			_, err := s.IssueBackup(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, store.calls)
			mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestRecovery_IssueBackup_WeakPasswordListsAllViolations(t *testing.T) {
	t.Parallel()
	s := newTestRecovery(t, mocks.NewBackupStore(t), mocks.NewMailer(t))

	_, err := s.IssueBackup(context.Background(), model.IssueRequest{Email: testEmail, Password: "abc", Payload: testPayload})
	var weak *model.WeakPasswordError
	require.ErrorAs(t, err, &weak)
	assert.Len(t, weak.Violations, 4)
}

func TestRecovery_IssueBackup_EmailFailureKeepsBackup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewBackupStore()
	mailer := mocks.NewMailer(t)
	mailer.On("Send", mock.Anything, mock.Anything).Return("", errors.New("provider down"))

	s := newTestRecovery(t, store, mailer)
	res, err := s.IssueBackup(ctx, model.IssueRequest{Email: testEmail, Password: testPassword, Payload: testPayload})

	var delivery *model.EmailDeliveryError
	require.ErrorAs(t, err, &delivery)
	assert.ErrorIs(t, err, model.ErrEmailDelivery)
	assert.Empty(t, res.EmailID)

	require.NoError(t, s.ValidateToken(ctx, res.Token))
	assert.Equal(t, 1, store.Len())
}

func TestRecovery_IssueBackup_StoreFailure(t *testing.T) {
	t.Parallel()
	store := mocks.NewBackupStore(t)
	store.On("Put", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	s := newTestRecovery(t, store, mocks.NewMailer(t))
	_, err := s.IssueBackup(context.Background(), model.IssueRequest{Email: testEmail, Password: testPassword, Payload: testPayload})
	assert.ErrorIs(t, err, model.ErrInternal)
	assert.NotContains(t, err.Error(), "connection refused")
}

func TestRecovery_IssueBackup_TokenFailure(t *testing.T) {
	t.Parallel()
	tokens := mocks.NewTokenGenerator(t)
	tokens.On("Generate", testPayload).Return("", errors.New("entropy"))

	s := NewRecovery(mocks.NewBackupStore(t), testCipher(t), tokens, mocks.NewMailer(t), nil, nil,
		testutil.MakeNoopLogger(), RecoveryConfig{BaseURL: testBaseURL})
	_, err := s.IssueBackup(context.Background(), model.IssueRequest{Email: testEmail, Password: testPassword, Payload: testPayload})
	assert.ErrorIs(t, err, model.ErrInternal)
}

func TestRecovery_IssueBackup_TokenTTL(t *testing.T) {
	t.Parallel()
	store := mocks.NewBackupStore(t)
	mailer := mocks.NewMailer(t)
	tokens := mocks.NewTokenGenerator(t)

	tok := strings.Repeat("c", 64)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tokens.On("Generate", testPayload).Return(tok, nil)
	store.On("Put", mock.Anything, mock.MatchedBy(func(b model.Backup) bool {
		return b.Token == tok && b.ExpiresAt != nil && b.ExpiresAt.Equal(now.Add(24*time.Hour))
	})).Return(nil)
	mailer.On("Send", mock.Anything, mock.Anything).Return("id", nil)

	s := NewRecovery(store, testCipher(t), tokens, mailer, nil, nil,
		testutil.MakeNoopLogger(), RecoveryConfig{BaseURL: testBaseURL, TokenTTL: 24 * time.Hour})
	s.now = func() time.Time { return now }

	_, err := s.IssueBackup(context.Background(), model.IssueRequest{Email: testEmail, Password: testPassword, Payload: testPayload})
	require.NoError(t, err)
}

func TestRecovery_MalformedTokenSkipsStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &countingStore{BackupStore: memory.NewBackupStore()}
	s := newTestRecovery(t, store, mocks.NewMailer(t))

	assert.ErrorIs(t, s.ValidateToken(ctx, "not-a-token"), model.ErrMalformedToken)
	_, err := s.RedeemBackup(ctx, "xyz", "anything12345")
	assert.ErrorIs(t, err, model.ErrMalformedToken)
	assert.Zero(t, store.calls)
}

func TestRecovery_RedeemBackup_WrongPasswordKeepsEntry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewBackupStore()
	mailer := mocks.NewMailer(t)
	mailer.On("Send", mock.Anything, mock.Anything).Return("id", nil)
	s := newTestRecovery(t, store, mailer)

	res, err := s.IssueBackup(ctx, model.IssueRequest{Email: testEmail, Password: testPassword, Payload: testPayload})
	require.NoError(t, err)

	for _, wrong := range []string{"Wr0ng!Passw0rd", "short"} {
		_, err = s.RedeemBackup(ctx, res.Token, wrong)
		assert.ErrorIs(t, err, model.ErrAuthentication)
	}
	assert.Equal(t, 1, store.Len())

	got, err := s.RedeemBackup(ctx, res.Token, testPassword)
	require.NoError(t, err)
	assert.Equal(t, testPayload, got)
}

func TestRecovery_RedeemBackup_ConcurrentRace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		limiter *AttemptLimiter
	}{
		{name: "no limiter"},
		{name: "default limiter", limiter: NewAttemptLimiter(time.Minute, 5, time.Hour)},
		{name: "single attempt limiter", limiter: NewAttemptLimiter(time.Hour, 1, time.Hour)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			testConcurrentRedeem(t, tt.limiter)
		})
	}
}

func testConcurrentRedeem(t *testing.T, limiter *AttemptLimiter) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewBackupStore()
	mailer := mocks.NewMailer(t)
	mailer.On("Send", mock.Anything, mock.Anything).Return("id", nil)
	s := NewRecovery(store, testCipher(t), token.NewRandom(), mailer, limiter, nil,
		testutil.MakeNoopLogger(), RecoveryConfig{BaseURL: testBaseURL})

	res, err := s.IssueBackup(ctx, model.IssueRequest{Email: testEmail, Password: testPassword, Payload: testPayload})
	require.NoError(t, err)

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		notFound  int
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got, err := s.RedeemBackup(ctx, res.Token, testPassword)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				assert.Equal(t, testPayload, got)
				successes++
			case errors.Is(err, model.ErrNotFound):
				notFound++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, notFound)
}

func TestRecovery_RedeemBackup_LostCompareAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := testCipher(t)
	enc, err := c.Encrypt(testPayload, testPassword)
	require.NoError(t, err)

	tok := strings.Repeat("d", 64)
	backup := model.Backup{Token: tok, Payload: enc}

	store := mocks.NewBackupStore(t)
	store.On("Get", mock.Anything, tok).Return(backup, nil)
	store.On("CompareAndDelete", mock.Anything, backup).Return(false, nil)

	s := NewRecovery(store, c, token.NewRandom(), mocks.NewMailer(t), nil, nil,
		testutil.MakeNoopLogger(), RecoveryConfig{})
	_, err = s.RedeemBackup(ctx, strings.ToUpper(tok), testPassword)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRecovery_RedeemBackup_StoreErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tok := strings.Repeat("e", 64)

	store := mocks.NewBackupStore(t)
	store.On("Get", mock.Anything, tok).Return(model.Backup{}, errors.New("timeout"))

	s := NewRecovery(store, testCipher(t), token.NewRandom(), mocks.NewMailer(t), nil, nil,
		testutil.MakeNoopLogger(), RecoveryConfig{})

	_, err := s.RedeemBackup(ctx, tok, testPassword)
	assert.ErrorIs(t, err, model.ErrInternal)
	assert.ErrorIs(t, s.ValidateToken(ctx, tok), model.ErrInternal)
}

func TestRecovery_RedeemBackup_AttemptLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewBackupStore()
	mailer := mocks.NewMailer(t)
	mailer.On("Send", mock.Anything, mock.Anything).Return("id", nil)

	limiter := NewAttemptLimiter(time.Hour, 3, time.Hour)
	s := NewRecovery(store, testCipher(t), token.NewRandom(), mailer, limiter, nil,
		testutil.MakeNoopLogger(), RecoveryConfig{BaseURL: testBaseURL})

	res, err := s.IssueBackup(ctx, model.IssueRequest{Email: testEmail, Password: testPassword, Payload: testPayload})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = s.RedeemBackup(ctx, res.Token, "Wr0ng!Passw0rd")
		assert.ErrorIs(t, err, model.ErrAuthentication)
	}

	_, err = s.RedeemBackup(ctx, res.Token, testPassword)
	assert.ErrorIs(t, err, model.ErrTooManyAttempts)
	assert.Equal(t, 1, store.Len())
}

func TestRecovery_RedeemBackup_UnknownTokenSkipsLimiter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewBackupStore()
	limiter := NewAttemptLimiter(time.Hour, 1, time.Hour)
	s := NewRecovery(store, testCipher(t), token.NewRandom(), mocks.NewMailer(t), limiter, nil,
		testutil.MakeNoopLogger(), RecoveryConfig{BaseURL: testBaseURL})

	tok := strings.Repeat("c", 64)
	for i := 0; i < 3; i++ {
		_, err := s.RedeemBackup(ctx, tok, testPassword)
		assert.ErrorIs(t, err, model.ErrNotFound)
	}
	assert.Empty(t, limiter.buckets)
}

func TestRecovery_RedeemBackup_CorrectPasswordNotThrottled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewBackupStore()
	mailer := mocks.NewMailer(t)
	mailer.On("Send", mock.Anything, mock.Anything).Return("id", nil)

	limiter := NewAttemptLimiter(time.Hour, 2, time.Hour)
	s := NewRecovery(store, testCipher(t), token.NewRandom(), mailer, limiter, nil,
		testutil.MakeNoopLogger(), RecoveryConfig{BaseURL: testBaseURL})

	res, err := s.IssueBackup(ctx, model.IssueRequest{Email: testEmail, Password: testPassword, Payload: testPayload})
	require.NoError(t, err)

	_, err = s.RedeemBackup(ctx, res.Token, "Wr0ng!Passw0rd")
	assert.ErrorIs(t, err, model.ErrAuthentication)

	got, err := s.RedeemBackup(ctx, res.Token, testPassword)
	require.NoError(t, err)
	assert.Equal(t, testPayload, got)
	assert.Empty(t, limiter.buckets)
}

func TestRecovery_SecretsNeverLogged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lg, logs := testutil.MakeBufferLogger()
	mailer := mocks.NewMailer(t)
	mailer.On("Send", mock.Anything, mock.Anything).Return("", errors.New("relay down")).Once()

	s := NewRecovery(memory.NewBackupStore(), testCipher(t), token.NewRandom(), mailer, nil, nil,
		lg, RecoveryConfig{BaseURL: testBaseURL})

	res, err := s.IssueBackup(ctx, model.IssueRequest{Email: testEmail, Password: testPassword, Payload: testPayload})
	require.ErrorIs(t, err, model.ErrEmailDelivery)

	_, err = s.RedeemBackup(ctx, res.Token, "Wr0ng!Password")
	require.ErrorIs(t, err, model.ErrAuthentication)
	_, err = s.RedeemBackup(ctx, res.Token, testPassword)
	require.NoError(t, err)

	out := logs.String()
	assert.NotEmpty(t, out)
	for _, secret := range []string{testPassword, "Wr0ng!Password", res.Token, testPayload.PrivateKey, testPayload.Mnemonic} {
		assert.NotContains(t, out, secret)
	}
}
