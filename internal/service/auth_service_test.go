package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spec-kit/helper-marketplace/internal/auth"
	"github.com/spec-kit/helper-marketplace/internal/config"
	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/events"
	"github.com/spec-kit/helper-marketplace/internal/repository"
	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

const strongPassword = "Secret@123"

// lookupCountingUsers counts account lookups made during login.
type lookupCountingUsers struct {
	repository.UserRepository
	lookups atomic.Int32
	err     error
}

func (u *lookupCountingUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u.lookups.Add(1)
	if u.err != nil {
		return nil, u.err
	}
	return u.UserRepository.GetByEmail(ctx, email)
}

func (u *lookupCountingUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u.lookups.Add(1)
	if u.err != nil {
		return nil, u.err
	}
	return u.UserRepository.GetByUsername(ctx, username)
}

type fakeIdentity struct {
	ident *auth.FederatedIdentity
	err   error
}

func (f fakeIdentity) AuthCodeURL(state string) string { return "https://accounts.example.com/?state=" + state }

func (f fakeIdentity) Identify(context.Context, string) (*auth.FederatedIdentity, error) {
	return f.ident, f.err
}

type authFixture struct {
	store      repository.Store
	users      *lookupCountingUsers
	resets     *auth.MemoryResetStore
	dispatcher *recordingDispatcher
	svc        *AuthService
}

func newAuthFixture(t *testing.T, identity auth.IdentityProvider) *authFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	f := &authFixture{
		store:      store,
		users:      &lookupCountingUsers{UserRepository: store.Users},
		resets:     auth.NewMemoryResetStore(nil),
		dispatcher: &recordingDispatcher{},
	}
	identities := map[domain.AuthProvider]auth.IdentityProvider{}
	if identity != nil {
		identities[domain.ProviderGoogle] = identity
	}
	f.svc = NewAuthService(AuthDependencies{
		UserRepo:   f.users,
		Hasher:     auth.NewPasswordHasher(4),
		Tokens:     auth.NewTokenManager("test-secret", "helper-marketplace", 60),
		Guard:      auth.NewLoginGuard(auth.NewMemoryAttemptStore(), config.GuardConfig{MaxAttempts: 5, LockoutMinutes: 15}, nil),
		Resets:     f.resets,
		Identities: identities,
		Dispatcher: f.dispatcher,
		Clock:      fixedClock,
	})
	return f
}

func signupInput() SignupInput {
	return SignupInput{
		FullName:        "Asha Rao",
		Username:        "Asha",
		Email:           "Asha@Example.com",
		Phone:           "+91 98765 43210",
		Password:        strongPassword,
		ConfirmPassword: strongPassword,
	}
}

func TestSignupCreatesUserSession(t *testing.T) {
	f := newAuthFixture(t, nil)

	s, err := f.svc.Signup(context.Background(), signupInput())
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if s.Token == "" || s.User.Role != domain.RoleUser || s.User.Provider != domain.ProviderEmail {
		t.Fatalf("session = %+v", s)
	}
	if s.User.Username != "asha" || s.User.Email != "asha@example.com" || s.User.Phone != "+919876543210" {
		t.Fatalf("user = %+v", s.User)
	}
	if s.User.PasswordHash == strongPassword || s.User.PasswordHash == "" {
		t.Fatalf("password not hashed")
	}
	if got := f.dispatcher.types(); len(got) != 1 || got[0] != events.EventUserChanged {
		t.Fatalf("events = %v", got)
	}
}

func TestSignupRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SignupInput)
		code   string
	}{
		{"mismatched confirmation", func(in *SignupInput) { in.ConfirmPassword = "Secret@124" }, apperrors.CodeValidation},
		{"weak password", func(in *SignupInput) { in.Password, in.ConfirmPassword = "secret12", "secret12" }, apperrors.CodeValidation},
		{"bad email", func(in *SignupInput) { in.Email = "asha.example.com" }, apperrors.CodeValidation},
		{"bad phone", func(in *SignupInput) { in.Phone = "555" }, apperrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAuthFixture(t, nil)
			in := signupInput()
			tc.mutate(&in)
			_, err := f.svc.Signup(context.Background(), in)
			requireCode(t, err, tc.code)
		})
	}
}

func TestSignupConflicts(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)
	if _, err := f.svc.Signup(ctx, signupInput()); err != nil {
		t.Fatal(err)
	}

	sameUsername := signupInput()
	sameUsername.Email = "other@example.com"
	de := requireCode(t, mustFail(f.svc.Signup(ctx, sameUsername)), apperrors.CodeConflict)
	if de.Details["field"] != "username" {
		t.Fatalf("details = %v", de.Details)
	}

	sameEmail := signupInput()
	sameEmail.Username = "asha2"
	sameEmail.Email = " ASHA@example.com "
	de = requireCode(t, mustFail(f.svc.Signup(ctx, sameEmail)), apperrors.CodeConflict)
	if de.Details["field"] != "email" {
		t.Fatalf("details = %v", de.Details)
	}
}

func mustFail(_ *Session, err error) error { return err }

func TestLoginByUsernameOrEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)
	if _, err := f.svc.Signup(ctx, signupInput()); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"ASHA", "asha@example.com"} {
		s, err := f.svc.Login(ctx, "sess-"+id, id, strongPassword)
		if err != nil {
			t.Fatalf("Login(%q): %v", id, err)
		}
		if s.User.Username != "asha" {
			t.Fatalf("Login(%q) user = %s", id, s.User.Username)
		}
	}
}

func TestLoginLocksAfterFiveFailures(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)
	if _, err := f.svc.Signup(ctx, signupInput()); err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 4; i++ {
		_, err := f.svc.Login(ctx, "s1", "asha", "wrong")
		de := requireCode(t, err, apperrors.CodeUnauthorized)
		if de.Details["attempts_left"] != 5-i {
			t.Fatalf("attempt %d: details = %v", i, de.Details)
		}
	}
	_, err := f.svc.Login(ctx, "s1", "asha", "wrong")
	requireCode(t, err, apperrors.CodeLoginLocked)

	before := f.users.lookups.Load()
	_, err = f.svc.Login(ctx, "s1", "asha", strongPassword)
	de := requireCode(t, err, apperrors.CodeLoginLocked)
	if f.users.lookups.Load() != before {
		t.Fatalf("locked login reached the user store")
	}
	if secs, _ := de.Details["retry_after_seconds"].(int); secs <= 0 || secs > 15*60 {
		t.Fatalf("retry_after_seconds = %v", de.Details["retry_after_seconds"])
	}

	if _, err := f.svc.Login(ctx, "s2", "asha", strongPassword); err != nil {
		t.Fatalf("other session should not be locked: %v", err)
	}
}

func TestLoginSuccessResetsCounter(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)
	if _, err := f.svc.Signup(ctx, signupInput()); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		_, _ = f.svc.Login(ctx, "s1", "nobody", "wrong")
	}
	if _, err := f.svc.Login(ctx, "s1", "asha", strongPassword); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.Login(ctx, "s1", "asha", "wrong")
	de := requireCode(t, err, apperrors.CodeUnauthorized)
	if de.Details["attempts_left"] != 4 {
		t.Fatalf("counter not reset: %v", de.Details)
	}
	if !strings.Contains(de.Message, "4 attempts remaining") {
		t.Fatalf("message = %q", de.Message)
	}
}

func TestLoginBackendErrorNotCounted(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)
	f.users.err = errors.New("connection reset")

	_, err := f.svc.Login(ctx, "s1", "asha", "whatever")
	de := requireCode(t, err, apperrors.CodeBackend)
	if de.Message != "connection reset" {
		t.Fatalf("message = %q", de.Message)
	}

	f.users.err = nil
	_, err = f.svc.Login(ctx, "s1", "asha", "whatever")
	de = requireCode(t, err, apperrors.CodeUnauthorized)
	if de.Details["attempts_left"] != 4 {
		t.Fatalf("backend failure was counted: %v", de.Details)
	}
}

func TestLoginBurstCannotOutrunLockout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)
	if _, err := f.svc.Signup(ctx, signupInput()); err != nil {
		t.Fatal(err)
	}
	f.users.lookups.Store(0)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int
		locked   int
	)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Login(ctx, "s1", "asha", "wrong")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case apperrors.HasCode(err, apperrors.CodeUnauthorized):
				failures++
			case apperrors.HasCode(err, apperrors.CodeLoginLocked):
				locked++
			default:
				t.Errorf("unexpected result: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := f.users.lookups.Load(); got > 5 {
		t.Fatalf("burst reached the user store %d times, want at most 5", got)
	}
	if failures+locked != 30 || failures > 4 {
		t.Fatalf("failures=%d locked=%d", failures, locked)
	}

	_, err := f.svc.Login(ctx, "s1", "asha", strongPassword)
	requireCode(t, err, apperrors.CodeLoginLocked)
}

func TestLoginRefusesBlockedAccount(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)
	s, err := f.svc.Signup(ctx, signupInput())
	if err != nil {
		t.Fatal(err)
	}
	blocked := *s.User
	blocked.Status = domain.UserStatusBlocked
	if err := f.store.Users.Update(ctx, &blocked); err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.Login(ctx, "s1", "asha", strongPassword)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.svc.Login(ctx, "s1", "asha", "wrong")
	de := requireCode(t, err, apperrors.CodeUnauthorized)
	if de.Details["attempts_left"] != 4 {
		t.Fatalf("blocked sign-in was counted as a failure: %v", de.Details)
	}
}

func TestFederatedSignIn(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, fakeIdentity{ident: &auth.FederatedIdentity{Email: "Priya@Example.com", Name: "Priya Shah"}})
	seedUser(t, f.store, domain.User{Username: "priya_shah", Email: "someone@example.com"})

	s, err := f.svc.FederatedSignIn(ctx, "google", "code")
	if err != nil {
		t.Fatalf("FederatedSignIn: %v", err)
	}
	if s.User.Provider != domain.ProviderGoogle || s.User.Username != "priya_shah_2" || s.User.Email != "priya@example.com" {
		t.Fatalf("user = %+v", s.User)
	}

	again, err := f.svc.FederatedSignIn(ctx, "google", "code")
	if err != nil {
		t.Fatal(err)
	}
	if again.User.ID != s.User.ID {
		t.Fatalf("second sign-in created a new account")
	}
}

func TestFederatedDisabled(t *testing.T) {
	f := newAuthFixture(t, nil)
	if f.svc.FederatedEnabled("google") {
		t.Fatal("expected federated sign-in disabled")
	}
	_, err := f.svc.FederatedLoginURL("google", "state")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestFederatedProvidersAreSeparate(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)
	f.svc.identities[domain.ProviderFacebook] = fakeIdentity{ident: &auth.FederatedIdentity{Email: "ravi@example.com", Name: "Ravi"}}

	if f.svc.FederatedEnabled("google") || !f.svc.FederatedEnabled("facebook") {
		t.Fatal("only facebook should be enabled")
	}
	url, err := f.svc.FederatedLoginURL("facebook", "st")
	if err != nil || !strings.Contains(url, "state=st") {
		t.Fatalf("url = %q, %v", url, err)
	}
	_, err = f.svc.FederatedSignIn(ctx, "google", "code")
	requireCode(t, err, apperrors.CodeNotFound)
	_, err = f.svc.FederatedSignIn(ctx, "email", "code")
	requireCode(t, err, apperrors.CodeNotFound)

	s, err := f.svc.FederatedSignIn(ctx, "facebook", "code")
	if err != nil {
		t.Fatal(err)
	}
	if s.User.Provider != domain.ProviderFacebook || s.User.Username != "ravi" || s.User.Status != domain.UserStatusActive {
		t.Fatalf("user = %+v", s.User)
	}
}

func TestFederatedSignInRefusesBlockedAccount(t *testing.T) {
	f := newAuthFixture(t, fakeIdentity{ident: &auth.FederatedIdentity{Email: "priya@example.com", Name: "Priya"}})
	seedUser(t, f.store, domain.User{Username: "priya", Email: "priya@example.com", Status: domain.UserStatusBlocked})

	_, err := f.svc.FederatedSignIn(context.Background(), "google", "code")
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)
	if _, err := f.svc.Signup(ctx, signupInput()); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.RequestPasswordReset(ctx, "unknown@example.com"); err != nil {
		t.Fatalf("unknown email: %v", err)
	}
	if err := f.svc.RequestPasswordReset(ctx, "asha@example.com"); err != nil {
		t.Fatal(err)
	}

	var token string
	for _, ev := range f.dispatcher.events {
		if p, ok := ev.Payload.(events.PasswordResetRequestedPayload); ok {
			token = p.Token
			if !p.ExpiresAt.Equal(testNow.Add(30 * time.Minute)) {
				t.Fatalf("expires_at = %v", p.ExpiresAt)
			}
		}
	}
	if token == "" {
		t.Fatal("no reset event published")
	}

	const newPassword = "Better#456"
	if err := f.svc.ConfirmPasswordReset(ctx, token, newPassword, newPassword); err != nil {
		t.Fatalf("ConfirmPasswordReset: %v", err)
	}
	err := f.svc.ConfirmPasswordReset(ctx, token, newPassword, newPassword)
	de := requireCode(t, err, apperrors.CodeValidation)
	if de.Details["field"] != "token" {
		t.Fatalf("details = %v", de.Details)
	}

	if _, err := f.svc.Login(ctx, "s1", "asha", newPassword); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestChangePasswordChecksCurrent(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, nil)
	s, err := f.svc.Signup(ctx, signupInput())
	if err != nil {
		t.Fatal(err)
	}

	err = f.svc.ChangePassword(ctx, s.User, "nope", "Better#456", "Better#456")
	requireCode(t, err, apperrors.CodeUnauthorized)
	if err := f.svc.ChangePassword(ctx, s.User, strongPassword, "Better#456", "Better#456"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := f.svc.Login(ctx, "s1", "asha", "Better#456"); err != nil {
		t.Fatalf("login with changed password: %v", err)
	}
}
