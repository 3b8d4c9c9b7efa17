package service

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ds124wfegd/eventhub/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.services.Auth.Register(env.ctx(), &RegisterRequest{
		Name:     "  Alice ",
		Email:    "Alice@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
	assert.False(t, user.Verified)
	assert.Equal(t, entity.LoginStatusLoggedOut, user.LoginStatus)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	msg := env.mailer.last(t, "alice@example.com", "Verify Your Email")
	assert.Contains(t, msg.Body, "http://front.test/verify-email?token=")

	_, err = env.services.Auth.Register(env.ctx(), &RegisterRequest{
		Name:     "Alice again",
		Email:    "ALICE@example.com",
		Password: "another1",
	})
	assert.ErrorIs(t, err, entity.ErrEmailTaken)
	assert.ErrorIs(t, err, entity.ErrConflict)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.services.Auth.Register(env.ctx(), &RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)
	token := tokenFromMail(t, env.mailer.last(t, "bob@example.com", "Verify Your Email"))

	res, err := env.services.Auth.VerifyEmail(env.ctx(), token)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", res.Email)
	assert.False(t, res.AlreadyVerified)

	again, err := env.services.Auth.VerifyEmail(env.ctx(), token)
	require.NoError(t, err)
	assert.True(t, again.AlreadyVerified)

	status, err := env.services.Auth.CheckVerificationStatus(env.ctx(), "BOB@example.com")
	require.NoError(t, err)
	assert.True(t, status.Verified)

	_, err = env.services.Auth.VerifyEmail(env.ctx(), "no-such-token")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	assert.ErrorIs(t, env.services.Auth.ResendVerification(env.ctx(), "bob@example.com"), entity.ErrAlreadyVerified)
}

func TestAuthService_VerifyEmailExpired(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.services.Auth.Register(env.ctx(), &RegisterRequest{Name: "Eve", Email: "eve@example.com", Password: "secret123"})
	require.NoError(t, err)
	token := tokenFromMail(t, env.mailer.last(t, "eve@example.com", "Verify Your Email"))

	env.clock.Advance(25 * time.Hour)

	_, err = env.services.Auth.VerifyEmail(env.ctx(), token)
	assert.ErrorIs(t, err, entity.ErrExpired)

	// a fresh token replaces the expired one
	require.NoError(t, env.services.Auth.ResendVerification(env.ctx(), "eve@example.com"))
	fresh := tokenFromMail(t, env.mailer.last(t, "eve@example.com", "Verify Your Email"))
	assert.NotEqual(t, token, fresh)

	res, err := env.services.Auth.VerifyEmail(env.ctx(), fresh)
	require.NoError(t, err)
	assert.False(t, res.AlreadyVerified)
}

func TestAuthService_VerifyEmailUsedTokenOfUnverifiedUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerVerified(t, "dan@example.com")
	token := tokenFromMail(t, env.mailer.last(t, "dan@example.com", "Verify Your Email"))

	stored, err := env.repos.Users.GetByID(env.ctx(), user.ID)
	require.NoError(t, err)
	stored.Verified = false
	require.NoError(t, env.repos.Users.Update(env.ctx(), stored))

	_, err = env.services.Auth.VerifyEmail(env.ctx(), token)
	assert.ErrorIs(t, err, entity.ErrTokenUsed)

	require.NoError(t, env.services.Auth.ResendVerification(env.ctx(), "dan@example.com"))
	fresh := tokenFromMail(t, env.mailer.last(t, "dan@example.com", "Verify Your Email"))
	_, err = env.services.Auth.VerifyEmail(env.ctx(), fresh)
	require.NoError(t, err)
}

func TestAuthService_VerifyEmailConcurrent(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.services.Auth.Register(env.ctx(), &RegisterRequest{Name: "Cy", Email: "cy@example.com", Password: "secret123"})
	require.NoError(t, err)
	token := tokenFromMail(t, env.mailer.last(t, "cy@example.com", "Verify Your Email"))

	const callers = 10
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		first int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.services.Auth.VerifyEmail(env.ctx(), token)
			if !assert.NoError(t, err) {
				return
			}
			if !res.AlreadyVerified {
				mu.Lock()
				first++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, first)
}

func TestAuthService_LoginErrors(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t, "ok@example.com")
	_, err := env.services.Auth.Register(env.ctx(), &RegisterRequest{Name: "New", Email: "new@example.com", Password: "secret123"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     LoginRequest
		wantErr error
	}{
		{"unknown email", LoginRequest{Email: "ghost@example.com", Password: "secret123"}, entity.ErrInvalidCredentials},
		{"unverified", LoginRequest{Email: "new@example.com", Password: "secret123"}, entity.ErrEmailNotVerified},
		{"wrong password", LoginRequest{Email: "ok@example.com", Password: "nope"}, entity.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.services.Auth.Login(env.ctx(), &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, entity.ErrUnauthorized)
		})
	}
}

func TestAuthService_LoginWithOtp(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerVerified(t, "otp@example.com")

	id, err := env.services.Auth.Login(env.ctx(), &LoginRequest{Email: "otp@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	stored, err := env.repos.Users.GetByID(env.ctx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LoginStatusOtpPending, stored.LoginStatus)

	code := otpFromMail(t, env.mailer.last(t, "otp@example.com", "Login OTP"))
	assert.Len(t, code, 6)

	_, err = env.services.Auth.VerifyOtp(env.ctx(), &VerifyOtpRequest{Email: "otp@example.com", Otp: wrongCode(code)})
	assert.ErrorIs(t, err, entity.ErrInvalidOtp)
	assert.ErrorIs(t, err, entity.ErrInvalidCode)

	session, err := env.services.Auth.VerifyOtp(env.ctx(), &VerifyOtpRequest{Email: "otp@example.com", Otp: code})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, entity.LoginStatusLoggedIn, session.User.LoginStatus)

	// the OTP is single use
	_, err = env.services.Auth.VerifyOtp(env.ctx(), &VerifyOtpRequest{Email: "otp@example.com", Otp: code})
	assert.ErrorIs(t, err, entity.ErrNoLoginPending)

	authed, err := env.services.Auth.Authenticate(env.ctx(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	require.NoError(t, env.services.Auth.Logout(env.ctx(), user.ID))
	_, err = env.services.Auth.Authenticate(env.ctx(), session.Token)
	assert.ErrorIs(t, err, entity.ErrNotLoggedIn)

	_, err = env.services.Auth.Authenticate(env.ctx(), "garbage")
	assert.ErrorIs(t, err, entity.ErrInvalidSession)
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func TestAuthService_OtpExpires(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t, "slow@example.com")

	_, err := env.services.Auth.Login(env.ctx(), &LoginRequest{Email: "slow@example.com", Password: "secret123"})
	require.NoError(t, err)
	code := otpFromMail(t, env.mailer.last(t, "slow@example.com", "Login OTP"))

	env.clock.Advance(2*time.Minute + time.Second)

	_, err = env.services.Auth.VerifyOtp(env.ctx(), &VerifyOtpRequest{Email: "slow@example.com", Otp: code})
	assert.ErrorIs(t, err, entity.ErrOtpExpired)
}

func TestAuthService_NewLoginInvalidatesOldOtp(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t, "twice@example.com")

	login := func() string {
		_, err := env.services.Auth.Login(env.ctx(), &LoginRequest{Email: "twice@example.com", Password: "secret123"})
		require.NoError(t, err)
		return otpFromMail(t, env.mailer.last(t, "twice@example.com", "Login OTP"))
	}

	first := login()
	second := login()
	for i := 0; second == first && i < 5; i++ {
		second = login()
	}
	require.NotEqual(t, first, second)

	_, err := env.services.Auth.VerifyOtp(env.ctx(), &VerifyOtpRequest{Email: "twice@example.com", Otp: first})
	assert.ErrorIs(t, err, entity.ErrInvalidOtp)

	_, err = env.services.Auth.VerifyOtp(env.ctx(), &VerifyOtpRequest{Email: "twice@example.com", Otp: second})
	assert.NoError(t, err)
}

func TestAuthService_ResendOtpCooldown(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t, "wait@example.com")

	_, err := env.services.Auth.Login(env.ctx(), &LoginRequest{Email: "wait@example.com", Password: "secret123"})
	require.NoError(t, err)
	sent := env.mailer.count()

	env.clock.Advance(20 * time.Second)
	err = env.services.Auth.ResendOtp(env.ctx(), "wait@example.com")
	require.ErrorIs(t, err, entity.ErrRateLimited)

	var rl *entity.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, int64(40), rl.Seconds())
	assert.Equal(t, sent, env.mailer.count())

	env.clock.Advance(41 * time.Second)
	require.NoError(t, env.services.Auth.ResendOtp(env.ctx(), "wait@example.com"))
	assert.Equal(t, sent+1, env.mailer.count())

	code := otpFromMail(t, env.mailer.last(t, "wait@example.com", "Login OTP"))
	_, err = env.services.Auth.VerifyOtp(env.ctx(), &VerifyOtpRequest{Email: "wait@example.com", Otp: code})
	assert.NoError(t, err)
}

func TestAuthService_ResendOtpUnverified(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.services.Auth.Register(env.ctx(), &RegisterRequest{Name: "U", Email: "u@example.com", Password: "secret123"})
	require.NoError(t, err)

	err = env.services.Auth.ResendOtp(env.ctx(), "u@example.com")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestAuthService_OtpNeedsPasswordStep(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, env *testEnv, email string) *entity.User
	}{
		{
			name: "never logged in",
			setup: func(t *testing.T, env *testEnv, email string) *entity.User {
				return env.seedUser(t, email)
			},
		},
		{
			name: "logged out",
			setup: func(t *testing.T, env *testEnv, email string) *entity.User {
				user := env.seedUser(t, email)
				env.login(t, email)
				require.NoError(t, env.services.Auth.Logout(env.ctx(), user.ID))
				env.clock.Advance(61 * time.Second)
				return user
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			user := tt.setup(t, env, "victim@example.com")
			sent := env.mailer.count()

			err := env.services.Auth.ResendOtp(env.ctx(), "victim@example.com")
			assert.ErrorIs(t, err, entity.ErrOtpNotFound)
			assert.Equal(t, sent, env.mailer.count())

			// a code sitting in storage is still no way around the password
			otp, err := env.issuer.IssueOtp(env.ctx(), user.ID)
			require.NoError(t, err)
			_, err = env.services.Auth.VerifyOtp(env.ctx(), &VerifyOtpRequest{Email: "victim@example.com", Otp: otp.Code})
			assert.ErrorIs(t, err, entity.ErrNoLoginPending)
			assert.ErrorIs(t, err, entity.ErrUnauthorized)

			stored, err := env.repos.Users.GetByID(env.ctx(), user.ID)
			require.NoError(t, err)
			assert.Equal(t, entity.LoginStatusLoggedOut, stored.LoginStatus)
		})
	}
}

func TestAuthService_ConcurrentVerifyOtp(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "race@example.com")

	_, err := env.services.Auth.Login(env.ctx(), &LoginRequest{Email: "race@example.com", Password: "secret123"})
	require.NoError(t, err)
	code := otpFromMail(t, env.mailer.last(t, "race@example.com", "Login OTP"))

	var sessions int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.services.Auth.VerifyOtp(env.ctx(), &VerifyOtpRequest{Email: "race@example.com", Otp: code})
			if err == nil {
				atomic.AddInt64(&sessions, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), sessions)
}

func TestAuthService_ConcurrentResendOtp(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "spam@example.com")

	_, err := env.services.Auth.Login(env.ctx(), &LoginRequest{Email: "spam@example.com", Password: "secret123"})
	require.NoError(t, err)
	sent := env.mailer.count()
	env.clock.Advance(61 * time.Second)

	var resent, limited int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := env.services.Auth.ResendOtp(env.ctx(), "spam@example.com")
			switch {
			case err == nil:
				atomic.AddInt64(&resent, 1)
			case errors.Is(err, entity.ErrRateLimited):
				atomic.AddInt64(&limited, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), resent)
	assert.Equal(t, int64(9), limited)
	assert.Equal(t, sent+1, env.mailer.count())
}

func TestAuthService_SocialLogin(t *testing.T) {
	env := newTestEnv(t)

	session, err := env.services.Auth.SocialLogin(env.ctx(), &SocialLoginRequest{
		Provider: "Google",
		SocialID: "g-1",
		Email:    "social@example.com",
		Name:     "Social",
	})
	require.NoError(t, err)
	assert.True(t, session.User.Verified)
	assert.Equal(t, entity.LoginStatusLoggedIn, session.User.LoginStatus)
	assert.Equal(t, "g-1", session.User.GoogleID)

	again, err := env.services.Auth.SocialLogin(env.ctx(), &SocialLoginRequest{
		Provider:  "google",
		SocialID:  "g-1",
		Email:     "social@example.com",
		AvatarURL: "http://img/1.png",
	})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, again.User.ID)
	assert.Equal(t, "http://img/1.png", again.User.ProfileImageURL)

	env.seedUser(t, "taken@example.com")
	_, err = env.services.Auth.SocialLogin(env.ctx(), &SocialLoginRequest{
		Provider: "facebook",
		SocialID: "f-1",
		Email:    "taken@example.com",
	})
	assert.ErrorIs(t, err, entity.ErrEmailTaken)

	_, err = env.services.Auth.SocialLogin(env.ctx(), &SocialLoginRequest{
		Provider: "myspace",
		SocialID: "m-1",
		Email:    "x@example.com",
	})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestAuthService_LinkSocialAccount(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice@example.com")
	bob := env.seedUser(t, "bob@example.com")

	require.NoError(t, env.services.Auth.LinkSocialAccount(env.ctx(), alice.ID, &LinkSocialRequest{Provider: "google", SocialID: "g-a"}))

	err := env.services.Auth.LinkSocialAccount(env.ctx(), alice.ID, &LinkSocialRequest{Provider: "google", SocialID: "g-b"})
	assert.ErrorIs(t, err, entity.ErrGoogleLinked)

	err = env.services.Auth.LinkSocialAccount(env.ctx(), bob.ID, &LinkSocialRequest{Provider: "google", SocialID: "g-a"})
	assert.ErrorIs(t, err, entity.ErrSocialIDTaken)

	session, err := env.services.Auth.SocialLogin(env.ctx(), &SocialLoginRequest{Provider: "google", SocialID: "g-a", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, session.User.ID)
}

func TestAuthService_ProfileAndPassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerVerified(t, "pat@example.com")

	dob := entity.NewDate(time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC))
	updated, err := env.services.Auth.UpdateProfile(env.ctx(), user.ID, &UpdateProfileRequest{
		Name:        "Pat",
		DateOfBirth: &dob,
		PhoneNumber: " +100 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Pat", updated.Name)
	assert.Equal(t, "+100", updated.PhoneNumber)

	profile, err := env.services.Auth.GetProfile(env.ctx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pat", profile.Name)
	require.NotNil(t, profile.DateOfBirth)
	assert.Equal(t, "1990-05-01", profile.DateOfBirth.Format(entity.DateLayout))

	err = env.services.Auth.ChangePassword(env.ctx(), user.ID, &ChangePasswordRequest{OldPassword: "wrong", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, entity.ErrOldPasswordMismatch)

	require.NoError(t, env.services.Auth.ChangePassword(env.ctx(), user.ID, &ChangePasswordRequest{OldPassword: "secret123", NewPassword: "newsecret"}))

	_, err = env.services.Auth.Login(env.ctx(), &LoginRequest{Email: "pat@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
	_, err = env.services.Auth.Login(env.ctx(), &LoginRequest{Email: "pat@example.com", Password: "newsecret"})
	assert.NoError(t, err)
}
