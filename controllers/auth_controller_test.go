package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/rescuenear/rescuenear_backend/models"
	"github.com/rescuenear/rescuenear_backend/repositories"
	"github.com/rescuenear/rescuenear_backend/services"
)

type memUserRepo struct {
	mu      sync.Mutex
	byPhone map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byPhone: make(map[string]*models.User)}
}

func (r *memUserRepo) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byPhone[phone]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	if u.OTPInfo != nil {
		otpCp := *u.OTPInfo
		cp.OTPInfo = &otpCp
	}
	return &cp, nil
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byPhone[user.Phone]; ok {
		return repositories.ErrPhoneTaken
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.byPhone[user.Phone] = &cp
	return nil
}

func (r *memUserRepo) Save(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	if user.OTPInfo != nil {
		otpCp := *user.OTPInfo
		cp.OTPInfo = &otpCp
	}
	r.byPhone[user.Phone] = &cp
	return nil
}

func (r *memUserRepo) get(phone string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byPhone[phone]
}

func (r *memUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byPhone)
}

type sentMail struct {
	to  string
	otp string
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendOTP(to, otp string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, otp: otp})
	return nil
}

type stubVerifier struct {
	status string
	err    error
	calls  int
}

func (v *stubVerifier) VerifyTransaction(ctx context.Context, reference string) (string, error) {
	v.calls++
	if v.err != nil {
		return "", v.err
	}
	return v.status, nil
}

type testValidator struct {
	validator *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.validator.Struct(i)
}

type authTestEnv struct {
	e        *echo.Echo
	repo     *memUserRepo
	mailer   *recordingMailer
	verifier *stubVerifier
	ac       *AuthController
}

func newAuthTestEnv() *authTestEnv {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	repo := newMemUserRepo()
	mailer := &recordingMailer{}
	verifier := &stubVerifier{status: "success"}
	otp := services.NewOTPService(repo)

	return &authTestEnv{
		e:        e,
		repo:     repo,
		mailer:   mailer,
		verifier: verifier,
		ac:       NewAuthController(repo, otp, mailer, verifier),
	}
}

func (env *authTestEnv) post(t *testing.T, handler echo.HandlerFunc, body string) (*httptest.ResponseRecorder, models.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)

	require.NoError(t, handler(c))

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestSignupCreatesUserAndSendsOTP(t *testing.T) {
	env := newAuthTestEnv()

	rec, resp := env.post(t, env.ac.Signup, `{"email":"a@x.com","phone":"555"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	stored := env.repo.get("555")
	require.NotNil(t, stored)
	require.Equal(t, "a@x.com", stored.Email)
	require.False(t, stored.HasPaid)
	require.NotNil(t, stored.OTPInfo)
	require.Len(t, stored.OTPInfo.OTP, 4)
	require.WithinDuration(t, time.Now().Add(5*time.Minute), stored.OTPInfo.ExpiresAt, 10*time.Second)

	require.Len(t, env.mailer.sent, 1)
	require.Equal(t, "a@x.com", env.mailer.sent[0].to)
	require.Equal(t, stored.OTPInfo.OTP, env.mailer.sent[0].otp)
}

func TestSignupMissingFieldsRejectedBeforeStore(t *testing.T) {
	env := newAuthTestEnv()

	_, resp := env.post(t, env.ac.Signup, `{"email":"a@x.com"}`)
	require.False(t, resp.Success)
	require.Equal(t, "Missing fields", resp.Message)
	require.Equal(t, 0, env.repo.count())
	require.Empty(t, env.mailer.sent)
}

func TestSignupDuplicatePhone(t *testing.T) {
	env := newAuthTestEnv()

	_, resp := env.post(t, env.ac.Signup, `{"email":"a@x.com","phone":"555"}`)
	require.True(t, resp.Success)
	before := *env.repo.get("555")

	_, resp = env.post(t, env.ac.Signup, `{"email":"b@x.com","phone":"555"}`)
	require.False(t, resp.Success)
	require.Equal(t, "Phone already registered", resp.Message)

	// still exactly one record, and the existing one is untouched
	require.Equal(t, 1, env.repo.count())
	after := env.repo.get("555")
	require.Equal(t, before.Email, after.Email)
	require.Equal(t, before.OTPInfo.OTP, after.OTPInfo.OTP)
	require.Len(t, env.mailer.sent, 1)
}

func TestSignupDeliveryFailureKeepsAccount(t *testing.T) {
	env := newAuthTestEnv()
	env.mailer.err = errors.New("smtp connection refused")

	_, resp := env.post(t, env.ac.Signup, `{"email":"a@x.com","phone":"555"}`)
	require.False(t, resp.Success)
	require.Equal(t, "Failed to send OTP", resp.Message)

	// the account and its code were persisted before the send attempt;
	// a later login recovers by issuing a fresh code
	stored := env.repo.get("555")
	require.NotNil(t, stored)
	require.NotNil(t, stored.OTPInfo)

	env.mailer.err = nil
	_, resp = env.post(t, env.ac.Login, `{"phone":"555"}`)
	require.True(t, resp.Success)
	require.Len(t, env.mailer.sent, 1)
}

func TestLoginUnknownPhone(t *testing.T) {
	env := newAuthTestEnv()

	_, resp := env.post(t, env.ac.Login, `{"phone":"999"}`)
	require.False(t, resp.Success)
	require.Equal(t, "Phone not found", resp.Message)
}

func TestLoginReissuesWithoutResettingAuthorization(t *testing.T) {
	env := newAuthTestEnv()

	_, resp := env.post(t, env.ac.Signup, `{"email":"a@x.com","phone":"555"}`)
	require.True(t, resp.Success)
	firstCode := env.repo.get("555").OTPInfo.OTP

	_, resp = env.post(t, env.ac.VerifyPayment, `{"reference":"ref-001","phone":"555"}`)
	require.True(t, resp.Success)

	_, resp = env.post(t, env.ac.Login, `{"phone":"555"}`)
	require.True(t, resp.Success)

	stored := env.repo.get("555")
	require.NotNil(t, stored.OTPInfo)
	require.True(t, stored.HasPaid)

	// the old code only stays valid if the generator happened to repeat it
	if stored.OTPInfo.OTP != firstCode {
		_, resp = env.post(t, env.ac.VerifyOTP, `{"phone":"555","otp":"`+firstCode+`"}`)
		require.False(t, resp.Success)
	}
	_, resp = env.post(t, env.ac.VerifyOTP, `{"phone":"555","otp":"`+stored.OTPInfo.OTP+`"}`)
	require.True(t, resp.Success)
}

func TestVerifyOTPRoundTrip(t *testing.T) {
	env := newAuthTestEnv()

	_, resp := env.post(t, env.ac.Signup, `{"email":"a@x.com","phone":"555"}`)
	require.True(t, resp.Success)
	code := env.mailer.sent[0].otp

	_, resp = env.post(t, env.ac.VerifyOTP, `{"phone":"555","otp":"`+code+`"}`)
	require.True(t, resp.Success)
	require.Equal(t, "OTP verified", resp.Message)
	require.Nil(t, env.repo.get("555").OTPInfo)

	// the code was consumed; replaying it fails
	_, resp = env.post(t, env.ac.VerifyOTP, `{"phone":"555","otp":"`+code+`"}`)
	require.False(t, resp.Success)
	require.Equal(t, "Invalid or expired OTP", resp.Message)
}

func TestVerifyOTPUnknownPhone(t *testing.T) {
	env := newAuthTestEnv()

	_, resp := env.post(t, env.ac.VerifyOTP, `{"phone":"999","otp":"1234"}`)
	require.False(t, resp.Success)
	require.Equal(t, "User not found", resp.Message)
}

func TestVerifyPaymentSuccess(t *testing.T) {
	env := newAuthTestEnv()

	_, resp := env.post(t, env.ac.Signup, `{"email":"a@x.com","phone":"555"}`)
	require.True(t, resp.Success)

	_, resp = env.post(t, env.ac.VerifyPayment, `{"reference":"ref-001","phone":"555"}`)
	require.True(t, resp.Success)
	require.Equal(t, "Payment verified", resp.Message)

	stored := env.repo.get("555")
	require.True(t, stored.HasPaid)
	require.Equal(t, "ref-001", stored.PaystackRef)
	require.Equal(t, 1, env.verifier.calls)
}

func TestVerifyPaymentUnknownPhoneSkipsAuthority(t *testing.T) {
	env := newAuthTestEnv()

	_, resp := env.post(t, env.ac.VerifyPayment, `{"reference":"ref-002","phone":"999"}`)
	require.False(t, resp.Success)
	require.Equal(t, 0, env.verifier.calls)
	require.Equal(t, 0, env.repo.count())
}

func TestVerifyPaymentNonSuccessStatus(t *testing.T) {
	env := newAuthTestEnv()
	env.verifier.status = "failed"

	_, resp := env.post(t, env.ac.Signup, `{"email":"a@x.com","phone":"555"}`)
	require.True(t, resp.Success)

	_, resp = env.post(t, env.ac.VerifyPayment, `{"reference":"ref-001","phone":"555"}`)
	require.False(t, resp.Success)
	require.Equal(t, "Payment not successful", resp.Message)

	stored := env.repo.get("555")
	require.False(t, stored.HasPaid)
	require.Empty(t, stored.PaystackRef)
}

func TestVerifyPaymentAuthorityUnreachable(t *testing.T) {
	env := newAuthTestEnv()
	env.verifier.err = errors.New("connection timed out")

	_, resp := env.post(t, env.ac.Signup, `{"email":"a@x.com","phone":"555"}`)
	require.True(t, resp.Success)

	rec, resp := env.post(t, env.ac.VerifyPayment, `{"reference":"ref-001","phone":"555"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.False(t, resp.Success)
	require.Equal(t, "Verification failed", resp.Message)
	require.False(t, env.repo.get("555").HasPaid)
}
