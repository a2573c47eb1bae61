package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-safewalk/internal/shared/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

var pgErr = errors.New("db error")

var userCols = []string{"id", "email", "username", "password_hash", "full_name", "avatar_url", "created_at", "updated_at"}

func newAuthMock(t *testing.T) (pgxmock.PgxPoolIface, *Service) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewService("test-secret", mock)
}

func expectRefreshSaved(mock pgxmock.PgxPoolIface, userID interface{}) {
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), userID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

func TestRegisterNormalizesThenLogsIn(t *testing.T) {
	mock, svc := newAuthMock(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "user@example.com", "walker", pgxmock.AnyArg(), "Night Walker", "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	expectRefreshSaved(mock, pgxmock.AnyArg())

	user, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "  User@Example.com ",
		Username: " walker ",
		Password: "password123",
		FullName: "Night Walker",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "user@example.com" || user.Username != "walker" {
		t.Fatalf("expected normalized identity, got %q %q", user.Email, user.Username)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")) != nil {
		t.Fatalf("stored hash does not match password")
	}

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(user.ID, user.Email, user.Username, user.PasswordHash, user.FullName, "", now, now))
	expectRefreshSaved(mock, user.ID)

	loggedIn, tokens, err := svc.Login(context.Background(), LoginRequest{Email: "USER@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID || tokens.TokenType != "Bearer" || tokens.ExpiresIn != int64(accessTokenTTL.Seconds()) {
		t.Fatalf("unexpected login result %+v %+v", loggedIn, tokens)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegisterRejectsBlankFields(t *testing.T) {
	_, svc := newAuthMock(t)
	cases := []RegisterRequest{
		{Email: " ", Username: "u", Password: "p"},
		{Email: "a@b.c", Username: "  ", Password: "p"},
		{Email: "a@b.c", Username: "u"},
	}
	for _, req := range cases {
		if _, _, err := svc.Register(context.Background(), req); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Fatalf("%+v: expected invalid input, got %v", req, err)
		}
	}
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	mock, svc := newAuthMock(t)
	req := RegisterRequest{Email: "user@example.com", Username: "walker", Password: "pass"}

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pgconn.PgError{Code: uniqueViolation})
	if _, _, err := svc.Register(context.Background(), req); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(pgErr)
	_, _, err := svc.Register(context.Background(), req)
	if !errors.Is(err, pgErr) || errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestRegisterHashFailure(t *testing.T) {
	oldHash := hashPasswordFn
	hashPasswordFn = func([]byte, int) ([]byte, error) { return nil, pgErr }
	defer func() { hashPasswordFn = oldHash }()

	svc := NewService("test-secret", nil)
	if _, _, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.c", Username: "u", Password: "p"}); !errors.Is(err, pgErr) {
		t.Fatalf("expected hash error, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	mock, svc := newAuthMock(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	req := LoginRequest{Email: "user@example.com", Password: "wrong"}

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows(userCols))
	if _, _, err := svc.Login(context.Background(), req); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected invalid credentials, got %v", err)
	}

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow("user-1", "user@example.com", "walker", string(hash), "", "", time.Now(), time.Now()))
	if _, _, err := svc.Login(context.Background(), req); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected invalid credentials, got %v", err)
	}

	mock.ExpectQuery(`FROM users WHERE email = \$1`).WillReturnError(pgErr)
	_, _, err := svc.Login(context.Background(), req)
	if !errors.Is(err, pgErr) || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("query failure: expected db error, got %v", err)
	}
}

func TestTokensMintedTogetherDiffer(t *testing.T) {
	svc := NewService("test-secret", nil)

	first, err := svc.signToken("user-1", refreshTokenTTL)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	second, err := svc.signToken("user-1", refreshTokenTTL)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if first == second {
		t.Fatalf("tokens minted in the same second must differ")
	}

	a, errA := svc.parseToken(first)
	b, errB := svc.parseToken(second)
	if errA != nil || errB != nil {
		t.Fatalf("parse: %v %v", errA, errB)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct token ids, got %q and %q", a.ID, b.ID)
	}
}

func TestParseTokenAcceptsOnlyHS256(t *testing.T) {
	svc := NewService("test-secret", nil)
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign hs384: %v", err)
	}
	if _, err := svc.ValidateAccessToken(hs384); err == nil {
		t.Fatalf("expected HS384 token to be rejected")
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := svc.ValidateAccessToken(unsigned); err == nil {
		t.Fatalf("expected unsigned token to be rejected")
	}

	hs256, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if id, err := svc.ValidateAccessToken(hs256); err != nil || id != "user-1" {
		t.Fatalf("expected HS256 token accepted, got %q %v", id, err)
	}

	if _, err := NewService("other-secret", nil).ValidateAccessToken(hs256); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}

func TestParseTokenInvalidClaims(t *testing.T) {
	oldParse := parseWithClaimsFn
	parseWithClaimsFn = func(string, jwt.Claims, jwt.Keyfunc, ...jwt.ParserOption) (*jwt.Token, error) {
		return &jwt.Token{Valid: false, Claims: &Claims{}}, nil
	}
	defer func() { parseWithClaimsFn = oldParse }()

	if _, err := NewService("test-secret", nil).parseToken("token"); !errors.Is(err, errTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestValidateRefreshToken(t *testing.T) {
	mock, svc := newAuthMock(t)

	expectRefreshSaved(mock, "user-1")
	tokens, err := svc.GenerateTokens(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("generate tokens: %v", err)
	}

	lookup := func(userID string, expiresAt time.Time) {
		mock.ExpectQuery(`SELECT user_id, expires_at`).
			WithArgs(tokens.RefreshToken).
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).AddRow(userID, expiresAt))
	}

	lookup("user-1", time.Now().Add(time.Hour))
	if id, err := svc.ValidateRefreshToken(context.Background(), tokens.RefreshToken); err != nil || id != "user-1" {
		t.Fatalf("validate: %q %v", id, err)
	}

	lookup("user-1", time.Now().Add(-time.Minute))
	if _, err := svc.ValidateRefreshToken(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expired: expected refresh invalid, got %v", err)
	}

	lookup("user-2", time.Now().Add(time.Hour))
	if _, err := svc.ValidateRefreshToken(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("owner mismatch: expected refresh invalid, got %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).WillReturnError(pgErr)
	if _, err := svc.ValidateRefreshToken(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("lookup failure: expected refresh invalid, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGenerateTokensFailures(t *testing.T) {
	oldSign := signTokenFn
	defer func() { signTokenFn = oldSign }()

	for _, failOn := range []int{1, 2} {
		calls := 0
		signTokenFn = func(*Service, string, time.Duration) (string, error) {
			calls++
			if calls == failOn {
				return "", pgErr
			}
			return "token", nil
		}
		if _, err := NewService("test-secret", nil).GenerateTokens(context.Background(), "user-1"); !errors.Is(err, pgErr) {
			t.Fatalf("sign call %d: expected error, got %v", failOn, err)
		}
	}
	signTokenFn = oldSign

	mock, svc := newAuthMock(t)
	mock.ExpectExec(`INSERT INTO refresh_tokens`).WillReturnError(pgErr)
	if _, err := svc.GenerateTokens(context.Background(), "user-1"); !errors.Is(err, pgErr) {
		t.Fatalf("save: expected error, got %v", err)
	}
}
