package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pyconid/pyconid25-be-sub000/internal/domain"
	"github.com/pyconid/pyconid25-be-sub000/internal/repository"
)

type fakeAuthUserRepo struct {
	users  map[string]domain.User
	nextID uint
}

func newFakeAuthUserRepo() *fakeAuthUserRepo {
	return &fakeAuthUserRepo{users: make(map[string]domain.User)}
}

func (f *fakeAuthUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return domain.User{}, repository.ErrUserEmailExists
	}

	f.nextID++
	user.ID = f.nextID
	f.users[user.Email] = user

	return user, nil
}

func (f *fakeAuthUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := f.users[email]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func TestSignup(t *testing.T) {
	repo := newFakeAuthUserRepo()
	svc := NewAuthService(repo)

	created, err := svc.Signup(context.Background(), domain.User{
		Email:    "alice@example.com",
		Password: "Sup3rSecret",
		Name:     "Alice",
		Phone:    "+628111111111",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	assert.True(t, created.EmailVerified, "a fresh account must already satisfy the checkout email precondition")
	assert.NotEqual(t, "Sup3rSecret", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("Sup3rSecret")))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	repo := newFakeAuthUserRepo()
	svc := NewAuthService(repo)

	_, err := svc.Signup(context.Background(), domain.User{Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), domain.User{Email: "alice@example.com", Password: "0therSecret"})
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestSignupThenCreatePayment(t *testing.T) {
	f := newPaymentFixture()
	authRepo := newFakeAuthUserRepo()
	authSvc := NewAuthService(authRepo)

	signed, err := authSvc.Signup(context.Background(), domain.User{
		Email:    "dave@example.com",
		Password: "Sup3rSecret",
		Name:     "Dave",
		Phone:    "+628444444444",
	})
	require.NoError(t, err)

	f.users.users[99] = domain.User{
		ID:            99,
		Email:         signed.Email,
		EmailVerified: signed.EmailVerified,
		Phone:         signed.Phone,
	}

	payment, err := f.svc.CreatePayment(context.Background(), 99, 1, "")
	require.NoError(t, err, "checkout must be reachable straight after signup")
	assert.Equal(t, domain.PaymentStatusUnpaid, payment.Status)
}

func TestLogin(t *testing.T) {
	repo := newFakeAuthUserRepo()
	svc := NewAuthService(repo)

	_, err := svc.Signup(context.Background(), domain.User{Email: "alice@example.com", Password: "Sup3rSecret"})
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), "alice@example.com", "Sup3rSecret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = svc.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(context.Background(), "nobody@example.com", "Sup3rSecret")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
