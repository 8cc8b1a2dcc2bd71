package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/entities"
	"github.com/Notemat/foodgram/internal/testinfra"
	"github.com/Notemat/foodgram/internal/utils/storage"
	"github.com/Notemat/foodgram/pkg/jwt"
	"github.com/Notemat/foodgram/pkg/subscription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendMail(toEmail, subject, body string) error {
	return m.Called(toEmail, subject, body).Error(0)
}

func newService(t *testing.T, mailer *mockMailer) (UserService, *gorm.DB) {
	t.Helper()

	db := testinfra.NewTestDB(t)
	return NewUserService(
		NewUserRepository(db),
		subscription.NewSubscriptionRepository(db),
		jwt.NewJWTService("test-secret", time.Hour),
		storage.NewLocalStorage(t.TempDir(), "http://localhost"),
		mailer,
		"http://localhost",
	), db
}

func registration(username string) domain.RegisterRequest {
	return domain.RegisterRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Vasya",
		LastName:  "Pupkin",
		Password:  "Qwerty123",
	}
}

func TestRegister_SendsWelcomeMailAndRejectsDuplicates(t *testing.T) {
	t.Parallel()

	// Arrange
	mailer := new(mockMailer)
	mailer.On("SendMail", "vasya@example.com", mock.Anything, mock.Anything).Return(nil).Once()
	svc, _ := newService(t, mailer)
	ctx := context.Background()

	// Act
	created, err := svc.Register(ctx, registration("vasya"))
	require.NoError(t, err)
	_, dupErr := svc.Register(ctx, registration("vasya"))

	// Assert
	assert.Equal(t, "vasya", created.Username)
	assert.NotZero(t, created.ID)
	mailer.AssertExpectations(t)

	var verrs domain.ValidationErrors
	require.True(t, errors.As(dupErr, &verrs))
	assert.Equal(t, []string{"email", "username"}, verrs.FieldNames())
}

// racingRepository inserts a competing account between the uniqueness
// checks and the insert.
type racingRepository struct {
	UserRepository
	db    *gorm.DB
	rival *entities.User
}

func (r *racingRepository) CreateUser(ctx context.Context, user *entities.User) error {
	if err := r.db.Create(r.rival).Error; err != nil {
		return err
	}
	return r.UserRepository.CreateUser(ctx, user)
}

func TestRegister_ConcurrentDuplicateNamesTheTakenField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rival      entities.User
		wantFields []string
	}{
		{
			name:       "username",
			rival:      entities.User{Email: "someone@example.com", Username: "vasya", Password: "x"},
			wantFields: []string{"username"},
		},
		{
			name:       "email",
			rival:      entities.User{Email: "vasya@example.com", Username: "someone", Password: "x"},
			wantFields: []string{"email"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := testinfra.NewTestDB(t)
			rival := tt.rival
			svc := NewUserService(
				&racingRepository{UserRepository: NewUserRepository(db), db: db, rival: &rival},
				subscription.NewSubscriptionRepository(db),
				jwt.NewJWTService("test-secret", time.Hour),
				storage.NewLocalStorage(t.TempDir(), "http://localhost"),
				new(mockMailer),
				"http://localhost",
			)

			_, err := svc.Register(context.Background(), registration("vasya"))

			var verrs domain.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tt.wantFields, verrs.FieldNames())
		})
	}
}

func TestRegister_MailFailureDoesNotFailRegistration(t *testing.T) {
	t.Parallel()

	mailer := new(mockMailer)
	mailer.On("SendMail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	svc, _ := newService(t, mailer)

	_, err := svc.Register(context.Background(), registration("petya"))
	assert.NoError(t, err)
}

func TestLoginLogout_RevokesTokens(t *testing.T) {
	t.Parallel()

	mailer := new(mockMailer)
	mailer.On("SendMail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc, _ := newService(t, mailer)
	ctx := context.Background()

	created, err := svc.Register(ctx, registration("masha"))
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "masha@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "Qwerty123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	token, err := svc.Login(ctx, domain.LoginRequest{Email: "MASHA@example.com", Password: "Qwerty123"})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, token.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	require.NoError(t, svc.Logout(ctx, created.ID))
	_, err = svc.Authenticate(ctx, token.AuthToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)

	fresh, err := svc.Login(ctx, domain.LoginRequest{Email: "masha@example.com", Password: "Qwerty123"})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, fresh.AuthToken)
	assert.NoError(t, err)
}

func TestSetPassword(t *testing.T) {
	t.Parallel()

	mailer := new(mockMailer)
	mailer.On("SendMail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc, _ := newService(t, mailer)
	ctx := context.Background()

	created, err := svc.Register(ctx, registration("kolya"))
	require.NoError(t, err)

	err = svc.SetPassword(ctx, created.ID, domain.SetPasswordRequest{CurrentPassword: "nope", NewPassword: "N3wPassword"})
	assert.ErrorIs(t, err, domain.ErrWrongPassword)

	require.NoError(t, svc.SetPassword(ctx, created.ID, domain.SetPasswordRequest{CurrentPassword: "Qwerty123", NewPassword: "N3wPassword"}))
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "kolya@example.com", Password: "N3wPassword"})
	assert.NoError(t, err)
}

func TestAvatar_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	mailer := new(mockMailer)
	mailer.On("SendMail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc, _ := newService(t, mailer)
	ctx := context.Background()

	created, err := svc.Register(ctx, registration("olya"))
	require.NoError(t, err)

	resp, err := svc.UpdateAvatar(ctx, created.ID, domain.AvatarRequest{Avatar: pixel})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Avatar, "http://localhost/media/users/avatars/"))

	profile, err := svc.GetProfile(ctx, created.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, profile.Avatar)
	assert.Equal(t, resp.Avatar, *profile.Avatar)

	_, err = svc.UpdateAvatar(ctx, created.ID, domain.AvatarRequest{Avatar: "plain text"})
	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"avatar"}, verrs.FieldNames())

	require.NoError(t, svc.DeleteAvatar(ctx, created.ID))
	profile, err = svc.GetProfile(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, profile.Avatar)
}

func TestGetProfile_SubscriptionFlag(t *testing.T) {
	t.Parallel()

	svc, db := newService(t, new(mockMailer))
	fan := testinfra.CreateUser(t, db, "fan")
	star := testinfra.CreateUser(t, db, "star")
	require.NoError(t, subscription.NewSubscriptionRepository(db).Create(context.Background(), fan.ID, star.ID))

	asFan, err := svc.GetProfile(context.Background(), star.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, asFan.IsSubscribed)

	anonymous, err := svc.GetProfile(context.Background(), star.ID, 0)
	require.NoError(t, err)
	assert.False(t, anonymous.IsSubscribed)

	_, err = svc.GetProfile(context.Background(), star.ID+100, 0)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	users, total, err := svc.GetUsers(context.Background(), fan.ID, domain.PageQuery{Page: 1, Limit: 6})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, users, 2)
	assert.False(t, users[0].IsSubscribed)
	assert.True(t, users[1].IsSubscribed)
}
