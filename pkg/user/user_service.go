package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/entities"
	"github.com/Notemat/foodgram/internal/logging"
	"github.com/Notemat/foodgram/internal/utils/mailing"
	"github.com/Notemat/foodgram/internal/utils/storage"
	"github.com/Notemat/foodgram/pkg/jwt"
	"github.com/Notemat/foodgram/pkg/subscription"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const avatarFolder = "users/avatars"

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.TokenResponse, error)
		Logout(ctx context.Context, userID uint) error
		Authenticate(ctx context.Context, token string) (*entities.User, error)
		GetProfile(ctx context.Context, userID uint, viewerID uint) (domain.UserResponse, error)
		GetUsers(ctx context.Context, viewerID uint, page domain.PageQuery) ([]domain.UserResponse, int64, error)
		SetPassword(ctx context.Context, userID uint, req domain.SetPasswordRequest) error
		UpdateAvatar(ctx context.Context, userID uint, req domain.AvatarRequest) (domain.AvatarResponse, error)
		DeleteAvatar(ctx context.Context, userID uint) error
	}

	userService struct {
		userRepository UserRepository
		subscriptions  subscription.SubscriptionRepository
		jwtService     jwt.JWTService
		storage        storage.Storage
		mailer         mailing.Mailer
		appURL         string
	}
)

func NewUserService(
	userRepository UserRepository,
	subscriptions subscription.SubscriptionRepository,
	jwtService jwt.JWTService,
	storage storage.Storage,
	mailer mailing.Mailer,
	appURL string,
) UserService {
	return &userService{
		userRepository: userRepository,
		subscriptions:  subscriptions,
		jwtService:     jwtService,
		storage:        storage,
		mailer:         mailer,
		appURL:         appURL,
	}
}

// takenFields reports which of the request's unique fields already belong
// to another account.
func (s *userService) takenFields(ctx context.Context, req domain.RegisterRequest) (domain.ValidationErrors, error) {
	var verrs domain.ValidationErrors

	emailTaken, err := s.userRepository.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if emailTaken {
		verrs.Add("email", domain.ErrEmailTaken)
	}
	usernameTaken, err := s.userRepository.CheckUsernameExists(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if usernameTaken {
		verrs.Add("username", domain.ErrUsernameTaken)
	}
	return verrs, nil
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	verrs, err := s.takenFields(ctx, req)
	if err != nil {
		return domain.RegisterResponse{}, err
	}
	if err := verrs.OrNil(); err != nil {
		return domain.RegisterResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.RegisterResponse{}, domain.ErrHashPassword
	}

	user := &entities.User{
		Email:     strings.TrimSpace(req.Email),
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hash),
	}
	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent registration; find out which field collided.
			verrs, checkErr := s.takenFields(ctx, req)
			if checkErr != nil {
				return domain.RegisterResponse{}, checkErr
			}
			if len(verrs) == 0 {
				verrs.Add("email", domain.ErrEmailTaken)
			}
			return domain.RegisterResponse{}, verrs
		}
		return domain.RegisterResponse{}, fmt.Errorf("create user: %w", err)
	}

	if err := s.mailer.SendMail(user.Email, "Welcome to Foodgram", mailing.WelcomeBody(user.Username, s.appURL)); err != nil {
		logging.Warn().Err(err).Uint("user_id", user.ID).Msg(domain.MessageFailedSendWelcomeMail)
	}

	return domain.RegisterResponse{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.TokenResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TokenResponse{}, domain.ErrInvalidCredentials
		}
		return domain.TokenResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.TokenResponse{}, domain.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateTokenUser(user.ID, user.TokenVersion)
	if err != nil {
		return domain.TokenResponse{}, fmt.Errorf("sign token: %w", err)
	}
	return domain.TokenResponse{AuthToken: token}, nil
}

func (s *userService) Logout(ctx context.Context, userID uint) error {
	return s.userRepository.BumpTokenVersion(ctx, userID)
}

func (s *userService) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	userID, version, err := s.jwtService.GetUserIDByToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if user.TokenVersion != version {
		return nil, domain.ErrTokenRevoked
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID uint, viewerID uint) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	subscribed, err := s.subscriptions.SubscribedTo(ctx, viewerID, []uint{user.ID})
	if err != nil {
		return domain.UserResponse{}, err
	}
	return domain.NewUserResponse(user, subscribed[user.ID]), nil
}

func (s *userService) GetUsers(ctx context.Context, viewerID uint, page domain.PageQuery) ([]domain.UserResponse, int64, error) {
	users, total, err := s.userRepository.GetUsers(ctx, page)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := s.subscriptions.SubscribedTo(ctx, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]domain.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, domain.NewUserResponse(u, subscribed[u.ID]))
	}
	return resp, total, nil
}

func (s *userService) SetPassword(ctx context.Context, userID uint, req domain.SetPasswordRequest) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		var verrs domain.ValidationErrors
		verrs.Add("current_password", domain.ErrWrongPassword)
		return verrs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.ErrHashPassword
	}
	return s.userRepository.UpdateUser(ctx, userID, map[string]any{"password": string(hash)})
}

func (s *userService) UpdateAvatar(ctx context.Context, userID uint, req domain.AvatarRequest) (domain.AvatarResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.AvatarResponse{}, err
	}

	key, err := s.storage.UploadBase64(ctx, req.Avatar, avatarFolder, storage.AllowImage...)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidDataURL) || errors.Is(err, storage.ErrUnsupportedType) {
			var verrs domain.ValidationErrors
			verrs.Add("avatar", err)
			return domain.AvatarResponse{}, verrs
		}
		return domain.AvatarResponse{}, fmt.Errorf("upload avatar: %w", err)
	}
	link := s.storage.GetPublicLinkKey(key)

	if err := s.userRepository.UpdateUser(ctx, userID, map[string]any{"avatar_url": link}); err != nil {
		_ = s.storage.DeleteFile(ctx, key)
		return domain.AvatarResponse{}, err
	}
	s.removeFile(ctx, user.AvatarURL)

	return domain.AvatarResponse{Avatar: link}, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.userRepository.UpdateUser(ctx, userID, map[string]any{"avatar_url": ""}); err != nil {
		return err
	}
	s.removeFile(ctx, user.AvatarURL)
	return nil
}

func (s *userService) removeFile(ctx context.Context, link string) {
	if link == "" {
		return
	}
	if err := s.storage.DeleteFile(ctx, s.storage.GetObjectKeyFromLink(link)); err != nil {
		logging.Warn().Err(err).Str("file", link).Msg("failed to delete stored file")
	}
}
