package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/advancelms/lms-api/internal/auth"
	"github.com/advancelms/lms-api/internal/config"
	"github.com/advancelms/lms-api/internal/media"
	"github.com/advancelms/lms-api/internal/model"
	"github.com/advancelms/lms-api/internal/repository"
	"github.com/advancelms/lms-api/internal/security"
)

const resetTokenTTL = 15 * time.Minute

// MailSender sends transactional email. Satisfied by *mailer.Mailer.
type MailSender interface {
	SendHTML(to []string, subject, htmlBody string) error
}

// UserUsecase defines the interface for account and profile use cases.
type UserUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*model.User, string, error)
	Login(ctx context.Context, params LoginParams) (*model.User, string, error)
	GetProfile(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, params UpdateProfileParams) (*model.User, error)
	ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error
	ChangeAvatar(ctx context.Context, id string, file *UploadFile) (*model.User, error)

	// RequestPasswordReset emails a reset link. It does not reveal whether the
	// email exists.
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error

	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUserRole(ctx context.Context, id string, role model.Role) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Avatar   *UploadFile
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

// UpdateProfileParams defines the optional profile fields to update.
type UpdateProfileParams struct {
	Name  *string
	Email *string
}

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrIncorrectPassword  = errors.New("incorrect old password")
	ErrResetTokenInvalid  = errors.New("password reset token is invalid or has expired")
	ErrInvalidRole        = errors.New("invalid role")
)

const avatarFolder = "avatars"

type userUsecase struct {
	userRepo  repository.UserRepository
	mediaHost media.Host
	mailer    MailSender
	jwtAuth   auth.JWTAuthenticator
	cfg       *config.Config
	logger    *zerolog.Logger
}

func NewUserUsecase(
	userRepo repository.UserRepository,
	mediaHost media.Host,
	mailer MailSender,
	jwtAuth auth.JWTAuthenticator,
	cfg *config.Config,
	logger *zerolog.Logger,
) UserUsecase {
	return &userUsecase{
		userRepo:  userRepo,
		mediaHost: mediaHost,
		mailer:    mailer,
		jwtAuth:   jwtAuth,
		cfg:       cfg,
		logger:    logger,
	}
}

func (u *userUsecase) Register(ctx context.Context, params RegisterParams) (*model.User, string, error) {
	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: passwordHash,
		Role:         model.RoleUser,
	}

	if params.Avatar != nil {
		avatar, err := u.mediaHost.Upload(ctx, params.Avatar.Reader, media.UploadParams{
			Folder:      avatarFolder,
			Filename:    params.Avatar.Filename,
			ContentType: params.Avatar.ContentType,
			Size:        params.Avatar.Size,
		})
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		user.Avatar = *avatar
	}

	user, err = u.userRepo.CreateUser(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, "", ErrUserAlreadyExists
		}

		return nil, "", err
	}

	token, err := u.jwtAuth.GenerateSessionToken(user, u.cfg.JWTSecret, u.cfg.JWTExpires)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (u *userUsecase) Login(ctx context.Context, params LoginParams) (*model.User, string, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", ErrInvalidCredentials
		}

		return nil, "", err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, "", err
	} else if !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := u.jwtAuth.GenerateSessionToken(user, u.cfg.JWTSecret, u.cfg.JWTExpires)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (u *userUsecase) GetProfile(ctx context.Context, id string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

func (u *userUsecase) UpdateProfile(
	ctx context.Context,
	id string,
	params UpdateProfileParams,
) (*model.User, error) {
	user, err := u.userRepo.UpdateUser(ctx, id, repository.UpdateUserParams{
		Name:  params.Name,
		Email: params.Email,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}

	return user, nil
}

func (u *userUsecase) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	user, err := u.userRepo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	if ok, err := security.VerifyPassword(oldPassword, user.PasswordHash); err != nil {
		return err
	} else if !ok {
		return ErrIncorrectPassword
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := u.userRepo.UpdateUser(ctx, id, repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	}); err != nil {
		return err
	}

	return nil
}

func (u *userUsecase) ChangeAvatar(ctx context.Context, id string, file *UploadFile) (*model.User, error) {
	if file == nil {
		return nil, ErrFileRequired
	}

	user, err := u.userRepo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	avatar, err := u.mediaHost.Upload(ctx, file.Reader, media.UploadParams{
		Folder:      avatarFolder,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Size:        file.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	// Drop the previous asset best-effort once the new one is in place.
	if user.Avatar.PublicID != "" {
		if err := u.mediaHost.Destroy(ctx, user.Avatar.PublicID); err != nil {
			u.logger.Error().Err(err).Str("public_id", user.Avatar.PublicID).
				Msg("failed to delete previous avatar")
		}
	}

	return u.userRepo.UpdateUser(ctx, id, repository.UpdateUserParams{Avatar: avatar})
}

func (u *userUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// To prevent email enumeration, do not reveal that the email does not exist.
			return nil
		}

		return err
	}

	token, tokenHash, err := generateResetToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(resetTokenTTL)
	if err := u.userRepo.SetResetToken(ctx, user.ID.Hex(), tokenHash, expiresAt); err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s/%s", u.cfg.ResetPasswordURL, token)
	htmlBody := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to create a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s for your security.</p>
		<p>If you did not request a password reset, you can safely ignore this email.</p>
	`, user.Name, resetLink, resetLink, resetTokenTTL)

	return u.mailer.SendHTML([]string{user.Email}, "Password Reset Request", htmlBody)
}

func (u *userUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	tokenHash := hashResetToken(token)

	user, err := u.userRepo.GetUserByResetToken(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrResetTokenInvalid
		}

		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	}); err != nil {
		return err
	}

	return u.userRepo.ClearResetToken(ctx, user.ID.Hex())
}

func (u *userUsecase) ListUsers(ctx context.Context) ([]*model.User, error) {
	return u.userRepo.ListUsers(ctx)
}

func (u *userUsecase) UpdateUserRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return nil, ErrInvalidID
	}

	user, err := u.userRepo.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

func (u *userUsecase) DeleteUser(ctx context.Context, id string) error {
	if _, err := bson.ObjectIDFromHex(id); err != nil {
		return ErrInvalidID
	}

	user, err := u.userRepo.DeleteUser(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	if user.Avatar.PublicID != "" {
		if err := u.mediaHost.Destroy(ctx, user.Avatar.PublicID); err != nil {
			u.logger.Error().Err(err).Str("public_id", user.Avatar.PublicID).
				Msg("failed to delete avatar of removed user")
		}
	}

	return nil
}

// generateResetToken returns a random token and the sha256 hash stored server-side.
func generateResetToken() (string, string, error) {
	bytes := make([]byte, 20)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", err
	}

	token := hex.EncodeToString(bytes)

	return token, hashResetToken(token), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
