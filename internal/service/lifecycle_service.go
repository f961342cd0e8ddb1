package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/pass-service/internal/auth"
	"github.com/spec-kit/pass-service/internal/config"
	"github.com/spec-kit/pass-service/internal/domain"
	"github.com/spec-kit/pass-service/internal/events"
	"github.com/spec-kit/pass-service/internal/notification"
	"github.com/spec-kit/pass-service/internal/repository"
	"github.com/spec-kit/pass-service/internal/storage"
	apperrors "github.com/spec-kit/pass-service/pkg/util"
)

var (
	emailPattern  = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,})+$`)
	aadharPattern = regexp.MustCompile(`^\d{12}$`)
)

const (
	minPasswordLength = 6
	passEmailTimeout  = 60 * time.Second
)

// DocumentUpload carries one uploaded identity document.
type DocumentUpload struct {
	Data        []byte
	ContentType string
}

// RegistrationInput is the participant-supplied registration payload.
type RegistrationInput struct {
	Name           string
	Password       string
	College        string
	AadharNumber   string
	AadharPhoto    *DocumentUpload
	CollegeIDPhoto *DocumentUpload
}

// Pagination describes neighbouring pages in a listing response.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// PageRef points at one page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// LifecycleService owns the participant record state machine: invitation
// issuance, registration, admin review, and pass retrieval.
type LifecycleService struct {
	users       repository.UserRepository
	documents   storage.DocumentStore
	mailer      notification.Mailer
	dispatcher  events.Dispatcher
	tokenMgr    *auth.TokenManager
	denylist    *auth.TokenDenylist
	logger      *zap.Logger
	frontendURL string
	inviteTTL   time.Duration
	bcryptCost  int
	now         func() time.Time
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	UserRepo      repository.UserRepository
	DocumentStore storage.DocumentStore
	Mailer        notification.Mailer
	Dispatcher    events.Dispatcher
	Denylist      *auth.TokenDenylist
	Logger        *zap.Logger
}

// NewLifecycleService builds the service.
func NewLifecycleService(cfg config.Config, deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		users:       deps.UserRepo,
		documents:   deps.DocumentStore,
		mailer:      deps.Mailer,
		dispatcher:  deps.Dispatcher,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		denylist:    deps.Denylist,
		logger:      deps.Logger,
		frontendURL: strings.TrimSuffix(cfg.App.FrontendURL, "/"),
		inviteTTL:   cfg.Invitation.TokenTTL(),
		bcryptCost:  cfg.Auth.BcryptCost,
		now:         time.Now,
	}
}

// InviteUser creates an invited record for the email and sends the
// registration link. If the invitation email cannot be delivered the record
// is forced to rejected and the invite fails.
func (s *LifecycleService) InviteUser(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return apperrors.NewValidationError("please provide a valid email", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return apperrors.NewConflict("user already invited or registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}

	token, err := randomHex(20)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	expires := s.now().Add(s.inviteTTL)

	// Placeholder credential: random, never usable, overwritten at
	// registration.
	placeholder, err := randomHex(16)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	placeholderHash, err := auth.HashPassword(placeholder, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:             email,
		PasswordHash:      placeholderHash,
		Role:              domain.RoleUser,
		Status:            domain.UserStatusInvited,
		InvitationToken:   &token,
		InvitationExpires: &expires,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return apperrors.NewConflict("user already invited or registered", nil)
		}
		return apperrors.MapError(err)
	}

	link := fmt.Sprintf("%s/register/%s", s.frontendURL, token)
	body, err := notification.RenderInvitation(link)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.mailer.Send(ctx, email, notification.InvitationSubject, body); err != nil {
		if updateErr := s.users.UpdateStatusByEmail(ctx, email, domain.UserStatusRejected); updateErr != nil {
			s.logger.Error("failed to mark undeliverable invite as rejected",
				zap.String("email", email), zap.Error(updateErr))
		}
		return apperrors.NewEmailDeliveryError(err)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventUserInvited,
		UserID:  user.ID,
		Payload: events.UserInvitedPayload{Email: email},
	})
	return nil
}

// VerifyInvitation resolves a live invitation token to its email. Unknown and
// expired tokens produce the same error so callers cannot probe which it was.
func (s *LifecycleService) VerifyInvitation(ctx context.Context, token string) (string, error) {
	user, err := s.users.GetByInvitationToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewInvalidToken()
		}
		return "", apperrors.MapError(err)
	}
	return user.Email, nil
}

// RegisterWithToken completes a registration against a live invitation. All
// input is validated before any side effect; the pass email is dispatched
// after the record is durably pending and never affects the result.
func (s *LifecycleService) RegisterWithToken(ctx context.Context, token string, input RegistrationInput) (string, error) {
	if err := validateRegistration(input); err != nil {
		return "", err
	}

	user, err := s.users.GetByInvitationToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewInvalidToken()
		}
		return "", apperrors.MapError(err)
	}

	aadharURL, err := s.documents.Store(ctx, storage.Upload{
		Data:        input.AadharPhoto.Data,
		ContentType: input.AadharPhoto.ContentType,
		Folder:      "documents",
	})
	if err != nil {
		return "", storageFailure(err)
	}
	collegeURL, err := s.documents.Store(ctx, storage.Upload{
		Data:        input.CollegeIDPhoto.Data,
		ContentType: input.CollegeIDPhoto.ContentType,
		Folder:      "documents",
	})
	if err != nil {
		return "", storageFailure(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	user.Name = strings.TrimSpace(input.Name)
	user.PasswordHash = hash
	user.College = strings.TrimSpace(input.College)
	user.AadharNumber = input.AadharNumber
	user.AadharPhotoURL = aadharURL
	user.CollegeIDPhotoURL = collegeURL
	user.InvitationToken = nil
	user.InvitationExpires = nil
	user.Status = domain.UserStatusPending

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateAadhar) {
			return "", apperrors.NewConflict("aadhar number is already registered", nil)
		}
		return "", apperrors.MapError(err)
	}

	// Pass delivery is fire-and-forget: detached from the request cycle,
	// failure observable only in logs.
	s.publishDetached(events.Event{
		Type:    events.EventUserRegistered,
		UserID:  user.ID,
		Payload: events.UserRegisteredPayload{Email: user.Email, Name: user.Name},
	})

	sessionToken, _, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return sessionToken, nil
}

// UpdateStatus sets a record's status. Any settable status is reachable from
// any other; only enum membership is checked.
func (s *LifecycleService) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) (*domain.User, error) {
	if !domain.IsSettableStatus(status) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid status: %s", status), nil)
	}

	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}

	updated, err := s.users.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:   events.EventUserStatusChanged,
		UserID: id,
		Payload: events.UserStatusChangedPayload{
			OldStatus: current.Status,
			NewStatus: status,
		},
	})
	return updated, nil
}

// GetPass returns the record used to render a participant's pass.
func (s *LifecycleService) GetPass(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListUsers returns non-admin records, newest first.
func (s *LifecycleService) ListUsers(ctx context.Context, page, limit int) ([]domain.User, Pagination, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 25
	}

	filter := repository.ListFilter{
		ExcludeRole: domain.RoleAdmin,
		Limit:       limit,
		Offset:      (page - 1) * limit,
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, Pagination{}, 0, apperrors.MapError(err)
	}
	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, Pagination{}, 0, apperrors.MapError(err)
	}

	pagination := Pagination{}
	if int64(page*limit) < total {
		pagination.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	if page > 1 {
		pagination.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	return users, pagination, total, nil
}

// GetUser fetches a single record by ID.
func (s *LifecycleService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// DeleteUser removes a record. Terminal and unconditional.
func (s *LifecycleService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Login authenticates an administrator. Participants cannot log in in this
// deployment; they only hold the session token minted at registration.
func (s *LifecycleService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if user.Role != domain.RoleAdmin {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("users cannot login")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// Me returns the caller's own record.
func (s *LifecycleService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.GetUser(ctx, userID)
}

// Logout revokes the presented session token for its remaining lifetime.
func (s *LifecycleService) Logout(ctx context.Context, principal *auth.Principal) {
	if principal == nil || principal.RawClaims == nil {
		return
	}
	expiresAt := time.Time{}
	if principal.RawClaims.ExpiresAt != nil {
		expiresAt = principal.RawClaims.ExpiresAt.Time
	}
	s.denylist.Revoke(ctx, principal.TokenID, expiresAt)
}

// UpdatePhoto stores a profile photo and records its URL.
func (s *LifecycleService) UpdatePhoto(ctx context.Context, userID string, doc DocumentUpload) (string, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.documents.Store(ctx, storage.Upload{
		Data:        doc.Data,
		ContentType: doc.ContentType,
		Folder:      "photos",
	})
	if err != nil {
		return "", storageFailure(err)
	}

	user.PhotoURL = url
	if err := s.users.Update(ctx, user); err != nil {
		return "", apperrors.MapError(err)
	}
	return url, nil
}

// Document types accepted by ReplaceDocument.
const (
	DocumentTypeAadhar    = "aadhar"
	DocumentTypeCollegeID = "collegeId"
)

// ReplaceDocument swaps one identity document for a new upload. Deleting the
// superseded object is best-effort; the replacement proceeds regardless.
func (s *LifecycleService) ReplaceDocument(ctx context.Context, userID, docType string, doc DocumentUpload) (string, error) {
	if docType != DocumentTypeAadhar && docType != DocumentTypeCollegeID {
		return "", apperrors.NewValidationError(fmt.Sprintf("invalid document type: %s", docType), nil)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.documents.Store(ctx, storage.Upload{
		Data:        doc.Data,
		ContentType: doc.ContentType,
		Folder:      "documents",
	})
	if err != nil {
		return "", storageFailure(err)
	}

	var old string
	switch docType {
	case DocumentTypeAadhar:
		old = user.AadharPhotoURL
		user.AadharPhotoURL = url
	case DocumentTypeCollegeID:
		old = user.CollegeIDPhotoURL
		user.CollegeIDPhotoURL = url
	}

	if err := s.users.Update(ctx, user); err != nil {
		return "", apperrors.MapError(err)
	}

	if old != "" {
		if err := s.documents.Delete(ctx, old); err != nil {
			s.logger.Warn("failed to delete superseded document",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
	return url, nil
}

// DeleteFile removes a stored object by identifier.
func (s *LifecycleService) DeleteFile(ctx context.Context, identifier string) error {
	if err := s.documents.Delete(ctx, identifier); err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *LifecycleService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *LifecycleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = newEventID()
	event.Timestamp = s.now()
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *LifecycleService) publishDetached(event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = newEventID()
	event.Timestamp = s.now()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), passEmailTimeout)
		defer cancel()
		_ = s.dispatcher.Publish(ctx, event)
	}()
}

func validateRegistration(input RegistrationInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "name is required"
	}
	if len(input.Password) < minPasswordLength {
		details["password"] = fmt.Sprintf("password must be at least %d characters", minPasswordLength)
	}
	if strings.TrimSpace(input.College) == "" {
		details["college"] = "college is required"
	}
	if !aadharPattern.MatchString(input.AadharNumber) {
		details["aadharNumber"] = "aadhar number must be 12 digits"
	}
	if input.AadharPhoto == nil {
		details["aadharPhoto"] = "aadhar photo is required"
	} else if err := storage.ValidateDocument(input.AadharPhoto.ContentType, int64(len(input.AadharPhoto.Data))); err != nil {
		details["aadharPhoto"] = err.Error()
	}
	if input.CollegeIDPhoto == nil {
		details["collegeIdPhoto"] = "college ID photo is required"
	} else if err := storage.ValidateDocument(input.CollegeIDPhoto.ContentType, int64(len(input.CollegeIDPhoto.Data))); err != nil {
		details["collegeIdPhoto"] = err.Error()
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("please provide all required fields", details)
	}
	return nil
}

func storageFailure(err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewStorageError(err)
}

func newEventID() string {
	return uuid.NewString()
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
