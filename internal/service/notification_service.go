package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/spec-kit/pass-service/internal/config"
	"github.com/spec-kit/pass-service/internal/events"
	"github.com/spec-kit/pass-service/internal/notification"
	"github.com/spec-kit/pass-service/internal/storage"
)

const qrImageSize = 220

// NotificationService reacts to lifecycle events with outbound email. Pass
// delivery is best-effort: the handler runs detached from the request that
// triggered it and a failure is only visible in logs.
type NotificationService struct {
	dispatcher  events.Dispatcher
	mailer      notification.Mailer
	documents   storage.DocumentStore
	logger      *zap.Logger
	frontendURL string
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer notification.Mailer, documents storage.DocumentStore, logger *zap.Logger, cfg config.AppConfig) *NotificationService {
	return &NotificationService{
		dispatcher:  dispatcher,
		mailer:      mailer,
		documents:   documents,
		logger:      logger,
		frontendURL: strings.TrimSuffix(cfg.FrontendURL, "/"),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventUserStatusChanged, n.handleUserStatusChanged)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		n.logger.Error("unexpected payload for user_registered event", zap.String("event_id", event.ID))
		return nil
	}

	if err := n.sendPassEmail(ctx, payload.Email, payload.Name); err != nil {
		n.logger.Error("failed to send pass email",
			zap.String("email", payload.Email), zap.Error(err))
		return err
	}
	n.logger.Info("pass email sent", zap.String("email", payload.Email))
	return nil
}

func (n *NotificationService) handleUserStatusChanged(ctx context.Context, event events.Event) error {
	// TODO: notify participants when an admin verifies or rejects them.
	n.logger.Info("user status changed", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}

// sendPassEmail renders the participant's pass: a QR code encoding their pass
// URL, hosted in document storage and embedded in an HTML email.
func (n *NotificationService) sendPassEmail(ctx context.Context, email, name string) error {
	passURL := fmt.Sprintf("%s/pass/%s", n.frontendURL, url.PathEscape(email))

	png, err := qrcode.Encode(passURL, qrcode.Highest, qrImageSize)
	if err != nil {
		return fmt.Errorf("generate qr code: %w", err)
	}

	qrImageURL, err := n.documents.Store(ctx, storage.Upload{
		Data:        png,
		ContentType: "image/png",
		Folder:      "qr-codes",
	})
	if err != nil {
		return fmt.Errorf("upload qr code: %w", err)
	}

	body, err := notification.RenderPass(name, qrImageURL)
	if err != nil {
		return fmt.Errorf("render pass email: %w", err)
	}

	return n.mailer.Send(ctx, email, notification.PassSubject, body)
}
