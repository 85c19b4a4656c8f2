package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"sentinel_cam/internal/comms"
	"sentinel_cam/internal/device"
	"sentinel_cam/internal/logger"
	"sentinel_cam/internal/models"
)

// ConfigLink is the part of the transport the sync exchange uses.
type ConfigLink interface {
	Send(payload []byte, topic string) error
	Responses() *comms.Mailbox
}

// SyncService runs one request/response exchange with the config authority:
// advertise the current document id, then wait for an ack token or a
// replacement document on the config topic.
type SyncService struct {
	link     ConfigLink
	configs  *ConfigService
	clock    device.Clock
	log      *logger.Logger
	ackToken string

	identityTopic string
	confirmTopic  string
}

func NewSyncService(link ConfigLink, configs *ConfigService, clock device.Clock, log *logger.Logger,
	ackToken, identityTopic, confirmTopic string) *SyncService {
	return &SyncService{
		link:          link,
		configs:       configs,
		clock:         clock,
		log:           log,
		ackToken:      ackToken,
		identityTopic: identityTopic,
		confirmTopic:  confirmTopic,
	}
}

// Sync performs a single exchange. There is no retry: a missed answer is
// picked up by the next cycle. Only a failed advertisement or a cancelled
// context return an error; the advertisement failure wraps
// models.ErrConnectivity.
func (s *SyncService) Sync(ctx context.Context, currentID string, timeout time.Duration) (models.SyncOutcome, error) {
	box := s.link.Responses()
	box.Clear()

	if err := s.link.Send([]byte(currentID), s.identityTopic); err != nil {
		return models.SyncTimedOut, fmt.Errorf("advertise config id: %w", err)
	}

	expired, stop := s.clock.Timer(timeout)
	defer stop()
	payload, ok, err := box.Wait(ctx, expired)
	if err != nil {
		return models.SyncTimedOut, err
	}
	if !ok {
		s.log.Warnw("no config response", "uuid", currentID, "timeout", timeout, "err", models.ErrSyncTimeout)
		return models.SyncTimedOut, nil
	}

	if string(bytes.TrimSpace(payload)) == s.ackToken {
		s.log.Infow("config is up to date", "uuid", currentID)
		return models.SyncAcknowledged, nil
	}

	doc, err := s.configs.Apply(payload)
	if err != nil {
		reason := rejectionReason(err)
		s.log.Errorw("config rejected", "uuid", currentID, "reason", reason, "err", models.ErrSyncRejected)
		s.Report(RejectionReport(reason))
		return models.SyncRejected, nil
	}
	s.Report(s.ackToken)
	s.log.Infow("config received", "old", currentID, "new", doc.ID)
	return models.SyncReplaced, nil
}

// Report publishes msg on the confirm topic. Delivery is best effort.
func (s *SyncService) Report(msg string) {
	if err := s.link.Send([]byte(msg), s.confirmTopic); err != nil {
		s.log.Warnw("config report not delivered", "report", msg, "err", err)
	}
}

// RejectionReport formats the confirm-topic message for a refused document.
func RejectionReport(reason string) string { return "config-nok|" + reason }

func rejectionReason(err error) string {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return err.Error()
}
