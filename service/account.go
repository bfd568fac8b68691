package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/mq"
	"github.com/zlnvch/seodash/store"
)

const purgeSendTimeout = 10 * time.Second

type Account struct {
	Id                   string         `json:"id"`
	Email                string         `json:"email"`
	Day                  string         `json:"day"`
	Usage                map[string]int `json:"usage"`
	DailyGenerationLimit int            `json:"dailyGenerationLimit"`
	ConfiguredSecrets    []string       `json:"configuredSecrets"`
}

func (s *Service) GetAccount(ctx context.Context, user models.User) (Account, error) {
	day := s.today()
	usage, err := s.Store.GetUsage(ctx, user.Id, day)
	if err != nil {
		return Account{}, err
	}

	secrets, err := s.Store.ListSecrets(ctx, user.Id)
	if err != nil {
		return Account{}, err
	}
	configured := make([]string, 0, len(secrets))
	for _, secret := range secrets {
		configured = append(configured, secret.KeyName)
	}

	return Account{
		Id:                   user.Id,
		Email:                user.Email,
		Day:                  day,
		Usage:                usage,
		DailyGenerationLimit: s.DailyGenerationLimit,
		ConfiguredSecrets:    configured,
	}, nil
}

// DeleteAccount removes credentials and settings before returning. Articles,
// audits, research history, usage and cached lookups are purged by the
// worker from the queued request.
func (s *Service) DeleteAccount(ctx context.Context, user models.User) error {
	secrets, err := s.Store.ListSecrets(ctx, user.Id)
	if err != nil {
		return err
	}
	for _, secret := range secrets {
		if err := s.Store.DeleteSecret(ctx, user.Id, secret.KeyName); err != nil && !errors.Is(err, store.ErrItemNotFound) {
			return err
		}
	}
	if err := s.Store.DeleteSettings(ctx, user.Id); err != nil {
		return err
	}

	body, err := mq.EncodePurgeRequest(mq.PurgeRequest{UserId: user.Id, RequestedAt: s.now().Unix()})
	if err != nil {
		return err
	}

	// The rest of the account is purged by the queue consumer; a failed send
	// is returned so the client retries. Deletion above is idempotent.
	sendCtx, cancel := context.WithTimeout(ctx, purgeSendTimeout)
	defer cancel()
	if err := s.PurgeQueue.Send(sendCtx, body); err != nil {
		s.log(ctx).Error(ctx, "failed to queue account purge", "user_id", user.Id, "error", err)
		return fmt.Errorf("queue account purge: %w", err)
	}

	s.log(ctx).Info(ctx, "account deletion requested", "user_id", user.Id)
	return nil
}
