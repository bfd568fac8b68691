package service

import (
	"context"

	"github.com/zlnvch/seodash/models"
)

func (s *Service) ListCloudflareZones(ctx context.Context, user models.User) ([]models.Zone, error) {
	token, err := s.requireSecret(ctx, user.Id, SecretCloudflareToken)
	if err != nil {
		return nil, err
	}
	return s.CDN.ListZones(ctx, token)
}

func (s *Service) ListDNSRecords(ctx context.Context, user models.User, zoneId string) ([]models.DNSRecord, error) {
	if err := validateZoneId(zoneId); err != nil {
		return nil, err
	}
	token, err := s.requireSecret(ctx, user.Id, SecretCloudflareToken)
	if err != nil {
		return nil, err
	}
	return s.CDN.ListDNSRecords(ctx, token, zoneId)
}

func (s *Service) PurgeCloudflareCache(ctx context.Context, user models.User, zoneId string) error {
	if err := validateZoneId(zoneId); err != nil {
		return err
	}
	token, err := s.requireSecret(ctx, user.Id, SecretCloudflareToken)
	if err != nil {
		return err
	}
	if err := s.CDN.PurgeCache(ctx, token, zoneId); err != nil {
		return err
	}
	s.log(ctx).Info(ctx, "cloudflare cache purged", "user_id", user.Id, "zone_id", zoneId)
	return nil
}
