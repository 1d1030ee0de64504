package settings

import (
	"context"
	"encoding/json"

	"huparfum-backend/internal/db"
)

// EmailVerificationFlag gates ordering for unverified accounts when its
// status is "required".
const EmailVerificationFlag = "email_verification"

// Service serves the two key-value stores, settings and feature flags,
// through the cache.
type Service struct {
	store *db.Store
	cache Cache
}

func NewService(store *db.Store, cache Cache) *Service {
	return &Service{store: store, cache: cache}
}

func settingKey(key string) string { return "setting:" + key }
func flagKey(name string) string   { return "flag:" + name }

func (s *Service) Setting(ctx context.Context, key string) (*db.WebsiteSetting, error) {
	if raw, ok := s.cache.Get(ctx, settingKey(key)); ok {
		var w db.WebsiteSetting
		if json.Unmarshal(raw, &w) == nil {
			return &w, nil
		}
	}
	w, err := s.store.SettingByKey(key)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(w); err == nil {
		s.cache.Set(ctx, settingKey(key), raw)
	}
	return w, nil
}

func (s *Service) Settings(category string) ([]db.WebsiteSetting, error) {
	return s.store.Settings(category)
}

func (s *Service) PutSetting(ctx context.Context, w *db.WebsiteSetting) error {
	if err := s.store.UpsertSetting(w); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, settingKey(w.Key))
	return nil
}

func (s *Service) FeatureFlag(ctx context.Context, name string) (*db.FeatureFlag, error) {
	if raw, ok := s.cache.Get(ctx, flagKey(name)); ok {
		var f db.FeatureFlag
		if json.Unmarshal(raw, &f) == nil {
			return &f, nil
		}
	}
	f, err := s.store.FeatureFlagByName(name)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(f); err == nil {
		s.cache.Set(ctx, flagKey(name), raw)
	}
	return f, nil
}

func (s *Service) FeatureFlags() ([]db.FeatureFlag, error) {
	return s.store.FeatureFlags()
}

func (s *Service) PutFeatureFlag(ctx context.Context, f *db.FeatureFlag) error {
	if err := s.store.UpsertFeatureFlag(f); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, flagKey(f.FeatureName))
	return nil
}

// EmailVerificationRequired reports whether unverified users are blocked
// from ordering. A missing flag means no gate.
func (s *Service) EmailVerificationRequired(ctx context.Context) bool {
	f, err := s.FeatureFlag(ctx, EmailVerificationFlag)
	if err != nil {
		return false
	}
	return f.Status == db.FlagRequired
}
