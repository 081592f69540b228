package services

import (
	"context"
	"log"
	"time"

	"zakazBack/internal/models"
	"zakazBack/utils"
)

type UserService struct {
	UserRepo     UserStore
	TokenManager *utils.Manager
	Cache        StatsCache
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// SignIn issues a session for the chosen role. The role is a per-session
// choice, not a persisted identity: signing in again with the other role
// simply overwrites it.
func (s *UserService) SignIn(ctx context.Context, in models.SignInRequest) (models.Tokens, error) {
	if in.Role != models.RoleClient && in.Role != models.RoleProvider {
		return models.Tokens{}, models.ErrInvalidRole
	}
	if in.UserID <= 0 {
		return models.Tokens{}, models.ErrInvalidCredentials
	}

	access, err := s.TokenManager.NewJWT(in.UserID, in.Role, s.AccessTTL)
	if err != nil {
		return models.Tokens{}, err
	}
	refresh, err := s.TokenManager.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}

	session := models.Session{
		UserID:       in.UserID,
		Role:         in.Role,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(s.RefreshTTL),
	}
	if err := s.UserRepo.SetSession(ctx, in.UserID, session); err != nil {
		return models.Tokens{}, err
	}

	return models.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	return s.UserRepo.GetUserByID(ctx, id)
}

// GetProviderStats serves the feed header; reads go through the short-TTL
// cache, which the rating workflow invalidates.
func (s *UserService) GetProviderStats(ctx context.Context, providerID int64) (models.ProviderStats, error) {
	if s.Cache != nil {
		if stats, ok, err := s.Cache.Get(ctx, providerID); err == nil && ok {
			return stats, nil
		} else if err != nil {
			log.Printf("stats cache read for provider %d: %v", providerID, err)
		}
	}

	stats, err := s.UserRepo.GetProviderStats(ctx, providerID)
	if err != nil {
		return models.ProviderStats{}, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, stats); err != nil {
			log.Printf("stats cache write for provider %d: %v", providerID, err)
		}
	}
	return stats, nil
}

func (s *UserService) RegisterFCMToken(ctx context.Context, userID int64, token string) error {
	return s.UserRepo.SetFCMToken(ctx, userID, token)
}
