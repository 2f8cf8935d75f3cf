package profiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/beezio/settlement-backend/pkg/db/models"
)

// Service exposes the profile lookups settlement depends on.
type Service interface {
	// ResolveAffiliate accepts either a profile id or a referral code.
	ResolveAffiliate(ctx context.Context, idOrCode string) (*models.Profile, error)
	// RecruiterOf returns the affiliate that recruited the given profile,
	// or nil when the profile has no recruiter. The lookup is one level
	// deep, never transitive.
	RecruiterOf(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

type service struct {
	repo Repository
}

// NewService wires a profile service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ResolveAffiliate(ctx context.Context, idOrCode string) (*models.Profile, error) {
	trimmed := strings.TrimSpace(idOrCode)
	if trimmed == "" {
		return nil, nil
	}
	if id, err := uuid.Parse(trimmed); err == nil {
		return s.repo.FindByID(ctx, id)
	}
	return s.repo.FindByReferralCode(ctx, trimmed)
}

func (s *service) RecruiterOf(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	if profileID == uuid.Nil {
		return nil, nil
	}
	profile, err := s.repo.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.ReferredByAffiliateID == nil {
		return nil, nil
	}
	return s.repo.FindByID(ctx, *profile.ReferredByAffiliateID)
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return s.repo.FindByID(ctx, id)
}
