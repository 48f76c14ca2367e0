package profiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/secosha/marketplace/pkg/db"
	"github.com/secosha/marketplace/pkg/db/models"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
	"github.com/secosha/marketplace/pkg/logger"
)

// Service exposes the settings page and profile bootstrap operations.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	Upsert(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*ProfileDTO, error)
	Ensure(ctx context.Context, userID uuid.UUID, req EnsureProfileRequest) (*ProfileDTO, error)
}

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
	CreateIfAbsent(ctx context.Context, profile *models.UserProfile) (bool, error)
	Upsert(ctx context.Context, profile *models.UserProfile) error
}

type service struct {
	repo repository
	logg *logger.Logger
}

// NewService builds the profiles service.
func NewService(repo repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profiles repository is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	profile, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	return FromModel(profile), nil
}

func (s *service) Upsert(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*ProfileDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	profile := &models.UserProfile{
		ID:            userID,
		FullName:      strings.TrimSpace(req.FullName),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Location:      strings.TrimSpace(req.Location),
		Bio:           strings.TrimSpace(req.Bio),
		DeliveryTypes: dedupe(req.DeliveryTypes),
	}
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save profile")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "profile.updated")
	}
	return s.Get(ctx, userID)
}

func (s *service) Ensure(ctx context.Context, userID uuid.UUID, req EnsureProfileRequest) (*ProfileDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	created, err := s.repo.CreateIfAbsent(ctx, &models.UserProfile{
		ID:       userID,
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ensure profile")
	}
	if created && s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "profile.created")
	}
	return s.Get(ctx, userID)
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
