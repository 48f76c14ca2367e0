package items

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/secosha/marketplace/pkg/db"
	"github.com/secosha/marketplace/pkg/db/models"
	"github.com/secosha/marketplace/pkg/enums"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
	"github.com/secosha/marketplace/pkg/logger"
	"github.com/secosha/marketplace/pkg/validation"
)

// MaxImages caps the photos attached to one listing.
const MaxImages = 5

// Service exposes listing management for the signed-in seller.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error)
	ListOwned(ctx context.Context, ownerID uuid.UUID) (*OwnedItems, error)
	Delete(ctx context.Context, ownerID, itemID uuid.UUID) error
}

type repository interface {
	Create(ctx context.Context, item *models.ClothingItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ClothingItem, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.ClothingItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repository
	logg *logger.Logger
}

// NewService builds the items service.
func NewService(repo repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("items repository is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if len(req.Images) > MaxImages {
		return nil, pkgerrors.New(pkgerrors.CodeCapacity, fmt.Sprintf("a listing holds at most %d images", MaxImages))
	}
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	price, err := validation.ParsePrice(req.Price)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed").
			WithDetails(map[string]string{"price": err.Error()})
	}

	item := &models.ClothingItem{
		Title:       req.Title,
		Description: req.Description,
		Price:       price.Round(2),
		Size:        enums.Size(req.Size),
		Category:    enums.Category(req.Category),
		Condition:   enums.Condition(req.Condition),
		Images:      pq.StringArray(append([]string{}, req.Images...)),
		UserID:      ownerID,
	}
	if color := strings.TrimSpace(req.Color); color != "" {
		item.Color = &color
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create item")
	}
	if s.logg != nil {
		logCtx := s.logg.WithItemID(s.logg.WithUserID(ctx, ownerID.String()), item.ID.String())
		s.logg.Info(logCtx, "item.created")
	}
	dto := FromModel(item)
	return &dto, nil
}

func (s *service) ListOwned(ctx context.Context, ownerID uuid.UUID) (*OwnedItems, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	list, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items")
	}
	dtos := FromModels(list)
	return &OwnedItems{Items: dtos, Stats: ComputeStats(dtos)}, nil
}

func (s *service) Delete(ctx context.Context, ownerID, itemID uuid.UUID) error {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load item")
	}
	if item.UserID != ownerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "item does not belong to user")
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete item")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithItemID(ctx, itemID.String()), "item.deleted")
	}
	return nil
}
