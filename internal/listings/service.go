package listings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/secosha/marketplace/internal/items"
	"github.com/secosha/marketplace/pkg/db"
	"github.com/secosha/marketplace/pkg/db/models"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
	"github.com/secosha/marketplace/pkg/logger"
	"github.com/secosha/marketplace/pkg/metrics"
)

// DefaultTimeout bounds a search when no timeout is configured.
const DefaultTimeout = 8 * time.Second

// SearchResult is the browse payload: the capped page and the catalog total.
type SearchResult struct {
	Items []items.ItemDTO `json:"items"`
	Total int64           `json:"total"`
}

// Service exposes the public browse operations.
type Service interface {
	Search(ctx context.Context, q Query) (*SearchResult, error)
	Get(ctx context.Context, id uuid.UUID) (*items.ItemDTO, error)
}

type repository interface {
	Search(ctx context.Context, q Query) ([]models.ClothingItem, error)
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ClothingItem, error)
}

// ServiceParams bundles the listings service dependencies.
type ServiceParams struct {
	Repo    repository
	Metrics *metrics.ListingSearchMetrics
	Timeout time.Duration
	Logger  *logger.Logger
}

type service struct {
	repo    repository
	metrics *metrics.ListingSearchMetrics
	timeout time.Duration
	logg    *logger.Logger
	group   singleflight.Group
}

// NewService builds the listings service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("listings repository is required")
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &service{
		repo:    params.Repo,
		metrics: params.Metrics,
		timeout: timeout,
		logg:    params.Logger,
	}, nil
}

// Search runs q under the service timeout. Identical concurrent queries share one database round trip.
func (s *service) Search(ctx context.Context, q Query) (*SearchResult, error) {
	start := time.Now()
	key := q.Values().Encode()

	ch := s.group.DoChan(key, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.search(runCtx, q)
	})

	var (
		result *SearchResult
		err    error
	)
	select {
	case res := <-ch:
		if res.Err != nil {
			err = res.Err
		} else {
			result = res.Val.(*SearchResult)
		}
	case <-ctx.Done():
		err = ctx.Err()
	}

	sortLabel := q.SortOrDefault().String()
	if err != nil {
		err = s.classify(ctx, err)
		outcome := metrics.OutcomeError
		if pkgerrors.Is(err, pkgerrors.CodeTimeout) {
			outcome = metrics.OutcomeTimeout
		}
		s.metrics.Observe(sortLabel, outcome, time.Since(start), 0)
		return nil, err
	}

	s.metrics.Observe(sortLabel, metrics.OutcomeOK, time.Since(start), len(result.Items))
	// Callers sharing a flight receive the same value, so hand out a copy.
	out := &SearchResult{Items: append([]items.ItemDTO(nil), result.Items...), Total: result.Total}
	return out, nil
}

func (s *service) search(ctx context.Context, q Query) (*SearchResult, error) {
	list, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Items: items.FromModels(list), Total: total}, nil
}

func (s *service) classify(ctx context.Context, err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "listing search timed out")
	}
	if errors.Is(err, context.Canceled) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "listing search cancelled")
	}
	if s.logg != nil {
		s.logg.Error(ctx, "listings.search_failed", err)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search listings")
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*items.ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load listing")
	}
	dto := items.FromModel(item)
	return &dto, nil
}
