package itemrequest

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// RequestorLookup is satisfied by user.Service.
type RequestorLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// AnswerLookup finds the items created in answer to requests.
// item.Repository satisfies it.
type AnswerLookup interface {
	ListByRequestIDs(ctx context.Context, requestIDs []string) ([]*item.Item, error)
}

type Service interface {
	Create(ctx context.Context, requestorID, description string) (*ItemRequest, error)
	GetByID(ctx context.Context, userID, id string) (*ItemRequest, error)
	ListOwn(ctx context.Context, requestorID string) ([]*ItemRequest, error)
	ListOthers(ctx context.Context, userID string, page Page) ([]*ItemRequest, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type service struct {
	repo    Repository
	users   RequestorLookup
	answers AnswerLookup
	logger  *zap.Logger
}

func NewService(repo Repository, users RequestorLookup, answers AnswerLookup, logger *zap.Logger) Service {
	return &service{
		repo:    repo,
		users:   users,
		answers: answers,
		logger:  logger,
	}
}

func (s *service) checkUser(ctx context.Context, userID string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrRequestorNotFound
		}
		return err
	}
	return nil
}

func (s *service) Create(ctx context.Context, requestorID, description string) (*ItemRequest, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if err := s.checkUser(ctx, requestorID); err != nil {
		return nil, err
	}

	req := &ItemRequest{RequestorID: requestorID, Description: description}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	req.Items = []*item.Item{}

	s.logger.Info("item request created", zap.String("request_id", req.ID), zap.String("requestor_id", requestorID))
	return req, nil
}

func (s *service) GetByID(ctx context.Context, userID, id string) (*ItemRequest, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachAnswers(ctx, []*ItemRequest{req}); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) ListOwn(ctx context.Context, requestorID string) ([]*ItemRequest, error) {
	if err := s.checkUser(ctx, requestorID); err != nil {
		return nil, err
	}

	reqs, err := s.repo.ListByRequestor(ctx, requestorID)
	if err != nil {
		return nil, err
	}
	if err := s.attachAnswers(ctx, reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (s *service) ListOthers(ctx context.Context, userID string, page Page) ([]*ItemRequest, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	reqs, err := s.repo.ListOthers(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	if err := s.attachAnswers(ctx, reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (s *service) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// attachAnswers loads the answering items of all reqs in one query.
func (s *service) attachAnswers(ctx context.Context, reqs []*ItemRequest) error {
	if len(reqs) == 0 {
		return nil
	}

	ids := make([]string, len(reqs))
	byID := make(map[string]*ItemRequest, len(reqs))
	for i, req := range reqs {
		ids[i] = req.ID
		byID[req.ID] = req
		req.Items = []*item.Item{}
	}

	items, err := s.answers.ListByRequestIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.RequestID == nil {
			continue
		}
		if req, ok := byID[*it.RequestID]; ok {
			req.Items = append(req.Items, it)
		}
	}
	return nil
}
