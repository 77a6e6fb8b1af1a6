package service

import (
	"context"
	"strings"

	"vegan-agent-be/internal/credential"
	"vegan-agent-be/internal/dto"
	"vegan-agent-be/internal/pkg/logger"
	"vegan-agent-be/internal/repository/contract"
	"vegan-agent-be/pkg/history"
)

type ISessionService interface {
	History(ctx context.Context, sessionID string) (*dto.HistoryResponse, error)
	ClearHistory(ctx context.Context, sessionID string) error
	SetAPIKey(ctx context.Context, sessionID string, req *dto.SetAPIKeyRequest) (*dto.CredentialStatusResponse, error)
	ClearAPIKey(ctx context.Context, sessionID string) error
	CredentialStatus(ctx context.Context, sessionID string) (*dto.CredentialStatusResponse, error)
}

type sessionService struct {
	resolver    *credential.Resolver
	keys        contract.SessionKeyRepository
	histories   contract.HistoryRepository
	historySize int
	provider    string
	logger      logger.ILogger
}

func NewSessionService(
	resolver *credential.Resolver,
	keys contract.SessionKeyRepository,
	histories contract.HistoryRepository,
	historySize int,
	provider string,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		resolver:    resolver,
		keys:        keys,
		histories:   histories,
		historySize: history.ClampSize(historySize),
		provider:    provider,
		logger:      log,
	}
}

func (s *sessionService) History(ctx context.Context, sessionID string) (*dto.HistoryResponse, error) {
	entries, err := s.histories.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	return &dto.HistoryResponse{Size: s.historySize, Entries: entries}, nil
}

func (s *sessionService) ClearHistory(ctx context.Context, sessionID string) error {
	return s.histories.Clear(ctx, sessionID)
}

// SetAPIKey stores a hand-entered key for this session only. The secret
// store still wins when it has a value.
func (s *sessionService) SetAPIKey(ctx context.Context, sessionID string, req *dto.SetAPIKeyRequest) (*dto.CredentialStatusResponse, error) {
	if err := s.keys.SetAPIKey(ctx, sessionID, strings.TrimSpace(req.APIKey)); err != nil {
		return nil, err
	}
	s.logger.Info("SessionService", "Session key entered", map[string]interface{}{"session_id": sessionID})
	return s.CredentialStatus(ctx, sessionID)
}

func (s *sessionService) ClearAPIKey(ctx context.Context, sessionID string) error {
	return s.keys.ClearAPIKey(ctx, sessionID)
}

func (s *sessionService) CredentialStatus(ctx context.Context, sessionID string) (*dto.CredentialStatusResponse, error) {
	entered, err := s.keys.APIKey(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	in := s.resolver.Inspect(entered)
	_, inStore := s.resolver.FromStore()

	return &dto.CredentialStatusResponse{
		Provider:      s.provider,
		Name:          in.Name,
		Required:      in.Required,
		Found:         in.Found,
		Source:        in.Source,
		LooksValid:    in.LooksValid,
		Prefix:        in.Prefix,
		Message:       in.Message,
		NeedsKeyInput: in.Required && !inStore,
	}, nil
}
