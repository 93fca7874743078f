package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"instaclone/internal/domain"
	"instaclone/internal/repository"
)

// RelationshipService alterna la relacion de follow entre dos usuarios.
type RelationshipService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	follows repository.FollowRepository
}

func NewRelationshipService(logger *zap.Logger, users repository.UserRepository, follows repository.FollowRepository) *RelationshipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelationshipService{logger: logger, users: users, follows: follows}
}

// ToggleFollow crea o elimina la arista actingID -> targetID. Las listas
// following y followers son proyecciones de la misma fila, siempre coinciden.
func (s *RelationshipService) ToggleFollow(ctx context.Context, actingID, targetID string) (domain.FollowResult, error) {
	if s == nil || s.follows == nil || s.users == nil {
		return domain.FollowResult{}, domain.ErrServiceNotConfigured
	}

	actingID = strings.TrimSpace(actingID)
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return domain.FollowResult{}, domain.ErrUserNotFound
	}
	if actingID == targetID {
		return domain.FollowResult{}, domain.ErrSelfFollow
	}

	action, err := s.follows.Toggle(ctx, actingID, targetID)
	if err != nil {
		return domain.FollowResult{}, err
	}

	result := domain.FollowResult{Action: action}
	user, err := s.users.GetByID(ctx, actingID)
	if err != nil {
		// el toggle ya se confirmo; el cliente puede recargar el perfil.
		s.logger.Warn("reload user after follow toggle failed",
			zap.String("user_id", actingID),
			zap.Error(err),
		)
		return result, nil
	}
	user.PasswordHash = ""
	result.User = &user
	return result, nil
}
