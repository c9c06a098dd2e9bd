package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/copperline/accounts-service/internal/domain"
)

// ListUsers returns every user ordered by creation time descending. Password
// hashes never reach this projection; the repository does not even select the
// column. Role gating happens in the transport layer before this runs.
func (s *Service) ListUsers(ctx context.Context) ([]UserItem, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]UserItem, 0, len(users))
	for _, u := range users {
		items = append(items, toUserItem(u))
	}
	return items, nil
}

// UpdateUserRole changes a user's stored role. Sessions issued before the
// change keep reporting the old role until they are refreshed or re-issued.
func (s *Service) UpdateUserRole(ctx context.Context, userID uuid.UUID, req UpdateRoleRequest) (UpdateRoleResponse, error) {
	if !domain.ValidRole(req.Role) {
		return UpdateRoleResponse{}, fmt.Errorf("%w: role must be %q or %q", domain.ErrInvalidInput, domain.RoleUser, domain.RoleAdmin)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return UpdateRoleResponse{}, err
	}
	if err := s.users.UpdateRole(ctx, user.UserID, domain.Role(req.Role), s.nowFn()); err != nil {
		return UpdateRoleResponse{}, err
	}

	s.logger.InfoContext(ctx, "user role updated",
		"operation", "update_role",
		"outcome", "success",
		"user_id", user.UserID,
		"role", req.Role,
	)
	return UpdateRoleResponse{Email: user.Email}, nil
}
