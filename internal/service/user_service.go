package service

import (
	"context"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/observability"
	"github.com/gestaofin/orcamento-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var userTracer = otel.Tracer("service/user")

// UserService manages user profiles, their company access and deletion.
type UserService struct {
	store   port.UserStore
	invoker port.UserAdminInvoker
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(store port.UserStore, invoker port.UserAdminInvoker, metrics *observability.Metrics, logger *zap.Logger) *UserService {
	return &UserService{
		store:   store,
		invoker: invoker,
		metrics: metrics,
		logger:  logger,
	}
}

// List returns all profiles.
func (s *UserService) List(ctx context.Context) ([]domain.Profile, error) {
	ctx, span := userTracer.Start(ctx, "UserService.List")
	defer span.End()

	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		s.metrics.IncrExternalError("supabase/profiles")
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	return profiles, nil
}

// Get returns one profile by user id.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := userTracer.Start(ctx, "UserService.Get")
	defer span.End()

	profile, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		s.metrics.IncrExternalError("supabase/profiles")
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	if profile == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	return profile, nil
}

// Update applies a partial profile update on behalf of an acting admin.
// Granting company access is bounded by the actor's own visibility: every
// company in the request must be one the actor can see. An actor with an
// empty access list is unrestricted (bootstrap admin).
func (s *UserService) Update(ctx context.Context, actor *domain.Profile, userID string, req *domain.ProfileUpdateRequest) (*domain.Profile, error) {
	ctx, span := userTracer.Start(ctx, "UserService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID))

	updates := make(map[string]any)
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Role != nil {
		if *req.Role != domain.RoleAdmin && *req.Role != domain.RoleUser {
			return nil, &domain.ErrValidation{Field: "role", Message: "deve ser 'admin' ou 'user'"}
		}
		updates["role"] = *req.Role
	}
	if req.Cargo != nil {
		updates["cargo"] = *req.Cargo
	}
	if req.Aprovador != nil {
		updates["aprovador"] = *req.Aprovador
	}
	if req.Pacoteiro != nil {
		updates["pacoteiro"] = *req.Pacoteiro
	}
	if req.Companies != nil {
		if err := checkCompanySubset(actor, *req.Companies); err != nil {
			return nil, err
		}
		updates["company_access_ids"] = *req.Companies
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "nenhum campo para atualizar"}
	}

	profile, err := s.store.UpdateProfile(ctx, userID, updates)
	if err != nil {
		s.metrics.IncrExternalError("supabase/profiles")
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	if profile == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}

	s.logger.Info("profile updated",
		zap.String("user_id", userID),
		zap.String("updated_by", actor.UserID),
		zap.Int("fields", len(updates)),
	)
	return profile, nil
}

// Delete removes a user via the server-side deletion function, which
// drops the profile row, the credential row and the auth identity.
func (s *UserService) Delete(ctx context.Context, actorUserID, userID string) error {
	ctx, span := userTracer.Start(ctx, "UserService.Delete")
	defer span.End()

	if userID == actorUserID {
		return &domain.ErrValidation{Field: "user_id", Message: "não é possível excluir o próprio usuário"}
	}

	if err := s.invoker.DeleteUser(ctx, userID); err != nil {
		s.metrics.IncrExternalError("supabase/functions")
		return err
	}

	s.logger.Info("user deleted",
		zap.String("user_id", userID),
		zap.String("deleted_by", actorUserID),
	)
	return nil
}

// checkCompanySubset enforces that an actor only grants access to
// companies it can see itself.
func checkCompanySubset(actor *domain.Profile, companies []string) error {
	if len(actor.CompanyAccessIDs) == 0 {
		return nil
	}
	visible := make(map[string]struct{}, len(actor.CompanyAccessIDs))
	for _, id := range actor.CompanyAccessIDs {
		visible[id] = struct{}{}
	}
	for _, id := range companies {
		if _, ok := visible[id]; !ok {
			return &domain.ErrForbidden{Action: "conceder acesso a empresa fora do seu escopo: " + id}
		}
	}
	return nil
}
