package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gestaofin/orcamento-bfa-go/internal/domain"
	"github.com/gestaofin/orcamento-bfa-go/internal/infra/observability"
	"github.com/gestaofin/orcamento-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

var hierarchyTracer = otel.Tracer("service/hierarchy")

// PathSeparator joins the three hierarchy levels into a permission path.
const PathSeparator = " > "

// HierarchyService loads the chart-of-accounts tree for a company and
// manages per-user account permission paths derived from it.
type HierarchyService struct {
	store   port.HierarchyStore
	users   port.UserStore
	cache   port.Cache[*domain.AccountTree]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewHierarchyService creates a new hierarchy service.
func NewHierarchyService(store port.HierarchyStore, users port.UserStore, cache port.Cache[*domain.AccountTree], metrics *observability.Metrics, logger *zap.Logger) *HierarchyService {
	return &HierarchyService{
		store:   store,
		users:   users,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// NormalizeField canonicalizes one hierarchy level name: Unicode NFC,
// surrounding whitespace trimmed, internal runs of whitespace collapsed
// to one space. Two visually identical accents must compare equal.
func NormalizeField(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// BuildPath formats a full 3-level permission path. Only full paths are
// ever persisted; partial picker selections are expanded first.
func BuildPath(level1, level2, analytical string) string {
	return level1 + PathSeparator + level2 + PathSeparator + analytical
}

// BuildTree folds normalized hierarchy rows into a lookup tree. Rows
// with any empty level after normalization are dropped, duplicates are
// collapsed, and the incoming row order is preserved per level.
func BuildTree(rows []domain.AccountHierarchyRow) *domain.AccountTree {
	tree := &domain.AccountTree{
		Levels:      make(map[string]map[string][]string),
		Level2Order: make(map[string][]string),
	}
	seen := make(map[string]struct{})

	for _, row := range rows {
		l1 := NormalizeField(row.Level1)
		l2 := NormalizeField(row.Level2)
		a := NormalizeField(row.AnalyticalAccount)
		if l1 == "" || l2 == "" || a == "" {
			continue
		}
		if _, ok := tree.Levels[l1]; !ok {
			tree.Levels[l1] = make(map[string][]string)
			tree.Level1Order = append(tree.Level1Order, l1)
		}
		if _, ok := tree.Levels[l1][l2]; !ok {
			tree.Levels[l1][l2] = nil
			tree.Level2Order[l1] = append(tree.Level2Order[l1], l2)
		}
		key := BuildPath(l1, l2, a)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tree.Levels[l1][l2] = append(tree.Levels[l1][l2], a)
	}
	return tree
}

// Tree returns the account tree for a company, cached per company.
func (s *HierarchyService) Tree(ctx context.Context, companyID string) (*domain.AccountTree, error) {
	ctx, span := hierarchyTracer.Start(ctx, "HierarchyService.Tree")
	defer span.End()
	span.SetAttributes(attribute.String("company_id", companyID))

	if companyID == "" {
		return nil, &domain.ErrValidation{Field: "company_id", Message: "obrigatório"}
	}

	key := "hierarchy:" + companyID
	if tree, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("hierarchy")
		return tree, nil
	}
	s.metrics.IncrCacheMiss("hierarchy")

	start := time.Now()
	rows, err := s.store.ListHierarchyRows(ctx, companyID)
	s.metrics.RecordRequestDuration("hierarchy.tree", time.Since(start))
	if err != nil {
		s.metrics.IncrExternalError("supabase/vw_plano_contas")
		return nil, &domain.ErrExternalService{Service: "supabase/vw_plano_contas", Err: err}
	}

	tree := BuildTree(rows)
	s.cache.Set(key, tree)
	return tree, nil
}

// ExpandSelection resolves a picker selection into the full paths it
// covers. A level-1 pick expands to every analytical account under it, a
// level-2 pick to every analytical account of that branch, and a full
// triple to a single path. Levels absent from the tree are rejected.
func ExpandSelection(tree *domain.AccountTree, sel domain.AccountPathSelection) ([]string, error) {
	l1 := NormalizeField(sel.Level1)
	l2 := NormalizeField(sel.Level2)
	a := NormalizeField(sel.Analytical)

	if l1 == "" {
		return nil, &domain.ErrValidation{Field: "level_1", Message: "obrigatório"}
	}
	branch, ok := tree.Levels[l1]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "level_1", ID: l1}
	}

	if l2 == "" {
		var paths []string
		for _, lvl2 := range tree.Level2Order[l1] {
			for _, acct := range branch[lvl2] {
				paths = append(paths, BuildPath(l1, lvl2, acct))
			}
		}
		return paths, nil
	}

	accounts, ok := branch[l2]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "level_2", ID: l2}
	}

	if a == "" {
		paths := make([]string, 0, len(accounts))
		for _, acct := range accounts {
			paths = append(paths, BuildPath(l1, l2, acct))
		}
		return paths, nil
	}

	for _, acct := range accounts {
		if acct == a {
			return []string{BuildPath(l1, l2, a)}, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "analytical_account", ID: a}
}

// GrantPaths expands each staged selection against the company tree and
// unions the results into the user's existing permission set. Granting a
// path twice is a no-op; the stored set stays deduplicated and sorted.
func (s *HierarchyService) GrantPaths(ctx context.Context, userID string, selections []domain.AccountPathSelection) ([]string, error) {
	ctx, span := hierarchyTracer.Start(ctx, "HierarchyService.GrantPaths")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("selections", len(selections)),
	)

	if len(selections) == 0 {
		return nil, &domain.ErrValidation{Field: "selections", Message: "ao menos uma seleção é necessária"}
	}

	profile, err := s.users.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	if profile == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}

	set := make(map[string]struct{}, len(profile.PermissionPaths))
	for _, p := range profile.PermissionPaths {
		set[p] = struct{}{}
	}

	for _, sel := range selections {
		tree, err := s.Tree(ctx, sel.CompanyID)
		if err != nil {
			return nil, err
		}
		paths, err := ExpandSelection(tree, sel)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			set[p] = struct{}{}
		}
	}

	merged := make([]string, 0, len(set))
	for p := range set {
		merged = append(merged, p)
	}
	sort.Strings(merged)

	if err := s.users.SetPermissionPaths(ctx, userID, merged); err != nil {
		s.metrics.IncrExternalError("supabase/profiles")
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	s.logger.Info("permission paths granted",
		zap.String("user_id", userID),
		zap.Int("total_paths", len(merged)),
	)
	return merged, nil
}

// RevokePath removes one exact path from the user's permission set.
// Removing a path that was never granted is a no-op.
func (s *HierarchyService) RevokePath(ctx context.Context, userID, path string) ([]string, error) {
	ctx, span := hierarchyTracer.Start(ctx, "HierarchyService.RevokePath")
	defer span.End()

	if path == "" {
		return nil, &domain.ErrValidation{Field: "path", Message: "obrigatório"}
	}

	profile, err := s.users.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	if profile == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}

	remaining := make([]string, 0, len(profile.PermissionPaths))
	for _, p := range profile.PermissionPaths {
		if p != path {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) == len(profile.PermissionPaths) {
		return profile.PermissionPaths, nil
	}

	if err := s.users.SetPermissionPaths(ctx, userID, remaining); err != nil {
		s.metrics.IncrExternalError("supabase/profiles")
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	return remaining, nil
}

// ClearPaths empties the user's permission set.
func (s *HierarchyService) ClearPaths(ctx context.Context, userID string) error {
	ctx, span := hierarchyTracer.Start(ctx, "HierarchyService.ClearPaths")
	defer span.End()

	if err := s.users.SetPermissionPaths(ctx, userID, []string{}); err != nil {
		s.metrics.IncrExternalError("supabase/profiles")
		return &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	s.logger.Info("permission paths cleared", zap.String("user_id", userID))
	return nil
}

// InvalidateCompany drops the cached tree for a company, used after
// chart-of-accounts edits.
func (s *HierarchyService) InvalidateCompany(companyID string) {
	s.cache.Delete(fmt.Sprintf("hierarchy:%s", companyID))
}
