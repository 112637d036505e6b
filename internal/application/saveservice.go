package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dkindler/talerpanel/internal/domain/model"
	"github.com/dkindler/talerpanel/internal/domain/port/driven"
)

// SaveOutcome is the result of one settings save: the record now in effect
// (candidate on commit, previous on rollback), the notices produced while
// processing, and whether the candidate was committed. Denied reports that
// the caller lacked permission to change settings at all.
type SaveOutcome struct {
	Settings  model.Settings
	Notices   []model.Notice
	Committed bool
	Denied    bool
}

// SaveService is the top-level entry point of the settings save pipeline:
// route -> sanitize -> verify against the backend -> commit or roll back.
// A credential-affecting save is transactional with respect to the login
// check: a syntactically valid but practically wrong credential is never
// persisted.
type SaveService struct {
	store     driven.SettingsStore
	client    driven.MerchantClient
	sanitizer *Sanitizer
	resolver  *Resolver
	logger    *slog.Logger
}

// NewSaveService creates a SaveService with all required dependencies.
func NewSaveService(
	store driven.SettingsStore,
	client driven.MerchantClient,
	sanitizer *Sanitizer,
	resolver *Resolver,
	logger *slog.Logger,
) *SaveService {
	return &SaveService{
		store:     store,
		client:    client,
		sanitizer: sanitizer,
		resolver:  resolver,
		logger:    logger,
	}
}

// Save processes one settings submission start to finish. Validation,
// encryption, and verification failures are reported through notices and
// roll back to the previous record; only storage failures surface as
// errors.
func (s *SaveService) Save(ctx context.Context, sub Submission) (SaveOutcome, error) {
	current, err := s.store.Load(ctx)
	if err != nil {
		return SaveOutcome{}, fmt.Errorf("load current settings: %w", err)
	}

	// Notice sink and check run-guard are request-scoped; build them fresh.
	notices := NewNotices()
	checker := NewChecker(s.client, s.resolver, notices)

	result := s.sanitizer.Sanitize(ctx, sub, current, notices)

	final := result.Settings
	committed := !current.Equal(final) || result.Verify

	if result.Verify && !checker.TestLogin(ctx, final, result.Mode) {
		s.logger.Info("settings save rolled back",
			"group", sub.Group,
			"mode", string(result.Mode),
		)
		return SaveOutcome{Settings: current, Notices: notices.All()}, nil
	}

	if committed {
		if err := s.store.Save(ctx, final); err != nil {
			return SaveOutcome{}, fmt.Errorf("persist settings: %w", err)
		}
		s.logger.Info("settings saved", "group", sub.Group, "delete", sub.Delete)
	}

	return SaveOutcome{
		Settings:  final,
		Notices:   notices.All(),
		Committed: committed,
		Denied:    result.Denied,
	}, nil
}
