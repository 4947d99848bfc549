package postgres

import (
	"context"
	"errors"
	"fmt"

	"jobwatch/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

const saveProfileSQL = `
	INSERT INTO filter_profiles (name, keyword, company, location, order_by, max_pages, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, NOW())
	ON CONFLICT (name)
	DO UPDATE SET
		keyword    = EXCLUDED.keyword,
		company    = EXCLUDED.company,
		location   = EXCLUDED.location,
		order_by   = EXCLUDED.order_by,
		max_pages  = EXCLUDED.max_pages,
		updated_at = NOW()
	RETURNING id
`

func (s *Store) saveProfileStmt(profile *models.FilterProfile) *dbr.SelectStmt {
	return s.sess.SelectBySql(saveProfileSQL,
		profile.Name,
		profile.Keyword,
		profile.Company,
		profile.Location,
		profile.OrderBy,
		profile.MaxPages,
	)
}

func (s *Store) getProfileStmt(name string) *dbr.SelectStmt {
	return s.sess.
		Select("*").
		From("filter_profiles").
		Where("name = ?", name)
}

func (s *Store) listProfilesStmt() *dbr.SelectStmt {
	return s.sess.
		Select("*").
		From("filter_profiles").
		OrderBy("name")
}

func (s *Store) deleteProfileStmt(name string) *dbr.DeleteStmt {
	return s.sess.
		DeleteFrom("filter_profiles").
		Where("name = ?", name)
}

func (s *Store) SaveProfile(ctx context.Context, profile *models.FilterProfile) error {
	var id int64
	err := s.saveProfileStmt(profile).LoadOneContext(ctx, &id)
	if err != nil {
		s.logger.Error("failed to save profile",
			zap.String("profile", profile.Name),
			zap.Error(err),
		)
		return fmt.Errorf("save profile: %w", err)
	}

	profile.ID = id

	s.logger.Info("profile saved",
		zap.String("profile", profile.Name),
		zap.String("keyword", models.StringValue(profile.Keyword)),
		zap.String("location", models.StringValue(profile.Location)),
	)

	return nil
}

// GetProfile returns nil, nil when no profile has that name.
func (s *Store) GetProfile(ctx context.Context, name string) (*models.FilterProfile, error) {
	var profile models.FilterProfile

	err := s.getProfileStmt(name).LoadOneContext(ctx, &profile)

	if errors.Is(err, dbr.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get profile",
			zap.String("profile", name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return &profile, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]models.FilterProfile, error) {
	var profiles []models.FilterProfile

	_, err := s.listProfilesStmt().LoadContext(ctx, &profiles)

	if err != nil {
		s.logger.Error("failed to list profiles", zap.Error(err))
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	return profiles, nil
}

func (s *Store) DeleteProfile(ctx context.Context, name string) error {
	result, err := s.deleteProfileStmt(name).ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to delete profile",
			zap.String("profile", name),
			zap.Error(err),
		)
		return fmt.Errorf("delete profile: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("profile %q not found", name)
	}

	s.logger.Info("profile deleted", zap.String("profile", name))

	return nil
}
