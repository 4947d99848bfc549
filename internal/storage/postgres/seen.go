package postgres

import (
	"context"
	"fmt"

	"github.com/gocraft/dbr/v2"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	markSeenSQL = `
	INSERT INTO seen_jobs (profile, job_id, seen_at)
	SELECT ?, unnest(?::bigint[]), NOW()
	ON CONFLICT (profile, job_id) DO NOTHING
`

	unseenSQL = `
	SELECT unnest(?::bigint[]) AS id
	EXCEPT
	SELECT job_id FROM seen_jobs WHERE profile = ?
`
)

// dbr interpolates "?" only; ids travel as one postgres array literal.
func (s *Store) markSeenStmt(profile string, jobIDs []int64) *dbr.InsertStmt {
	return s.sess.InsertBySql(markSeenSQL, profile, pq.Array(jobIDs))
}

func (s *Store) unseenStmt(profile string, jobIDs []int64) *dbr.SelectStmt {
	return s.sess.SelectBySql(unseenSQL, pq.Array(jobIDs), profile)
}

func (s *Store) cleanSeenStmt(daysOld int) *dbr.DeleteStmt {
	return s.sess.
		DeleteFrom("seen_jobs").
		Where("seen_at < NOW() - make_interval(days => ?)", daysOld)
}

func (s *Store) MarkJobsSeen(ctx context.Context, profile string, jobIDs []int64) error {
	if len(jobIDs) == 0 {
		return nil
	}

	_, err := s.markSeenStmt(profile, jobIDs).ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to mark jobs as seen",
			zap.String("profile", profile),
			zap.Int("count", len(jobIDs)),
			zap.Error(err),
		)
		return fmt.Errorf("mark jobs as seen: %w", err)
	}

	return nil
}

// GetUnseenJobs returns job ids via difference
func (s *Store) GetUnseenJobs(ctx context.Context, profile string, jobIDs []int64) ([]int64, error) {
	if len(jobIDs) == 0 {
		return []int64{}, nil
	}

	rows, err := s.unseenStmt(profile, jobIDs).RowsContext(ctx)

	if err != nil {
		s.logger.Error("failed to get unseen jobs",
			zap.String("profile", profile),
			zap.Int("total_jobs", len(jobIDs)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get unseen jobs: %w", err)
	}
	defer rows.Close()

	var unseenIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan job id: %w", err)
		}
		unseenIDs = append(unseenIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	s.logger.Debug("unseen jobs",
		zap.String("profile", profile),
		zap.Int("total", len(jobIDs)),
		zap.Int("unseen", len(unseenIDs)),
	)

	return unseenIDs, nil
}

func (s *Store) CleanOldSeenJobs(ctx context.Context, daysOld int) (int64, error) {
	result, err := s.cleanSeenStmt(daysOld).ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to clean old seen jobs",
			zap.Int("days_old", daysOld),
			zap.Error(err),
		)
		return 0, fmt.Errorf("clean old seen jobs: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()

	s.logger.Info("old seen jobs cleaned",
		zap.Int("days_old", daysOld),
		zap.Int64("count", rowsAffected),
	)

	return rowsAffected, nil
}
