package devserver

import (
	"time"

	"github.com/robfig/cron/v3"
)

// retention is how long soft-deleted rows linger before the purge job
// hard-deletes them.
const retention = 7 * 24 * time.Hour

// startPurgeJob schedules the nightly hard-delete of soft-deleted rows.
func (s *Server) startPurgeJob() {
	s.cron = cron.New()
	_, err := s.cron.AddFunc("30 3 * * *", s.purgeDeleted)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to schedule purge job")
		return
	}
	s.cron.Start()
}

// purgeDeleted removes rows that were soft-deleted longer than retention ago.
// Children go first so a crash mid-purge never orphans live rows.
func (s *Server) purgeDeleted() {
	cutoff := time.Now().Add(-retention)

	res := s.db.Where("is_deleted = ? AND updated_at < ?", true, cutoff).Delete(&Lecture{})
	if res.Error != nil {
		s.log.Error().Err(res.Error).Msg("purging lectures")
		return
	}
	lectures := res.RowsAffected

	res = s.db.Where("is_deleted = ? AND updated_at < ?", true, cutoff).Delete(&Section{})
	if res.Error != nil {
		s.log.Error().Err(res.Error).Msg("purging sections")
		return
	}
	sections := res.RowsAffected

	res = s.db.Where("is_deleted = ? AND updated_at < ?", true, cutoff).Delete(&Course{})
	if res.Error != nil {
		s.log.Error().Err(res.Error).Msg("purging courses")
		return
	}

	s.log.Info().
		Int64("lectures", lectures).
		Int64("sections", sections).
		Int64("courses", res.RowsAffected).
		Msg("purged soft-deleted rows")
}
