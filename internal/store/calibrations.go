package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tvcut/internal/locate"
)

// RecordingKey identifies one revision of a recording on disk.
type RecordingKey struct {
	Path    string
	Size    int64
	ModTime int64 // nanoseconds since the Unix epoch
}

// KeyFor stats path and builds its cache key. The path is made absolute so
// relative invocations share entries.
func KeyFor(path string) (RecordingKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return RecordingKey{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return RecordingKey{}, fmt.Errorf("stat %s: %w", abs, err)
	}
	return RecordingKey{Path: abs, Size: info.Size(), ModTime: info.ModTime().UnixNano()}, nil
}

// LookupCalibration returns the cached calibration for key. The boolean is
// false when no entry exists.
func (s *Store) LookupCalibration(ctx context.Context, key RecordingKey) (locate.Calibration, bool, error) {
	ctx = ensureContext(ctx)
	var cal locate.Calibration
	err := s.db.QueryRowContext(ctx,
		`SELECT total_frames, source_bytes, remux_bytes, extra_bytes
           FROM calibrations
          WHERE path = ? AND size_bytes = ? AND mtime_ns = ?`,
		key.Path, key.Size, key.ModTime,
	).Scan(&cal.TotalFrames, &cal.SourceBytes, &cal.RemuxBytes, &cal.ExtraBytes)
	if errors.Is(err, sql.ErrNoRows) {
		return locate.Calibration{}, false, nil
	}
	if err != nil {
		return locate.Calibration{}, false, fmt.Errorf("lookup calibration: %w", err)
	}
	return cal, true, nil
}

// SaveCalibration stores a validated calibration for key, replacing stale
// entries for the same path.
func (s *Store) SaveCalibration(ctx context.Context, key RecordingKey, cal locate.Calibration) error {
	if err := cal.Validate(); err != nil {
		return err
	}
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM calibrations WHERE path = ?`, key.Path); err != nil {
			return fmt.Errorf("purge calibrations: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO calibrations (
                path, size_bytes, mtime_ns, total_frames, source_bytes, remux_bytes, extra_bytes, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			key.Path, key.Size, key.ModTime,
			cal.TotalFrames, cal.SourceBytes, cal.RemuxBytes, cal.ExtraBytes,
			formatTime(s.now()),
		); err != nil {
			return fmt.Errorf("insert calibration: %w", err)
		}
		return tx.Commit()
	})
}

// PurgeCalibrations removes every cached calibration and returns the number
// of rows deleted.
func (s *Store) PurgeCalibrations(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM calibrations`)
	if err != nil {
		return 0, fmt.Errorf("purge calibrations: %w", err)
	}
	return res.RowsAffected()
}
