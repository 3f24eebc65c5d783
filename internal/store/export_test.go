package store

import (
	"context"
	"fmt"
)

// ForceSchemaVersion rewrites the stored schema version.
func ForceSchemaVersion(s *Store, version int) error {
	_, err := s.db.ExecContext(context.Background(), fmt.Sprintf("PRAGMA user_version = %d", version))
	return err
}
