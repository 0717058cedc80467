package backup

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteSlaveInfo writes the small per-volume-directory marker file a
// restore tool needs to associate loose make-slave files back to one
// backup generation: the originating database name and the backup's
// checkpoint LSA. It is a no-op outside make-slave mode.
func (s *Session) WriteSlaveInfo() error {
	if !s.opts.MakeSlave {
		return nil
	}

	contents := fmt.Sprintf("dbname=%s\ncheckpoint_lsa=%d|%d\n",
		s.header.DBName, s.header.CheckpointLSA.Pageid, s.header.CheckpointLSA.Offset)

	for _, dir := range []string{s.opts.DataDir, s.opts.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("backup: create slave info directory %s: %w", dir, err)
		}
		path := filepath.Join(dir, ".info")
		if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
			return fmt.Errorf("backup: write slave info %s: %w", path, err)
		}
	}
	return nil
}
