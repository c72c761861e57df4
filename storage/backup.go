package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const backupStamp = "2006-01-02_15-04-05"

// Backup copies the media root into a timestamped folder once a day and
// prunes folders older than Retention.
type Backup struct {
	Src       string
	Dest      string
	Retention time.Duration
	Hour      int
	Minute    int

	now func() time.Time
}

func NewBackup(src, dest string, retention time.Duration, hour int) *Backup {
	return &Backup{Src: src, Dest: dest, Retention: retention, Hour: hour, now: time.Now}
}

// NextRun is the first scheduled time strictly after t.
func (b *Backup) NextRun(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), b.Hour, b.Minute, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks until ctx is cancelled, backing up at every scheduled time.
func (b *Backup) Run(ctx context.Context) {
	log := zerolog.Ctx(ctx).With().Str("worker", "media-backup").Logger()
	for {
		next := b.NextRun(b.now())
		log.Info().Time("next", next).Msg("next media backup scheduled")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		dest, err := b.RunOnce(ctx)
		if err != nil {
			log.Error().Err(err).Msg("media backup failed")
			continue
		}
		log.Info().Str("dest", dest).Msg("media backed up")
	}
}

// RunOnce takes one backup and prunes old ones. It returns the new folder.
func (b *Backup) RunOnce(ctx context.Context) (string, error) {
	dest := filepath.Join(b.Dest, b.now().Format(backupStamp))
	if err := copyDir(b.Src, dest); err != nil {
		return "", fmt.Errorf("back up %s: %w", b.Src, err)
	}
	b.prune(ctx)
	return dest, nil
}

func (b *Backup) prune(ctx context.Context) {
	log := zerolog.Ctx(ctx)
	entries, err := os.ReadDir(b.Dest)
	if err != nil {
		log.Error().Err(err).Msg("read backup folder")
		return
	}

	cutoff := b.now().Add(-b.Retention)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		folder := filepath.Join(b.Dest, entry.Name())
		if err := os.RemoveAll(folder); err != nil {
			log.Error().Err(err).Str("folder", folder).Msg("remove old backup")
			continue
		}
		log.Info().Str("folder", folder).Msg("removed old backup")
	}
}

func copyDir(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			err = copyDir(srcPath, destPath)
		} else {
			err = copyFile(srcPath, destPath)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
