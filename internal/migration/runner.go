package migration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/media"
)

type MediaStore interface {
	Check(ctx context.Context) error
	Upload(ctx context.Context, localPath, folder string) (media.Uploaded, error)
}

type Status int

const (
	StatusSkipped Status = iota
	StatusMigrated
	StatusFailed
)

// ItemResult is the outcome of one entity.
type ItemResult struct {
	Collection string
	EntityID   uint
	Status     Status
	Reason     string
	URL        string
	LocalPath  string
	Deleted    bool
	DeleteErr  error
	Err        error
}

type Failure struct {
	Collection string
	EntityID   uint
	Err        error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %d: %v", f.Collection, f.EntityID, f.Err)
}

type Result struct {
	Migrated int
	Deleted  int
	Skipped  int
	Failures []Failure
	// Orphaned lists local files that were migrated but could not be removed.
	Orphaned []string
}

func (r *Result) add(it ItemResult) {
	switch it.Status {
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failures = append(r.Failures, Failure{Collection: it.Collection, EntityID: it.EntityID, Err: it.Err})
	case StatusMigrated:
		r.Migrated++
		if it.Deleted {
			r.Deleted++
		} else if it.DeleteErr != nil {
			r.Orphaned = append(r.Orphaned, it.LocalPath)
		}
	}
}

func (r Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "migrated=%d deleted=%d skipped=%d failed=%d orphaned=%d\n",
		r.Migrated, r.Deleted, r.Skipped, len(r.Failures), len(r.Orphaned))
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "  failed  %s\n", f.Error())
	}
	for _, p := range r.Orphaned {
		fmt.Fprintf(&b, "  orphan  %s\n", p)
	}
	return b.String()
}

// Runner moves local media files to the remote store one entity at a time.
// Values already on the remote host are left untouched, so a run can be
// repeated or resumed after an interruption.
type Runner struct {
	Store      RecordStore
	Media      MediaStore
	MediaRoot  string
	RemoteBase string
	KeepLocal  bool
	Remove     func(path string) error
	Logger     *slog.Logger
}

// Run processes every mapping. Per-entity problems end up in the result;
// only an unusable media store or a cancelled context abort the run.
func (r *Runner) Run(ctx context.Context, mappings []Mapping) (Result, error) {
	var res Result
	l := r.logger()

	if err := r.Media.Check(ctx); err != nil {
		return res, fmt.Errorf("media store unavailable: %w", err)
	}

	for _, m := range mappings {
		records, err := r.Store.List(ctx, m.Collection, m.Field)
		if err != nil {
			l.Error("migration_list_failed", "mapping", m.String(), "error", err)
			res.Failures = append(res.Failures, Failure{Collection: m.Collection, Err: err})
			continue
		}

		for _, rec := range records {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			it := r.migrateOne(ctx, m, rec)
			r.logItem(l, it)
			res.add(it)
		}
	}
	return res, nil
}

func (r *Runner) migrateOne(ctx context.Context, m Mapping, rec Record) ItemResult {
	it := ItemResult{Collection: m.Collection, EntityID: rec.ID}

	ref := media.ParseRef(rec.Value, r.RemoteBase)
	switch ref.Kind {
	case media.KindEmpty:
		it.Reason = "empty"
		return it
	case media.KindRemote:
		it.Reason = "already migrated"
		return it
	case media.KindExternal:
		it.Reason = "external url"
		return it
	}

	path, err := ref.LocalPath(r.MediaRoot)
	if err != nil {
		it.Status, it.Err = StatusFailed, err
		return it
	}
	it.LocalPath = path

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			it.Reason = "local file missing"
			return it
		}
		it.Status, it.Err = StatusFailed, err
		return it
	}

	up, err := r.Media.Upload(ctx, path, m.Folder)
	if err != nil {
		if !errors.Is(err, domain.ErrMediaUpload) {
			err = fmt.Errorf("%w: %v", domain.ErrMediaUpload, err)
		}
		it.Status, it.Err = StatusFailed, err
		return it
	}

	if err := r.Store.UpdateField(ctx, m.Collection, rec.ID, m.Field, up.SecureURL); err != nil {
		it.Status, it.Err = StatusFailed, err
		return it
	}
	it.Status, it.URL = StatusMigrated, up.SecureURL

	if r.KeepLocal {
		return it
	}
	if err := r.remove(path); err != nil {
		it.DeleteErr = fmt.Errorf("%w: %v", domain.ErrLocalDelete, err)
		return it
	}
	it.Deleted = true
	return it
}

func (r *Runner) remove(path string) error {
	if r.Remove != nil {
		return r.Remove(path)
	}
	return os.Remove(path)
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) logItem(l *slog.Logger, it ItemResult) {
	l = l.With("collection", it.Collection, "entity_id", it.EntityID)
	switch it.Status {
	case StatusSkipped:
		l.Debug("migration_skipped", "reason", it.Reason)
	case StatusFailed:
		l.Error("migration_failed", "error", it.Err)
	case StatusMigrated:
		l.Info("migration_done", "url", it.URL, "deleted", it.Deleted)
		if it.DeleteErr != nil {
			l.Warn("local_delete_failed", "path", it.LocalPath, "error", it.DeleteErr)
		}
	}
}
