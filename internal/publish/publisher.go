// Package publish moves finished working directories into the publication root so that
// every document directory always holds either its complete previous artifact set or its
// complete new one.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
	"git.home.luguber.info/inful/docpub/internal/logfields"
	"git.home.luguber.info/inful/docpub/internal/metrics"
	"git.home.luguber.info/inful/docpub/internal/retry"
	"git.home.luguber.info/inful/docpub/internal/workspace"
)

// rename is swapped in tests to simulate failures between the two renames of a swap.
var rename = os.Rename

// backupMarker separates the stem from the unique suffix in backup sibling names,
// which look like .STEM.old-<uuid>.
const backupMarker = ".old-"

// Publisher swaps working directories into the publication root.
type Publisher struct {
	pubdir   string
	ws       *workspace.Manager
	retry    retry.Policy
	recorder metrics.Recorder
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Publisher) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithRetry sets the policy for removing replaced directories.
func WithRetry(policy retry.Policy) Option {
	return func(p *Publisher) { p.retry = policy }
}

// New returns a publisher for pubdir whose working directories live in ws. The build root
// must already exist.
func New(pubdir string, ws *workspace.Manager, opts ...Option) *Publisher {
	p := &Publisher{
		pubdir:   pubdir,
		ws:       ws,
		retry:    retry.DefaultPolicy(),
		recorder: metrics.NoopRecorder{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// CheckSameDevice fails with ErrCrossDevice when a and b are on different filesystems.
func CheckSameDevice(a, b string) error {
	da, okA, err := deviceOf(a)
	if err != nil {
		return ferrors.FileSystemError("cannot stat directory").WithContext("path", a).WithCause(err).Build()
	}
	db, okB, err := deviceOf(b)
	if err != nil {
		return ferrors.FileSystemError("cannot stat directory").WithContext("path", b).WithCause(err).Build()
	}
	if okA && okB && da != db {
		return ferrors.ConfigError("build root must be on the same filesystem as the publication root").
			WithContext("builddir", a).
			WithContext("pubdir", b).
			WithCause(fmt.Errorf("%w: %s, %s", ErrCrossDevice, a, b)).
			Build()
	}
	return nil
}

// Check verifies the build root can be renamed into the publication root.
func (p *Publisher) Check() error { return CheckSameDevice(p.ws.Path(), p.pubdir) }

// Prepare returns an empty working directory for stem, grouped under doctype.
func (p *Publisher) Prepare(doctype, stem string) (string, error) {
	dir, err := p.ws.WorkingDir(doctype, stem)
	if err != nil {
		return "", ferrors.FileSystemError("cannot prepare working directory").
			WithContext("stem", stem).WithCause(err).Build()
	}
	return dir, nil
}

// Target returns the publication directory of stem.
func (p *Publisher) Target(stem string) string { return filepath.Join(p.pubdir, stem) }

// Publish moves the working directory of stem into the publication root. An existing
// directory is first renamed to a hidden sibling, the new one renamed into place and the
// sibling removed. If the second rename fails the old directory is restored and the
// working directory is left intact for a retry.
func (p *Publisher) Publish(ctx context.Context, doctype, stem string) error {
	working := filepath.Join(p.ws.Path(), doctype, stem)
	if fi, err := os.Stat(working); err != nil || !fi.IsDir() {
		return ferrors.PublishError("nothing to publish").
			WithContext("stem", stem).
			WithCause(fmt.Errorf("%w: %s", ErrNoWorkingDir, working)).
			Build()
	}
	if err := p.Recover(ctx, stem); err != nil {
		return err
	}

	target := p.Target(stem)
	err := p.swap(ctx, stem, working, target)
	p.recorder.IncPublishResult(err == nil)
	if err != nil {
		return err
	}
	slog.Info("Published document", logfields.Stem(stem), logfields.Path(target))

	if err := p.ws.Prune(doctype); err != nil {
		slog.Warn("Cannot prune group directory", logfields.Doctype(doctype), logfields.Error(err))
	}
	return nil
}

func (p *Publisher) swap(ctx context.Context, stem, working, target string) error {
	if _, err := os.Lstat(target); os.IsNotExist(err) {
		if err := rename(working, target); err != nil {
			return raceError(stem, "move into place", err)
		}
		return nil
	}

	backup := filepath.Join(p.pubdir, "."+stem+backupMarker+uuid.NewString())
	if err := rename(target, backup); err != nil {
		return raceError(stem, "move previous aside", err)
	}
	if err := rename(working, target); err != nil {
		if rerr := rename(backup, target); rerr != nil {
			slog.Error("Cannot restore previous publication; recovered on next run",
				logfields.Stem(stem), logfields.Path(backup), logfields.Error(rerr))
		}
		return raceError(stem, "move into place", err)
	}

	if err := p.retry.Do(ctx, func() error { return os.RemoveAll(backup) }); err != nil {
		slog.Warn("Cannot remove replaced publication", logfields.Stem(stem),
			logfields.Path(backup), logfields.Error(err))
	}
	return nil
}

func raceError(stem, phase string, err error) error {
	return ferrors.PublishError("publish of "+stem+" failed").
		WithContext("stem", stem).
		WithContext("phase", phase).
		WithCause(fmt.Errorf("%w: %w", ErrPublishRace, err)).
		Build()
}

// Recover repairs the leftovers of an interrupted swap for stem. When the publication
// directory is missing, the replaced directory is renamed back; when both exist, the swap
// had completed and the replaced directory is removed.
func (p *Publisher) Recover(ctx context.Context, stem string) error {
	backups, err := p.backups(stem)
	if err != nil || len(backups) == 0 {
		return err
	}
	target := p.Target(stem)
	if _, err := os.Lstat(target); os.IsNotExist(err) {
		slog.Warn("Restoring publication after interrupted swap", logfields.Stem(stem), logfields.Path(backups[0]))
		if err := rename(backups[0], target); err != nil {
			return raceError(stem, "restore previous", err)
		}
		backups = backups[1:]
	}
	for _, b := range backups {
		if err := p.retry.Do(ctx, func() error { return os.RemoveAll(b) }); err != nil {
			slog.Warn("Cannot remove replaced publication", logfields.Stem(stem), logfields.Path(b), logfields.Error(err))
		}
	}
	return nil
}

// RecoverAll runs Recover for every stem with leftovers in the publication root.
func (p *Publisher) RecoverAll(ctx context.Context) error {
	entries, err := os.ReadDir(p.pubdir)
	if err != nil {
		return ferrors.FileSystemError("cannot read publication directory").
			WithContext("path", p.pubdir).WithCause(err).Build()
	}
	seen := map[string]bool{}
	for _, e := range entries {
		stem, ok := backupStem(e.Name())
		if !ok || seen[stem] {
			continue
		}
		seen[stem] = true
		if err := p.Recover(ctx, stem); err != nil {
			return err
		}
	}
	return nil
}

// backups returns the replaced directories of stem, newest first. The modification time of
// a backup is that of the build it holds, so after repeated crashes the first entry is the
// most recent complete publication.
func (p *Publisher) backups(stem string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(p.pubdir, "."+globEscape(stem)+backupMarker+"*"))
	if err != nil {
		return nil, err
	}
	mtimes := make(map[string]time.Time, len(matches))
	for _, m := range matches {
		if fi, err := os.Lstat(m); err == nil {
			mtimes[m] = fi.ModTime()
		}
	}
	slices.SortStableFunc(matches, func(a, b string) int {
		return mtimes[b].Compare(mtimes[a])
	})
	return matches, nil
}

func backupStem(name string) (string, bool) {
	if !strings.HasPrefix(name, ".") {
		return "", false
	}
	i := strings.LastIndex(name, backupMarker)
	if i <= 1 {
		return "", false
	}
	return name[1:i], true
}

func globEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`)
	return r.Replace(s)
}

// Discard removes the working directory of a failed or script-only build.
func (p *Publisher) Discard(doctype, stem string) error {
	if err := os.RemoveAll(filepath.Join(p.ws.Path(), doctype, stem)); err != nil {
		return err
	}
	return p.ws.Prune(doctype)
}
