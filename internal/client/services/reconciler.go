package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/teamdb/internal/client/models"
	"github.com/dmitrijs2005/teamdb/internal/document"
	"github.com/dmitrijs2005/teamdb/internal/logging"
)

// Selection is the snapshot chosen at startup.
type Selection struct {
	Source   models.Source
	Document *document.Document
}

// Reconciler decides which snapshot becomes the live directory. Priority:
// server, local pending (unless identical to the server copy), then the
// newer of cache and the on-disk file.
type Reconciler struct {
	local        LocalStore
	remote       Remote
	snapshotFile string
	readFile     func(string) ([]byte, error)
	logger       logging.Logger
}

type ReconcilerOption func(*Reconciler)

// WithFileReader replaces os.ReadFile for the on-disk snapshot.
func WithFileReader(fn func(string) ([]byte, error)) ReconcilerOption {
	return func(r *Reconciler) { r.readFile = fn }
}

// NewReconciler builds a reconciler. remote may be nil when no server is
// configured.
func NewReconciler(local LocalStore, remote Remote, snapshotFile string, logger logging.Logger, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		local:        local,
		remote:       remote,
		snapshotFile: snapshotFile,
		readFile:     os.ReadFile,
		logger:       logger,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// candidates holds what every source produced. A nil document means the
// source had nothing usable; the reason is in errs.
type candidates struct {
	server *document.Document
	local  *models.LocalEntry
	cache  *document.Document
	disk   *document.Document

	errs [4]error
}

const (
	slotServer = iota
	slotLocal
	slotCache
	slotDisk
)

var (
	errNotConfigured = errors.New("not configured")
	errMissing       = errors.New("no data stored")
)

// gather queries every source concurrently. A failing source never stops
// the others.
func (r *Reconciler) gather(ctx context.Context) *candidates {
	c := &candidates{}
	var g errgroup.Group

	g.Go(func() error {
		if r.remote == nil {
			c.errs[slotServer] = errNotConfigured
			return nil
		}
		doc, err := r.remote.Fetch(ctx)
		c.server, c.errs[slotServer] = doc, err
		return nil
	})
	g.Go(func() error {
		e, err := r.local.LocalEntry(ctx)
		if err == nil && e != nil && e.Pending && e.Data == nil {
			err = errors.New("pending entry has no data")
			e = nil
		}
		c.local, c.errs[slotLocal] = e, err
		return nil
	})
	g.Go(func() error {
		raw, err := r.local.Cache(ctx)
		if err == nil && raw == nil {
			err = errMissing
		}
		if err == nil {
			c.cache, err = document.Parse(raw)
		}
		c.errs[slotCache] = err
		return nil
	})
	g.Go(func() error {
		if r.snapshotFile == "" {
			c.errs[slotDisk] = errNotConfigured
			return nil
		}
		raw, err := r.readFile(r.snapshotFile)
		if err == nil {
			c.disk, err = document.Parse(raw)
		}
		c.errs[slotDisk] = err
		return nil
	})

	_ = g.Wait()
	return c
}

// Reconcile picks the startup snapshot. Server and disk selections are
// written back to the cache.
func (r *Reconciler) Reconcile(ctx context.Context) (*Selection, error) {
	c := r.gather(ctx)
	for i, name := range []models.Source{models.SourceServer, models.SourceLocal, models.SourceCache, models.SourceDisk} {
		if err := c.errs[i]; err != nil && !errors.Is(err, errNotConfigured) && !errors.Is(err, errMissing) {
			r.logger.Warn(ctx, "snapshot source unavailable", "source", name, "error", err)
		}
	}

	sel, err := r.choose(ctx, c)
	if err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "snapshot selected", "source", sel.Source,
		"version", sel.Document.Version, "people", len(sel.Document.Database.People))

	if sel.Source == models.SourceServer || sel.Source == models.SourceDisk {
		if err := r.local.SaveCache(ctx, sel.Document); err != nil {
			r.logger.Warn(ctx, "failed to refresh cache", "error", err)
		}
	}
	return sel, nil
}

func (r *Reconciler) choose(ctx context.Context, c *candidates) (*Selection, error) {
	if c.local != nil && c.local.Pending {
		if c.server != nil && document.Equal(c.local.Data, c.server) {
			r.logger.Info(ctx, "local pending snapshot already on server, clearing pending state")
			if err := r.local.ClearLocal(ctx); err != nil {
				r.logger.Warn(ctx, "failed to clear pending state", "error", err)
			}
			return &Selection{Source: models.SourceServer, Document: c.server}, nil
		}
		return &Selection{Source: models.SourceLocal, Document: c.local.Data}, nil
	}

	if c.server != nil {
		return &Selection{Source: models.SourceServer, Document: c.server}, nil
	}

	useDisk := false
	if c.cache == nil || c.cache.Version == "" {
		useDisk = c.disk != nil
	} else if c.disk != nil && c.disk.Version != "" {
		useDisk = compareVersions(c.disk.Version, c.cache.Version) > 0
	}

	switch {
	case useDisk:
		return &Selection{Source: models.SourceDisk, Document: c.disk}, nil
	case c.cache != nil:
		return &Selection{Source: models.SourceCache, Document: c.cache}, nil
	}

	var merr *multierror.Error
	for i, name := range []string{"server", "local", "cache", "disk"} {
		if c.errs[i] != nil {
			merr = multierror.Append(merr, &sourceError{source: name, err: c.errs[i]})
		}
	}
	return nil, &NoDataError{SnapshotFile: r.snapshotFile, Causes: merr}
}

// compareVersions compares numerically when both versions are integers and
// lexically otherwise.
func compareVersions(a, b document.Version) int {
	na, errA := strconv.ParseInt(string(a), 10, 64)
	nb, errB := strconv.ParseInt(string(b), 10, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(na, nb)
	}
	return cmp.Compare(a, b)
}

func (s *Selection) String() string {
	return fmt.Sprintf("%s (version %s)", s.Source, s.Document.Version)
}
