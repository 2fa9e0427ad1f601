package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lg/fitness-metrics-go-api/internal/fitimport"
	"lg/fitness-metrics-go-api/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const maxFitUploadBytes = 10 << 20

// importActivity stores a decoded FIT activity as an exercise log entry.
func (h *Handler) importActivity(ctx context.Context, userID int, act *fitimport.Activity) (store.LogEntry, error) {
	sample := act.Sample()
	if sample.OccurredAt.IsZero() {
		sample.OccurredAt = h.now().UTC()
	}
	content := act.Sport
	if content == "" {
		content = "Activity"
	}
	if act.Duration > 0 {
		content = fmt.Sprintf("%s, %d min", content, int(act.Duration.Round(time.Minute).Minutes()))
	}

	entry, err := h.store.CreateLog(ctx, store.LogEntry{
		UserID:     userID,
		Type:       store.LogTypeExercise,
		Content:    content,
		Calories:   sample.Calories,
		Source:     store.SourceFIT,
		OccurredAt: sample.OccurredAt,
	})
	if err != nil {
		h.metrics.CounterFitFailed.Inc()
		return entry, err
	}
	h.metrics.CounterFitImported.Inc()
	return entry, nil
}

// importFitUpload handles POST /api/logs/import-fit with a multipart "file"
// field holding a FIT activity file.
func (h *Handler) importFitUpload(c *gin.Context) {
	userID := c.GetInt("user_id")

	fh, err := c.FormFile("file")
	if err != nil {
		apiError(c, http.StatusBadRequest, "file is required")
		return
	}
	if fh.Size > maxFitUploadBytes {
		apiError(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		apiError(c, http.StatusBadRequest, "failed to read upload")
		return
	}
	defer f.Close()

	act, err := fitimport.Parse(f)
	if err != nil {
		h.metrics.CounterFitFailed.Inc()
		if errors.Is(err, fitimport.ErrNotFIT) {
			apiError(c, http.StatusBadRequest, "file is not a FIT activity file")
			return
		}
		log.Warnf("[importFitUpload] user %d, %s: %v", userID, fh.Filename, err)
		apiError(c, http.StatusUnprocessableEntity, "could not decode FIT activity")
		return
	}

	entry, err := h.importActivity(c, userID, act)
	if err != nil {
		log.Errorf("[importFitUpload] user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to create log entry")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

/* ─── Inbox job ──────────────────────────────────────────────────────── */

// fitInbox imports *.fit files dropped into dir for one user, moving each
// file into processed/ or failed/ afterwards.
type fitInbox struct {
	h      *Handler
	dir    string
	userID int
}

func newFitInbox(h *Handler, dir string, userID int) (*fitInbox, error) {
	for _, sub := range []string{"processed", "failed"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", sub, err)
		}
	}
	return &fitInbox{h: h, dir: dir, userID: userID}, nil
}

// schedule registers the scan on c. Runs never overlap.
func (fi *fitInbox) schedule(c *cron.Cron, spec string) error {
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		imported, err := fi.scan(context.Background())
		if err != nil {
			log.Errorf("[fitInbox] scan: %v", err)
		}
		if imported > 0 {
			log.Infof("[fitInbox] imported %d activities", imported)
		}
	}))
	_, err := c.AddJob(spec, job)
	return err
}

// scan imports every pending file and returns how many succeeded. A bad file
// does not stop the scan; all failures are returned together.
func (fi *fitInbox) scan(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(fi.dir)
	if err != nil {
		return 0, err
	}

	var imported int
	var errs error
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".fit") {
			continue
		}
		if ctx.Err() != nil {
			return imported, multierr.Append(errs, ctx.Err())
		}

		path := filepath.Join(fi.dir, e.Name())
		dest := "processed"
		if err := fi.importFile(ctx, path); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", e.Name(), err))
			dest = "failed"
		} else {
			imported++
		}
		if err := os.Rename(path, filepath.Join(fi.dir, dest, e.Name())); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("move %s: %w", e.Name(), err))
		}
	}
	return imported, errs
}

func (fi *fitInbox) importFile(ctx context.Context, path string) error {
	act, err := fitimport.ParseFile(path)
	if err != nil {
		fi.h.metrics.CounterFitFailed.Inc()
		return err
	}
	_, err = fi.h.importActivity(ctx, fi.userID, act)
	return err
}
