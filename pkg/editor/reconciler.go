package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Reconciler keeps open tabs consistent with renames and deletes on disk.
//
// Each operation runs Detect, Flush, Detach, Mutate and, for renames,
// Reattach and Sweep. If Mutate fails after tabs were detached, the detached
// tab is reopened at its old path before the error is returned.
type Reconciler struct {
	host Host
	log  *logrus.Entry
}

// NewReconciler creates a reconciler driving host.
func NewReconciler(host Host, log *logrus.Entry) *Reconciler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Reconciler{host: host, log: log.WithField("component", "reconciler")}
}

type affected struct {
	tabs       []Tab
	primary    *Tab   // the tab detached before the mutation
	activePath string // path of the active tab before anything changed
}

// detect collects every tab whose document is path or lies beneath it.
func (r *Reconciler) detect(path string) affected {
	var a affected
	for _, t := range r.host.ListOpenTabs() {
		if t.Active {
			a.activePath = t.Path
		}
		if within(t.Path, path) {
			a.tabs = append(a.tabs, t)
		}
	}
	for i := range a.tabs {
		if a.tabs[i].Active {
			a.primary = &a.tabs[i]
			break
		}
	}
	if a.primary == nil && len(a.tabs) > 0 {
		a.primary = &a.tabs[0]
	}
	return a
}

// flush saves every dirty document among the affected tabs.
func (r *Reconciler) flush(ctx context.Context, a affected) error {
	saved := make(map[string]bool)
	for _, t := range a.tabs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !t.Dirty || saved[t.Path] {
			continue
		}
		if err := r.host.Save(t.Path); err != nil {
			return fmt.Errorf("save %s before mutation: %w", t.Path, err)
		}
		saved[t.Path] = true
		r.log.WithField("path", t.Path).Debug("flushed unsaved changes")
	}
	return nil
}

// rollback reopens the detached tab and restores the previous focus.
func (r *Reconciler) rollback(a affected, cause error) error {
	if a.primary == nil {
		return cause
	}
	var errs []error
	if err := r.host.Open(a.primary.Path); err != nil {
		errs = append(errs, fmt.Errorf("reopen %s: %w", a.primary.Path, err))
	}
	if !a.primary.Active && a.activePath != "" {
		if err := r.host.Open(a.activePath); err != nil {
			errs = append(errs, fmt.Errorf("refocus %s: %w", a.activePath, err))
		}
	}
	if len(errs) > 0 {
		r.log.WithError(errors.Join(errs...)).Warn("rollback incomplete")
		return errors.Join(append([]error{cause}, errs...)...)
	}
	r.log.WithField("path", a.primary.Path).Debug("rolled back detached tab")
	return cause
}

// Rename moves oldPath to newPath through mutate, reconciling open tabs.
// Renaming a folder carries the active tab of a document inside it along.
func (r *Reconciler) Rename(ctx context.Context, oldPath, newPath string, mutate func() error) error {
	a := r.detect(oldPath)
	if len(a.tabs) == 0 {
		return mutate()
	}

	if err := r.flush(ctx, a); err != nil {
		return err
	}

	if err := r.host.Close(a.primary.Ref); err != nil {
		return fmt.Errorf("detach %s: %w", a.primary.Path, err)
	}

	if err := mutate(); err != nil {
		return r.rollback(a, err)
	}

	// The entry has moved on disk, so a failed reattach must not leave
	// stale tabs behind.
	var errs []error
	if a.primary.Active {
		target := relocate(a.primary.Path, oldPath, newPath)
		if err := r.host.Open(target); err != nil {
			errs = append(errs, fmt.Errorf("reattach %s: %w", target, err))
		} else {
			r.log.WithFields(logrus.Fields{"from": a.primary.Path, "to": target}).Debug("reattached active tab")
		}
	}

	// Sweep: split-view duplicates and other tabs still bound to old paths.
	errs = append(errs, r.sweep(a, "sweep")...)
	return errors.Join(errs...)
}

func (r *Reconciler) sweep(a affected, verb string) []error {
	var errs []error
	for _, t := range a.tabs {
		if t.Ref == a.primary.Ref {
			continue
		}
		if err := r.host.Close(t.Ref); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", verb, t.Path, err))
		}
	}
	return errs
}

// Delete removes path through mutate after flushing and closing its tabs.
func (r *Reconciler) Delete(ctx context.Context, path string, mutate func() error) error {
	a := r.detect(path)
	if len(a.tabs) == 0 {
		return mutate()
	}

	if err := r.flush(ctx, a); err != nil {
		return err
	}

	if err := r.host.Close(a.primary.Ref); err != nil {
		return fmt.Errorf("detach %s: %w", a.primary.Path, err)
	}

	if err := mutate(); err != nil {
		return r.rollback(a, err)
	}

	return errors.Join(r.sweep(a, "close")...)
}
