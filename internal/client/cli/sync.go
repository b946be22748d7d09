package cli

import (
	"context"
	"fmt"
	"time"
)

// probeTimeout bounds one reachability probe.
const probeTimeout = 3 * time.Second

func (a *App) getStatus() string {
	s := ""
	if cur, ok := a.session.Current(); ok {
		s = cur.Username + " "
	}
	if mode := a.getMode(); mode != "" {
		s += string(mode)
	}
	if n := a.getPending(); n > 0 {
		s += fmt.Sprintf(" %d pending", n)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Sync pushes every unsynced local entry.
func (a *App) Sync(ctx context.Context) error {
	pending, err := a.moods.PendingCount(ctx)
	if err != nil {
		return err
	}
	if pending == 0 {
		printlnFn("Nothing to sync")
		return nil
	}
	n, err := a.moods.SyncUnsyncedMoods(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Synced %d of %d entries", n, pending))
	return nil
}

// Pull pushes pending entries and then replaces the local journal with the
// server's copy. It refuses to pull while entries are still pending, as the
// replace would drop them.
func (a *App) Pull(ctx context.Context) error {
	if _, err := a.moods.SyncUnsyncedMoods(ctx); err != nil {
		return err
	}
	left, err := a.moods.PendingCount(ctx)
	if err != nil {
		return err
	}
	if left > 0 {
		return fmt.Errorf("%d entries could not be synced, pull skipped", left)
	}

	if err := a.moods.SyncMoodsFromBackend(ctx); err != nil {
		return err
	}
	list, err := a.moods.ListMoods(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Pulled %d entries", len(list)))
	return nil
}

func (a *App) Status(ctx context.Context) error {
	mode := a.getMode()
	if mode == "" {
		mode = "unknown"
	}
	printlnFn("Server: " + string(mode))

	if cur, ok := a.session.Current(); ok {
		printlnFn(fmt.Sprintf("User:   %s <%s>", cur.Username, cur.Email))
	} else {
		printlnFn("User:   not logged in")
	}

	n, err := a.moods.PendingCount(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Pending: %d", n))
	return nil
}

// syncPending pushes pending entries in the background path and only logs
// the outcome.
func (a *App) syncPending(ctx context.Context) {
	if !a.isLoggedIn() {
		return
	}
	n, err := a.moods.SyncUnsyncedMoods(ctx)
	if err != nil {
		a.logger.Warn(ctx, "background sync failed", "error", err)
		return
	}
	if n > 0 {
		a.logger.Info(ctx, "background sync done", "synced", n)
	}
}

func (a *App) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := a.prober.Probe(pctx)
	cancel()

	if err != nil {
		if a.setMode(ModeOffline) {
			a.logger.Info(ctx, "server unreachable, working offline", "error", err)
		}
		return
	}
	if a.setMode(ModeOnline) {
		a.logger.Info(ctx, "server reachable")
		a.syncPending(ctx)
	}
}

// StartOnlineStatusWatcher probes the server right away and then every
// interval. Each offline to online transition triggers a sync of pending
// entries. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if a.prober == nil || interval <= 0 {
		return
	}

	a.probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// watchPending follows the local journal and keeps the pending counter of
// the prompt current. Changes after the first snapshot are announced.
func (a *App) watchPending(ctx context.Context) {
	ch, err := a.moods.Subscribe(ctx)
	if err != nil {
		a.logger.Warn(ctx, "cannot watch local entries", "error", err)
		return
	}

	first := true
	for list := range ch {
		n := 0
		for _, m := range list {
			if !m.IsSynced {
				n++
			}
		}
		if a.setPending(n) && !first {
			printlnFn(fmt.Sprintf("[%d entries pending sync]", n))
		}
		first = false
	}
}
