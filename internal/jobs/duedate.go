// Package jobs holds the background tickers the server runs alongside the
// HTTP listener.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/SaramshGautam/collaBoard/internal/config"
	"github.com/SaramshGautam/collaBoard/internal/model"
	"github.com/SaramshGautam/collaBoard/internal/store"
)

// StartDueDateSweep marks projects overdue once their due date passes. Errors
// are logged and the next tick tries again; nothing is retried within a tick.
func StartDueDateSweep(ctx context.Context, cfg config.Config, st store.Store) {
	if !cfg.DueDateSweepEnabled {
		return
	}
	interval := cfg.DueDateSweepInterval
	if interval <= 0 {
		interval = time.Hour
	}
	timeout := cfg.DueDateSweepTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, timeout)
				marked, err := sweepOnce(tickCtx, st, time.Now().UTC())
				cancel()
				if err != nil {
					log.Printf("due date sweep error: %v", err)
					continue
				}
				if marked > 0 {
					log.Printf("due date sweep marked %d projects overdue", marked)
				}
			}
		}
	}()
}

func sweepOnce(ctx context.Context, st store.Store, now time.Time) (int, error) {
	classIDs, err := st.ListClassroomIDs(ctx)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, classID := range classIDs {
		projects, err := st.ListProjects(ctx, classID)
		if err != nil {
			return marked, err
		}
		for _, project := range projects {
			if project.Status == model.ProjectStatusOverdue {
				continue
			}
			due, ok := parseDueDate(project.DueDate)
			if !ok {
				continue
			}
			if !due.Before(now) {
				continue
			}
			if err := st.SetProjectStatus(ctx, classID, project.Name, model.ProjectStatusOverdue); err != nil {
				return marked, err
			}
			marked++
		}
	}
	return marked, nil
}

// parseDueDate accepts RFC 3339 timestamps and bare dates. A bare date is due
// at the end of that day.
func parseDueDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if due, err := time.Parse(time.RFC3339, value); err == nil {
		return due.UTC(), true
	}
	if due, err := time.Parse("2006-01-02", value); err == nil {
		return due.UTC().Add(24*time.Hour - time.Nanosecond), true
	}
	return time.Time{}, false
}
