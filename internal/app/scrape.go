package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"restou/internal/metrics"
	"restou/internal/scraper"
)

// ScrapeReport summarizes one scrape run.
type ScrapeReport struct {
	RunID    string           `json:"run_id"`
	Document scraper.Document `json:"document"`
	Created  int              `json:"created"`
	Updated  int              `json:"updated"`
	Failed   int              `json:"failed"`
	Duration time.Duration    `json:"-"`
}

// ScrapeMenus fetches the restaurant page, normalizes it and upserts one
// menu per (date, meal period) in document order.
//
// A fetch failure aborts the run before any write. A failing record is
// logged and counted while the remaining records are still saved; the
// returned error then joins every record failure alongside a complete
// report.
func (a *App) ScrapeMenus(ctx context.Context) (ScrapeReport, error) {
	start := a.now()
	report := ScrapeReport{RunID: uuid.NewString(), Document: scraper.Document{}}

	log.Printf("[%s] Fetching menu page...", report.RunID)
	page, err := a.crousClient.FetchMenuPage(ctx)
	if err != nil {
		a.notify(ctx, fmt.Sprintf("Scrape %s aborted: %v", report.RunID, err))
		return report, fmt.Errorf("failed to fetch menu page: %w", err)
	}

	doc, err := scraper.ExtractHTML(page)
	if err != nil {
		a.notify(ctx, fmt.Sprintf("Scrape %s aborted: %v", report.RunID, err))
		return report, err
	}
	report.Document = doc

	entries := scraper.Entries(doc)
	var errs []error
	for _, e := range entries {
		res, err := a.menus.Upsert(ctx, e)
		if err != nil {
			log.Printf("[%s] Failed to save menu %s/%s: %v", report.RunID, e.Date, e.Period, err)
			report.Failed++
			errs = append(errs, err)
			continue
		}
		if res.Created {
			report.Created++
		} else {
			report.Updated++
		}
	}
	report.Duration = a.now().Sub(start)

	log.Printf("[%s] Scrape complete: %d days, %d created, %d updated, %d failed in %s",
		report.RunID, len(doc), report.Created, report.Updated, report.Failed, report.Duration)

	a.recordRun(ctx, report)

	if len(errs) > 0 {
		return report, fmt.Errorf("%d of %d menus failed to save: %w", report.Failed, len(entries), errors.Join(errs...))
	}
	return report, nil
}

// recordRun stores the run metric and snapshot and sends the summary.
// Failures here never fail the run.
func (a *App) recordRun(ctx context.Context, report ScrapeReport) {
	if a.metricsStore != nil {
		err := a.metricsStore.Record(ctx, metrics.ScrapeRun{
			RunID:     report.RunID,
			Days:      len(report.Document),
			Created:   report.Created,
			Updated:   report.Updated,
			Failed:    report.Failed,
			LatencyMS: report.Duration.Milliseconds(),
			Timestamp: a.now(),
		})
		if err != nil {
			log.Printf("Warning: failed to record scrape metrics: %v", err)
		}
	}

	if a.snapshots != nil {
		if _, err := a.snapshots.Save(report.Document, a.now()); err != nil {
			log.Printf("Warning: failed to save scrape snapshot: %v", err)
		}
	}

	a.notify(ctx, fmt.Sprintf("Scrape %s: %d days, %d created, %d updated, %d failed",
		report.RunID, len(report.Document), report.Created, report.Updated, report.Failed))
}

func (a *App) notify(ctx context.Context, text string) {
	if err := a.notifier.Notify(ctx, text); err != nil {
		log.Printf("Warning: failed to send notification: %v", err)
	}
}
