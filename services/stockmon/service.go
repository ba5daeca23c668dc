// Package stockmon runs one monitoring pass over the configured products:
// fetch, classify, diff against the state persisted by the previous run,
// notify on flips, persist. strictly sequential, nothing in here is fatal.
package stockmon

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stockmon/lib/availability"
	"stockmon/lib/notify"
	"stockmon/lib/scrapers/storefront"
	"stockmon/lib/timezone"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/stockmon")

type Fetcher interface {
	FetchPage(ctx context.Context, url string) (storefront.Page, error)
}

type Service struct {
	products  []ProductConfig
	fetcher   Fetcher
	notifiers []notify.Notifier
	store     StateStore
	delay     time.Duration
}

type Options struct {
	Products  []ProductConfig
	Fetcher   Fetcher
	Notifiers []notify.Notifier
	Store     StateStore
	Delay     time.Duration
}

func NewService(opts Options) Service {
	return Service{
		products:  opts.Products,
		fetcher:   opts.Fetcher,
		notifiers: opts.Notifiers,
		store:     opts.Store,
		delay:     opts.Delay,
	}
}

type Summary struct {
	Checked              int
	Changes              int
	NotificationsSent    int
	NotificationsFailed  int
	NotificationsSkipped int
}

// Run executes one pass. change detection always compares against the
// state loaded at the start of the run, never against updates made
// earlier in the same run. a cancelled ctx stops the loop early but the
// state accumulated so far is still persisted.
func (s Service) Run(ctx context.Context) Summary {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	state := s.store.Load()
	previous := state.Products
	current := make(map[string]Observation, len(s.products))

	var summary Summary
	for i, p := range s.products {
		if ctx.Err() != nil {
			slog.Warn("run interrupted, flushing partial state", "checked", summary.Checked)
			break
		}

		obs := s.checkProduct(ctx, p)
		current[p.Name] = obs
		summary.Checked++

		// a product never seen before counts as previously unavailable,
		// so a first-ever in-stock observation does notify
		if previous[p.Name].Available != obs.Available {
			summary.Changes++
			event := notify.Event{
				Product:   p.Name,
				URL:       p.URL,
				Available: obs.Available,
				Price:     obs.Price,
				CheckedAt: timezone.Now(),
			}
			slog.Info("status changed", "product", p.Name, "status", event.StatusLabel())

			sent, failed, skipped := s.dispatch(ctx, event)
			summary.NotificationsSent += sent
			summary.NotificationsFailed += failed
			summary.NotificationsSkipped += skipped
		}

		if i < len(s.products)-1 {
			s.pause(ctx)
		}
	}

	// merge after the loop so the diff above never saw partial updates
	for name, obs := range current {
		state.Products[name] = obs
	}
	if runID, err := random.String(8); err == nil {
		state.RunID = runID
	}
	state.LastRun = timezone.Now().Format(time.RFC3339)
	state.RunCount++
	state.NotificationsSent += summary.NotificationsSent

	if err := s.store.Save(state); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist state")
		slog.Error("failed to persist state", "err", err)
	}

	if summary.Changes == 0 {
		slog.Info("no status changes detected", "checked", summary.Checked)
	}
	return summary
}

func (s Service) checkProduct(ctx context.Context, p ProductConfig) Observation {
	ctx, span := tracer.Start(ctx, "checkProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product", p.Name))

	checkedAt := timezone.Now().Format(time.RFC3339)

	page, err := s.fetcher.FetchPage(ctx, p.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		slog.Error("failed to fetch product page", "product", p.Name, "err", err)
		return Observation{
			Available:   false,
			LastChecked: checkedAt,
			StatusCode:  page.StatusCode,
			Error:       err.Error(),
		}
	}

	result := availability.Classify(page.Body, p.Selector, p.PriceSelector)
	slog.Info("checked product",
		"product", p.Name,
		"available", result.Available,
		"price", result.Price,
		"status_code", page.StatusCode,
	)
	return Observation{
		Available:   result.Available,
		Price:       result.Price,
		LastChecked: checkedAt,
		StatusCode:  page.StatusCode,
	}
}

// dispatch fans one event out to every transport. failures and missing
// credentials are recorded, not raised.
func (s Service) dispatch(ctx context.Context, e notify.Event) (sent, failed, skipped int) {
	for _, n := range s.notifiers {
		err := n.Send(ctx, e)
		switch {
		case errors.Is(err, notify.ErrNotConfigured):
			slog.Warn("notifier not configured, skipping", "notifier", n.Name())
			skipped++
		case err != nil:
			slog.Error("failed to send notification", "notifier", n.Name(), "product", e.Product, "err", err)
			failed++
		default:
			sent++
		}
	}
	return sent, failed, skipped
}

func (s Service) pause(ctx context.Context) {
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
