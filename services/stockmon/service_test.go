package stockmon

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"stockmon/lib/notify"
	"stockmon/lib/scrapers/storefront"
	"stockmon/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const inStockPage = `<!DOCTYPE html>
<html><body>
	<a class="add-to-cart" disabled="0" href="#">Add to Cart</a>
	<span class="price">₹275.00</span>
</body></html>`

const outOfStockPage = `<!DOCTYPE html>
<html><body>
	<p>This product is currently out of stock.</p>
</body></html>`

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (f *fakeNotifier) Name() string { return "fake" }

func (f *fakeNotifier) Send(_ context.Context, e notify.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

type testShop struct {
	mu    sync.Mutex
	pages map[string]string
}

func (s *testShop) set(path, page string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[path] = page
}

func (s *testShop) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		page, ok := s.pages[r.URL.Path]
		s.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	})
}

func setupService(t *testing.T, ts *httptest.Server, n notify.Notifier) (Service, StateStore) {
	cleanup := telemetry.SetupForTesting(t, "test:services/stockmon")
	t.Cleanup(cleanup)

	fetcher, err := storefront.NewClient(storefront.ClientOptions{PlainTransport: true})
	if err != nil {
		t.Fatal(err)
	}

	store := NewStateStore(filepath.Join(t.TempDir(), "stock_state.json"))
	svc := NewService(Options{
		Products: []ProductConfig{
			{Name: "Butter 500g", URL: ts.URL + "/butter", Selector: "add-to-cart", PriceSelector: ".price"},
			{Name: "Milk Powder", URL: ts.URL + "/milk-powder", Selector: "add-to-cart"},
		},
		Fetcher:   fetcher,
		Notifiers: []notify.Notifier{n},
		Store:     store,
		Delay:     time.Millisecond,
	})
	return svc, store
}

func TestRunNotifiesOnFlips(t *testing.T) {
	shop := &testShop{pages: map[string]string{
		"/butter":      inStockPage,
		"/milk-powder": outOfStockPage,
	}}
	ts := httptest.NewServer(shop.handler())
	defer ts.Close()

	n := &fakeNotifier{}
	svc, store := setupService(t, ts, n)
	ctx := context.Background()

	// first run ever: butter is in stock, which differs from the
	// implicit default of unavailable, so it notifies. milk powder is
	// out of stock and matches the default, so it stays quiet.
	summary := svc.Run(ctx)
	require.Equal(t, 2, summary.Checked)
	require.Equal(t, 1, summary.Changes)
	require.Len(t, n.events, 1)
	require.Equal(t, "Butter 500g", n.events[0].Product)
	require.Equal(t, "Available", n.events[0].StatusLabel())
	require.Equal(t, "₹275.00", n.events[0].Price)

	// unchanged state, no notifications
	summary = svc.Run(ctx)
	require.Equal(t, 0, summary.Changes)
	require.Len(t, n.events, 1)

	// butter flips back out of stock
	shop.set("/butter", outOfStockPage)
	summary = svc.Run(ctx)
	require.Equal(t, 1, summary.Changes)
	require.Len(t, n.events, 2)
	require.Equal(t, "Out of Stock", n.events[1].StatusLabel())

	state := store.Load()
	require.Equal(t, 3, state.RunCount)
	require.Equal(t, 2, state.NotificationsSent)
	require.False(t, state.Products["Butter 500g"].Available)
	require.NotEmpty(t, state.RunID)
	require.NotEmpty(t, state.Products["Butter 500g"].LastChecked)
}

func TestRunRecordsFetchErrors(t *testing.T) {
	shop := &testShop{pages: map[string]string{
		"/butter": inStockPage,
		// no /milk-powder page, the shop 404s
	}}
	ts := httptest.NewServer(shop.handler())
	defer ts.Close()

	n := &fakeNotifier{}
	svc, store := setupService(t, ts, n)

	summary := svc.Run(context.Background())
	require.Equal(t, 2, summary.Checked)

	state := store.Load()
	obs := state.Products["Milk Powder"]
	require.False(t, obs.Available)
	require.Equal(t, http.StatusNotFound, obs.StatusCode)
	require.NotEmpty(t, obs.Error)
}

func TestRunSendFailureDoesNotAbort(t *testing.T) {
	shop := &testShop{pages: map[string]string{
		"/butter":      inStockPage,
		"/milk-powder": inStockPage,
	}}
	ts := httptest.NewServer(shop.handler())
	defer ts.Close()

	n := &fakeNotifier{err: fmt.Errorf("transport down")}
	svc, store := setupService(t, ts, n)

	summary := svc.Run(context.Background())
	require.Equal(t, 2, summary.Changes)
	require.Equal(t, 2, summary.NotificationsFailed)
	require.Equal(t, 0, summary.NotificationsSent)

	// failures are recorded, the run still completes and persists
	state := store.Load()
	require.Equal(t, 1, state.RunCount)
	require.True(t, state.Products["Butter 500g"].Available)
}

func TestRunSkipsUnconfiguredNotifiers(t *testing.T) {
	shop := &testShop{pages: map[string]string{
		"/butter":      inStockPage,
		"/milk-powder": outOfStockPage,
	}}
	ts := httptest.NewServer(shop.handler())
	defer ts.Close()

	svc, _ := setupService(t, ts, notify.NewTelegram(notify.TelegramConfig{}))

	summary := svc.Run(context.Background())
	require.Equal(t, 1, summary.Changes)
	require.Equal(t, 1, summary.NotificationsSkipped)
	require.Equal(t, 0, summary.NotificationsSent)
}

func TestRunFlushesPartialStateOnCancel(t *testing.T) {
	shop := &testShop{pages: map[string]string{
		"/butter":      inStockPage,
		"/milk-powder": inStockPage,
	}}
	ts := httptest.NewServer(shop.handler())
	defer ts.Close()

	n := &fakeNotifier{}
	svc, store := setupService(t, ts, n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := svc.Run(ctx)
	require.Equal(t, 0, summary.Checked)

	// metadata still persisted on the way out
	state := store.Load()
	require.Equal(t, 1, state.RunCount)
	require.Empty(t, state.Products)
}
