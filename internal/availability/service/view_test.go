package service

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"shopbooking/pkg/logger"
	"shopbooking/pkg/model"
)

type fakeSub struct {
	date string
	ctx  context.Context
	ch   chan model.TakenSnapshot
}

type fakeSource struct {
	mu   sync.Mutex
	subs []*fakeSub
	err  error
}

func (f *fakeSource) WatchTaken(ctx context.Context, date string) (<-chan model.TakenSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	sub := &fakeSub{date: date, ctx: ctx, ch: make(chan model.TakenSnapshot)}
	f.subs = append(f.subs, sub)
	return sub.ch, nil
}

func (f *fakeSource) sub(i int) *fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[i]
}

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestView(src *fakeSource) (*View, chan State) {
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	states := make(chan State, 100)
	v := NewView(src, log, func(s State) { states <- s })
	v.now = func() time.Time { return t0 }
	return v, states
}

func waitFor(t *testing.T, states <-chan State, pred func(State) bool) State {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-states:
			if pred(s) {
				return s
			}
		case <-timeout:
			t.Fatal("timed out waiting for view state")
			return State{}
		}
	}
}

func isLive(s State) bool { return s.Live }

func defaults() *model.ShopSettings {
	return model.DefaultShopSettings("America/Toronto")
}

func TestView_SelectionClearedWhenTaken(t *testing.T) {
	src := &fakeSource{}
	v, states := newTestView(src)
	defer v.Close()

	if err := v.Watch(context.Background(), "2024-06-04", defaults(), ""); err != nil {
		t.Fatalf("watch: %v", err)
	}
	src.sub(0).ch <- model.TakenSnapshot{Date: "2024-06-04", Times: []string{"09:00"}, ReadAt: t0}
	waitFor(t, states, isLive)

	if err := v.Select("09:00"); !errors.Is(err, ErrNotBookable) {
		t.Errorf("expected ErrNotBookable for a taken time, got %v", err)
	}
	if err := v.Select("10:00"); err != nil {
		t.Fatalf("select: %v", err)
	}

	src.sub(0).ch <- model.TakenSnapshot{Date: "2024-06-04", Times: []string{"09:00", "10:00"}, ReadAt: t0}
	state := waitFor(t, states, func(s State) bool { return slices.Contains(s.Taken, "10:00") })

	if state.Selected != "" {
		t.Errorf("expected selection to be cleared, got %q", state.Selected)
	}
}

func TestView_StaleSubscriptionIsDiscarded(t *testing.T) {
	src := &fakeSource{}
	v, states := newTestView(src)
	defer v.Close()

	ctx := context.Background()
	if err := v.Watch(ctx, "2024-06-04", defaults(), ""); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if err := v.Watch(ctx, "2024-06-05", defaults(), ""); err != nil {
		t.Fatalf("watch: %v", err)
	}

	old := src.sub(0)
	select {
	case <-old.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("expected the first subscription to be cancelled")
	}

	old.ch <- model.TakenSnapshot{Date: "2024-06-04", Times: []string{"09:00", "10:00"}, ReadAt: t0}
	src.sub(1).ch <- model.TakenSnapshot{Date: "2024-06-05", Times: []string{"11:00"}, ReadAt: t0}
	state := waitFor(t, states, isLive)

	if state.Date != "2024-06-05" {
		t.Errorf("expected date 2024-06-05, got %s", state.Date)
	}
	if !slices.Equal(state.Taken, []string{"11:00"}) {
		t.Errorf("late snapshot of the old date leaked into the view: %v", state.Taken)
	}
}

func TestView_PendingReconciliation(t *testing.T) {
	src := &fakeSource{}
	v, states := newTestView(src)
	defer v.Close()

	if err := v.Watch(context.Background(), "2024-06-04", defaults(), ""); err != nil {
		t.Fatalf("watch: %v", err)
	}
	sub := src.sub(0)

	if err := v.MarkPending("11:00"); err != nil {
		t.Fatalf("mark pending: %v", err)
	}
	state := v.State()
	if !slices.Contains(state.Taken, "11:00") || !slices.Contains(state.Pending, "11:00") {
		t.Fatalf("expected 11:00 to show as pending and taken, got %+v", state)
	}
	if slices.Contains(state.Bookable, "11:00") {
		t.Errorf("pending time must not be bookable")
	}

	// Read before the reservation: the pending mark survives.
	sub.ch <- model.TakenSnapshot{Date: "2024-06-04", Times: []string{}, ReadAt: t0.Add(-time.Second)}
	state = waitFor(t, states, isLive)
	if !slices.Contains(state.Pending, "11:00") {
		t.Errorf("earlier snapshot must not drop the pending mark, got %+v", state.Pending)
	}

	// Read after and containing it: confirmed.
	sub.ch <- model.TakenSnapshot{Date: "2024-06-04", Times: []string{"11:00"}, ReadAt: t0.Add(time.Second)}
	state = waitFor(t, states, func(s State) bool { return len(s.Pending) == 0 })
	if !slices.Contains(state.Taken, "11:00") {
		t.Errorf("expected confirmed time to remain taken, got %v", state.Taken)
	}
}

func TestView_PendingDroppedWhenLaterSnapshotLacksIt(t *testing.T) {
	src := &fakeSource{}
	v, states := newTestView(src)
	defer v.Close()

	if err := v.Watch(context.Background(), "2024-06-04", defaults(), ""); err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := v.MarkPending("12:00"); err != nil {
		t.Fatalf("mark pending: %v", err)
	}
	src.sub(0).ch <- model.TakenSnapshot{Date: "2024-06-04", Times: []string{}, ReadAt: t0.Add(time.Second)}
	state := waitFor(t, states, isLive)

	if len(state.Pending) != 0 || slices.Contains(state.Taken, "12:00") {
		t.Errorf("expected pending mark to be dropped, got %+v", state)
	}
}

func TestView_SetSettingsRestartsSubscription(t *testing.T) {
	src := &fakeSource{}
	v, states := newTestView(src)
	defer v.Close()

	if err := v.Watch(context.Background(), "2024-06-04", defaults(), ""); err != nil {
		t.Fatalf("watch: %v", err)
	}
	src.sub(0).ch <- model.TakenSnapshot{Date: "2024-06-04", Times: []string{}, ReadAt: t0}
	waitFor(t, states, isLive)
	if err := v.Select("17:00"); err != nil {
		t.Fatalf("select: %v", err)
	}

	shorter := defaults()
	shorter.Hours.MonFri = model.DayBand{Open: "09:00", Close: "12:00"}
	if err := v.SetSettings(shorter); err != nil {
		t.Fatalf("set settings: %v", err)
	}

	state := v.State()
	if state.Selected != "" {
		t.Errorf("selection outside the new hours must be cleared, got %q", state.Selected)
	}
	if !slices.Equal(state.Candidates, []string{"09:00", "10:00", "11:00"}) {
		t.Errorf("unexpected candidates %v", state.Candidates)
	}
	select {
	case <-src.sub(0).ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("expected the old subscription to be cancelled")
	}
	if len(src.subs) != 2 {
		t.Errorf("expected a new subscription, got %d", len(src.subs))
	}
}

func TestView_ClosedDayDoesNotSubscribe(t *testing.T) {
	src := &fakeSource{}
	v, _ := newTestView(src)
	defer v.Close()

	if err := v.Watch(context.Background(), "2024-06-02", defaults(), ""); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if !v.State().Closed {
		t.Errorf("expected Sunday to be closed")
	}
	if len(src.subs) != 0 {
		t.Errorf("closed day should not open a subscription")
	}
}

func TestView_SubscribeError(t *testing.T) {
	src := &fakeSource{err: errors.New("change streams unsupported")}
	v, _ := newTestView(src)

	if err := v.Watch(context.Background(), "2024-06-04", defaults(), ""); err == nil {
		t.Fatal("expected error")
	}
	if v.State().Live {
		t.Errorf("view must not be live without a subscription")
	}
}

func TestView_SelectBeforeWatch(t *testing.T) {
	v, _ := newTestView(&fakeSource{})
	if err := v.Select("09:00"); !errors.Is(err, ErrNotWatching) {
		t.Errorf("expected ErrNotWatching, got %v", err)
	}
}

func TestView_ExcludeAppliesOnlyToItsOwnDate(t *testing.T) {
	src := &fakeSource{}
	v, states := newTestView(src)
	defer v.Close()

	ctx := context.Background()
	if err := v.Watch(ctx, "2024-06-04", defaults(), "2024-06-04_0900"); err != nil {
		t.Fatalf("watch: %v", err)
	}
	src.sub(0).ch <- model.TakenSnapshot{Date: "2024-06-04", Times: []string{"09:00"}, ReadAt: t0}
	state := waitFor(t, states, isLive)

	if !slices.Contains(state.Bookable, "09:00") {
		t.Errorf("own slot should stay bookable on its date, got %v", state.Bookable)
	}

	if err := v.Watch(ctx, "2024-06-05", defaults(), "2024-06-04_0900"); err != nil {
		t.Fatalf("watch: %v", err)
	}
	src.sub(1).ch <- model.TakenSnapshot{Date: "2024-06-05", Times: []string{"09:00"}, ReadAt: t0}
	state = waitFor(t, states, func(s State) bool { return s.Live && s.Date == "2024-06-05" })

	if slices.Contains(state.Bookable, "09:00") {
		t.Errorf("09:00 held by another booking on 2024-06-05 must not be bookable, got %v", state.Bookable)
	}
	if !slices.Contains(state.Taken, "09:00") {
		t.Errorf("expected 09:00 taken on 2024-06-05, got %v", state.Taken)
	}
}

func TestView_MarkPendingRejectsUnofferedTimes(t *testing.T) {
	src := &fakeSource{}
	v, _ := newTestView(src)
	defer v.Close()

	if err := v.MarkPending("10:00"); !errors.Is(err, ErrNotWatching) {
		t.Errorf("expected ErrNotWatching before watch, got %v", err)
	}
	if err := v.Watch(context.Background(), "2024-06-04", defaults(), ""); err != nil {
		t.Fatalf("watch: %v", err)
	}

	for _, clock := range []string{"", "junk", "25:00", "09:30", "18:00"} {
		t.Run(clock, func(t *testing.T) {
			if err := v.MarkPending(clock); !errors.Is(err, ErrNotOffered) {
				t.Errorf("expected ErrNotOffered, got %v", err)
			}
		})
	}

	state := v.State()
	if len(state.Pending) != 0 {
		t.Errorf("rejected times must not be pending, got %v", state.Pending)
	}
}
