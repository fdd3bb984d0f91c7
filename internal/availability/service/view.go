package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"shopbooking/pkg/logger"
	"shopbooking/pkg/model"
	"shopbooking/pkg/slots"
)

var (
	ErrNotWatching = errors.New("no date is being watched")
	ErrNotBookable = errors.New("time is not bookable")
	ErrNotOffered  = errors.New("time is not offered on the watched date")
)

// TakenSource streams the taken set of a date until ctx is cancelled.
type TakenSource interface {
	WatchTaken(ctx context.Context, date string) (<-chan model.TakenSnapshot, error)
}

// View owns the availability state of one client: the watched date, its
// candidates, the live taken set, times reserved locally but not yet seen in
// a snapshot, and the current selection. The selection is cleared whenever it
// stops being bookable.
//
// onChange is called with the new state after every change, while the view's
// lock is held; it must not call back into the View.
type View struct {
	source   TakenSource
	log      *logger.Logger
	onChange func(State)
	now      func() time.Time

	mu       sync.Mutex
	parent   context.Context
	date     string
	settings *model.ShopSettings
	exclude  string
	taken    []string
	pending  map[string]time.Time
	selected string
	live     bool

	epoch  uint64
	cancel context.CancelFunc
}

func NewView(source TakenSource, log *logger.Logger, onChange func(State)) *View {
	if onChange == nil {
		onChange = func(State) {}
	}
	return &View{
		source:   source,
		log:      log,
		onChange: onChange,
		now:      time.Now,
		pending:  map[string]time.Time{},
	}
}

// Watch switches the view to date and subscribes to its taken set. Any earlier
// subscription is torn down and its late snapshots are discarded.
func (v *View) Watch(ctx context.Context, date string, settings *model.ShopSettings, exclude string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.parent = ctx
	v.date = date
	v.settings = settings
	v.exclude = exclude
	v.taken = nil
	v.pending = map[string]time.Time{}
	v.selected = ""
	return v.resubscribeLocked()
}

// SetSettings re-derives the candidates under new shop hours. The subscription
// is restarted because its governing configuration changed.
func (v *View) SetSettings(settings *model.ShopSettings) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.settings = settings
	if v.date == "" {
		return nil
	}
	return v.resubscribeLocked()
}

func (v *View) resubscribeLocked() error {
	v.epoch++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.live = false

	state := v.stateLocked()
	if state.Closed {
		v.selected = ""
		v.onChange(v.stateLocked())
		return nil
	}

	subCtx, cancel := context.WithCancel(v.parent)
	ch, err := v.source.WatchTaken(subCtx, v.date)
	if err != nil {
		cancel()
		v.onChange(v.stateLocked())
		return err
	}
	v.cancel = cancel

	go v.consume(v.epoch, ch)
	v.onChange(v.stateLocked())
	return nil
}

func (v *View) consume(epoch uint64, ch <-chan model.TakenSnapshot) {
	for snap := range ch {
		v.apply(epoch, snap)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if epoch != v.epoch {
		return
	}
	v.live = false
	v.log.Debug("Availability subscription ended", "date", v.date)
	v.onChange(v.stateLocked())
}

func (v *View) apply(epoch uint64, snap model.TakenSnapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if epoch != v.epoch || snap.Date != v.date {
		return
	}

	v.taken = snap.Times
	v.live = true
	for t, markedAt := range v.pending {
		if slices.Contains(snap.Times, t) || snap.ReadAt.After(markedAt) {
			delete(v.pending, t)
		}
	}

	v.revalidateLocked()
	v.onChange(v.stateLocked())
}

// Select makes clock the current selection. Only bookable times can be selected.
func (v *View) Select(clock string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.date == "" {
		return ErrNotWatching
	}
	if clock != "" && !slices.Contains(v.stateLocked().Bookable, clock) {
		return ErrNotBookable
	}
	v.selected = clock
	v.onChange(v.stateLocked())
	return nil
}

// MarkPending records a time the client just reserved so it shows as taken
// before the store reports it. The next snapshot read after this call either
// confirms it or drops it. Only candidates of the watched date are accepted.
func (v *View) MarkPending(clock string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.date == "" {
		return ErrNotWatching
	}
	if !slots.ValidClock(clock) || !slices.Contains(slots.Generate(v.date, v.settings), clock) {
		return ErrNotOffered
	}
	v.pending[clock] = v.now()
	v.revalidateLocked()
	v.onChange(v.stateLocked())
	return nil
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

// Close tears down the subscription. Snapshots still in flight are discarded.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.epoch++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.live = false
}

func (v *View) revalidateLocked() {
	if v.selected == "" {
		return
	}
	if !slices.Contains(v.stateLocked().Bookable, v.selected) {
		v.selected = ""
	}
}

func (v *View) stateLocked() State {
	taken := make([]string, 0, len(v.taken)+len(v.pending))
	taken = append(taken, v.taken...)
	pending := make([]string, 0, len(v.pending))
	for t := range v.pending {
		pending = append(pending, t)
		if !slices.Contains(taken, t) {
			taken = append(taken, t)
		}
	}
	sort.Strings(taken)
	sort.Strings(pending)

	state := Compute(v.date, v.settings, taken, v.exclude)
	state.Pending = pending
	state.Selected = v.selected
	state.Live = v.live
	return state
}

// Settings returns the shop settings the view currently derives candidates from.
func (v *View) Settings() *model.ShopSettings {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.settings
}
