package pins

import (
	"sync"
	"time"

	"github.com/menta2k/pinboard/pkg/geometry"
)

// Pin is one marker placed on an image. Position is expressed in original
// image pixel space, never screen space. Visual is an opaque renderable
// payload chosen by the host at placement time; the store never inspects it.
// Pins are immutable once created.
type Pin struct {
	Position geometry.Point
	Visual   any
}

// DefaultSettleDelay is how long the store waits after the last added pin
// before firing the settled notification.
const DefaultSettleDelay = time.Second

// Store holds the ordered sequence of placed pins for one image session.
// Insertion order is z-order: later pins draw on top. Mutation is expected
// to happen from a single event-dispatch context; the internal mutex exists
// only because the settle timer fires on a separate goroutine.
type Store struct {
	mu          sync.Mutex
	pins        []Pin
	style       *Pin
	onUpdate    func([]Pin)
	onSettled   func()
	settleDelay time.Duration
	settleTimer *time.Timer
}

// NewStore creates an empty pin store.
func NewStore() *Store {
	return &Store{settleDelay: DefaultSettleDelay}
}

// SetStyle selects the pin template used for subsequent taps. The template's
// position is ignored; only its visual payload is copied into new pins.
// Passing nil disables tap-to-add.
func (s *Store) SetStyle(style *Pin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style = style
}

// OnUpdate registers the callback invoked synchronously after each
// successful add or clear, with the full updated sequence.
func (s *Store) OnUpdate(fn func([]Pin)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// OnSettled registers a callback fired once no new pin has been added for
// the settle delay. Optional convenience; correctness never depends on it.
func (s *Store) OnSettled(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSettled = fn
}

// SetSettleDelay overrides the settle debounce interval.
func (s *Store) SetSettleDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.settleDelay = d
	}
}

// AddAt maps a screen-space tap into image pixel space and, when the mapped
// point lands within the image, appends a pin using the selected style.
// It is a no-op when no style is selected or the mapping is rejected: the
// sequence is unchanged and no callback fires. Returns whether a pin was added.
func (s *Store) AddAt(screen geometry.Point, container, display geometry.Size, imageWidth, imageHeight float64) bool {
	s.mu.Lock()
	if s.style == nil {
		s.mu.Unlock()
		return false
	}

	position, ok := geometry.MapToImage(screen, container, display, imageWidth, imageHeight)
	if !ok {
		s.mu.Unlock()
		return false
	}

	s.pins = append(s.pins, Pin{Position: position, Visual: s.style.Visual})
	snapshot := s.snapshotLocked()
	notify := s.onUpdate
	s.resetSettleTimerLocked()
	s.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
	return true
}

// Clear empties the sequence and fires exactly one update callback.
func (s *Store) Clear() {
	s.mu.Lock()
	s.pins = nil
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
	notify := s.onUpdate
	s.mu.Unlock()

	if notify != nil {
		notify(nil)
	}
}

// Pins returns a copy of the current sequence in z-order.
func (s *Store) Pins() []Pin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len reports the number of placed pins.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pins)
}

func (s *Store) snapshotLocked() []Pin {
	if len(s.pins) == 0 {
		return nil
	}
	out := make([]Pin, len(s.pins))
	copy(out, s.pins)
	return out
}

func (s *Store) resetSettleTimerLocked() {
	if s.onSettled == nil {
		return
	}
	if s.settleTimer != nil {
		s.settleTimer.Stop()
	}
	s.settleTimer = time.AfterFunc(s.settleDelay, func() {
		s.mu.Lock()
		fn := s.onSettled
		s.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}
