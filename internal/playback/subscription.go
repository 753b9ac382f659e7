package playback

import (
	"sync"

	"github.com/llehouerou/playcore/internal/callback"
	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/player"
	"github.com/llehouerou/playcore/internal/status"
)

const eventBufferSize = 16

// Source is the part of a player a subscription listens to.
type Source interface {
	State() status.State
	OnStateChanged(fn player.StateChangedFunc, tok *callback.Token)
	OnMediaStatusChanged(fn player.MediaStatusFunc, tok *callback.Token)
	OnEvent(fn player.EventFunc, tok *callback.Token)
	OnLoop(fn player.LoopFunc, tok *callback.Token)
	Done() <-chan struct{}
}

var _ Source = (*player.Player)(nil)

// Subscription provides event channels for a subscriber.
//
// Sends never block: when a channel buffer is full the event is dropped.
// Done is closed by Close or once the source is closed.
type Subscription struct {
	StateChanged  <-chan StateChange
	StatusChanged <-chan StatusChange
	Events        <-chan media.MediaEvent
	Errors        <-chan ErrorEvent
	Loops         <-chan LoopEvent
	Done          <-chan struct{}

	// Internal write channels
	stateCh  chan StateChange
	statusCh chan StatusChange
	eventCh  chan media.MediaEvent
	errorCh  chan ErrorEvent
	loopCh   chan LoopEvent
	doneCh   chan struct{}

	src       Source
	previous  status.State // only touched on the source's callback goroutine
	stateTok  callback.Token
	statusTok callback.Token
	eventTok  callback.Token
	loopTok   callback.Token
	closeOnce sync.Once
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:  make(chan StateChange, eventBufferSize),
		statusCh: make(chan StatusChange, eventBufferSize),
		eventCh:  make(chan media.MediaEvent, eventBufferSize),
		errorCh:  make(chan ErrorEvent, eventBufferSize),
		loopCh:   make(chan LoopEvent, eventBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.StatusChanged = s.statusCh
	s.Events = s.eventCh
	s.Errors = s.errorCh
	s.Loops = s.loopCh
	s.Done = s.doneCh
	return s
}

// Subscribe registers a subscription on src. Events never consume: other
// event subscribers of src still see every event.
func Subscribe(src Source) *Subscription {
	s := newSubscription()
	s.src = src
	s.previous = src.State()

	src.OnStateChanged(func(st status.State) {
		s.sendState(StateChange{Previous: s.previous, Current: st})
		s.previous = st
	}, &s.stateTok)
	src.OnMediaStatusChanged(s.sendStatus, &s.statusTok)
	src.OnEvent(func(e media.MediaEvent) bool {
		s.sendEvent(e)
		return false
	}, &s.eventTok)
	src.OnLoop(func(remaining int) {
		s.sendLoop(LoopEvent{Remaining: remaining})
	}, &s.loopTok)

	go func() {
		select {
		case <-src.Done():
			s.Close()
		case <-s.doneCh:
		}
	}()
	return s
}

// Close unregisters the subscription and closes Done. It is safe to call
// more than once, including from a callback of the source.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		if s.src != nil {
			s.src.OnStateChanged(nil, &s.stateTok)
			s.src.OnMediaStatusChanged(nil, &s.statusTok)
			s.src.OnEvent(nil, &s.eventTok)
			s.src.OnLoop(nil, &s.loopTok)
		}
		close(s.doneCh)
	})
}

// sendState sends a state change event (non-blocking).
func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendStatus sends a media status change (non-blocking).
func (s *Subscription) sendStatus(c StatusChange) {
	select {
	case s.statusCh <- c:
	default:
	}
}

// sendEvent sends a media event, and an error event too when it carries an
// error code (non-blocking).
func (s *Subscription) sendEvent(e media.MediaEvent) {
	select {
	case s.eventCh <- e:
	default:
	}
	if !e.IsError() {
		return
	}
	select {
	case s.errorCh <- ErrorEvent{Event: e}:
	default:
	}
}

// sendLoop sends a loop event (non-blocking).
func (s *Subscription) sendLoop(e LoopEvent) {
	select {
	case s.loopCh <- e:
	default:
	}
}
