package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/ourspace/internal/logging"
	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/notify"
)

// DefaultInterval is how often the feed is reloaded from storage.
const DefaultInterval = 5 * time.Second

// pollTimeout is the maximum time allowed for a single poll.
const pollTimeout = 10 * time.Second

// FeedResultMsg is a tea.Msg sent after every poll of the feed.
type FeedResultMsg struct {
	Notifications []model.Notification
	Unread        int
	// Toasts holds the events that started popping up because of this
	// poll. It is empty when the viewer has notifications turned off.
	Toasts   []model.Notification
	Enabled  bool
	PolledAt time.Time
}

// Poller reloads a Feed on an interval so writes made by the partner
// show up without any action from the viewer.
type Poller struct {
	feed    *notify.Feed
	prefs   *notify.Preferences
	toaster *notify.Toaster
	logger  *zap.Logger
	now     func() time.Time

	interval   time.Duration
	resultCh   chan FeedResultMsg
	triggerCh  chan struct{}
	intervalCh chan time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	mu       gosync.Mutex
	running  bool
	stopped  bool
	lastPoll time.Time
}

// New creates a Poller. A non-positive interval uses DefaultInterval.
func New(
	feed *notify.Feed,
	prefs *notify.Preferences,
	toaster *notify.Toaster,
	logger *zap.Logger,
	interval time.Duration,
) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if toaster == nil {
		toaster = notify.NewToaster(0, 0, nil)
	}
	return &Poller{
		feed:       feed,
		prefs:      prefs,
		toaster:    toaster,
		logger:     logging.OrNop(logger).Named("poller"),
		now:        time.Now,
		interval:   interval,
		resultCh:   make(chan FeedResultMsg, 16),
		triggerCh:  make(chan struct{}, 1),
		intervalCh: make(chan time.Duration, 1),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a tea.Cmd that waits
// for the first result. The first poll happens immediately. Start is a
// no-op once the poller is running or has been stopped.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running || p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.waitForResult()
}

// Stop halts polling and waits for the goroutine to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.stopped = true
		p.mu.Unlock()
		return
	}
	p.running = false
	p.stopped = true
	close(p.stopCh)
	p.mu.Unlock()

	<-p.doneCh
}

// Refresh asks for an immediate poll. Requests made while one is already
// pending are merged.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// SetInterval changes the polling interval. It takes effect right away.
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	// Keep only the newest request.
	select {
	case <-p.intervalCh:
	default:
	}
	select {
	case p.intervalCh <- d:
	default:
	}
}

// SetToastTimings forwards new toast timings to the toaster.
func (p *Poller) SetToastTimings(window, ttl time.Duration) {
	p.toaster.SetTimings(window, ttl)
}

// Toaster returns the toaster fed by this poller.
func (p *Poller) Toaster() *notify.Toaster {
	return p.toaster
}

// LastPoll returns when the feed was last reloaded.
func (p *Poller) LastPoll() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPoll
}

// Results exposes the result channel for callers outside Bubble Tea.
func (p *Poller) Results() <-chan FeedResultMsg {
	return p.resultCh
}

func (p *Poller) loop() {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.poll()
		case <-p.triggerCh:
			p.poll()
		case d := <-p.intervalCh:
			p.logger.Debug("poll interval changed", zap.Duration("interval", d))
			ticker.Reset(d)
		}
	}
}

// poll reloads the feed and publishes the result.
func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	view := p.feed.Poll(ctx)
	enabled := p.prefs == nil || p.prefs.Enabled(ctx, p.feed.Viewer())

	var toasts []model.Notification
	if enabled {
		toasts = p.toaster.Observe(view)
	}

	polledAt := p.now()
	p.mu.Lock()
	p.lastPoll = polledAt
	p.mu.Unlock()

	p.sendResult(FeedResultMsg{
		Notifications: view,
		Unread:        notify.CountUnread(view),
		Toasts:        toasts,
		Enabled:       enabled,
		PolledAt:      polledAt,
	})
}

// sendResult sends a FeedResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg FeedResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		p.logger.Debug("dropping feed result, consumer is behind")
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return result
		case <-p.doneCh:
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll.
// Call it after handling a FeedResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
