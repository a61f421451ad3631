package playback

import "sync"

// Player is the minimal surface of a video player the session depends on.
type Player interface {
	SeekTo(seconds float64)
	CurrentTime() float64
	OnTimeUpdate(fn func(seconds float64))
	OnReady(fn func())
}

// RemotePlayer is a Player whose state lives in a client (a browser
// embedding the video). The client reports time and readiness; seeks are
// queued here until the client collects them.
type RemotePlayer struct {
	mu      sync.Mutex
	current float64
	ready   bool
	seek    *float64
	onTime  []func(float64)
	onReady []func()
}

// NewRemotePlayer returns a player that has not reported anything yet.
func NewRemotePlayer() *RemotePlayer { return &RemotePlayer{} }

// SeekTo records a seek for the client. Only the latest one is kept.
func (p *RemotePlayer) SeekTo(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seek = &seconds
	p.current = seconds
}

// CurrentTime returns the last reported (or sought) position.
func (p *RemotePlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// OnTimeUpdate registers a time-update listener.
func (p *RemotePlayer) OnTimeUpdate(fn func(float64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onTime = append(p.onTime, fn)
}

// OnReady registers a readiness listener. It fires immediately when the
// client already reported ready.
func (p *RemotePlayer) OnReady(fn func()) {
	p.mu.Lock()
	ready := p.ready
	p.onReady = append(p.onReady, fn)
	p.mu.Unlock()
	if ready {
		fn()
	}
}

// MarkReady is called when the client's player finished loading.
// Listeners run once; repeated calls are ignored.
func (p *RemotePlayer) MarkReady() {
	p.mu.Lock()
	if p.ready {
		p.mu.Unlock()
		return
	}
	p.ready = true
	listeners := append([]func(){}, p.onReady...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Ready reports whether the client announced readiness.
func (p *RemotePlayer) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// ReportTime stores the client's position and notifies listeners. Listeners
// run without the lock held so they may call SeekTo.
func (p *RemotePlayer) ReportTime(seconds float64) {
	p.mu.Lock()
	p.current = seconds
	listeners := append([]func(float64){}, p.onTime...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(seconds)
	}
}

// TakeSeek hands the pending seek to the client and clears it.
func (p *RemotePlayer) TakeSeek() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seek == nil {
		return 0, false
	}
	s := *p.seek
	p.seek = nil
	return s, true
}

var _ Player = (*RemotePlayer)(nil)
