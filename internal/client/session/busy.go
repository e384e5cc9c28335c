package session

import "sync"

// BusyFlag is true while at least one operation holds it. It is a UI hint,
// not a lock: overlapping operations are allowed.
type BusyFlag struct {
	mu       sync.Mutex
	inFlight int
	signal   *Signal[bool]
}

func NewBusyFlag() *BusyFlag {
	return &BusyFlag{signal: NewSignal(false)}
}

// Acquire raises the flag. The returned release lowers it once, however many
// times it is called; use it with defer so every exit path clears the flag.
// Subscribers are notified under the flag's lock and must not acquire it.
func (b *BusyFlag) Acquire() (release func()) {
	b.mu.Lock()
	b.inFlight++
	if b.inFlight == 1 {
		b.signal.Set(true)
	}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.inFlight--
			if b.inFlight == 0 {
				b.signal.Set(false)
			}
		})
	}
}

func (b *BusyFlag) Busy() bool {
	return b.signal.Get()
}

func (b *BusyFlag) Subscribe(fn func(bool)) (unsubscribe func()) {
	return b.signal.Subscribe(fn)
}
