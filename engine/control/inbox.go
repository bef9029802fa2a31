package control

import (
	"log/slog"
	"sync"
)

// Handle identifies one file-pick session. The zero Handle is never live.
type Handle uint64

// FileInbox hands asynchronously picked file bytes to the loader. Only the most recent session
// is live; deliveries for any other handle are dropped.
type FileInbox interface {
	// Begin starts a session and ends any previous one.
	//
	// Returns:
	//   - Handle: the handle the picker passes back to Deliver
	Begin() Handle

	// Deliver forwards the bytes to the loader if h is the live session, then ends the session.
	// It is safe to call from any goroutine.
	//
	// Parameters:
	//   - h: the session handle
	//   - name: the picked file name
	//   - data: the file bytes
	//
	// Returns:
	//   - bool: true if the bytes were forwarded
	Deliver(h Handle, name string, data []byte) bool

	// Cancel ends the session if h is live. A stale handle is ignored.
	//
	// Parameters:
	//   - h: the session handle
	Cancel(h Handle)

	// Dropped returns the number of deliveries dropped as stale.
	//
	// Returns:
	//   - int: the count
	Dropped() int
}

// fileInbox is the implementation of the FileInbox interface.
type fileInbox struct {
	mu      *sync.Mutex
	next    Handle
	live    Handle
	dropped int
	load    func(name string, data []byte)
}

var _ FileInbox = &fileInbox{}

// NewFileInbox creates a FileInbox delivering to load.
//
// Parameters:
//   - load: receives the bytes of a live delivery, on the delivering goroutine
//
// Returns:
//   - FileInbox: the inbox
func NewFileInbox(load func(name string, data []byte)) FileInbox {
	return &fileInbox{mu: &sync.Mutex{}, load: load}
}

func (f *fileInbox) Begin() Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.live = f.next
	return f.live
}

func (f *fileInbox) Deliver(h Handle, name string, data []byte) bool {
	f.mu.Lock()
	if h == 0 || h != f.live {
		f.dropped++
		f.mu.Unlock()
		slog.Debug("dropping stale file delivery", "handle", uint64(h), "name", name)
		return false
	}
	f.live = 0
	f.mu.Unlock()

	if f.load != nil {
		f.load(name, data)
	}
	return true
}

func (f *fileInbox) Cancel(h Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h != 0 && h == f.live {
		f.live = 0
	}
}

func (f *fileInbox) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}
