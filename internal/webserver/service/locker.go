package service

import "sync"

// An UploadLocker grants exclusive access to an upload identifier.
type UploadLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewUploadLocker returns a new UploadLocker.
func NewUploadLocker() *UploadLocker {
	return &UploadLocker{
		held: map[string]struct{}{},
	}
}

// TryLock acquires the lock of upload without waiting.
func (l *UploadLocker) TryLock(upload string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[upload]; ok {
		return false
	}
	l.held[upload] = struct{}{}
	return true
}

// Unlock releases the lock of upload.
func (l *UploadLocker) Unlock(upload string) {
	l.mu.Lock()
	delete(l.held, upload)
	l.mu.Unlock()
}
