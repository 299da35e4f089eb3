package lock

import (
	"path/filepath"
	"sync"
	"testing"
)

func TestKeyedMutex_LockUnlock(t *testing.T) {
	m := NewKeyedMutex()

	m.Lock("inst-1")
	m.Unlock("inst-1")

	m.Lock("inst-1")
	m.Unlock("inst-1")

	if n := m.Len(); n != 0 {
		t.Errorf("expected no retained keys, got %d", n)
	}
}

func TestKeyedMutex_DifferentKeys(t *testing.T) {
	m := NewKeyedMutex()
	done := make(chan struct{})

	m.Lock("inst-1")
	go func() {
		m.Lock("inst-2")
		m.Unlock("inst-2")
		close(done)
	}()

	<-done
	m.Unlock("inst-1")
}

func TestKeyedMutex_Concurrent(t *testing.T) {
	m := NewKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.With("shared", func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Errorf("expected counter=100, got %d", counter)
	}
	if n := m.Len(); n != 0 {
		t.Errorf("expected no retained keys, got %d", n)
	}
}

func TestKeyedMutex_UnlockUnknownPanics(t *testing.T) {
	m := NewKeyedMutex()
	defer func() {
		if recover() == nil {
			t.Error("expected panic on unlock of unknown key")
		}
	}()
	m.Unlock("never-locked")
}

func TestFileLock_DoubleLockRejected(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "serve.lock")

	fl1 := NewFileLock(lockPath)
	if err := fl1.TryLock(); err != nil {
		t.Fatalf("first TryLock failed: %v", err)
	}

	fl2 := NewFileLock(lockPath)
	if err := fl2.TryLock(); err == nil {
		fl2.Unlock()
		t.Fatal("expected second TryLock to fail")
	}

	if err := fl1.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	fl3 := NewFileLock(lockPath)
	if err := fl3.TryLock(); err != nil {
		t.Fatalf("TryLock after Unlock failed: %v", err)
	}
	fl3.Unlock()
}
