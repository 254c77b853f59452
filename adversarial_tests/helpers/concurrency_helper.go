package helpers

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// GoroutineSnapshot captures the state of goroutines at a point in time
type GoroutineSnapshot struct {
	Count     int
	Timestamp time.Time
}

// TakeGoroutineSnapshot captures current goroutine count
func TakeGoroutineSnapshot() *GoroutineSnapshot {
	return &GoroutineSnapshot{
		Count:     runtime.NumGoroutine(),
		Timestamp: time.Now(),
	}
}

// WaitForGoroutineCleanup waits for goroutines to clean up, retrying with GC
func WaitForGoroutineCleanup(maxWait time.Duration, targetCount int, tolerance int) (int, error) {
	deadline := time.Now().Add(maxWait)

	for time.Now().Before(deadline) {
		current := runtime.NumGoroutine()
		if current-targetCount <= tolerance {
			return current, nil
		}
		runtime.GC()
		time.Sleep(50 * time.Millisecond)
	}

	final := runtime.NumGoroutine()
	return final, fmt.Errorf("goroutines did not clean up within %v: expected %d±%d, got %d",
		maxWait, targetCount, tolerance, final)
}

// DeadlockDetector fails a function that does not return in time
type DeadlockDetector struct {
	timeout time.Duration
}

// NewDeadlockDetector creates a new deadlock detector
func NewDeadlockDetector(timeout time.Duration) *DeadlockDetector {
	return &DeadlockDetector{timeout: timeout}
}

// Run executes fn and reports a deadlock if it outlives the timeout
func (dd *DeadlockDetector) Run(fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(dd.timeout):
		return fmt.Errorf("possible deadlock: operation did not complete within %v", dd.timeout)
	}
}

// startGate releases all goroutines at once
type startGate struct {
	signal  chan struct{}
	waiting atomic.Int32
	target  int32
	once    sync.Once
}

func (g *startGate) wait() {
	if g.waiting.Add(1) >= g.target {
		g.once.Do(func() { close(g.signal) })
	}
	<-g.signal
}

// CoordinatedStart runs numOps operations that all begin at the same moment
// and collects their errors.
func CoordinatedStart(numOps int, opFunc func(id int) error) []error {
	gate := &startGate{signal: make(chan struct{}), target: int32(numOps)}
	errs := make(chan error, numOps)
	var wg sync.WaitGroup

	wg.Add(numOps)
	for i := 0; i < numOps; i++ {
		go func(id int) {
			defer wg.Done()
			gate.wait()
			if err := opFunc(id); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	var errList []error
	for err := range errs {
		errList = append(errList, err)
	}
	return errList
}
