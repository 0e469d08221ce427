package schedule

import (
	"sync/atomic"
	"testing"
	"time"
)

const window = 20 * time.Millisecond

func TestScheduleRunsLatestOnce(t *testing.T) {
	d := New(window)
	var calls atomic.Int32
	got := make(chan int, 4)
	for i := 1; i <= 3; i++ {
		d.Schedule(func() {
			calls.Add(1)
			got <- i
		})
	}
	if !d.Pending() {
		t.Fatal("expected a pending task")
	}

	select {
	case v := <-got:
		if v != 3 {
			t.Fatalf("expected the last task to run, got %d", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
	time.Sleep(3 * window)
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected exactly one run, got %d", n)
	}
	if d.Pending() {
		t.Fatal("expected nothing pending after the run")
	}
}

func TestCancelDropsTask(t *testing.T) {
	d := New(window)
	var calls atomic.Int32
	d.Schedule(func() { calls.Add(1) })
	d.Cancel()
	if d.Pending() {
		t.Fatal("expected nothing pending after cancel")
	}
	time.Sleep(5 * window)
	if n := calls.Load(); n != 0 {
		t.Fatalf("expected cancelled task not to run, got %d runs", n)
	}
}

func TestFlushRunsImmediately(t *testing.T) {
	d := New(time.Hour)
	ran := false
	d.Schedule(func() { ran = true })
	if !d.Flush() || !ran {
		t.Fatal("expected flush to run the pending task")
	}
	if d.Flush() {
		t.Fatal("expected second flush to find nothing")
	}
}

func TestRescheduleAfterFire(t *testing.T) {
	d := New(window)
	done := make(chan struct{}, 2)
	d.Schedule(func() { done <- struct{}{} })
	<-done
	d.Schedule(func() { done <- struct{}{} })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second task never ran")
	}
	if d.Delay() != window {
		t.Fatalf("unexpected delay %v", d.Delay())
	}
}
