// +build linux

package poller

import (
	"testing"
	"time"
)

// TestWaker：其他协程调用 Wake 能让阻塞中的 Wait 返回，
// Drain 之后可读状态复位
func TestWaker(t *testing.T) {
	ep := newTestEpoll(t)

	w, err := NewWaker()
	if err != nil {
		t.Fatal("NewWaker: ", err)
	}
	defer w.Close()

	if err := ep.Add(w, EPOLLIN, uint64(w.Fd())); err != nil {
		t.Fatal("Add: ", err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = w.Wake()
	}()

	events := make([]Event, 1)
	n, err := ep.Wait(events, Milliseconds(2000))
	if err != nil {
		t.Fatal("Wait: ", err)
	}
	if n != 1 {
		t.Fatal("expect 1 event, but get ", n)
	}
	if events[0].Data != uint64(w.Fd()) {
		t.Fatal("expect data ", w.Fd(), ", but get ", events[0].Data)
	}

	if err := w.Drain(); err != nil {
		t.Fatal("Drain: ", err)
	}

	n, err = ep.Wait(events, Immediate)
	if err != nil {
		t.Fatal("Wait: ", err)
	}
	if n != 0 {
		t.Fatal("expect 0 events after drain, but get ", n)
	}
}
