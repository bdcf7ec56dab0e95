// +build linux

package timerfd

import (
	"testing"
	"time"
)

// TestOneShot：一次性定时器到期后读到 1 次到期
func TestOneShot(t *testing.T) {
	tfd, err := New()
	if err != nil {
		t.Fatal("New: ", err)
	}
	defer tfd.Close()

	if err := tfd.SetTime(50*time.Millisecond, 0); err != nil {
		t.Fatal("SetTime: ", err)
	}

	// Read 在阻塞模式下会等到定时器到期
	n, err := tfd.Read()
	if err != nil {
		t.Fatal("Read: ", err)
	}
	if n != 1 {
		t.Fatal("expect 1 expiration, but get ", n)
	}
}

// TestPeriodic：周期定时器累计到期次数
func TestPeriodic(t *testing.T) {
	tfd, err := New()
	if err != nil {
		t.Fatal("New: ", err)
	}
	defer tfd.Close()

	if err := tfd.SetTime(10*time.Millisecond, 10*time.Millisecond); err != nil {
		t.Fatal("SetTime: ", err)
	}

	time.Sleep(100 * time.Millisecond)

	n, err := tfd.Read()
	if err != nil {
		t.Fatal("Read: ", err)
	}
	if n < 2 {
		t.Fatal("expect at least 2 expirations, but get ", n)
	}
}
