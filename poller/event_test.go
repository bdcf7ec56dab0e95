// +build linux

package poller

import (
	"testing"
)

// TestEventKernelRoundTrip：用户事件与内核事件结构互转，
// 64 位标识的高低位都不能丢
func TestEventKernelRoundTrip(t *testing.T) {
	datas := []uint64{
		0,
		1,
		0xFFFFFFFF,
		0x100000000,
		0xDEADBEEFCAFEBABE,
		0xFFFFFFFFFFFFFFFF,
	}

	for _, data := range datas {
		kev := toKernel(EPOLLIN|EPOLLET, data)
		ev := fromKernel(&kev)
		if ev.Data != data {
			t.Fatalf("expect data %#x, but get %#x", data, ev.Data)
		}
		if ev.Events != EPOLLIN|EPOLLET {
			t.Fatalf("expect events %#x, but get %#x", EPOLLIN|EPOLLET, ev.Events)
		}
	}
}

// TestEventTypeContains：事件掩码的包含判断按位进行
func TestEventTypeContains(t *testing.T) {
	mask := EPOLLIN | EPOLLRDHUP | EPOLLET

	if !mask.Contains(EPOLLIN) {
		t.Fatal("expect mask contains EPOLLIN")
	}
	if !mask.Contains(EPOLLIN | EPOLLET) {
		t.Fatal("expect mask contains EPOLLIN|EPOLLET")
	}
	if mask.Contains(EPOLLOUT) {
		t.Fatal("expect mask not contains EPOLLOUT")
	}
	if mask.Contains(EPOLLIN | EPOLLOUT) {
		t.Fatal("expect mask not contains EPOLLIN|EPOLLOUT")
	}
}
