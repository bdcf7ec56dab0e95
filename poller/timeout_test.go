package poller

import (
	"math"
	"testing"
)

// TestTimeout：超时值到 epoll_wait 参数的转换及 32 位截断
func TestTimeout(t *testing.T) {
	if Indefinite.milliseconds() != -1 {
		t.Fatal("expect -1, but get ", Indefinite.milliseconds())
	}
	if Immediate.milliseconds() != 0 {
		t.Fatal("expect 0, but get ", Immediate.milliseconds())
	}
	if Milliseconds(500).milliseconds() != 500 {
		t.Fatal("expect 500, but get ", Milliseconds(500).milliseconds())
	}
	// 超出 32 位可表示范围时按最大值处理
	if Milliseconds(math.MaxInt64).milliseconds() != math.MaxInt32 {
		t.Fatal("expect MaxInt32, but get ", Milliseconds(math.MaxInt64).milliseconds())
	}
	if Milliseconds(math.MaxInt32+1).milliseconds() != math.MaxInt32 {
		t.Fatal("expect MaxInt32, but get ", Milliseconds(math.MaxInt32+1).milliseconds())
	}
	// 负数按 0 处理
	if Milliseconds(-5).milliseconds() != 0 {
		t.Fatal("expect 0, but get ", Milliseconds(-5).milliseconds())
	}
}
