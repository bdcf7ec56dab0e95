package poller

import "math"

// Timeout：Wait 的等待超时，单位毫秒
type Timeout int64

const (
	// Indefinite：无限等待，直到有事件就绪或出错才返回
	Indefinite Timeout = -1
	// Immediate：立即返回，即使没有任何事件就绪
	Immediate Timeout = 0
)

// Milliseconds：等待最多 ms 毫秒。
// 负数按 0 处理，无限等待只能通过 Indefinite 表示
func Milliseconds(ms int64) Timeout {
	if ms < 0 {
		ms = 0
	}
	return Timeout(ms)
}

// milliseconds：转换为 epoll_wait 的超时参数。
// 内核接口为 32 位有符号毫秒数，超出部分截断到 math.MaxInt32
func (t Timeout) milliseconds() int {
	if t < 0 {
		return -1
	}
	if t > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(t)
}
