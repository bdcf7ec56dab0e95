// +build linux

package timerfd

import (
	"encoding/binary"
	"time"

	"golang.org/x/sys/unix"
)

// Timerfd：对 timerfd 的简单封装，到期时 fd 变为可读，
// 可以直接注册到 poller.Epoll 或 eventloop.EventLoop 上。
// 使用 CLOCK_MONOTONIC 时钟
type Timerfd struct {
	fd  int
	buf []byte // Read 读取到期次数用的 8 字节缓冲区
}

// New：创建一个 Timerfd，初始状态未武装
func New() (*Timerfd, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, 0)
	if err != nil {
		return nil, err
	}

	return &Timerfd{
		fd:  fd,
		buf: make([]byte, 8),
	}, nil
}

// Fd：返回 timerfd 的文件句柄
func (t *Timerfd) Fd() int {
	return t.fd
}

// SetTime：武装定时器，value 时间后首次到期，
// interval 非 0 时之后每隔 interval 周期性到期。
// value 为 0 表示解除武装
func (t *Timerfd) SetTime(value, interval time.Duration) error {
	spec := unix.ItimerSpec{
		Interval: unix.NsecToTimespec(interval.Nanoseconds()),
		Value:    unix.NsecToTimespec(value.Nanoseconds()),
	}
	return unix.TimerfdSettime(t.fd, 0, &spec, nil)
}

// Read：读取并清零自上次读取以来的到期次数。
// 定时器未到期时该调用会阻塞（fd 默认是阻塞模式），
// 常规用法是等 epoll 报告可读之后再来读
func (t *Timerfd) Read() (uint64, error) {
	n, err := unix.Read(t.fd, t.buf)
	if err != nil {
		return 0, err
	}
	if n != 8 {
		return 0, unix.EIO
	}
	return binary.LittleEndian.Uint64(t.buf), nil
}

// Close：关闭 timerfd
func (t *Timerfd) Close() error {
	return unix.Close(t.fd)
}
