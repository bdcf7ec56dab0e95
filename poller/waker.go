// +build linux

package poller

import (
	"golang.org/x/sys/unix"
)

// wakeBytes：唤醒字符切片，eventfd 要求一次写入 8 字节
var wakeBytes = []byte{1, 0, 0, 0, 0, 0, 0, 0}

// Waker：基于 eventfd 的唤醒器。
// 注册到 epoll（通常关注 EPOLLIN）之后，其他协程调用 Wake
// 即可让阻塞中的 Wait 返回。事件被消费后需要调用 Drain 复位，
// 否则水平触发模式下 Wait 会一直报告可读
type Waker struct {
	fd  int
	buf []byte // Drain 读取用的 8 字节缓冲区
}

// NewWaker：创建一个 Waker
func NewWaker() (*Waker, error) {
	r0, _, errno := unix.Syscall(unix.SYS_EVENTFD2, 0, 0, 0)
	if errno != 0 {
		return nil, errno
	}

	return &Waker{
		fd:  int(r0),
		buf: make([]byte, 8),
	}, nil
}

// Fd：返回 eventfd 的文件句柄
func (w *Waker) Fd() int {
	return w.fd
}

// Wake：唤醒调用，向 eventfd 写入任意 8 字节即可触发可读事件
func (w *Waker) Wake() error {
	_, err := unix.Write(w.fd, wakeBytes)
	return err
}

// Drain：读取并清空 eventfd 的计数，复位可读状态
func (w *Waker) Drain() error {
	_, err := unix.Read(w.fd, w.buf)
	return err
}

// Close：关闭 eventfd
func (w *Waker) Close() error {
	return unix.Close(w.fd)
}
