// +build linux

package poller

import (
	"errors"

	"go.uber.org/atomic"
	"golang.org/x/sys/unix"
)

// ErrClosed 错误：epoll 实例已经关闭，重复 Close 或继续操作都会返回该错误
var ErrClosed = errors.New("poller: epoll instance closed")

// Pollable：任何持有原始文件描述符的对象。
// socket、pipe、timerfd 等只要能给出 fd 就可以注册到 epoll 上
type Pollable interface {
	Fd() int
}

// Epoll：对内核 epoll 句柄的封装。
// 所有方法都是对系统调用的直接透传，不做缓冲、不做重试，
// 出错时原样返回内核报告的错误（unix.Errno）。
// 本身不加锁，多协程并发使用需要调用方自行串行化
type Epoll struct {
	fd     int               // epoll 文件句柄，Close 之后置为 -1
	closed *atomic.Bool      // 是否已关闭，保证句柄只释放一次
	kernel []unix.EpollEvent // 内核事件临时缓冲区，按需增长
}

// Create：创建一个 Epoll。
// 创建失败时不会遗留任何内核资源
func Create() (*Epoll, error) {
	fd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}

	return &Epoll{
		fd:     fd,
		closed: atomic.NewBool(false),
	}, nil
}

// Fd：返回 epoll 自身的文件句柄，Epoll 也可以注册到另一个 epoll 上
func (ep *Epoll) Fd() int {
	return ep.fd
}

// Add：注册 f 到 epoll，关注 events 事件。
// data 为用户自定义的 64 位标识，事件就绪时内核原样带回，
// 可以存放数组下标、文件描述符本身等任意值。
// 同一个 fd 重复注册、fd 非法或注册数达到上限时返回内核错误
func (ep *Epoll) Add(f Pollable, events EventType, data uint64) error {
	ev := toKernel(events, data)
	return unix.EpollCtl(ep.fd, unix.EPOLL_CTL_ADD, f.Fd(), &ev)
}

// Mod：修改已注册 fd 的事件掩码及用户标识。
// fd 未注册时返回内核错误（ENOENT）
func (ep *Epoll) Mod(f Pollable, events EventType, data uint64) error {
	ev := toKernel(events, data)
	return unix.EpollCtl(ep.fd, unix.EPOLL_CTL_MOD, f.Fd(), &ev)
}

// Del：从 epoll 中删除对应的 fd。
// 内核不保证幂等，对同一个 fd 删除两次，第二次返回 ENOENT。
// 注意：调用方先 close fd 的话内核会自动清理注册项，之后再 Del 同样报错
func (ep *Epoll) Del(f Pollable) error {
	// Linux 2.6.9 之前的内核要求 event 指针非空，这里传一个占位结构
	var ev unix.EpollEvent
	return unix.EpollCtl(ep.fd, unix.EPOLL_CTL_DEL, f.Fd(), &ev)
}

// Wait：阻塞等待事件就绪。
// 就绪事件写入 events 的前 n 个槽位并返回 n，n 不会超过 len(events)。
// timeout 为 Indefinite 时一直等待，为 Immediate 时立即返回（n 可能为 0）。
// 被信号打断时不做内部重试，原样返回 EINTR 由调用方决策。
// len(events) 为 0 时内核会返回 EINVAL
func (ep *Epoll) Wait(events []Event, timeout Timeout) (int, error) {
	if cap(ep.kernel) < len(events) {
		ep.kernel = make([]unix.EpollEvent, len(events))
	}
	kernel := ep.kernel[:len(events)]

	n, err := unix.EpollWait(ep.fd, kernel, timeout.milliseconds())
	if err != nil {
		return 0, err
	}

	for i := 0; i < n; i++ {
		events[i] = fromKernel(&kernel[i])
	}
	return n, nil
}

// Close：关闭 epoll，释放内核句柄。
// 句柄只会释放一次，之后 fd 被置为 -1（毒化），
// 避免句柄值被复用后误关别人的文件；
// 毒化后的实例继续调用其他方法会得到内核的 EBADF。
// 重复 Close 返回 ErrClosed
func (ep *Epoll) Close() error {
	if !ep.closed.CAS(false, true) {
		return ErrClosed
	}

	err := unix.Close(ep.fd)
	ep.fd = -1
	return err
}
