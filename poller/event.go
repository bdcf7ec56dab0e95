// +build linux

package poller

import (
	"golang.org/x/sys/unix"
)

// EventType：epoll 事件类型掩码，可以通过按位或组合多个事件
type EventType uint32

// epoll 事件常量，数值与内核 ABI 一致
const (
	// EPOLLIN：对应的文件可读
	EPOLLIN EventType = unix.EPOLLIN
	// EPOLLOUT：对应的文件可写
	EPOLLOUT EventType = unix.EPOLLOUT
	// EPOLLPRI：对应的文件有紧急数据可读（带外数据）
	EPOLLPRI EventType = unix.EPOLLPRI
	// EPOLLERR：对应的文件发生错误，epoll_wait 总是会报告该事件，无需注册
	EPOLLERR EventType = unix.EPOLLERR
	// EPOLLHUP：对应的文件被挂断，epoll_wait 总是会报告该事件，无需注册
	EPOLLHUP EventType = unix.EPOLLHUP
	// EPOLLRDHUP：流式 socket 对端关闭连接或关闭了写半部
	EPOLLRDHUP EventType = unix.EPOLLRDHUP
	// EPOLLEXCLUSIVE：独占唤醒模式，避免惊群（Linux 4.5 起）
	EPOLLEXCLUSIVE EventType = unix.EPOLLEXCLUSIVE
	// EPOLLWAKEUP：事件待处理期间阻止系统进入休眠（Linux 3.5 起）
	EPOLLWAKEUP EventType = unix.EPOLLWAKEUP
	// EPOLLONESHOT：一次性模式，事件上报一次后需要通过 Mod 重新武装
	EPOLLONESHOT EventType = unix.EPOLLONESHOT
	// EPOLLET：边缘触发模式，默认为水平触发
	EPOLLET EventType = unix.EPOLLET
	// EPOLLRDNORM：等价于 EPOLLIN
	EPOLLRDNORM EventType = unix.EPOLLRDNORM
	// EPOLLRDBAND：等价于 EPOLLIN，针对带外数据
	EPOLLRDBAND EventType = unix.EPOLLRDBAND
	// EPOLLWRNORM：等价于 EPOLLOUT
	EPOLLWRNORM EventType = unix.EPOLLWRNORM
	// EPOLLWRBAND：等价于 EPOLLOUT，针对带外数据
	EPOLLWRBAND EventType = unix.EPOLLWRBAND
	// EPOLLMSG：内核未使用
	EPOLLMSG EventType = unix.EPOLLMSG
)

// Contains：判断掩码是否包含 other 中的全部事件
func (e EventType) Contains(other EventType) bool {
	return e&other == other
}

// Event：内核在 epoll_wait 返回时填充的事件记录。
// Data 为注册时由调用方指定的 64 位标识，内核原样带回。
// 零值即可直接用于预初始化事件缓冲区：
//
//	events := make([]poller.Event, 128)
type Event struct {
	Events EventType // 实际发生的事件掩码
	Data   uint64    // 注册时指定的用户数据
}

// toKernel：将用户事件转换为内核事件结构。
// unix.EpollEvent 的 Fd 和 Pad 两个字段合起来就是内核 ABI 中的
// 64 位 data 联合体，这里将 Data 拆分填入，保证布局完全一致
func toKernel(events EventType, data uint64) unix.EpollEvent {
	return unix.EpollEvent{
		Events: uint32(events),
		Fd:     int32(data),
		Pad:    int32(data >> 32),
	}
}

// fromKernel：将内核事件结构还原为用户事件
func fromKernel(ev *unix.EpollEvent) Event {
	return Event{
		Events: EventType(ev.Events),
		Data:   uint64(uint32(ev.Fd)) | uint64(uint32(ev.Pad))<<32,
	}
}
