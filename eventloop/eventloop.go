// +build linux

package eventloop

import (
	"github.com/Dongxiem/fastpoll/poller"
)

// EventLoop：在 Epoll 之上维护一份已注册对象的集合，
// 省去调用方自己维护「内核标识 -> 对象」映射的负担。
// 所有对象固定注册 EPOLLIN 事件，用户标识固定为对象自己的 fd 值。
// EventLoop 不持有对象的所有权，fd 的生命周期由调用方负责：
// 必须先 Remove 再 close，否则 fd 值被系统复用后会解析到错误的对象。
// 本身不加锁，Add、Remove 不能与 Wait 的结果消费并发执行
type EventLoop struct {
	epoll  *poller.Epoll     // 底层多路复用器
	files  []poller.Pollable // 已注册对象，按注册顺序存放，按 fd 线性查找
	events []poller.Event    // 事件缓冲区，随注册数惰性增长，从不收缩
}

// New：创建一个空的 EventLoop，内部会新建一个 Epoll
func New() (*EventLoop, error) {
	ep, err := poller.Create()
	if err != nil {
		return nil, err
	}

	return &EventLoop{epoll: ep}, nil
}

// Add：注册 f 到事件循环，关注可读事件，用户标识取 f 自己的 fd。
// 内核注册失败时 f 不会进入集合，不留半注册状态
func (l *EventLoop) Add(f poller.Pollable) error {
	if err := l.epoll.Add(f, poller.EPOLLIN, uint64(uint32(f.Fd()))); err != nil {
		return err
	}
	l.files = append(l.files, f)

	// 缓冲区跟随注册数增长，保证一次 Wait 能装下全部就绪事件
	if len(l.events) < len(l.files) {
		l.events = append(l.events, poller.Event{})
	}

	return nil
}

// Remove：从事件循环中删除 f。
// 先做内核反注册，失败时集合保持原样，保证两边状态一致；
// 成功后删除集合中第一个 fd 匹配的对象
func (l *EventLoop) Remove(f poller.Pollable) error {
	if err := l.epoll.Del(f); err != nil {
		return err
	}

	if index := l.findFileIndex(f.Fd()); index >= 0 {
		l.files = append(l.files[:index], l.files[index+1:]...)
	}

	return nil
}

// Wait：阻塞等待事件就绪，返回就绪对象的迭代器。
// 迭代器只能单次遍历，且只在下一次 Add、Remove 或 Wait 之前有效
func (l *EventLoop) Wait(timeout poller.Timeout) (*Iterator, error) {
	amount, err := l.epoll.Wait(l.events, timeout)
	if err != nil {
		return nil, err
	}

	return &Iterator{
		loop:   l,
		amount: amount,
	}, nil
}

// Close：关闭底层的 Epoll。
// 已注册对象的 fd 不会被关闭，依旧由调用方负责
func (l *EventLoop) Close() error {
	return l.epoll.Close()
}

// findFileIndex：按 fd 线性查找对象下标，未找到返回 -1
func (l *EventLoop) findFileIndex(fd int) int {
	for i := range l.files {
		if l.files[i].Fd() == fd {
			return i
		}
	}
	return -1
}

// Iterator：一次 Wait 就绪事件的迭代器。
// 按内核上报顺序产出对象，事件标识解析不到已注册对象时
// 静默跳过（比如事件产生后对象刚被 Remove），不算错误
type Iterator struct {
	loop   *EventLoop
	index  int // 下一个待解析的事件下标
	amount int // 本次 Wait 就绪的事件个数
}

// Next：返回下一个就绪对象，遍历完毕返回 nil
func (it *Iterator) Next() poller.Pollable {
	for it.index < it.amount {
		ev := it.loop.events[it.index]
		it.index++

		if i := it.loop.findFileIndex(int(int32(ev.Data))); i >= 0 {
			return it.loop.files[i]
		}
	}
	return nil
}
