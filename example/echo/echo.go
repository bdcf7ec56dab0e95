// +build linux

package main

import (
	"flag"
	"strconv"
	"time"

	"github.com/Allenxuxu/ringbuffer"
	tsync "github.com/Allenxuxu/toolkit/sync"
	"github.com/RussellLuo/timingwheel"
	"github.com/gobwas/pool/pbytes"
	"go.uber.org/atomic"
	"golang.org/x/sys/unix"

	"github.com/Dongxiem/fastpoll/eventloop"
	"github.com/Dongxiem/fastpoll/listener"
	"github.com/Dongxiem/fastpoll/log"
	"github.com/Dongxiem/fastpoll/poller"
)

// conn：一条已接受的连接
type conn struct {
	fd         int
	out        *ringbuffer.RingBuffer // 未写完的数据暂存在这里，下次事件时继续冲刷
	activeTime atomic.Int64           // 最近一次活跃时间戳，空闲回收用
}

// Fd：返回连接的文件句柄
func (c *conn) Fd() int {
	return c.fd
}

// echoServer：单循环 echo 服务器。
// 事件循环只注册可读事件，写不完的数据先进 ringbuffer，
// 等对端再次触发事件时顺带冲刷
type echoServer struct {
	loop     *eventloop.EventLoop
	ln       *listener.Listener
	conns    map[int]*conn
	tw       *timingwheel.TimingWheel
	idleTime time.Duration
	count    atomic.Int64      // 当前连接数
	ready    []poller.Pollable // 每轮就绪对象的暂存，复用避免分配
	pending  chan func()       // 定时器回调投递到循环协程执行，避免并发操作 loop
}

// newEchoServer：创建 echo 服务器
func newEchoServer(addr string, idleTime time.Duration) (*echoServer, error) {
	loop, err := eventloop.New()
	if err != nil {
		return nil, err
	}

	ln, err := listener.New("tcp", addr, true)
	if err != nil {
		_ = loop.Close()
		return nil, err
	}

	if err := loop.Add(ln); err != nil {
		_ = ln.Close()
		_ = loop.Close()
		return nil, err
	}

	return &echoServer{
		loop:     loop,
		ln:       ln,
		conns:    make(map[int]*conn),
		tw:       timingwheel.NewTimingWheel(time.Second, 60),
		idleTime: idleTime,
		pending:  make(chan func(), 1024),
	}, nil
}

// run：事件循环主体。
// 带 100ms 超时等待，每轮顺带处理定时器投递过来的回调
func (s *echoServer) run() {
	for {
		it, err := s.loop.Wait(poller.Milliseconds(100))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			log.Error("[run] Wait: ", err)
			return
		}

		// 迭代器在下一次 Add、Remove 之前有效，
		// 先取完就绪对象再处理，处理过程中会改动注册集合
		s.ready = s.ready[:0]
		for f := it.Next(); f != nil; f = it.Next() {
			s.ready = append(s.ready, f)
		}
		for _, f := range s.ready {
			if f.Fd() == s.ln.Fd() {
				s.handleAccept()
			} else if c, ok := f.(*conn); ok && s.conns[c.fd] == c {
				s.handleConn(c)
			}
		}

		s.doPending()
	}
}

// doPending：执行定时器投递过来的回调
func (s *echoServer) doPending() {
	for {
		select {
		case f := <-s.pending:
			f()
		default:
			return
		}
	}
}

// handleAccept：接受所有排队中的新连接
func (s *echoServer) handleAccept() {
	for {
		nfd, _, err := s.ln.Accept()
		if err != nil {
			if err != unix.EAGAIN {
				log.Error("[handleAccept] Accept: ", err)
			}
			return
		}

		c := &conn{
			fd:  nfd,
			out: ringbuffer.New(1024),
		}
		if err := s.loop.Add(c); err != nil {
			log.Error("[handleAccept] Add: ", err)
			_ = unix.Close(nfd)
			continue
		}

		s.conns[nfd] = c
		s.count.Add(1)

		if s.idleTime > 0 {
			c.activeTime.Store(time.Now().Unix())
			s.tw.AfterFunc(s.idleTime, s.closeTimeoutConn(c))
		}
	}
}

// closeTimeoutConn：关闭超时的连接。
// 回调在定时器协程触发，真正的检查和关闭投递回循环协程执行
func (s *echoServer) closeTimeoutConn(c *conn) func() {
	return func() {
		s.pending <- func() {
			if s.conns[c.fd] != c {
				return
			}
			intervals := time.Now().Sub(time.Unix(c.activeTime.Load(), 0))
			if intervals >= s.idleTime {
				s.closeConn(c)
			} else {
				s.tw.AfterFunc(s.idleTime-intervals, s.closeTimeoutConn(c))
			}
		}
	}
}

// handleConn：处理连接的可读事件，读到什么回写什么
func (s *echoServer) handleConn(c *conn) {
	if s.idleTime > 0 {
		c.activeTime.Store(time.Now().Unix())
	}

	// 先冲刷上次没写完的数据，保证回写顺序
	if c.out.Length() > 0 && !s.flush(c) {
		return
	}

	buf := pbytes.GetLen(0xFFFF)
	defer pbytes.Put(buf)

	for {
		n, err := unix.Read(c.fd, buf)
		if n == 0 || (err != nil && err != unix.EAGAIN) {
			s.closeConn(c)
			return
		}
		if err == unix.EAGAIN {
			return
		}

		if c.out.Length() > 0 {
			// 前面还有积压，直接追加，维持顺序
			_, _ = c.out.Write(buf[:n])
			continue
		}

		w, err := unix.Write(c.fd, buf[:n])
		if err != nil {
			if err != unix.EAGAIN {
				s.closeConn(c)
				return
			}
			w = 0
		}
		if w < n {
			_, _ = c.out.Write(buf[w:n])
		}
	}
}

// flush：冲刷连接的积压数据，全部写完返回 true
func (s *echoServer) flush(c *conn) bool {
	first, end := c.out.PeekAll()
	n, err := unix.Write(c.fd, first)
	if err != nil {
		if err == unix.EAGAIN {
			return false
		}
		s.closeConn(c)
		return false
	}
	c.out.Retrieve(n)

	if n == len(first) && len(end) > 0 {
		n, err = unix.Write(c.fd, end)
		if err != nil {
			if err == unix.EAGAIN {
				return false
			}
			s.closeConn(c)
			return false
		}
		c.out.Retrieve(n)
	}

	return c.out.Length() == 0
}

// closeConn：关闭连接，先从循环反注册再 close fd
func (s *echoServer) closeConn(c *conn) {
	if s.conns[c.fd] != c {
		return
	}
	if err := s.loop.Remove(c); err != nil {
		log.Error("[closeConn] Remove: ", err)
	}
	delete(s.conns, c.fd)
	s.count.Add(-1)

	if err := unix.Close(c.fd); err != nil {
		log.Error("[closeConn] close: ", err)
	}
}

func main() {
	var port int
	var idle int

	flag.IntVar(&port, "port", 1833, "server port")
	flag.IntVar(&idle, "idle", 10, "connection idle seconds")
	flag.Parse()

	s, err := newEchoServer(":"+strconv.Itoa(port), time.Duration(idle)*time.Second)
	if err != nil {
		panic(err)
	}
	s.tw.Start()
	defer s.tw.Stop()

	log.Info("listening: ", s.ln.Addr())

	// 定期打印连接数
	var report func()
	report = func() {
		log.Info("connections: ", s.count.Load())
		s.tw.AfterFunc(2*time.Second, report)
	}
	s.tw.AfterFunc(2*time.Second, report)

	sw := tsync.WaitGroupWrapper{}
	sw.AddAndRun(s.run)
	sw.Wait()
}
