// +build linux

package listener

import (
	"errors"
	"net"
	"os"

	"github.com/Dongxiem/fastpoll/log"
	reuseport "github.com/libp2p/go-reuseport"
	"golang.org/x/sys/unix"
)

// Listener：非阻塞 TCP 监听，实现了 poller.Pollable，
// 注册到事件循环后，监听 fd 可读即表示有新连接待 Accept
type Listener struct {
	file     *os.File     // 监听 fd 对应的文件，持有引用避免被 GC 关闭
	fd       int          // 监听文件描述符
	listener net.Listener // 底层 net 监听
}

// New：创建一个新的 Listener 监听。
// reusePort 为 true 时开启 SO_REUSEPORT，多个进程可以监听同一端口
func New(network, addr string, reusePort bool) (*Listener, error) {
	var listener net.Listener
	var err error
	if reusePort {
		listener, err = reuseport.Listen(network, addr)
	} else {
		listener, err = net.Listen(network, addr)
	}
	if err != nil {
		return nil, err
	}

	l, ok := listener.(*net.TCPListener)
	if !ok {
		_ = listener.Close()
		return nil, errors.New("listener: could not get file descriptor")
	}

	file, err := l.File()
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	// File 返回的是阻塞模式的复制 fd，改回非阻塞
	fd := int(file.Fd())
	if err = unix.SetNonblock(fd, true); err != nil {
		_ = file.Close()
		_ = listener.Close()
		return nil, err
	}

	return &Listener{
		file:     file,
		fd:       fd,
		listener: listener,
	}, nil
}

// Fd：返回 listener 的文件句柄
func (l *Listener) Fd() int {
	return l.fd
}

// Addr：返回实际监听地址，监听 ":0" 时可以从这里拿到分配的端口
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// Accept：接受一个新连接，返回已设置为非阻塞的连接 fd 及对端地址。
// 当前没有连接可接受时返回 EAGAIN
func (l *Listener) Accept() (int, unix.Sockaddr, error) {
	nfd, sa, err := unix.Accept(l.fd)
	if err != nil {
		return -1, nil, err
	}

	if err := unix.SetNonblock(nfd, true); err != nil {
		if cerr := unix.Close(nfd); cerr != nil {
			log.Error("[Listener] close accepted fd: ", cerr)
		}
		return -1, nil, err
	}

	return nfd, sa, nil
}

// Close：关闭 listener
func (l *Listener) Close() error {
	if err := l.file.Close(); err != nil {
		log.Error("[Listener] close file: ", err)
	}
	return l.listener.Close()
}
