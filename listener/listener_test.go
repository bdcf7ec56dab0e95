// +build linux

package listener

import (
	"net"
	"testing"

	"github.com/Dongxiem/fastpoll/eventloop"
	"github.com/Dongxiem/fastpoll/poller"
	"golang.org/x/sys/unix"
)

// TestAccept：客户端发起连接后监听 fd 变为可读，Accept 返回新连接
func TestAccept(t *testing.T) {
	ln, err := New("tcp", "127.0.0.1:0", false)
	if err != nil {
		t.Fatal("New: ", err)
	}
	defer ln.Close()

	loop, err := eventloop.New()
	if err != nil {
		t.Fatal("eventloop.New: ", err)
	}
	defer loop.Close()

	if err := loop.Add(ln); err != nil {
		t.Fatal("Add: ", err)
	}

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal("Dial: ", err)
	}
	defer conn.Close()

	it, err := loop.Wait(poller.Milliseconds(2000))
	if err != nil {
		t.Fatal("Wait: ", err)
	}

	f := it.Next()
	if f == nil {
		t.Fatal("expect ready listener, but get nothing")
	}
	if f.Fd() != ln.Fd() {
		t.Fatal("expect fd ", ln.Fd(), ", but get ", f.Fd())
	}

	nfd, _, err := ln.Accept()
	if err != nil {
		t.Fatal("Accept: ", err)
	}
	defer unix.Close(nfd)

	// 没有更多连接时非阻塞 Accept 返回 EAGAIN
	if _, _, err := ln.Accept(); err != unix.EAGAIN {
		t.Fatal("expect EAGAIN, but get ", err)
	}
}
