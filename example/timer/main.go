// +build linux

package main

import (
	"flag"
	"time"

	"github.com/Dongxiem/fastpoll/eventloop"
	"github.com/Dongxiem/fastpoll/log"
	"github.com/Dongxiem/fastpoll/poller"
	"github.com/Dongxiem/fastpoll/timerfd"
)

func main() {
	var count int
	flag.IntVar(&count, "count", 5, "tick count")
	flag.Parse()

	loop, err := eventloop.New()
	if err != nil {
		panic(err)
	}
	defer loop.Close()

	tfd, err := timerfd.New()
	if err != nil {
		panic(err)
	}
	defer tfd.Close()

	if err := loop.Add(tfd); err != nil {
		panic(err)
	}
	// 1 秒后开始，每秒触发一次
	if err := tfd.SetTime(time.Second, time.Second); err != nil {
		panic(err)
	}

	for i := 0; i < count; {
		it, err := loop.Wait(poller.Indefinite)
		if err != nil {
			panic(err)
		}

		for f := it.Next(); f != nil; f = it.Next() {
			if f.Fd() != tfd.Fd() {
				continue
			}
			// 消费到期次数，复位可读状态
			n, err := tfd.Read()
			if err != nil {
				panic(err)
			}
			i += int(n)
			log.Info("tick: ", i)
		}
	}
}
