package atomic_counter

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCounterConcurrentAdd(t *testing.T) {
	Convey("Given a counter incremented concurrently by many goroutines", t, func() {
		c := NewCounter(0)
		const goroutines = 50
		const perGoroutine = 200

		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < perGoroutine; j++ {
					c.AtomicAdd(1)
				}
			}()
		}
		wg.Wait()

		Convey("the final value reflects every increment exactly once", func() {
			So(c.AtomicRead(), ShouldEqual, int64(goroutines*perGoroutine))
		})
	})
}

func TestCounterSet(t *testing.T) {
	Convey("Given a counter with an arbitrary starting value", t, func() {
		c := NewCounter(41)

		Convey("AtomicSet overwrites it", func() {
			c.AtomicSet(99)
			So(c.AtomicRead(), ShouldEqual, int64(99))
		})
	})
}
