package progress

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBroadcasterFanOut(t *testing.T) {
	Convey("Given a broadcaster with two subscribers", t, func() {
		b := NewBroadcaster()
		subA, _ := b.Subscribe()
		subB, _ := b.Subscribe()

		Convey("publishing reaches both subscribers", func() {
			b.Publish(Update{Iteration: 1, Status: "training"})
			a := <-subA
			bb := <-subB
			So(a.Iteration, ShouldEqual, 1)
			So(bb.Status, ShouldEqual, "training")
		})
	})
}

func TestBroadcasterSubscribeReturnsLastKnown(t *testing.T) {
	Convey("Given a broadcaster that already published once", t, func() {
		b := NewBroadcaster()
		b.Publish(Update{Iteration: 7})

		Convey("a new subscriber immediately sees the last update", func() {
			_, last := b.Subscribe()
			So(last.Iteration, ShouldEqual, 7)
		})
	})
}

func TestBroadcasterUnsubscribeClosesChannel(t *testing.T) {
	Convey("Given a subscribed channel", t, func() {
		b := NewBroadcaster()
		sub, _ := b.Subscribe()

		Convey("unsubscribing closes it", func() {
			b.Unsubscribe(sub)
			_, ok := <-sub
			So(ok, ShouldBeFalse)
		})
	})
}
