package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/flagmap/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When the same row is recorded twice", func() {
			first := d.SeenAndRecord(ctx, "2019_1_PIT_NE")
			second := d.SeenAndRecord(ctx, "2019_1_PIT_NE")

			Convey("Then only the repeat is reported", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a row is unrecorded", func() {
			d.SeenAndRecord(ctx, "row")
			d.Unrecord(ctx, "row")

			Convey("Then it is accepted again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "row"), ShouldBeFalse)
			})
		})

		Convey("When rows are recorded concurrently", func() {
			var wg sync.WaitGroup
			repeats := make(chan bool, 200)
			for i := 0; i < 200; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					repeats <- d.SeenAndRecord(ctx, fmt.Sprintf("row-%d", i%100))
				}(i)
			}
			wg.Wait()
			close(repeats)

			Convey("Then each distinct row is new exactly once", func() {
				fresh := 0
				for r := range repeats {
					if !r {
						fresh++
					}
				}
				So(fresh, ShouldEqual, 100)
				So(d.Size(), ShouldEqual, 100)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))

		Convey("When more rows than the limit arrive", func() {
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			d.SeenAndRecord(ctx, "c")

			Convey("Then the oldest row is forgotten", func() {
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})

		Convey("When a row is unrecorded before its slot is reused", func() {
			d.SeenAndRecord(ctx, "a")
			d.Unrecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			d.SeenAndRecord(ctx, "c")

			Convey("Then eviction does not disturb live rows", func() {
				So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
			})
		})
	})

	Convey("Given row fingerprints", t, func() {
		So(dedupe.Fingerprint("ab", "c"), ShouldNotEqual, dedupe.Fingerprint("a", "bc"))
		So(dedupe.Fingerprint("x", "y"), ShouldEqual, dedupe.Fingerprint("x", "y"))
	})
}
