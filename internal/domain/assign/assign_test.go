package assign_test

import (
	"errors"
	"testing"

	"github.com/okian/flagmap/internal/domain/assign"
	. "github.com/smartystreets/goconvey/convey"
)

func drives(starts ...int) []assign.Drive {
	out := make([]assign.Drive, len(starts))
	for i, s := range starts {
		out[i] = assign.Drive{Index: i, Start: s}
	}
	return out
}

func driveOf(a assign.Assignment, id string) int {
	d, ok := a.DriveOf(id)
	So(ok, ShouldBeTrue)
	return d
}

func TestAssignDefaults(t *testing.T) {
	Convey("Given the default policy", t, func() {
		Convey("When an event falls between boundaries", func() {
			got, err := assign.Assign(drives(3600, 1800, 900, 0), []assign.Event{{ID: "e", T: 1000}})

			Convey("Then it goes to the latest drive starting at or above it", func() {
				So(err, ShouldBeNil)
				So(driveOf(got, "e"), ShouldEqual, 1)
			})
		})

		Convey("When two drives share a start", func() {
			got, err := assign.Assign(drives(3600, 1800, 1800, 900), []assign.Event{{ID: "e", T: 1800}})

			Convey("Then the later of the tie wins", func() {
				So(err, ShouldBeNil)
				So(driveOf(got, "e"), ShouldEqual, 2)
			})
		})

		Convey("When the event is in overtime", func() {
			got, err := assign.Assign(drives(3600, 1800, 0), []assign.Event{{ID: "ot", T: -120}})

			Convey("Then it lands on the last drive", func() {
				So(err, ShouldBeNil)
				So(driveOf(got, "ot"), ShouldEqual, 2)
				So(got.Placements()[0].Unbounded, ShouldBeFalse)
			})
		})

		Convey("When the event precedes every drive", func() {
			got, err := assign.Assign(drives(3500, 1800, 0), []assign.Event{{ID: "early", T: 3600}})

			Convey("Then the final drive takes it and it is flagged", func() {
				So(err, ShouldBeNil)
				So(driveOf(got, "early"), ShouldEqual, 2)
				So(got.Placements()[0].Unbounded, ShouldBeTrue)
				So(got.Dropped(), ShouldBeEmpty)
			})
		})

		Convey("When events are exactly on each boundary", func() {
			ds := drives(3600, 1800, 900, 0)
			evs := []assign.Event{{ID: "a", T: 3600}, {ID: "b", T: 1800}, {ID: "c", T: 900}, {ID: "d", T: 0}}
			got, err := assign.Assign(ds, evs)

			Convey("Then each goes to the drive starting there", func() {
				So(err, ShouldBeNil)
				for i, ev := range evs {
					So(driveOf(got, ev.ID), ShouldEqual, i)
				}
			})
		})

		Convey("When drive indices are not positional", func() {
			ds := []assign.Drive{{Index: 10, Start: 3600}, {Index: 11, Start: 1200}}
			got, err := assign.Assign(ds, []assign.Event{{ID: "e", T: 1500}})
			So(err, ShouldBeNil)
			So(driveOf(got, "e"), ShouldEqual, 10)
		})
	})
}

func TestAssignPolicies(t *testing.T) {
	Convey("Given alternative policies", t, func() {
		ds := drives(3600, 1800, 1800, 900, 0)

		Convey("When ties go to the earlier drive", func() {
			got, err := assign.Assign(ds, []assign.Event{{ID: "e", T: 1800}, {ID: "f", T: 1000}}, assign.WithTieBreak(assign.Earlier))

			Convey("Then the first drive of the tie run is used", func() {
				So(err, ShouldBeNil)
				So(driveOf(got, "e"), ShouldEqual, 1)
				So(driveOf(got, "f"), ShouldEqual, 1)
			})
		})

		Convey("When the comparison is strict", func() {
			got, err := assign.Assign(ds, []assign.Event{{ID: "e", T: 1800}, {ID: "g", T: 900}}, assign.WithComparison(assign.Above))

			Convey("Then an event on a boundary belongs to the drive before it", func() {
				So(err, ShouldBeNil)
				So(driveOf(got, "e"), ShouldEqual, 0)
				So(driveOf(got, "g"), ShouldEqual, 2)
			})
		})

		Convey("When uncovered events are dropped", func() {
			got, err := assign.Assign(ds, []assign.Event{{ID: "x", T: 3700}, {ID: "y", T: 10}}, assign.WithUnbounded(assign.Drop))

			Convey("Then they are reported and not placed", func() {
				So(err, ShouldBeNil)
				So(got.Dropped(), ShouldResemble, []string{"x"})
				_, ok := got.DriveOf("x")
				So(ok, ShouldBeFalse)
				So(driveOf(got, "y"), ShouldEqual, 3)
			})
		})

		Convey("When uncovered events go to the first drive", func() {
			got, err := assign.Assign(ds, []assign.Event{{ID: "x", T: 3700}}, assign.WithUnbounded(assign.AssignFirst))
			So(err, ShouldBeNil)
			So(driveOf(got, "x"), ShouldEqual, 0)
		})

		Convey("When policies are parsed from configuration", func() {
			tb, err := assign.ParseTieBreak("Earlier")
			So(err, ShouldBeNil)
			So(tb, ShouldEqual, assign.Earlier)
			cmp, err := assign.ParseComparison(">")
			So(err, ShouldBeNil)
			So(cmp, ShouldEqual, assign.Above)
			ub, err := assign.ParseUnbounded("drop")
			So(err, ShouldBeNil)
			So(ub, ShouldEqual, assign.Drop)
			_, err = assign.ParseUnbounded("nearest")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestAssignStructure(t *testing.T) {
	Convey("Given malformed drive lists", t, func() {
		Convey("When there are no drives", func() {
			_, err := assign.Assign(nil, []assign.Event{{ID: "e", T: 10}})
			So(errors.Is(err, assign.ErrNoDrives), ShouldBeTrue)
		})

		Convey("When drives are out of order", func() {
			_, err := assign.Assign(drives(3600, 900, 1800), nil)
			So(errors.Is(err, assign.ErrUnordered), ShouldBeTrue)
		})
	})

	Convey("Given the same input twice", t, func() {
		ds := drives(3600, 2400, 2400, 1800, 600, 0)
		evs := []assign.Event{{ID: "1", T: 3000}, {ID: "2", T: 2400}, {ID: "3", T: -60}, {ID: "4", T: 5000}, {ID: "5", T: 601}}
		a1, err1 := assign.Assign(ds, evs)
		a2, err2 := assign.Assign(ds, evs)

		Convey("Then every event is placed once and identically", func() {
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(len(a1.Placements()), ShouldEqual, len(evs))
			So(a1.Placements(), ShouldResemble, a2.Placements())
		})
	})
}

func TestUnboundedScope(t *testing.T) {
	Convey("Given an opening drive logged after the kickoff flag", t, func() {
		ds := drives(3595, 1800, 0)
		events := []assign.Event{{ID: "kickoff", T: 3600}, {ID: "ot", T: -30}}

		Convey("When the default policy runs", func() {
			got, err := assign.Assign(ds, events)

			Convey("Then only the kickoff flag is unbounded", func() {
				So(err, ShouldBeNil)
				So(driveOf(got, "kickoff"), ShouldEqual, 2)
				So(driveOf(got, "ot"), ShouldEqual, 2)
				p := got.Placements()
				So(p[0].Unbounded, ShouldBeTrue)
				So(p[1].Unbounded, ShouldBeFalse)
			})
		})

		Convey("When unbounded events are dropped", func() {
			got, err := assign.Assign(ds, events, assign.WithUnbounded(assign.Drop))

			Convey("Then the overtime flag is still placed", func() {
				So(err, ShouldBeNil)
				So(got.Dropped(), ShouldResemble, []string{"kickoff"})
				So(driveOf(got, "ot"), ShouldEqual, 2)
			})
		})
	})
}
