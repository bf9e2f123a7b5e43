package leaderboard_test

import (
	"testing"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/leaderboard"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHouseColors(t *testing.T) {
	Convey("Given every listed house", t, func() {
		Convey("Then each has a non-default palette", func() {
			for _, h := range model.Houses() {
				p := leaderboard.HouseColors(h)
				So(p.Background, ShouldNotEqual, "#6b7280")
				So(p.Tint, ShouldStartWith, "#")
			}
		})
	})

	Convey("Given an unknown house", t, func() {
		p := leaderboard.HouseColors("Nowhere")

		Convey("Then the neutral default is used", func() {
			So(p.Background, ShouldEqual, "#6b7280")
			So(p.Text, ShouldEqual, "#ffffff")
			So(p.Border, ShouldEqual, "#4b5563")
		})
	})
}

func TestLighten(t *testing.T) {
	Convey("Given colours to lighten", t, func() {
		So(leaderboard.Lighten("#000000"), ShouldEqual, "#cccccc")
		So(leaderboard.Lighten("#ffffff"), ShouldEqual, "#ffffff")
		So(leaderboard.Lighten("#E63C2D"), ShouldEqual, "#fad8d5")
		So(leaderboard.Lighten("oops"), ShouldEqual, "oops")
	})
}

func TestMedal(t *testing.T) {
	Convey("Given ranks", t, func() {
		So(leaderboard.Medal(1), ShouldEqual, "gold")
		So(leaderboard.Medal(2), ShouldEqual, "silver")
		So(leaderboard.Medal(3), ShouldEqual, "bronze")
		So(leaderboard.Medal(4), ShouldEqual, "")
	})
}
