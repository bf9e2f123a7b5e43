package types_test

import (
	"encoding/json"
	"testing"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBoardJSON(t *testing.T) {
	Convey("Given an empty board", t, func() {
		b := types.Board{View: "leaderboard", Empty: true, Message: "No results yet", Rows: []types.Row{}}

		Convey("When encoded", func() {
			raw, err := json.Marshal(b)
			So(err, ShouldBeNil)

			var m map[string]any
			So(json.Unmarshal(raw, &m), ShouldBeNil)

			Convey("Then the display contract keys are present", func() {
				for _, k := range []string{"view", "event", "rows", "podium", "remaining", "total", "empty", "message", "generated_at"} {
					So(m, ShouldContainKey, k)
				}
				So(m["event"], ShouldBeNil)
				So(m["rows"], ShouldResemble, []any{})
			})
		})
	})
}
