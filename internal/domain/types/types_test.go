package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/rinkshot/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

func TestCollectRequest(t *testing.T) {
	convey.Convey("Given a collect request body", t, func() {
		var req types.CollectRequest
		err := json.Unmarshal([]byte(`{"seasons":{"2021":1312,"2022":20}}`), &req)

		convey.Convey("Then seasons decode by year", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(req.Seasons, convey.ShouldResemble, map[string]int{"2021": 1312, "2022": 20})
		})
	})
}

func TestRunReport(t *testing.T) {
	convey.Convey("Given a finished run", t, func() {
		start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		r := types.RunReport{StartedAt: start, FinishedAt: start.Add(90 * time.Second)}

		convey.Convey("Then Duration spans start to finish", func() {
			convey.So(r.Duration(), convey.ShouldEqual, 90*time.Second)
		})
	})
}
