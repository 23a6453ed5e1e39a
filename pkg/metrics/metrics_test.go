package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func familyNames(reg *prometheus.Registry) map[string]bool {
	mfs, err := reg.Gather()
	So(err, ShouldBeNil)
	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	return names
}

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When a manager is built with defaults", func() {
			m := NewManager(WithPrometheusRegistry(reg))
			m.ratingsComputed.Inc()

			Convey("Then metrics use the prospect namespace", func() {
				So(familyNames(reg)["prospect_rating_ratings_computed_total"], ShouldBeTrue)
			})
		})

		Convey("When a manager is built with custom options", func() {
			m := NewManager(
				WithPrometheusRegistry(reg),
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 2}),
				WithConstLabels(map[string]string{"env": "test"}),
			)
			m.athletesTotal.Set(3)

			Convey("Then names and labels follow the options", func() {
				So(familyNames(reg)["test_unit_athletes_total"], ShouldBeTrue)
				So(testutil.ToFloat64(m.athletesTotal), ShouldEqual, 3.0)
			})
		})

		Convey("When empty options are passed", func() {
			m := NewManager(WithPrometheusRegistry(reg), WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil))

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "prospect")
				So(m.subsystem, ShouldEqual, "rating")
				So(len(m.latencyBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestRecorders(t *testing.T) {
	Convey("Given the global recorders", t, func() {
		Convey("When a changed rating is recorded", func() {
			before := testutil.ToFloat64(globalManager.ratingsChanged)
			beforeStars := testutil.ToFloat64(globalManager.starDistribution.WithLabelValues("4.5"))
			RecordRating(82.25, 4.5, true, 1.2)

			Convey("Then the changed counter and star bucket move", func() {
				So(testutil.ToFloat64(globalManager.ratingsChanged), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.starDistribution.WithLabelValues("4.5")), ShouldEqual, beforeStars+1)
			})
		})

		Convey("When an unchanged rating is recorded", func() {
			before := testutil.ToFloat64(globalManager.ratingsChanged)
			RecordRating(10, 1.0, false, 0.3)

			Convey("Then the changed counter stays", func() {
				So(testutil.ToFloat64(globalManager.ratingsChanged), ShouldEqual, before)
			})
		})

		Convey("When backfill metrics are recorded", func() {
			UpdateQueueCapacity(64)
			UpdateQueueSize(5)
			UpdateWorkerCount(4)
			AddWorkerActive(1)
			AddWorkerActive(-1)
			before := testutil.ToFloat64(globalManager.jobsProcessed.WithLabelValues("failed"))
			RecordJobProcessed("failed", 2)

			Convey("Then the gauges reflect the last value", func() {
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64.0)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 5.0)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4.0)
				So(testutil.ToFloat64(globalManager.workerActive), ShouldEqual, 0.0)
				So(testutil.ToFloat64(globalManager.jobsProcessed.WithLabelValues("failed")), ShouldEqual, before+1)
			})
		})

		Convey("When the remaining recorders are called", func() {
			So(func() {
				RecordBreakdownServed()
				UpdateAthletesTotal(10)
				RecordStoreLatency("find_by_id", 0.2)
				RecordQueueEnqueue()
				RecordQueueRejected()
				RecordJobDuplicate()
				RecordBackfillRun()
				RecordHTTPRequest("/api/v1/athletes", "GET", "200", 3)
				RecordErrorByComponent("app", "not_found")
				RecordErrorByType("not_found", "warning")
				RecordErrorByEndpoint("/api/v1/athletes/{id}", "GET", "not_found")
				UpdateSystemMetrics()
			}, ShouldNotPanic)

			Convey("Then the registry exposes them", func() {
				names := familyNames(GetRegistry())
				for _, n := range []string{
					"prospect_rating_http_requests_total",
					"prospect_rating_store_latency_milliseconds",
					"prospect_rating_system_goroutine_count",
				} {
					So(names[n], ShouldBeTrue)
				}
				So(testutil.ToFloat64(globalManager.goroutineCount), ShouldBeGreaterThan, 0.0)
			})
		})

		Convey("Then every metric name is prefixed", func() {
			for n := range familyNames(GetRegistry()) {
				So(strings.HasPrefix(n, "prospect_rating_"), ShouldBeTrue)
			}
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the package-level recorders reconfigured", t, func() {
		Configure(WithNamespace("scouting"), WithSubsystem("api"), WithConstLabels(map[string]string{"region": "eu"}))
		Reset(func() { Configure() })

		Convey("When recording", func() {
			UpdateAthletesTotal(7)

			Convey("Then series move to a fresh registry under the new name", func() {
				names := familyNames(GetRegistry())
				So(names["scouting_api_athletes_total"], ShouldBeTrue)
				So(names["prospect_rating_athletes_total"], ShouldBeFalse)
				So(testutil.ToFloat64(globalManager.athletesTotal), ShouldEqual, 7.0)
			})
		})
	})
}
