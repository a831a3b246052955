package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/wellness/internal/config"
	"github.com/okian/wellness/internal/domain/aggregate"
	"github.com/okian/wellness/internal/domain/model"
	"github.com/okian/wellness/pkg/logger"
	"github.com/okian/wellness/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

// useTempPaths points both stores at a fresh directory for one Convey pass.
func useTempPaths(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	_ = os.Unsetenv("WELLNESS_CONFIG")
	_ = os.Setenv("WELLNESS_SAMPLE_DB_PATH", filepath.Join(dir, "samples.db"))
	_ = os.Setenv("WELLNESS_ANSWER_CACHE_PATH", filepath.Join(dir, "answers.db"))
}

func clearTempPaths() {
	_ = os.Unsetenv("WELLNESS_SAMPLE_DB_PATH")
	_ = os.Unsetenv("WELLNESS_ANSWER_CACHE_PATH")
}

func run(ctx context.Context, stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestCaloriesCommand(t *testing.T) {
	convey.Convey("Given an empty sample store", t, func() {
		useTempPaths(t)
		defer clearTempPaths()
		ctx := context.Background()

		convey.Convey("When a subject is seeded and scored", func() {
			_, err := run(ctx, "", "seed", "--subject", "alice")
			convey.So(err, convey.ShouldBeNil)

			out, err := run(ctx, "", "calories", "--subject", "alice")

			convey.Convey("Then the prediction is printed as JSON", func() {
				convey.So(err, convey.ShouldBeNil)
				var p model.Prediction
				convey.So(json.Unmarshal([]byte(out), &p), convey.ShouldBeNil)
				convey.So(p.Vector, convey.ShouldResemble, []float64{30, 1, 1.8, 80, 10000, 70, 8000, 80000000})
				convey.So(p.Value, convey.ShouldAlmostEqual, 847, 1e-6)
				convey.So(p.Recommendation.Bucket, convey.ShouldEqual, "strength")
			})
		})

		convey.Convey("When an unseeded subject is scored", func() {
			out, err := run(ctx, "", "calories", "--subject", "mallory")

			convey.Convey("Then authorization is denied and nothing is printed", func() {
				convey.So(errors.Is(err, aggregate.ErrAuthorizationDenied), convey.ShouldBeTrue)
				convey.So(out, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the subject flag is missing", func() {
			_, err := run(ctx, "", "calories")

			convey.Convey("Then the command refuses to run", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "subject")
			})
		})
	})
}

func TestDietCommand(t *testing.T) {
	convey.Convey("Given the bundled diet model", t, func() {
		useTempPaths(t)
		defer clearTempPaths()

		convey.Convey("When asking for an easy recipe", func() {
			out, err := run(context.Background(), "", "diet", "--difficulty", "easy")

			convey.Convey("Then a recipe is suggested", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Suggested recipe #157000")
			})
		})
	})
}

func TestMetricsConfiguration(t *testing.T) {
	convey.Convey("Given a configured metrics namespace", t, func() {
		useTempPaths(t)
		defer clearTempPaths()
		_ = os.Setenv("WELLNESS_METRICS_NAMESPACE", "homelab")
		defer os.Unsetenv("WELLNESS_METRICS_NAMESPACE")
		defer metrics.Configure()

		convey.Convey("When any command runs", func() {
			_, err := run(context.Background(), "", "diet", "--difficulty", "easy")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the exported metrics carry the configured names", func() {
				families, err := metrics.GetRegistry().Gather()
				convey.So(err, convey.ShouldBeNil)
				convey.So(families, convey.ShouldNotBeEmpty)
				for _, f := range families {
					convey.So(f.GetName(), convey.ShouldStartWith, "homelab_advisor_")
				}
			})
		})
	})
}

func TestAskCommand(t *testing.T) {
	convey.Convey("Given an empty answer cache", t, func() {
		useTempPaths(t)
		defer clearTempPaths()
		ctx := context.Background()

		convey.Convey("When every prompt is answered", func() {
			out, err := run(ctx, "Male\n\n30\n8\n60\n3\n0\n", "ask")

			convey.Convey("Then the sleep recommendation is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "What is your sex?")
				convey.So(out, convey.ShouldContainSubstring, "Sleep quality: 8.85 (good)")
			})
		})

		convey.Convey("When input ends early", func() {
			_, err := run(ctx, "Female\n45\n", "ask")
			convey.So(errors.Is(err, errIncomplete), convey.ShouldBeTrue)

			out, err := run(ctx, "5\n10\n8\n2\n", "ask")

			convey.Convey("Then the next run resumes where it stopped", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldNotContainSubstring, "What is your sex?")
				convey.So(out, convey.ShouldContainSubstring, "Sleep quality: 5.05 (poor)")
			})

			convey.Convey("Then reset starts over", func() {
				_, err := run(ctx, "Male\n", "ask", "--reset")
				convey.So(errors.Is(err, errIncomplete), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an answer cannot be parsed", func() {
			out, err := run(ctx, "Robot\n30\n8\n60\n3\n0\nMale\n", "ask")

			convey.Convey("Then only that prompt is asked again", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, `Invalid answer "Robot"`)
				convey.So(strings.Count(out, "What is your sex?"), convey.ShouldEqual, 2)
				convey.So(strings.Count(out, "What is your age?"), convey.ShouldEqual, 1)
				convey.So(out, convey.ShouldContainSubstring, "Sleep quality: 8.85 (good)")
			})
		})

		convey.Convey("When a run ends on a rejected answer", func() {
			_, err := run(ctx, "Robot\n30\n8\n60\n3\n0\n", "ask")
			convey.So(errors.Is(err, errIncomplete), convey.ShouldBeTrue)

			out, err := run(ctx, "Male\n", "ask")

			convey.Convey("Then the next run re-asks it and predicts", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "What is your sex?")
				convey.So(out, convey.ShouldNotContainSubstring, "What is your age?")
				convey.So(out, convey.ShouldContainSubstring, "Sleep quality: 8.85 (good)")
			})
		})
	})
}

func TestServeCommand(t *testing.T) {
	convey.Convey("Given a seeded sample store", t, func() {
		useTempPaths(t)
		defer clearTempPaths()
		ctx := context.Background()
		_, err := run(ctx, "", "seed", "--subject", "alice")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the routes are built over a started service", func() {
			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldBeNil)
			c := &cli{cfg: cfg}
			db, err := c.openSamples(ctx)
			convey.So(err, convey.ShouldBeNil)
			defer db.Close()

			svc := c.newService(db)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop(ctx)
			mux := c.routes(ctx, svc)

			convey.Convey("Then calories and the OpenAPI document are served", func() {
				req := httptest.NewRequest(http.MethodPost, "/v1/calories", strings.NewReader(`{"subject_id":"alice"}`))
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"bucket":"strength"`)

				req = httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
				w = httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When serve runs until its context ends", func() {
			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() {
				_, err := run(runCtx, "", "serve", "--addr", "127.0.0.1:0")
				done <- err
			}()
			time.Sleep(100 * time.Millisecond)
			cancel()

			convey.Convey("Then it shuts down cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(10 * time.Second):
					t.Fatal("serve did not stop")
				}
			})
		})
	})
}
