package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/wellness/internal/domain/biometric"
	"github.com/okian/wellness/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// blockingStore answers every query only when its context ends.
type blockingStore struct{}

func (blockingStore) RequestAuthorization(context.Context, []biometric.DataType) (bool, error) {
	return true, nil
}

func (blockingStore) MostRecentSample(ctx context.Context, _ biometric.SampleRequest) (float64, bool, error) {
	<-ctx.Done()
	return 0, false, ctx.Err()
}

func (blockingStore) Characteristics(context.Context) (biometric.Characteristics, error) {
	return biometric.Characteristics{}, nil
}

func TestFetchOutcome(t *testing.T) {
	Convey("Given a store that never answers", t, func() {
		p := New(nil, WithLogger(logger.Nop()), WithFetchTimeout(20*time.Millisecond))

		Convey("When the fetch deadline passes", func() {
			res := p.fetch(context.Background(), blockingStore{}, biometric.HeartRate)

			Convey("Then the sample is absent because of a timeout", func() {
				So(res.OK, ShouldBeFalse)
				So(errors.Is(res.Err, ErrFetchTimeout), ShouldBeTrue)
				So(errors.Is(res.Err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})

		Convey("When the caller cancels first", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res := p.fetch(ctx, blockingStore{}, biometric.HeartRate)

			Convey("Then the sample is absent because of the cancellation", func() {
				So(res.OK, ShouldBeFalse)
				So(errors.Is(res.Err, ErrFetchTimeout), ShouldBeFalse)
				So(errors.Is(res.Err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
