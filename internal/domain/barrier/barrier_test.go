package barrier_test

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/wellness/internal/domain/barrier"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func keys(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestBarrierJoin(t *testing.T) {
	Convey("Given barriers of every size from 0 to 8", t, func() {
		for k := 0; k <= 8; k++ {
			var fired atomic.Int32
			var got map[int]string
			b := barrier.New(keys(k), barrier.Inline{}, func(results map[int]string) {
				fired.Add(1)
				got = results
			})

			order := rand.New(rand.NewSource(int64(k))).Perm(k)
			for i, key := range order {
				So(fired.Load(), ShouldEqual, 0)
				So(b.Outstanding(), ShouldEqual, k-i)
				b.Deliver(key, string(rune('a'+key)))
			}

			So(fired.Load(), ShouldEqual, 1)
			So(b.Joined(), ShouldBeTrue)
			So(got, ShouldHaveLength, k)
			for key := 0; key < k; key++ {
				So(got[key], ShouldEqual, string(rune('a'+key)))
			}
			<-b.Done()
		}
	})

	Convey("Given a barrier fed concurrently in shuffled order", t, func() {
		const k = 64
		var fired atomic.Int32
		b := barrier.New(keys(k), barrier.Inline{}, func(results map[int]int) {
			fired.Add(1)
		})

		var wg sync.WaitGroup
		for _, key := range rand.Perm(k) {
			wg.Add(1)
			go func(key int) {
				defer wg.Done()
				time.Sleep(time.Duration(rand.Intn(200)) * time.Microsecond)
				b.Deliver(key, key*key)
			}(key)
		}
		wg.Wait()
		<-b.Done()

		Convey("Then the continuation fired exactly once", func() {
			So(fired.Load(), ShouldEqual, 1)
		})
	})
}

func TestBarrierMisuse(t *testing.T) {
	Convey("Given a barrier over two keys", t, func() {
		b := barrier.New([]string{"height", "steps"}, nil, func(map[string]float64) {})

		Convey("When a key is delivered twice", func() {
			b.Deliver("height", 1.8)

			Convey("Then the second delivery panics", func() {
				So(func() { b.Deliver("height", 1.9) }, ShouldPanic)
			})
		})

		Convey("When an unexpected key is delivered", func() {
			var recovered any
			func() {
				defer func() { recovered = recover() }()
				b.Deliver("weight", 80)
			}()

			Convey("Then the panic carries ErrUnknownKey", func() {
				err, ok := recovered.(error)
				So(ok, ShouldBeTrue)
				So(errors.Is(err, barrier.ErrUnknownKey), ShouldBeTrue)
			})
		})

		Convey("When delivering after the join", func() {
			b.Deliver("height", 1.8)
			b.Deliver("steps", 100)

			Convey("Then it panics with ErrDoubleDelivery", func() {
				var recovered any
				func() {
					defer func() { recovered = recover() }()
					b.Deliver("steps", 100)
				}()
				err, _ := recovered.(error)
				So(errors.Is(err, barrier.ErrDoubleDelivery), ShouldBeTrue)
			})
		})
	})
}

func TestSerialExecutor(t *testing.T) {
	Convey("Given a serial executor", t, func() {
		exec := barrier.NewSerial(4)
		defer exec.Close()

		Convey("When continuations from many barriers run on it", func() {
			const barriers = 20
			var mu sync.Mutex
			seen := 0

			var wg sync.WaitGroup
			for i := 0; i < barriers; i++ {
				b := barrier.New([]int{0, 1}, exec, func(map[int]int) {
					mu.Lock()
					seen++
					mu.Unlock()
				})
				wg.Add(2)
				go func() { defer wg.Done(); b.Deliver(0, 0) }()
				go func() { defer wg.Done(); b.Deliver(1, 1) }()
				wg.Wait()
				<-b.Done()
			}

			Convey("Then every continuation ran", func() {
				mu.Lock()
				defer mu.Unlock()
				So(seen, ShouldEqual, barriers)
			})
		})

		Convey("When tasks are submitted in order", func() {
			var order []int
			done := make(chan struct{})
			for i := 0; i < 10; i++ {
				i := i
				exec.Execute(func() { order = append(order, i) })
			}
			exec.Execute(func() { close(done) })
			<-done

			Convey("Then they run in submission order", func() {
				So(order, ShouldResemble, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
			})
		})

		Convey("When executing after Close", func() {
			exec.Close()
			ran := false
			exec.Execute(func() { ran = true })

			Convey("Then the task runs inline", func() {
				So(ran, ShouldBeTrue)
			})
		})
	})
}
