package fn

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestResult_OkErr(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() || r.IsErr() {
		t.Error("Ok result misreported")
	}
	v, err := r.Unwrap()
	if v != 42 || err != nil {
		t.Errorf("unexpected unwrap: %v, %v", v, err)
	}

	e := Err[int](errors.New("boom"))
	if e.IsOk() {
		t.Error("Err result misreported")
	}
	if got := e.UnwrapOr(7); got != 7 {
		t.Errorf("UnwrapOr = %d, want 7", got)
	}
}

func TestFromPair(t *testing.T) {
	if r := FromPair(1, nil); r.IsErr() {
		t.Error("expected ok")
	}
	if r := FromPair(0, errors.New("x")); r.IsOk() {
		t.Error("expected err")
	}
}

func TestCollect(t *testing.T) {
	ok := Collect([]Result[int]{Ok(1), Ok(2)})
	vals, err := ok.Unwrap()
	if err != nil || !reflect.DeepEqual(vals, []int{1, 2}) {
		t.Errorf("unexpected collect: %v, %v", vals, err)
	}

	bad := Collect([]Result[int]{Ok(1), Err[int](errors.New("x"))})
	if bad.IsOk() {
		t.Error("expected first error to surface")
	}
}

func TestThen_ShortCircuits(t *testing.T) {
	boom := errors.New("boom")
	first := func(_ context.Context, n int) Result[int] { return Err[int](boom) }
	called := false
	second := func(_ context.Context, n int) Result[string] {
		called = true
		return Ok("never")
	}

	r := Then(first, second)(context.Background(), 1)
	if _, err := r.Unwrap(); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if called {
		t.Error("second stage must not run after an error")
	}
}

func TestMapSliceHelpers(t *testing.T) {
	doubled := Map([]int{1, 2, 3}, func(n int) int { return n * 2 })
	if !reflect.DeepEqual(doubled, []int{2, 4, 6}) {
		t.Errorf("Map: %v", doubled)
	}

	even := Filter([]int{1, 2, 3, 4}, func(n int) bool { return n%2 == 0 })
	if !reflect.DeepEqual(even, []int{2, 4}) {
		t.Errorf("Filter: %v", even)
	}
}

func TestUniqueBy(t *testing.T) {
	type item struct{ id, name string }
	items := []item{{"a", "one"}, {"b", "two"}, {"a", "dup"}, {"c", "three"}}

	out := UniqueBy(items, func(i item) string { return i.id })
	if len(out) != 3 {
		t.Fatalf("expected 3 items, got %d", len(out))
	}
	// First occurrence wins.
	if out[0].name != "one" || out[2].name != "three" {
		t.Errorf("unexpected order: %v", out)
	}
}

func TestParMap(t *testing.T) {
	in := []int{1, 2, 3, 4, 5}
	out := ParMap(in, 2, func(n int) int { return n * n })
	if !reflect.DeepEqual(out, []int{1, 4, 9, 16, 25}) {
		t.Errorf("order must be preserved: %v", out)
	}

	if got := ParMap([]int{}, 4, func(n int) int { return n }); len(got) != 0 {
		t.Errorf("expected empty output, got %v", got)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	var attempts atomic.Int32
	opts := RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}

	r := Retry(context.Background(), opts, func(_ context.Context) Result[string] {
		if attempts.Add(1) < 3 {
			return Err[string](errors.New("transient"))
		}
		return Ok("done")
	})

	v, err := r.Unwrap()
	if err != nil || v != "done" {
		t.Fatalf("unexpected result: %v, %v", v, err)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestRetry_Exhausted(t *testing.T) {
	boom := errors.New("boom")
	opts := RetryOpts{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond}

	r := Retry(context.Background(), opts, func(_ context.Context) Result[int] {
		return Err[int](boom)
	})
	if _, err := r.Unwrap(); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
