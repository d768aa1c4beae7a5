package fileproc

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
)

func TestMapFiles(t *testing.T) {
	files := []string{"a", "b", "c"}

	results, errs := MapFiles(files, func(path string) (string, error) {
		return strings.ToUpper(path), nil
	})
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	sort.Strings(results)
	if len(results) != 3 || results[0] != "A" || results[2] != "C" {
		t.Errorf("results = %v", results)
	}
}

func TestMapFilesCollectsErrors(t *testing.T) {
	fail := errors.New("boom")
	files := []string{"ok1", "bad", "ok2"}

	results, errs := MapFiles(files, func(path string) (string, error) {
		if path == "bad" {
			return "", fail
		}
		return path, nil
	})

	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
	if errs == nil || !errs.HasErrors() {
		t.Fatal("expected collected errors")
	}
	if errs.Errors[0].Path != "bad" {
		t.Errorf("error path = %q", errs.Errors[0].Path)
	}
	if !strings.Contains(errs.Error(), "boom") {
		t.Errorf("error string = %q", errs.Error())
	}
}

func TestMapFilesEmptyInput(t *testing.T) {
	results, errs := MapFiles(nil, func(string) (int, error) { return 0, nil })
	if results != nil || errs != nil {
		t.Errorf("empty input returned %v, %v", results, errs)
	}
}

func TestMapFilesNProgress(t *testing.T) {
	var ticks atomic.Int64
	files := []string{"a", "b", "c", "d"}

	_, errs := MapFilesN(files, 2, func(path string) (string, error) {
		return path, nil
	}, func() { ticks.Add(1) })

	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got := ticks.Load(); got != int64(len(files)) {
		t.Errorf("progress ticks = %d, want %d", got, len(files))
	}
}

func TestMapFilesWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := []string{"a", "b", "c"}
	results, errs := MapFilesWithContext(ctx, files, func(path string) (string, error) {
		return path, nil
	})

	if errs == nil || !errs.HasErrors() {
		t.Fatalf("cancelled context produced results %v with no errors", results)
	}
	for _, perr := range errs.Errors {
		if !errors.Is(perr.Err, context.Canceled) {
			t.Errorf("error for %s = %v, want context.Canceled", perr.Path, perr.Err)
		}
	}
}

func TestMapFilesWithContextIndividualFailures(t *testing.T) {
	fail := errors.New("parse error")
	files := []string{"good", "bad", "also-good"}

	results, errs := MapFilesWithContext(context.Background(), files, func(path string) (string, error) {
		if path == "bad" {
			return "", fail
		}
		return path, nil
	})

	if len(results) != 2 {
		t.Errorf("got %d results, want 2 (failures must not stop the pool)", len(results))
	}
	if errs == nil || len(errs.Errors) != 1 {
		t.Fatalf("errors = %v", errs)
	}
}

func TestWorkers(t *testing.T) {
	if got := Workers(0); got != runtime.NumCPU()*DefaultWorkerMultiplier {
		t.Errorf("Workers(0) = %d", got)
	}
	if got := Workers(3); got != runtime.NumCPU()*3 {
		t.Errorf("Workers(3) = %d", got)
	}
	if got := Workers(-1); got != runtime.NumCPU()*DefaultWorkerMultiplier {
		t.Errorf("Workers(-1) = %d", got)
	}
}
