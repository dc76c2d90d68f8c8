// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func TestAddRejectsBadSchedule(t *testing.T) {
	s := New(slog.Default())
	if err := s.Add("broken", "every now and then", func(context.Context) error { return nil }); err == nil {
		t.Error("Add() with invalid schedule should fail")
	}
	if err := s.Add("ok", "@every 1h", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Add("ok", "@every 1h", func(context.Context) error { return nil }); err == nil {
		t.Error("Add() with duplicate name should fail")
	}
}

func TestTrigger(t *testing.T) {
	s := New(slog.Default())
	var runs atomic.Int32
	boom := errors.New("boom")

	_ = s.Add("count", "@every 1h", func(context.Context) error {
		runs.Add(1)
		return nil
	})
	_ = s.Add("fail", "@every 1h", func(context.Context) error { return boom })

	if err := s.Trigger("count"); err != nil {
		t.Fatalf("Trigger(count) error = %v", err)
	}
	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}
	if err := s.Trigger("fail"); !errors.Is(err, boom) {
		t.Errorf("Trigger(fail) error = %v, want %v", err, boom)
	}
	if err := s.Trigger("missing"); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("Trigger(missing) error = %v", err)
	}

	jobs := s.Jobs()
	if len(jobs) != 2 || jobs[0].Name != "count" || jobs[1].Name != "fail" {
		t.Fatalf("Jobs() = %+v", jobs)
	}
	if jobs[0].LastRun.IsZero() || jobs[0].LastErr != nil {
		t.Errorf("count job info = %+v", jobs[0])
	}
	if !errors.Is(jobs[1].LastErr, boom) {
		t.Errorf("fail job LastErr = %v", jobs[1].LastErr)
	}
}

func TestStartStopCancelsJobs(t *testing.T) {
	s := New(slog.Default())
	_ = s.Add("tick", "@every 1h", func(context.Context) error { return nil })

	s.Start()
	if next := s.Jobs()[0].NextRun; next.Before(time.Now()) {
		t.Errorf("NextRun = %v, want a future time", next)
	}
	s.Stop()

	if err := s.ctx.Err(); !errors.Is(err, context.Canceled) {
		t.Errorf("scheduler context after Stop = %v", err)
	}
}
