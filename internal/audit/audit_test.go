package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"scanid.app/internal/stream"
)

func TestRecordFillsDefaults(t *testing.T) {
	store := NewInMemory()
	rec, err := NewRecorder(store, nil)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-42")
	if err := rec.Record(ctx, Entry{
		UserID: "u1",
		Action: "create",
		Module: "users",
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, total, err := rec.List(context.Background(), ListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("expected one entry, got total=%d len=%d", total, len(entries))
	}
	e := entries[0]
	if e.ID == "" {
		t.Fatalf("entry id not assigned")
	}
	if e.OccurredAt.IsZero() {
		t.Fatalf("occurred_at not assigned")
	}
	if e.RequestID != "req-42" {
		t.Fatalf("request id not taken from context: %q", e.RequestID)
	}
}

func TestRecordRejectsIncompleteEntries(t *testing.T) {
	rec, _ := NewRecorder(NewInMemory(), nil)
	ctx := context.Background()

	cases := []Entry{
		{UserID: "u1", Module: "users"},
		{UserID: "u1", Action: "create"},
		{Action: "create", Module: "users"},
	}
	for _, e := range cases {
		if err := rec.Record(ctx, e); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", e, err)
		}
	}
}

func TestRecordPublishesToStream(t *testing.T) {
	st := stream.New()
	rec, _ := NewRecorder(NewInMemory(), st)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := st.Subscribe(ctx)

	if err := rec.Record(context.Background(), Entry{
		UserID:          "u1",
		Action:          "delete",
		Module:          "tags",
		SystemEditionID: "e1",
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	select {
	case evt := <-ch:
		if evt.Action != "delete" || evt.Module != "tags" || evt.SystemEditionID != "e1" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event published to stream")
	}
}

func TestListScopesAndPaginates(t *testing.T) {
	rec, _ := NewRecorder(NewInMemory(), nil)
	ctx := context.Background()

	seed := []Entry{
		{UserID: "u1", Action: "create", Module: "users", SystemEditionID: "e1", CompanyID: "c1"},
		{UserID: "u2", Action: "update", Module: "companies", SystemEditionID: "e1", CompanyID: "c2"},
		{UserID: "u3", Action: "delete", Module: "users", SystemEditionID: "e2", CompanyID: "c3"},
	}
	for _, e := range seed {
		if err := rec.Record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	_, total, err := rec.List(ctx, ListQuery{SystemEditionID: "e1"})
	if err != nil {
		t.Fatalf("list edition: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 entries for e1, got %d", total)
	}

	byModule, total, err := rec.List(ctx, ListQuery{Module: "users"})
	if err != nil {
		t.Fatalf("list module: %v", err)
	}
	if total != 2 || len(byModule) != 2 {
		t.Fatalf("module filter failed: total=%d", total)
	}

	q := ListQuery{}
	q.Page = 1
	q.Limit = 2
	page, total, err := rec.List(ctx, q)
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Fatalf("pagination failed: total=%d len=%d", total, len(page))
	}
}
