package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-dictadmin/components/dictionary"
)

func TestCreateDictionaryCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewCreateDictionaryCommand(service, telemetry)
	var stored dictionary.Item
	draft := dictionary.Draft{Type: "gender", Label: "Male", Value: "m", Sort: 1}
	if err := cmd.Execute(context.Background(), CreateDictionaryInput{Draft: draft, Result: &stored}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.createCalls != 1 {
		t.Fatalf("expected create call")
	}
	if stored.ID != 1 || stored.Type != "gender" {
		t.Fatalf("expected stored item in result, got %+v", stored)
	}
	if telemetry.last != "dictionary.command.create" {
		t.Fatalf("expected create telemetry, got %q", telemetry.last)
	}
}

func TestCreateDictionaryCommandPropagatesError(t *testing.T) {
	service := &stubService{err: errors.New("boom")}
	telemetry := &stubTelemetry{}
	cmd := NewCreateDictionaryCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), CreateDictionaryInput{}); err == nil {
		t.Fatalf("expected service error")
	}
	if telemetry.calls != 0 {
		t.Fatalf("expected no telemetry on failure")
	}
}

func TestUpdateDictionaryCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewUpdateDictionaryCommand(service, nil)
	draft := dictionary.Draft{ID: 7, Type: "gender", Label: "Male", Value: "m"}
	if err := cmd.Execute(context.Background(), UpdateDictionaryInput{Draft: draft}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.updateCalls != 1 {
		t.Fatalf("expected update call")
	}
}

func TestDeleteDictionaryCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewDeleteDictionaryCommand(service, nil)
	if err := cmd.Execute(context.Background(), DeleteDictionaryInput{ID: 3}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.deleted) != 1 || service.deleted[0] != 3 {
		t.Fatalf("unexpected delete calls %v", service.deleted)
	}
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	if err := NewCreateDictionaryCommand(nil, nil).Execute(ctx, CreateDictionaryInput{}); err == nil {
		t.Fatalf("expected create error without service")
	}
	if err := NewUpdateDictionaryCommand(nil, nil).Execute(ctx, UpdateDictionaryInput{}); err == nil {
		t.Fatalf("expected update error without service")
	}
	if err := NewDeleteDictionaryCommand(nil, nil).Execute(ctx, DeleteDictionaryInput{}); err == nil {
		t.Fatalf("expected delete error without service")
	}
	if err := NewSeedDictionariesCommand(nil, nil).Execute(ctx, SeedDictionariesInput{}); err == nil {
		t.Fatalf("expected seed error without service")
	}
}

func TestSeedDictionariesCommandFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	doc := `dictionaries:
  - type: gender
    items:
      - label: Male
        value: m
      - label: Female
        value: f
        sort: 5
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewSeedDictionariesCommand(service, telemetry)
	var created, skipped int
	if err := cmd.Execute(context.Background(), SeedDictionariesInput{Path: path, Created: &created, Skipped: &skipped}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.seeded) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(service.seeded))
	}
	if service.seeded[0].Sort != 1 || service.seeded[1].Sort != 5 {
		t.Fatalf("unexpected sort defaults %+v", service.seeded)
	}
	if created != 2 || skipped != 0 {
		t.Fatalf("expected 2 created, got %d/%d", created, skipped)
	}
	if telemetry.last != "dictionary.command.seed" {
		t.Fatalf("expected seed telemetry, got %q", telemetry.last)
	}
}

func TestSeedDictionariesCommandRequiresSource(t *testing.T) {
	cmd := NewSeedDictionariesCommand(&stubService{}, nil)
	if err := cmd.Execute(context.Background(), SeedDictionariesInput{}); err == nil {
		t.Fatalf("expected error without path or document")
	}
}

type stubService struct {
	createCalls int
	updateCalls int
	deleted     []int64
	seeded      []dictionary.Draft
	err         error
}

func (s *stubService) Create(_ context.Context, draft dictionary.Draft) (dictionary.Item, error) {
	s.createCalls++
	if s.err != nil {
		return dictionary.Item{}, s.err
	}
	return dictionary.Item{ID: int64(s.createCalls), Type: draft.Type, Label: draft.Label, Value: draft.Value}, nil
}

func (s *stubService) Update(_ context.Context, draft dictionary.Draft) (dictionary.Item, error) {
	s.updateCalls++
	if s.err != nil {
		return dictionary.Item{}, s.err
	}
	return dictionary.Item{ID: draft.ID, Type: draft.Type}, nil
}

func (s *stubService) Delete(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *stubService) Seed(_ context.Context, drafts []dictionary.Draft) (int, int, error) {
	s.seeded = append(s.seeded, drafts...)
	return len(drafts), 0, s.err
}

type stubTelemetry struct {
	calls int
	last  string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.calls++
	s.last = event
}
