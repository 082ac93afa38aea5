package examples

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"
)

var shortIDPattern = regexp.MustCompile(`^EX-[A-Z2-7]{6}$`)

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &Service{
		Repo: repo,
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}, repo
}

func TestServiceCreateAssignsIDsAndTrims(t *testing.T) {
	svc, _ := newTestService()
	in := fullInput("  Associate ")
	in.ProjectID = " proj-1 "

	ex, err := svc.Create(context.Background(), "user-1", in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ex.ID == "" || !shortIDPattern.MatchString(ex.ShortID) {
		t.Fatalf("unexpected ids id=%q short=%q", ex.ID, ex.ShortID)
	}
	if ex.Actor != "Associate" || ex.ProjectID != "proj-1" || ex.CreatedBy != "user-1" {
		t.Fatalf("unexpected example %#v", ex)
	}
}

func TestServiceCreateRejectsMissingFields(t *testing.T) {
	svc, _ := newTestService()
	in := fullInput("Associate")
	in.Actions = " "
	if _, err := svc.Create(context.Background(), "user-1", in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestServiceUpdateAndDelete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	ex, err := svc.Create(ctx, "user-1", fullInput("Associate"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	in := fullInput("Partner")
	updated, err := svc.Update(ctx, "user-1", ex.ID, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Actor != "Partner" || !updated.UpdatedAt.After(ex.UpdatedAt) || updated.ShortID != ex.ShortID {
		t.Fatalf("unexpected update %#v", updated)
	}

	if err := svc.Delete(ctx, "user-1", ex.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, "user-1", ex.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestServiceScopesExamplesToCreator(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	ex, err := svc.Create(ctx, "user-1", fullInput("Associate"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Update(ctx, "user-2", ex.ID, fullInput("Partner")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign update, got %v", err)
	}
	if err := svc.Delete(ctx, "user-2", ex.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign delete, got %v", err)
	}
	if err := svc.Delete(ctx, "", ex.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without a user, got %v", err)
	}
	items, err := svc.List(ctx, "user-2", "", 10, 0)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty foreign list, got %d items err=%v", len(items), err)
	}

	got, err := svc.Get(ctx, "user-1", ex.ID)
	if err != nil || got.Actor != "Associate" {
		t.Fatalf("expected owner to keep the example, got %#v err=%v", got, err)
	}
}

func TestServiceListNewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	for _, actor := range []string{"a", "b", "c"} {
		in := fullInput(actor)
		in.ProjectID = "p1"
		if _, err := svc.Create(ctx, "user-1", in); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := svc.Create(ctx, "user-1", fullInput("other-project")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	items, err := svc.List(ctx, "user-1", "p1", 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].Actor != "c" || items[1].Actor != "b" {
		t.Fatalf("unexpected list %#v", items)
	}
}

func TestServiceBulkImport(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	missing := fullInput("Clerk")
	missing.Goal = ""
	items := []Input{fullInput("Partner"), fullInput("Partner "), missing, fullInput("Associate")}

	result, err := svc.BulkImport(ctx, "user-1", "proj-9", items)
	if err != nil {
		t.Fatalf("BulkImport: %v", err)
	}
	if len(result.Created) != 2 || len(result.Invalid) != 2 {
		t.Fatalf("unexpected result created=%d invalid=%d", len(result.Created), len(result.Invalid))
	}
	for _, ex := range result.Created {
		if ex.ProjectID != "proj-9" {
			t.Fatalf("expected project override, got %q", ex.ProjectID)
		}
	}
	stored, err := repo.List(ctx, "user-1", "proj-9", 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored examples, got %d", len(stored))
	}
}

func TestServiceBulkImportRejectsEmpty(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.BulkImport(context.Background(), "user-1", "", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

type collidingRepo struct {
	*MemoryRepo
	failures int
}

func (r *collidingRepo) Create(ctx context.Context, ex Example) error {
	if r.failures > 0 {
		r.failures--
		return ErrShortIDTaken
	}
	return r.MemoryRepo.Create(ctx, ex)
}

func TestServiceCreateRetriesShortIDCollision(t *testing.T) {
	repo := &collidingRepo{MemoryRepo: NewMemoryRepo(), failures: 2}
	svc := &Service{Repo: repo}
	if _, err := svc.Create(context.Background(), "user-1", fullInput("Associate")); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}

	repo.failures = maxIDAttempts
	if _, err := svc.Create(context.Background(), "user-1", fullInput("Partner")); !errors.Is(err, ErrShortIDTaken) {
		t.Fatalf("expected ErrShortIDTaken after exhausting attempts, got %v", err)
	}
}
