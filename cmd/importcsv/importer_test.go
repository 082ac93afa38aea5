package main

import (
	"context"
	"strings"
	"testing"

	"journey-backend/internal/examples"
	"journey-backend/internal/lawfirms"
)

func newTestImporter() *importer {
	return &importer{
		Examples: &examples.Service{Repo: examples.NewMemoryRepo()},
		LawFirms: &lawfirms.Service{Repo: lawfirms.NewMemoryRepo()},
	}
}

func TestImportExamplesMapsHeadersAndReportsRejects(t *testing.T) {
	csvData := "\ufeffActor,Goal,Entry Point,actions,Error,Outcome\n" +
		"Paralegal,File a claim,Portal,Uploads forms,Timeout,Retries later\n" +
		"Paralegal,File a claim,Portal,Uploads forms,Timeout,Retries later\n" +
		"Partner,Review,,Reads,None,Approves\n" +
		",,,,,\n"

	imp := newTestImporter()
	summary, err := imp.ImportExamples(context.Background(), strings.NewReader(csvData), "user-1", "onboarding")
	if err != nil {
		t.Fatalf("ImportExamples: %v", err)
	}
	if summary.Created != 1 {
		t.Fatalf("expected 1 created, got %d", summary.Created)
	}
	if len(summary.Rejected) != 2 {
		t.Fatalf("expected 2 rejected rows, got %+v", summary.Rejected)
	}
	if summary.Rejected[0].Row != 2 || summary.Rejected[0].Reason != examples.ReasonDuplicate {
		t.Fatalf("unexpected duplicate reject %+v", summary.Rejected[0])
	}
	if summary.Rejected[1].Row != 3 || !strings.Contains(summary.Rejected[1].Reason, "entryPoint") {
		t.Fatalf("unexpected missing-field reject %+v", summary.Rejected[1])
	}

	list, err := imp.Examples.List(context.Background(), "user-1", "onboarding", 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].EntryPoint != "Portal" {
		t.Fatalf("unexpected stored examples %+v", list)
	}
}

func TestImportLawFirmsCreatesMissingColumns(t *testing.T) {
	ctx := context.Background()
	imp := newTestImporter()
	if _, err := imp.LawFirms.CreateColumn(ctx, "ws-1", lawfirms.ColumnInput{Name: "Headcount", Type: lawfirms.ColumnNumber}); err != nil {
		t.Fatalf("CreateColumn: %v", err)
	}

	csvData := "Name,Structure,Top 4,Headcount,Region\n" +
		"Acme LLP,centralised,yes,120,EMEA\n" +
		"Broken LLP,flat,no,10,APAC\n" +
		"Odd LLP,decentralised,maybe,5,US\n" +
		"Count LLP,decentralised,no,many,US\n"

	summary, err := imp.ImportLawFirms(ctx, strings.NewReader(csvData), "ws-1")
	if err != nil {
		t.Fatalf("ImportLawFirms: %v", err)
	}
	if summary.ColumnsAdded != 1 {
		t.Fatalf("expected Region column to be added, got %d", summary.ColumnsAdded)
	}
	if summary.Created != 2 {
		t.Fatalf("expected 2 firms created, got %d", summary.Created)
	}
	if len(summary.Rejected) != 3 {
		t.Fatalf("expected 3 rejected rows, got %+v", summary.Rejected)
	}

	firms, err := imp.LawFirms.ListFirms(ctx, "ws-1")
	if err != nil {
		t.Fatalf("ListFirms: %v", err)
	}
	var acme lawfirms.LawFirm
	for _, f := range firms {
		if f.Name == "Acme LLP" {
			acme = f
		}
	}
	if !acme.Top4 {
		t.Fatalf("expected Acme to be top 4, got %+v", acme)
	}
	if acme.CustomValues["headcount"] != float64(120) {
		t.Fatalf("expected coerced headcount, got %v", acme.CustomValues["headcount"])
	}
	if acme.CustomValues["region"] != "EMEA" {
		t.Fatalf("expected region value, got %v", acme.CustomValues["region"])
	}
}

func TestReadCSVRejectsEmptyInput(t *testing.T) {
	if _, _, err := readCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty csv")
	}
}

func TestNormalizeHeader(t *testing.T) {
	for _, h := range []string{"Entry Point", "entry_point", "entryPoint", " ENTRY-POINT "} {
		if got := normalizeHeader(h); got != "entrypoint" {
			t.Fatalf("normalizeHeader(%q) = %q", h, got)
		}
	}
}
