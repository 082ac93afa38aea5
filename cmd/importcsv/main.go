package main

// Import examples or law firms from a CSV export:
//   go run ./cmd/importcsv -kind examples -file examples.csv -project onboarding
//   go run ./cmd/importcsv -kind lawfirms -file firms.csv -workspace <id>

import (
	"context"
	"flag"
	"log"
	"os"

	"journey-backend/internal/examples"
	"journey-backend/internal/lawfirms"
	"journey-backend/internal/shared/config"
	"journey-backend/internal/shared/storage/db"
)

func main() {
	kind := flag.String("kind", "", "what to import: examples or lawfirms")
	file := flag.String("file", "", "path to the CSV file")
	workspaceID := flag.String("workspace", "", "workspace id (lawfirms)")
	projectID := flag.String("project", "", "project id override (examples)")
	userID := flag.String("user", "importcsv", "user id recorded as creator (examples)")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer sqlDB.Close()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("open %s: %v", *file, err)
	}
	defer f.Close()

	imp := &importer{
		Examples: &examples.Service{Repo: &examples.PGRepo{DB: sqlDB}},
		LawFirms: &lawfirms.Service{Repo: &lawfirms.PGRepo{DB: sqlDB}},
	}

	switch *kind {
	case "examples":
		summary, err := imp.ImportExamples(ctx, f, *userID, *projectID)
		if err != nil {
			log.Fatalf("import examples: %v", err)
		}
		log.Printf("imported examples created=%d rejected=%d", summary.Created, len(summary.Rejected))
		for _, r := range summary.Rejected {
			log.Printf("rejected row=%d reason=%s", r.Row, r.Reason)
		}
	case "lawfirms":
		if *workspaceID == "" {
			log.Fatal("-workspace is required for lawfirms")
		}
		summary, err := imp.ImportLawFirms(ctx, f, *workspaceID)
		if err != nil {
			log.Fatalf("import law firms: %v", err)
		}
		log.Printf("imported law firms created=%d columns_added=%d rejected=%d", summary.Created, summary.ColumnsAdded, len(summary.Rejected))
		for _, r := range summary.Rejected {
			log.Printf("rejected row=%d reason=%s", r.Row, r.Reason)
		}
	default:
		log.Fatalf("unknown -kind %q (want examples or lawfirms)", *kind)
	}
}
