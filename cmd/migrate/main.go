// Command migrate applies versioned SQL migrations to the warehouse dataset.
// Migration files live in migrations/bigquery as NNNN_name.sql and may use
// {{PROJECT_ID}} and {{DATASET_ID}} placeholders. Applied versions are
// recorded in a schema_migrations table so reruns are safe.
package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	bqstore "github.com/acarvalho/p2p-quality/internal/infra/bigquery"
)

type Migration struct {
	Version  int
	Name     string
	Filename string
	SQL      string
	Checksum string
}

type AppliedMigration struct {
	Version   int
	Name      string
	AppliedAt time.Time
	Checksum  string
	AppliedBy string
}

var (
	projectID     = flag.String("project", bqstore.ProjectID(), "GCP project ID")
	datasetID     = flag.String("dataset", bqstore.DatasetID(), "BigQuery dataset ID")
	appliedBy     = flag.String("applied-by", "migrate-cli", "Name recorded against applied migrations")
	migrationsDir = flag.String("migrations", "migrations/bigquery", "Path to migrations directory")
)

var migrationFilePattern = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

func main() {
	flag.Parse()

	ctx := context.Background()

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatalf("Failed to create BigQuery client: %v", err)
	}
	defer client.Close()

	log.Printf("Connected to BigQuery project %s, dataset %s", *projectID, *datasetID)

	if err := ensureSchemaMigrationsTable(ctx, client); err != nil {
		log.Fatalf("Failed to ensure schema_migrations table: %v", err)
	}

	migrations, err := readMigrations()
	if err != nil {
		log.Fatalf("Failed to read migrations: %v", err)
	}
	log.Printf("Found %d migration files", len(migrations))

	applied, err := getAppliedMigrations(ctx, client)
	if err != nil {
		log.Fatalf("Failed to get applied migrations: %v", err)
	}
	log.Printf("Found %d already applied migrations", len(applied))

	appliedVersions := make(map[int]bool)
	for _, am := range applied {
		appliedVersions[am.Version] = true
	}

	appliedCount := 0
	for _, m := range migrations {
		if appliedVersions[m.Version] {
			log.Printf("  [SKIP] %04d_%s (already applied)", m.Version, m.Name)
			continue
		}

		log.Printf("  [RUN]  %04d_%s", m.Version, m.Name)
		if err := executeMigration(ctx, client, m); err != nil {
			log.Fatalf("Failed to execute migration %04d_%s: %v", m.Version, m.Name, err)
		}
		if err := recordMigration(ctx, client, m); err != nil {
			log.Fatalf("Failed to record migration %04d_%s: %v", m.Version, m.Name, err)
		}
		log.Printf("  [OK]   %04d_%s", m.Version, m.Name)
		appliedCount++
	}

	if appliedCount == 0 {
		log.Println("No new migrations to apply. Dataset is up to date.")
	} else {
		log.Printf("Successfully applied %d migration(s)", appliedCount)
	}
}

func ensureSchemaMigrationsTable(ctx context.Context, client *bigquery.Client) error {
	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS `+"`%s.%s.schema_migrations`"+` (
			version       INT64 NOT NULL,
			name          STRING NOT NULL,
			applied_at    TIMESTAMP NOT NULL,
			checksum      STRING,
			applied_by    STRING
		)
	`, *projectID, *datasetID)

	return runStatement(ctx, client, sql, nil)
}

// parseMigrationFilename extracts the version and name from an NNNN_name.sql
// filename. ok is false when the filename does not follow the convention.
func parseMigrationFilename(filename string) (version int, name string, ok bool) {
	matches := migrationFilePattern.FindStringSubmatch(filename)
	if matches == nil {
		return 0, "", false
	}
	version, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, "", false
	}
	return version, matches[2], true
}

func readMigrations() ([]Migration, error) {
	dir := *migrationsDir
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		// Allow running from inside cmd/migrate.
		dir = "../../" + *migrationsDir
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil, fmt.Errorf("migrations directory not found: %s", *migrationsDir)
		}
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var migrations []Migration
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		version, name, ok := parseMigrationFilename(file.Name())
		if !ok {
			log.Printf("Skipping file with invalid format: %s", file.Name())
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", file.Name(), err)
		}

		sql := string(content)
		sql = strings.ReplaceAll(sql, "{{PROJECT_ID}}", *projectID)
		sql = strings.ReplaceAll(sql, "{{DATASET_ID}}", *datasetID)

		// Checksum the original content so the same migration applied to a
		// different project/dataset is still recognized as applied.
		checksum := fmt.Sprintf("%x", sha256.Sum256(content))

		migrations = append(migrations, Migration{
			Version:  version,
			Name:     name,
			Filename: file.Name(),
			SQL:      sql,
			Checksum: checksum,
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func getAppliedMigrations(ctx context.Context, client *bigquery.Client) ([]AppliedMigration, error) {
	sql := fmt.Sprintf(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM `+"`%s.%s.schema_migrations`"+`
		ORDER BY version ASC
	`, *projectID, *datasetID)

	query := client.Query(sql)
	it, err := query.Read(ctx)
	if err != nil {
		// First run against a fresh dataset.
		if strings.Contains(err.Error(), "Not found") {
			return []AppliedMigration{}, nil
		}
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	var applied []AppliedMigration
	for {
		var row struct {
			Version   int64
			Name      string
			AppliedAt time.Time
			Checksum  bigquery.NullString
			AppliedBy bigquery.NullString
		}

		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating results: %w", err)
		}

		am := AppliedMigration{
			Version:   int(row.Version),
			Name:      row.Name,
			AppliedAt: row.AppliedAt,
		}
		if row.Checksum.Valid {
			am.Checksum = row.Checksum.StringVal
		}
		if row.AppliedBy.Valid {
			am.AppliedBy = row.AppliedBy.StringVal
		}
		applied = append(applied, am)
	}

	return applied, nil
}

func executeMigration(ctx context.Context, client *bigquery.Client, migration Migration) error {
	return runStatement(ctx, client, migration.SQL, nil)
}

func recordMigration(ctx context.Context, client *bigquery.Client, migration Migration) error {
	sql := fmt.Sprintf(`
		INSERT INTO `+"`%s.%s.schema_migrations`"+`
		(version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
	`, *projectID, *datasetID)

	params := []bigquery.QueryParameter{
		{Name: "version", Value: migration.Version},
		{Name: "name", Value: migration.Name},
		{Name: "checksum", Value: migration.Checksum},
		{Name: "applied_by", Value: *appliedBy},
	}
	return runStatement(ctx, client, sql, params)
}

func runStatement(ctx context.Context, client *bigquery.Client, sql string, params []bigquery.QueryParameter) error {
	query := client.Query(sql)
	query.Parameters = params

	job, err := query.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
