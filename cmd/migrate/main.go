package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"swiftpass/internal/config"
	"swiftpass/internal/identity"
	"swiftpass/internal/store"
	"swiftpass/internal/student"
)

const schemaPath = "migrations/schema.sql"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()
	ctx := context.Background()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		handleUp(ctx, db)
	case "seed-admin":
		handleSeedAdmin(ctx, cfg, db, os.Args[2:])
	case "status":
		handleStatus(ctx, db)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func handleUp(ctx context.Context, db *store.DB) {
	script, err := os.ReadFile(schemaPath)
	if err != nil {
		log.Fatalf("read schema: %v", err)
	}
	if err := db.ApplySchema(ctx, string(script)); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	log.Println("schema applied")
}

func handleSeedAdmin(ctx context.Context, cfg config.App, db *store.DB, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate seed-admin <email> <password>")
		os.Exit(1)
	}
	email, password := args[0], args[1]

	students := student.NewRepository(db.Client)
	creds := identity.NewStore(db.Client, cfg.BcryptCost)
	accounts := identity.NewService(db.Client, creds, students)

	profile, err := accounts.Register(ctx, identity.RegisterInput{
		Email:         email,
		Password:      password,
		FullName:      "Administrator",
		StudentNumber: "ADMIN",
		Course:        "N/A",
		IsAdmin:       true,
	})
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	log.Printf("admin account created: %s (%s)", profile.Email, profile.ID)
}

// handleStatus prints row counts per table, the moral equivalent of the
// old setup-verification script.
func handleStatus(ctx context.Context, db *store.DB) {
	for _, table := range []string{"students", "credentials", "attendance", "qr_codes"} {
		var count int
		row := db.Client.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table)
		if err := row.Scan(&count); err != nil {
			log.Fatalf("count %s: %v", table, err)
		}
		fmt.Printf("%-12s %d rows\n", table, count)
	}
}

func printUsage() {
	fmt.Fprint(os.Stdout, `Usage: migrate <command>

Commands:
  up                              Apply the schema
  seed-admin <email> <password>   Create an admin account
  status                          Show row counts per table
  help                            Show this help message

Environment Variables:
  DATABASE_URL   Postgres connection URL
`)
}
