package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/vncsmyrnk/votefeed/internal/adapters/repository/postgres"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("a migration name is required, or \"all\" to apply every up migration.")
	}
	migrationName := os.Args[1]

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, postgres.ConnStringFromEnv())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if migrationName == "all" {
		err = postgres.ApplyMigrations(ctx, db)
	} else {
		err = postgres.ApplyMigration(ctx, db, migrationName)
	}
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Migration file executed successfully.")
}
