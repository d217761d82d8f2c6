package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/helixkit/userstore/internal/userstore"
	storagePostgres "github.com/helixkit/userstore/internal/userstore/postgres"
	"github.com/helixkit/userstore/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample persons and users for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		storage := storagePostgres.NewStorage(gormDB, cfg.Database.QueryTimeout)
		domain := userstore.NewService(storage, logger.LoggerWrapper())
		ctx := context.Background()

		samples := []struct {
			person   userstore.Person
			login    string
			password string
		}{
			{
				person:   userstore.Person{Firstname: "Ada", Lastname: "Lovelace", Email: "ada@example.com", Phone: "000"},
				login:    "ada",
				password: "password",
			},
			{
				person:   userstore.Person{Firstname: "Blaise", Lastname: "Pascal", Email: "blaise@example.com", Phone: "111"},
				login:    "blaise",
				password: "password",
			},
		}

		for _, sample := range samples {
			var exists int
			row := gormDB.Raw("SELECT 1 FROM applicationuser WHERE login = ?", sample.login).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Println("user already exists, skipping:", sample.login)
				continue
			}

			person, err := domain.CreatePerson(ctx, sample.person)
			if err != nil {
				log.Fatalf("failed to seed person %s: %v", sample.person.Email, err)
			}

			user, err := domain.CreateUser(ctx, userstore.AppUser{
				Login:    sample.login,
				Password: sample.password,
				Person:   person,
			})
			if err != nil {
				log.Fatalf("failed to seed user %s: %v", sample.login, err)
			}

			fmt.Println("Seeded user:", user.Login, "uuid:", user.UUID)
		}
	},
}
