// Atlas - Hierarchical application, attribute and organisation registry
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aethra/atlas/internal/api"
	"github.com/aethra/atlas/internal/auth"
	"github.com/aethra/atlas/internal/config"
	"github.com/aethra/atlas/internal/database"
	"github.com/aethra/atlas/internal/models"
	"github.com/aethra/atlas/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var Version = "1.0.0"

func main() {
	if len(os.Args) > 1 {
		runCLI()
		return
	}
	startServer()
}

func startServer() {
	fmt.Printf("Atlas %s - Starting...\n", Version)

	cfg, db := connect()
	log.Println("Database connected")

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations complete")

	stores := store.New(db)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)

	handler := api.NewHandler(db, jwtService)
	authHandler := api.NewAuthHandler(db, jwtService)
	appHandler := api.NewApplicationHandler(stores.Applications)
	attrHandler := api.NewAttributeHandler(stores.Attributes)
	orgHandler := api.NewOrganisationHandler(stores.Organisations)
	router := api.SetupRouter(handler, authHandler, appHandler, attrHandler, orgHandler, cfg.CORSAllowedOrigins)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func connect() (*config.Config, *gorm.DB) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	return cfg, db
}

// CLI
func runCLI() {
	cmd := os.Args[1]
	switch cmd {
	case "serve":
		startServer()
	case "migrate":
		_, db := connect()
		if err := database.RunMigrations(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Println("Migrations complete")
	case "seed":
		runSeed()
	case "user":
		runUserCmd()
	default:
		printUsage()
	}
}

func printUsage() {
	fmt.Println(`Usage: atlas <command>
Commands:
  serve                            Start server
  migrate                          Run migrations
  seed                             Create demo data
  user list                        List users
  user create --email= --password= Create user`)
}

func runUserCmd() {
	if len(os.Args) < 3 {
		printUsage()
		return
	}
	_, db := connect()
	switch os.Args[2] {
	case "list":
		var users []models.User
		db.Find(&users)
		for _, u := range users {
			fmt.Printf("%s <%s>\n", u.FirstName+" "+u.LastName, u.Email)
		}
	case "create":
		email := getFlag("--email")
		password := getFlag("--password")
		if email == "" || password == "" {
			printUsage()
			return
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Fatalf("Failed: %v", err)
		}
		if err := db.Create(&models.User{
			ID:           uuid.New(),
			Email:        email,
			PasswordHash: hash,
			FirstName:    getFlag("--first"),
			LastName:     getFlag("--last"),
			IsActive:     true,
		}).Error; err != nil {
			log.Fatalf("Failed: %v", err)
		}
		fmt.Printf("User created: %s\n", email)
	}
}

func getFlag(name string) string {
	prefix := name + "="
	for _, arg := range os.Args {
		if len(arg) > len(prefix) && arg[:len(prefix)] == prefix {
			return arg[len(prefix):]
		}
	}
	return ""
}

// Demo data
func runSeed() {
	_, db := connect()
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	stores := store.New(db)

	orgA, err := stores.Organisations.Create(store.OrganisationCreateInput{
		Name: "Company A",
		Code: "COMP-A",
	})
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	sub1, err := stores.Organisations.Create(store.OrganisationCreateInput{
		Name:     "Subsidiary 1",
		Code:     "SUB-1",
		ParentID: &orgA.ID,
	})
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	category, err := stores.Attributes.Create(store.AttributeCreateInput{
		Name:     "Category A",
		DataType: models.DataTypeString,
		Value:    "general",
	})
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	tag, err := stores.Attributes.Create(store.AttributeCreateInput{
		Name:     "Tag 1",
		DataType: models.DataTypeBoolean,
		Value:    "true",
		ParentID: &category.ID,
	})
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	portal, err := stores.Applications.Create(store.ApplicationCreateInput{
		Name:            "Portal",
		Description:     "Customer-facing portal",
		Properties:      models.JSONB{"environment": "production"},
		AttributeIDs:    []uuid.UUID{category.ID, tag.ID},
		OrganisationIDs: []uuid.UUID{orgA.ID, sub1.ID},
	})
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	if _, err := stores.Applications.Create(store.ApplicationCreateInput{
		Name:     "Portal API",
		ParentID: &portal.ID,
	}); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	fmt.Println("Demo data created")
}
