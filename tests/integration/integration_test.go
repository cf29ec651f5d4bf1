package integration_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/devlinkhq/devlink/internal/config"
	"github.com/devlinkhq/devlink/internal/database"
	"github.com/devlinkhq/devlink/internal/models"
	"github.com/devlinkhq/devlink/internal/services"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

// TestWithMariaDB tests the service with a real MariaDB container
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	image := os.Getenv("DB_IMAGE")
	if image == "" {
		image = "mariadb:11"
	}

	// Start MariaDB container
	mariadbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "rootpass",
				"MYSQL_DATABASE":      "testdb",
				"MYSQL_USER":          "testuser",
				"MYSQL_PASSWORD":      "testpass",
			},
			WaitingFor: wait.ForLog("ready for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}
	defer func() {
		if err := mariadbContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MariaDB container: %v", err)
		}
	}()

	host, err := mariadbContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := mariadbContainer.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBType:            "mysql",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	// Wait for database to be ready
	time.Sleep(5 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Run("UserLifecycle", func(t *testing.T) {
		testUserLifecycle(t, db)
	})
	t.Run("LinkAndClickFlow", func(t *testing.T) {
		testLinkAndClickFlow(t, db)
	})
	t.Run("UsernameUniqueConstraint", func(t *testing.T) {
		testUsernameUniqueConstraint(t, db)
	})
}

func testUserLifecycle(t *testing.T, db *gorm.DB) {
	user, err := services.SyncUser(db, services.SyncUserInput{
		Subject:  "it-subj-1",
		Email:    "it1@example.com",
		Name:     "Integration One",
		Provider: "github",
	})
	if err != nil {
		t.Fatalf("SyncUser failed: %v", err)
	}

	if err := services.UpdateProfile(db, user, services.ProfileUpdate{Username: strPtr("it-alice")}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if err := services.UpdateBio(db, user, "integration bio"); err != nil {
		t.Fatalf("UpdateBio failed: %v", err)
	}

	profile, err := services.ResolveProfile(db, "it-alice")
	if err != nil {
		t.Fatalf("ResolveProfile failed: %v", err)
	}
	if profile.Bio != "integration bio" {
		t.Errorf("Expected bio round trip, got %q", profile.Bio)
	}

	if err := services.DeleteUser(db, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
}

func testLinkAndClickFlow(t *testing.T, db *gorm.DB) {
	user, err := services.SyncUser(db, services.SyncUserInput{
		Subject:  "it-subj-2",
		Email:    "it2@example.com",
		Name:     "Integration Two",
		Username: strPtr("it-bob"),
		Provider: "github",
	})
	if err != nil {
		t.Fatalf("SyncUser failed: %v", err)
	}
	defer services.DeleteUser(db, user.ID)

	linkID, err := services.CreateLink(db, user, services.CreateLinkInput{
		Title: "Integration", URL: "https://example.com",
	})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	sink := services.NewClickSink(db)
	for i := 0; i < 3; i++ {
		if _, err := services.RecordClick(db, sink, linkID, services.ClickMeta{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0) Chrome", IPAddress: "198.51.100.1",
		}); err != nil {
			t.Fatalf("RecordClick failed: %v", err)
		}
	}

	links, err := services.ListLinks(db, user.ID)
	if err != nil {
		t.Fatalf("ListLinks failed: %v", err)
	}
	if links[0].Clicks != 3 {
		t.Errorf("Expected 3 clicks, got %d", links[0].Clicks)
	}

	analytics, err := services.GetUserAnalytics(db, user, services.WindowFromDays(30))
	if err != nil {
		t.Fatalf("GetUserAnalytics failed: %v", err)
	}
	if analytics.Summary.TotalClicks != 3 {
		t.Errorf("Expected 3 total clicks in analytics, got %d", analytics.Summary.TotalClicks)
	}
}

func testUsernameUniqueConstraint(t *testing.T, db *gorm.DB) {
	first, err := services.SyncUser(db, services.SyncUserInput{
		Subject: "it-subj-3", Email: "it3@example.com", Username: strPtr("it-unique"), Provider: "github",
	})
	if err != nil {
		t.Fatalf("SyncUser failed: %v", err)
	}
	defer services.DeleteUser(db, first.ID)

	second, err := services.SyncUser(db, services.SyncUserInput{
		Subject: "it-subj-4", Email: "it4@example.com", Provider: "github",
	})
	if err != nil {
		t.Fatalf("Second SyncUser failed: %v", err)
	}
	defer services.DeleteUser(db, second.ID)

	// The unique index closes the check-then-write race.
	err = services.UpdateProfile(db, second, services.ProfileUpdate{Username: strPtr("it-unique")})
	if err == nil {
		t.Fatal("Expected duplicate username claim to fail")
	}

	// Sanity: clicks_log exists only when provisioned; AutoMigrate must not
	// create it.
	if db.Migrator().HasTable(&models.ClickLog{}) {
		t.Error("clicks_log must not be auto-migrated")
	}
}
