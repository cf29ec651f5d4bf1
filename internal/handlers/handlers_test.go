package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/devlinkhq/devlink/internal/config"
	"github.com/devlinkhq/devlink/internal/handlers"
	"github.com/devlinkhq/devlink/internal/models"
	"github.com/devlinkhq/devlink/internal/services"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Link{}, &models.UserTheme{})
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// sessionAs fakes the auth middleware for a known subject.
func sessionAs(subject, email string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("authSubject", subject)
		c.Locals("authEmail", email)
		return c.Next()
	}
}

func seedUser(t *testing.T, db *gorm.DB, subject, username string) *models.User {
	user := &models.User{
		AuthSubject: subject,
		Email:       subject + "@example.com",
		Name:        "Test User",
		Username:    &username,
		Provider:    "github",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

func TestGetPublicProfile(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "subj-1", "alice")
	_, err := services.CreateLink(db, alice, services.CreateLinkInput{Title: "Site", URL: "https://a"})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	app := fiber.New()
	handler := &handlers.ProfileHandler{DB: db}
	app.Get("/api/public-profile", handler.GetProfile)

	req := httptest.NewRequest("GET", "/api/public-profile?username=alice", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var profile map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if profile["username"] != "alice" {
		t.Errorf("Expected username alice, got %v", profile["username"])
	}
	links, ok := profile["links"].([]interface{})
	if !ok || len(links) != 1 {
		t.Errorf("Expected 1 link in profile, got %v", profile["links"])
	}

	// Unknown username is a 404.
	req = httptest.NewRequest("GET", "/api/public-profile?username=nobody", nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404 for unknown profile, got %d", resp.StatusCode)
	}

	// Missing username is a 400.
	req = httptest.NewRequest("GET", "/api/public-profile", nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != 400 {
		t.Errorf("Expected status 400 for missing username, got %d", resp.StatusCode)
	}
}

func TestCheckUsernameEndpoint(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "subj-1", "alice")

	app := fiber.New()
	handler := &handlers.UserHandler{DB: db}
	app.Post("/api/check-username", handler.CheckUsername)

	body, _ := json.Marshal(map[string]string{"username": "alice"})
	req := httptest.NewRequest("POST", "/api/check-username", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["available"] != false {
		t.Errorf("Expected alice to be unavailable, got %v", result["available"])
	}

	body, _ = json.Marshal(map[string]string{"username": "fresh"})
	req = httptest.NewRequest("POST", "/api/check-username", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	json.NewDecoder(resp.Body).Decode(&result)
	if result["available"] != true {
		t.Errorf("Expected fresh to be available, got %v", result["available"])
	}
}

func TestTrackClickEndpoint(t *testing.T) {
	db := setupTestDB(t)
	if err := db.AutoMigrate(&models.ClickLog{}); err != nil {
		t.Fatalf("Failed to migrate clicks_log: %v", err)
	}
	alice := seedUser(t, db, "subj-1", "alice")
	linkID, _ := services.CreateLink(db, alice, services.CreateLinkInput{Title: "Site", URL: "https://a"})

	app := fiber.New()
	handler := &handlers.LinksHandler{DB: db, Sink: services.NewClickSink(db)}
	app.Post("/api/track-click", handler.TrackClick)

	body, _ := json.Marshal(map[string]interface{}{"linkId": linkID})
	req := httptest.NewRequest("POST", "/api/track-click", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)")
	req.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["deviceType"] != "tablet" {
		t.Errorf("Expected tablet classification, got %v", result["deviceType"])
	}

	var entry models.ClickLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("Expected a click log entry: %v", err)
	}
	if entry.IPAddress != "198.51.100.9" {
		t.Errorf("Expected first forwarded IP, got %q", entry.IPAddress)
	}

	// String link ids are accepted too.
	req = httptest.NewRequest("POST", "/api/track-click",
		strings.NewReader(`{"linkId":"`+itoa(linkID)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200 for string link id, got %d", resp.StatusCode)
	}
}

func TestLinksEndpoints(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "subj-1", "alice")

	app := fiber.New()
	handler := &handlers.LinksHandler{DB: db, Sink: services.NewClickSink(db)}
	auth := sessionAs("subj-1", "subj-1@example.com")
	app.Get("/api/links", auth, handler.ListLinks)
	app.Post("/api/links", auth, handler.CreateLink)
	app.Put("/api/links", auth, handler.UpdateLink)
	app.Delete("/api/links", auth, handler.DeleteLink)
	app.Patch("/api/links/:linkId/toggle", auth, handler.ToggleVisibility)

	// Create
	body, _ := json.Marshal(map[string]string{"title": "Site", "url": "https://a"})
	req := httptest.NewRequest("POST", "/api/links", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}
	var created map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&created)
	linkID := created["linkId"]
	if linkID == nil {
		t.Fatal("Expected linkId in create response")
	}

	// Update visibility via PUT with a flexible bool
	body, _ = json.Marshal(map[string]interface{}{"linkId": linkID, "isVisible": 0})
	req = httptest.NewRequest("PUT", "/api/links", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200 on update, got %d", resp.StatusCode)
	}

	// Toggle back on
	req = httptest.NewRequest("PATCH", "/api/links/"+itoaAny(linkID)+"/toggle", nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200 on toggle, got %d", resp.StatusCode)
	}
	var toggled map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&toggled)
	if toggled["isVisible"] != true {
		t.Errorf("Expected link visible after toggle, got %v", toggled["isVisible"])
	}

	// List
	req = httptest.NewRequest("GET", "/api/links", nil)
	resp, _ = app.Test(req)
	var listing map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&listing)
	links, _ := listing["links"].([]interface{})
	if len(links) != 1 {
		t.Fatalf("Expected 1 link, got %d", len(links))
	}

	// Delete
	req = httptest.NewRequest("DELETE", "/api/links?linkId="+itoaAny(linkID), nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200 on delete, got %d", resp.StatusCode)
	}
}

func TestAdminSuspendEndpoint(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "subj-1", "alice")
	cfg := &config.Config{AdminEmail: "admin@example.com"}

	app := fiber.New()
	handler := &handlers.AdminHandler{DB: db, Cfg: cfg}
	auth := sessionAs("admin-subj", "admin@example.com")
	app.Patch("/api/admin/users/:userId/suspend", auth, handler.Suspend)
	app.Delete("/api/admin/users/:userId", auth, handler.DeleteUser)

	body, _ := json.Marshal(map[string]bool{"suspended": true})
	req := httptest.NewRequest("PATCH", "/api/admin/users/"+itoa(alice.ID)+"/suspend", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	suspended, _ := services.IsSuspended(db, "subj-1")
	if !suspended {
		t.Error("Expected alice suspended")
	}

	req = httptest.NewRequest("DELETE", "/api/admin/users/"+itoa(alice.ID), nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200 on delete, got %d", resp.StatusCode)
	}
	if _, err := services.ResolveUser(db, "subj-1"); err == nil {
		t.Error("Expected alice to be gone")
	}
}

func TestAnalyticsExportCSVEndpoint(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "subj-1", "alice")
	if _, err := services.CreateLink(db, alice, services.CreateLinkInput{Title: "Site", URL: "https://a"}); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	app := fiber.New()
	handler := &handlers.AnalyticsHandler{DB: db}
	app.Get("/api/analytics/export", sessionAs("subj-1", "subj-1@example.com"), handler.ExportAnalytics)

	req := httptest.NewRequest("GET", "/api/analytics/export?format=csv", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Expected text/csv content type, got %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Expected attachment disposition, got %q", cd)
	}

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if !strings.HasPrefix(buf.String(), "Link Title,Link Type,URL,Clicks,Visible,Created At\n") {
		t.Errorf("Unexpected CSV body: %q", buf.String())
	}
}

func TestErrorEnvelopeShape(t *testing.T) {
	db := setupTestDB(t)

	app := fiber.New()
	handler := &handlers.UserHandler{DB: db}
	app.Get("/api/user", sessionAs("ghost", "ghost@example.com"), handler.GetUser)

	req := httptest.NewRequest("GET", "/api/user", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("Expected status 404, got %d", resp.StatusCode)
	}
	var envelope map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&envelope)
	if envelope["ok"] != false || envelope["message"] != "User not found" {
		t.Errorf("Unexpected error envelope: %v", envelope)
	}
	if envelope["type"] != "not_found" || envelope["timestamp"] == nil || envelope["url"] == nil {
		t.Errorf("Error envelope missing fields: %v", envelope)
	}
}

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// itoaAny renders a link id that came back through JSON as float64.
func itoaAny(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatUint(uint64(f), 10)
	}
	return ""
}
