package services_test

import (
	"testing"

	"github.com/devlinkhq/devlink/internal/models"
	"github.com/devlinkhq/devlink/internal/services"
	"github.com/devlinkhq/devlink/internal/types"
)

func TestCreateLinkDefaultsAndOrdering(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "subj-1", strPtr("alice"))

	firstID, err := services.CreateLink(db, alice, services.CreateLinkInput{
		Title: "My Site",
		URL:   "https://example.com",
	})
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	_, err = services.CreateLink(db, alice, services.CreateLinkInput{
		Type:  models.LinkTypeSocial,
		Title: "GitHub",
		URL:   "https://github.com/alice",
		Icon:  "FaGithub",
	})
	if err != nil {
		t.Fatalf("Second CreateLink failed: %v", err)
	}

	links, err := services.ListLinks(db, alice.ID)
	if err != nil {
		t.Fatalf("ListLinks failed: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("Expected 2 links, got %d", len(links))
	}
	if links[0].ID != firstID {
		t.Errorf("Expected first created link first in display order")
	}
	if links[0].LinkType != models.LinkTypeProject || links[0].Icon != models.DefaultIcon {
		t.Errorf("Expected project/FaLink defaults, got %s/%s", links[0].LinkType, links[0].Icon)
	}
	if !links[0].IsVisible {
		t.Error("Expected new links to be visible")
	}
	if links[0].DisplayOrder != 1 || links[1].DisplayOrder != 2 {
		t.Errorf("Expected display orders 1,2 got %d,%d", links[0].DisplayOrder, links[1].DisplayOrder)
	}
}

func TestCreateLinkValidation(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "subj-1", strPtr("alice"))

	_, err := services.CreateLink(db, alice, services.CreateLinkInput{Title: "", URL: ""})
	appErr, ok := err.(*types.AppError)
	if !ok || appErr.Code != 400 {
		t.Fatalf("Expected validation error, got %v", err)
	}

	_, err = services.CreateLink(db, alice, services.CreateLinkInput{
		Type: "banner", Title: "x", URL: "https://x",
	})
	appErr, ok = err.(*types.AppError)
	if !ok || appErr.Code != 400 {
		t.Fatalf("Expected validation error for bad type, got %v", err)
	}
}

func TestUpdateLinkPartialAndForeign(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "subj-1", strPtr("alice"))
	bob := seedUser(t, db, "subj-2", strPtr("bob"))

	linkID, _ := services.CreateLink(db, alice, services.CreateLinkInput{Title: "a", URL: "https://a"})

	newTitle := "renamed"
	if err := services.UpdateLink(db, alice, linkID, services.LinkUpdate{Title: &newTitle}); err != nil {
		t.Fatalf("UpdateLink failed: %v", err)
	}
	links, _ := services.ListLinks(db, alice.ID)
	if links[0].Title != "renamed" || links[0].URL != "https://a" {
		t.Errorf("Expected partial update, got title=%q url=%q", links[0].Title, links[0].URL)
	}

	// Updating someone else's link affects zero rows and stays silent.
	hijack := "hijacked"
	if err := services.UpdateLink(db, bob, linkID, services.LinkUpdate{Title: &hijack}); err != nil {
		t.Fatalf("Expected foreign update to be a silent no-op, got %v", err)
	}
	links, _ = services.ListLinks(db, alice.ID)
	if links[0].Title != "renamed" {
		t.Errorf("Foreign update must not change the row, got %q", links[0].Title)
	}

	// No fields at all is a validation error.
	err := services.UpdateLink(db, alice, linkID, services.LinkUpdate{})
	appErr, ok := err.(*types.AppError)
	if !ok || appErr.Code != 400 {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestDeleteLinkIdempotent(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "subj-1", strPtr("alice"))
	linkID, _ := services.CreateLink(db, alice, services.CreateLinkInput{Title: "a", URL: "https://a"})

	if err := services.DeleteLink(db, alice, linkID); err != nil {
		t.Fatalf("DeleteLink failed: %v", err)
	}
	if err := services.DeleteLink(db, alice, linkID); err != nil {
		t.Fatalf("Expected repeated delete to be a no-op, got %v", err)
	}
	links, _ := services.ListLinks(db, alice.ID)
	if len(links) != 0 {
		t.Errorf("Expected no links, got %d", len(links))
	}
}

func TestToggleVisibility(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "subj-1", strPtr("alice"))
	linkID, _ := services.CreateLink(db, alice, services.CreateLinkInput{Title: "a", URL: "https://a"})

	visible, err := services.ToggleVisibility(db, alice, linkID)
	if err != nil {
		t.Fatalf("ToggleVisibility failed: %v", err)
	}
	if visible {
		t.Error("Expected toggle to hide a visible link")
	}
	visible, _ = services.ToggleVisibility(db, alice, linkID)
	if !visible {
		t.Error("Expected second toggle to show the link again")
	}

	_, err = services.ToggleVisibility(db, alice, 99999)
	appErr, ok := err.(*types.AppError)
	if !ok || appErr.Code != 404 {
		t.Fatalf("Expected not found for unknown link, got %v", err)
	}
}

func TestRecordClick(t *testing.T) {
	db := setupTestDB(t)
	if err := db.AutoMigrate(&models.ClickLog{}); err != nil {
		t.Fatalf("Failed to migrate clicks_log: %v", err)
	}
	sink := services.NewClickSink(db)

	alice := seedUser(t, db, "subj-1", strPtr("alice"))
	linkID, _ := services.CreateLink(db, alice, services.CreateLinkInput{Title: "a", URL: "https://a"})

	meta := services.ClickMeta{
		Referrer:  "https://twitter.com",
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) Mobile Safari",
		IPAddress: "203.0.113.7",
	}
	deviceType, err := services.RecordClick(db, sink, linkID, meta)
	if err != nil {
		t.Fatalf("RecordClick failed: %v", err)
	}
	if deviceType != "mobile" {
		t.Errorf("Expected mobile classification, got %q", deviceType)
	}

	links, _ := services.ListLinks(db, alice.ID)
	if links[0].Clicks != 1 {
		t.Errorf("Expected 1 click, got %d", links[0].Clicks)
	}

	var entries []models.ClickLog
	db.Find(&entries)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 click log entry, got %d", len(entries))
	}
	if entries[0].LinkID != linkID || entries[0].UserID != alice.ID {
		t.Errorf("Click log entry references wrong link/user: %+v", entries[0])
	}
	if entries[0].DeviceType != "mobile" || entries[0].IPAddress != "203.0.113.7" {
		t.Errorf("Click log metadata mismatch: %+v", entries[0])
	}
}

func TestRecordClickUnknownLinkSucceeds(t *testing.T) {
	db := setupTestDB(t)
	sink := services.NewClickSink(db) // no clicks_log table, noop sink

	if _, err := services.RecordClick(db, sink, 424242, services.ClickMeta{}); err != nil {
		t.Fatalf("Expected unknown link click to succeed, got %v", err)
	}
}

func TestClassifyDevice(t *testing.T) {
	cases := []struct {
		ua   string
		want string
	}{
		{"Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)", "tablet"},
		{"Mozilla/5.0 (Linux; Android 13; SM-X700) Safari", "tablet"},
		{"Mozilla/5.0 (Linux; Android 13; Pixel 7) Mobile Safari", "mobile"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 16_0) Mobile", "mobile"},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome", "desktop"},
		{"", "desktop"},
	}
	for _, tc := range cases {
		if got := services.ClassifyDevice(tc.ua); got != tc.want {
			t.Errorf("ClassifyDevice(%q) = %q, want %q", tc.ua, got, tc.want)
		}
	}
}
