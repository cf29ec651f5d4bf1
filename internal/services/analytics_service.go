package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/devlinkhq/devlink/internal/models"
	"github.com/devlinkhq/devlink/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// adminQueryHint caps the unbounded cross-user aggregates on MySQL. It
// renders as an inline comment and is inert on other dialects.
var adminQueryHint = hints.New("MAX_EXECUTION_TIME(5000)")

// Window is the analytics lookback range, inclusive of both ends.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFromDays builds a window covering the trailing number of days.
func WindowFromDays(days int) Window {
	if days <= 0 {
		days = 30
	}
	now := time.Now()
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

// WindowFromDates parses an explicit inclusive date range. Reports false when
// either date fails to parse or the range is inverted.
func WindowFromDates(layout, start, end string) (Window, bool) {
	s, errS := time.Parse(layout, start)
	e, errE := time.Parse(layout, end)
	if errS != nil || errE != nil || e.Before(s) {
		return Window{}, false
	}
	return Window{Start: s, End: e.AddDate(0, 0, 1).Add(-time.Nanosecond)}, true
}

// DayCount is one bucket of a per-day series.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// TypeClicks is the click sum for one link type.
type TypeClicks struct {
	LinkType string `json:"link_type"`
	Clicks   int64  `json:"clicks"`
}

// TypeCount is the link count for one link type.
type TypeCount struct {
	LinkType string `json:"link_type"`
	Count    int64  `json:"count"`
}

// TopLink is one row of the top-performing-links board.
type TopLink struct {
	Title    string `json:"title"`
	Clicks   int64  `json:"clicks"`
	LinkType string `json:"link_type"`
	Icon     string `json:"icon"`
}

// UserAnalyticsSummary is the headline block of a user's dashboard.
type UserAnalyticsSummary struct {
	TotalLinks       int64     `json:"totalLinks"`
	VisibleLinks     int64     `json:"visibleLinks"`
	TotalClicks      int64     `json:"totalClicks"`
	AvgClicksPerLink int64     `json:"avgClicksPerLink"`
	ClickThroughRate string    `json:"clickThroughRate"`
	AccountCreatedAt time.Time `json:"accountCreatedAt"`
}

// UserAnalytics is the full per-user analytics document, computed fresh on
// every request.
type UserAnalytics struct {
	Summary              UserAnalyticsSummary `json:"summary"`
	ClicksByType         []TypeClicks         `json:"clicksByType"`
	TopLinks             []TopLink            `json:"topLinks"`
	LinksOverTime        []DayCount           `json:"linksOverTime"`
	ClicksOverTime       []DayCount           `json:"clicksOverTime"`
	LinkTypeDistribution []TypeCount          `json:"linkTypeDistribution"`
}

// GetUserAnalytics aggregates one user's link and click data over the window.
func GetUserAnalytics(db *gorm.DB, user *models.User, window Window) (*UserAnalytics, error) {
	out := &UserAnalytics{
		Summary: UserAnalyticsSummary{AccountCreatedAt: user.CreatedAt},
	}

	links := db.Model(&models.Link{}).Where("user_id = ?", user.ID)

	if err := links.Session(&gorm.Session{}).Count(&out.Summary.TotalLinks).Error; err != nil {
		return nil, types.Unexpected(err)
	}
	if err := links.Session(&gorm.Session{}).Where("is_visible = ?", true).
		Count(&out.Summary.VisibleLinks).Error; err != nil {
		return nil, types.Unexpected(err)
	}
	if err := links.Session(&gorm.Session{}).
		Select("COALESCE(SUM(clicks), 0)").
		Scan(&out.Summary.TotalClicks).Error; err != nil {
		return nil, types.Unexpected(err)
	}

	out.Summary.AvgClicksPerLink = 0
	if out.Summary.TotalLinks > 0 {
		out.Summary.AvgClicksPerLink = out.Summary.TotalClicks / out.Summary.TotalLinks
	}
	out.Summary.ClickThroughRate = "0.00"
	if out.Summary.VisibleLinks > 0 {
		out.Summary.ClickThroughRate = fmt.Sprintf("%.2f",
			float64(out.Summary.TotalClicks)/float64(out.Summary.VisibleLinks))
	}

	var err error
	if out.ClicksByType, err = clicksByType(links.Session(&gorm.Session{})); err != nil {
		return nil, err
	}
	if out.LinkTypeDistribution, err = linkTypeDistribution(links.Session(&gorm.Session{})); err != nil {
		return nil, err
	}

	out.TopLinks = make([]TopLink, 0, 5)
	err = links.Session(&gorm.Session{}).
		Select("title, clicks, link_type, icon").
		Where("is_visible = ?", true).
		Order("clicks DESC").
		Limit(5).
		Scan(&out.TopLinks).Error
	if err != nil {
		return nil, types.Unexpected(err)
	}

	// Day series are bucketed in Go so the same code works on every dialect.
	var rows []models.Link
	err = db.Select("clicks, created_at, updated_at").
		Where("user_id = ?", user.ID).
		Find(&rows).Error
	if err != nil {
		return nil, types.Unexpected(err)
	}
	out.LinksOverTime = bucketByDay(rows, window, func(l models.Link) (time.Time, int64) {
		return l.CreatedAt, 1
	})
	out.ClicksOverTime = bucketByDay(rows, window, func(l models.Link) (time.Time, int64) {
		return l.UpdatedAt, int64(l.Clicks)
	})

	return out, nil
}

// AdminAnalyticsSummary is the headline block of the admin dashboard.
type AdminAnalyticsSummary struct {
	TotalUsers  int64  `json:"totalUsers"`
	TotalLinks  int64  `json:"totalLinks"`
	TotalClicks int64  `json:"totalClicks"`
	WindowStart string `json:"windowStart"`
}

// TopUser is one row of the admin top-users board.
type TopUser struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Username    *string `json:"username"`
	TotalClicks int64   `json:"total_clicks"`
}

// AdminAnalytics is the cross-user analytics document.
type AdminAnalytics struct {
	Summary              AdminAnalyticsSummary `json:"summary"`
	ClicksByType         []TypeClicks          `json:"clicksByType"`
	LinkTypeDistribution []TypeCount           `json:"linkTypeDistribution"`
	NewUsersByDay        []DayCount            `json:"newUsersByDay"`
	ClicksPerDay         []DayCount            `json:"clicksPerDay"`
	TopUsers             []TopUser             `json:"topUsers"`
}

// GetAdminAnalytics aggregates across the whole user population. ClicksPerDay
// always covers the trailing 60 days, zero-filled, independent of the
// requested window.
func GetAdminAnalytics(db *gorm.DB, days int) (*AdminAnalytics, error) {
	window := WindowFromDays(days)
	out := &AdminAnalytics{
		Summary: AdminAnalyticsSummary{WindowStart: window.Start.Format("2006-01-02")},
	}

	if err := db.Model(&models.User{}).Count(&out.Summary.TotalUsers).Error; err != nil {
		return nil, types.Unexpected(err)
	}
	if err := db.Model(&models.Link{}).Count(&out.Summary.TotalLinks).Error; err != nil {
		return nil, types.Unexpected(err)
	}
	if err := db.Model(&models.Link{}).
		Select("COALESCE(SUM(clicks), 0)").
		Scan(&out.Summary.TotalClicks).Error; err != nil {
		return nil, types.Unexpected(err)
	}

	var err error
	if out.ClicksByType, err = clicksByType(db.Clauses(adminQueryHint).Model(&models.Link{})); err != nil {
		return nil, err
	}
	if out.LinkTypeDistribution, err = linkTypeDistribution(db.Clauses(adminQueryHint).Model(&models.Link{})); err != nil {
		return nil, err
	}

	// New users per day inside the requested window.
	var users []models.User
	err = db.Select("created_at").
		Where("created_at >= ?", window.Start).
		Find(&users).Error
	if err != nil {
		return nil, types.Unexpected(err)
	}
	out.NewUsersByDay = bucketUsersByDay(users, window)

	// Fixed 60-day calendar, left-merged with click activity so quiet days
	// show up as zero instead of being omitted.
	sixty := WindowFromDays(60)
	var links []models.Link
	err = db.Select("clicks, updated_at").
		Where("updated_at >= ?", sixty.Start).
		Find(&links).Error
	if err != nil {
		return nil, types.Unexpected(err)
	}
	byDay := make(map[string]int64, len(links))
	for _, l := range links {
		byDay[l.UpdatedAt.Format("2006-01-02")] += int64(l.Clicks)
	}
	out.ClicksPerDay = make([]DayCount, 0, 60)
	for i := 59; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		out.ClicksPerDay = append(out.ClicksPerDay, DayCount{Day: day, Count: byDay[day]})
	}

	out.TopUsers = make([]TopUser, 0, 10)
	err = db.Clauses(adminQueryHint).
		Table("users u").
		Select("u.id, u.name, u.username, COALESCE(SUM(l.clicks), 0) AS total_clicks").
		Joins("LEFT JOIN links l ON l.user_id = u.id").
		Group("u.id, u.name, u.username").
		Order("total_clicks DESC").
		Limit(10).
		Scan(&out.TopUsers).Error
	if err != nil {
		return nil, types.Unexpected(err)
	}

	return out, nil
}

// AdminStats is the compact admin dashboard summary.
type AdminStats struct {
	TotalUsers  int64 `json:"totalUsers"`
	TotalLinks  int64 `json:"totalLinks"`
	TotalClicks int64 `json:"totalClicks"`
	ActiveUsers int64 `json:"activeUsers"`
}

// GetAdminStats computes the compact cross-user totals. Active users are
// those with at least one link.
func GetAdminStats(db *gorm.DB) (*AdminStats, error) {
	stats := &AdminStats{}

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, types.Unexpected(err)
	}
	if err := db.Model(&models.Link{}).Count(&stats.TotalLinks).Error; err != nil {
		return nil, types.Unexpected(err)
	}
	if err := db.Model(&models.Link{}).
		Select("COALESCE(SUM(clicks), 0)").
		Scan(&stats.TotalClicks).Error; err != nil {
		return nil, types.Unexpected(err)
	}
	if err := db.Model(&models.Link{}).
		Select("COUNT(DISTINCT user_id)").
		Scan(&stats.ActiveUsers).Error; err != nil {
		return nil, types.Unexpected(err)
	}

	return stats, nil
}

// ExportSummary mirrors the original export's per-type breakdown.
type ExportSummary struct {
	TotalLinks   int64 `json:"total_links"`
	TotalClicks  int64 `json:"total_clicks"`
	VisibleLinks int64 `json:"visible_links"`
	SocialLinks  int64 `json:"social_links"`
	ProjectLinks int64 `json:"project_links"`
}

// ExportUser is the account block of an export document.
type ExportUser struct {
	Username       *string   `json:"username"`
	Email          string    `json:"email"`
	AccountCreated time.Time `json:"accountCreated"`
}

// ExportData is the full analytics export: aggregates plus the raw link list.
type ExportData struct {
	ExportDate   time.Time     `json:"exportDate"`
	User         ExportUser    `json:"user"`
	Summary      ExportSummary `json:"summary"`
	ClicksByType []TypeClicks  `json:"clicksByType"`
	Links        []models.Link `json:"links"`
}

// GetExport assembles the export document for one user.
func GetExport(db *gorm.DB, user *models.User) (*ExportData, error) {
	out := &ExportData{
		ExportDate: time.Now(),
		User: ExportUser{
			Username:       user.Username,
			Email:          user.Email,
			AccountCreated: user.CreatedAt,
		},
	}

	err := db.Model(&models.Link{}).
		Select(`COUNT(*) AS total_links,
			COALESCE(SUM(clicks), 0) AS total_clicks,
			SUM(CASE WHEN is_visible THEN 1 ELSE 0 END) AS visible_links,
			SUM(CASE WHEN link_type = 'social' THEN 1 ELSE 0 END) AS social_links,
			SUM(CASE WHEN link_type = 'project' THEN 1 ELSE 0 END) AS project_links`).
		Where("user_id = ?", user.ID).
		Scan(&out.Summary).Error
	if err != nil {
		return nil, types.Unexpected(err)
	}

	if out.ClicksByType, err = clicksByType(db.Model(&models.Link{}).Where("user_id = ?", user.ID)); err != nil {
		return nil, err
	}

	out.Links = make([]models.Link, 0)
	err = db.Where("user_id = ?", user.ID).
		Order("clicks DESC").
		Find(&out.Links).Error
	if err != nil {
		return nil, types.Unexpected(err)
	}

	return out, nil
}

// CSV renders the link list as delimited text. Fields are quote-wrapped with
// no escaping of embedded quotes, matching the original export byte for byte.
func (e *ExportData) CSV() string {
	var b strings.Builder
	b.WriteString("Link Title,Link Type,URL,Clicks,Visible,Created At\n")
	for _, link := range e.Links {
		b.WriteString(fmt.Sprintf("\"%s\",\"%s\",\"%s\",%d,%t,%s\n",
			link.Title, link.LinkType, link.URL,
			link.Clicks, link.IsVisible,
			link.CreatedAt.Format(time.RFC3339)))
	}
	return b.String()
}

func clicksByType(q *gorm.DB) ([]TypeClicks, error) {
	rows := make([]TypeClicks, 0)
	err := q.Select("link_type, COALESCE(SUM(clicks), 0) AS clicks").
		Group("link_type").
		Order("link_type ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, types.Unexpected(err)
	}
	return rows, nil
}

func linkTypeDistribution(q *gorm.DB) ([]TypeCount, error) {
	rows := make([]TypeCount, 0)
	err := q.Select("link_type, COUNT(*) AS count").
		Group("link_type").
		Order("link_type ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, types.Unexpected(err)
	}
	return rows, nil
}

// bucketByDay folds rows into an ascending per-day series restricted to the
// window. Days with no activity are omitted (the admin series zero-fills,
// the per-user series does not, as in the original).
func bucketByDay(rows []models.Link, window Window, key func(models.Link) (time.Time, int64)) []DayCount {
	byDay := make(map[string]int64)
	for _, row := range rows {
		at, weight := key(row)
		if at.Before(window.Start) || at.After(window.End) {
			continue
		}
		byDay[at.Format("2006-01-02")] += weight
	}
	return sortedDayCounts(byDay)
}

func bucketUsersByDay(users []models.User, window Window) []DayCount {
	byDay := make(map[string]int64)
	for _, u := range users {
		if u.CreatedAt.Before(window.Start) || u.CreatedAt.After(window.End) {
			continue
		}
		byDay[u.CreatedAt.Format("2006-01-02")]++
	}
	return sortedDayCounts(byDay)
}

func sortedDayCounts(byDay map[string]int64) []DayCount {
	out := make([]DayCount, 0, len(byDay))
	for day, count := range byDay {
		out = append(out, DayCount{Day: day, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
