package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/feedlane/feedlane/internal/config"
	"github.com/feedlane/feedlane/internal/database"
	"github.com/feedlane/feedlane/internal/handlers"
	"github.com/feedlane/feedlane/internal/middleware"
	"github.com/feedlane/feedlane/internal/models"
	"github.com/feedlane/feedlane/internal/search"
	"github.com/feedlane/feedlane/internal/services"
	"github.com/feedlane/feedlane/tests/helpers"
	"github.com/gofiber/fiber/v2"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// TestWithMariaDB tests the service with a real MariaDB container. The
// in-memory SQLite tests cover the same services; this suite exercises the
// MySQL JSON_EXTRACT paths and the ON DUPLICATE KEY statistics upsert that
// SQLite cannot.
func TestWithMariaDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Start MariaDB container
	mariadbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("DB_IMAGE"),
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

	// Get container host and port
	host, err := mariadbContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := mariadbContainer.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	// Create config
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

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Run tests
	t.Run("FeedbackSearchOnJSON", func(t *testing.T) {
		testFeedbackSearchOnJSON(t, db)
	})

	t.Run("OptionTombstoneRevive", func(t *testing.T) {
		testOptionTombstoneRevive(t, db)
	})

	t.Run("StatisticsUpsert", func(t *testing.T) {
		testStatisticsUpsert(t, db)
	})

	t.Run("ExternalRoutesOverHTTP", func(t *testing.T) {
		testExternalRoutesOverHTTP(t, db)
	})
}

// testFeedbackSearchOnJSON tests JSON field filtering against real MySQL
func testFeedbackSearchOnJSON(t *testing.T, db *gorm.DB) {
	idx := search.Noop{}
	project, _ := helpers.CreateTestProject(t, db, "search-project")
	channel := helpers.CreateTestChannel(t, db, idx, project.ProjectID, "search-channel")

	helpers.CreateTestFeedback(t, db, idx, channel, map[string]interface{}{
		"message":  "the login page crashes",
		"contact":  "ann@example.com",
		"rating":   2.0,
		"category": "bug",
	})
	helpers.CreateTestFeedback(t, db, idx, channel, map[string]interface{}{
		"message":  "please add dark mode",
		"contact":  "bob@example.com",
		"rating":   5.0,
		"category": "idea",
	})

	// Text search hits the message field via JSON_EXTRACT ... LIKE
	page, err := services.FindFeedbacks(context.Background(), db, idx, channel, services.FeedbackQuery{
		SearchText: "login",
	})
	if err != nil {
		t.Fatalf("Failed to search feedbacks: %v", err)
	}
	if page.Meta.TotalItems != 1 {
		t.Errorf("Expected 1 result for text search, got %d", page.Meta.TotalItems)
	}

	// Select filter matches the stored option key exactly
	page, err = services.FindFeedbacks(context.Background(), db, idx, channel, services.FeedbackQuery{
		Filters: map[string]interface{}{"category": "idea"},
	})
	if err != nil {
		t.Fatalf("Failed to filter feedbacks: %v", err)
	}
	if page.Meta.TotalItems != 1 {
		t.Errorf("Expected 1 result for select filter, got %d", page.Meta.TotalItems)
	}
	if page.Items[0]["message"] != "please add dark mode" {
		t.Errorf("Expected dark mode feedback, got %v", page.Items[0]["message"])
	}

	// Number filter compares numerically, not as text
	page, err = services.FindFeedbacks(context.Background(), db, idx, channel, services.FeedbackQuery{
		Filters: map[string]interface{}{"rating": 5.0},
	})
	if err != nil {
		t.Fatalf("Failed to filter by number: %v", err)
	}
	if page.Meta.TotalItems != 1 {
		t.Errorf("Expected 1 result for number filter, got %d", page.Meta.TotalItems)
	}
}

// testOptionTombstoneRevive tests the soft-delete and revive cycle for options
func testOptionTombstoneRevive(t *testing.T, db *gorm.DB) {
	idx := search.Noop{}
	project, _ := helpers.CreateTestProject(t, db, "tombstone-project")
	channel := helpers.CreateTestChannel(t, db, idx, project.ProjectID, "tombstone-channel")

	fields, err := services.FindFieldsByChannelID(db, channel.ChannelID)
	if err != nil {
		t.Fatalf("Failed to load fields: %v", err)
	}
	var category models.Field
	for _, f := range fields {
		if f.Key == "category" {
			category = f
		}
	}
	if category.FieldID == 0 {
		t.Fatal("Expected category field")
	}

	var options []models.Option
	if err := db.Where("field_id = ?", category.FieldID).Find(&options).Error; err != nil {
		t.Fatalf("Failed to load options: %v", err)
	}
	var ideaID uint64
	for _, o := range options {
		if o.Key == "idea" {
			ideaID = o.OptionID
		}
	}

	// Replacing without "bug" tombstones it instead of deleting the row
	err = db.Transaction(func(tx *gorm.DB) error {
		return services.ReplaceOptions(tx, category.FieldID, []services.OptionInput{
			{OptionID: &ideaID, Name: "Idea", Key: "idea"},
		})
	})
	if err != nil {
		t.Fatalf("Failed to replace options: %v", err)
	}

	var tombstoned models.Option
	if err := db.Where(&models.Option{FieldID: category.FieldID, Key: "deleted_bug"}).First(&tombstoned).Error; err != nil {
		t.Fatalf("Expected tombstoned bug option: %v", err)
	}

	// Re-creating the same name+key revives the tombstone in place
	revived, err := services.CreateOption(db, category.FieldID, services.OptionInput{Name: "Bug", Key: "bug"})
	if err != nil {
		t.Fatalf("Failed to revive option: %v", err)
	}
	if revived.OptionID != tombstoned.OptionID {
		t.Errorf("Expected revived option to reuse row %d, got %d", tombstoned.OptionID, revived.OptionID)
	}

	var count int64
	db.Model(&models.Option{}).Where("field_id = ?", category.FieldID).Count(&count)
	if count != 2 {
		t.Errorf("Expected 2 option rows after revive, got %d", count)
	}
}

// testStatisticsUpsert tests the daily rollup upsert on a real unique index
func testStatisticsUpsert(t *testing.T, db *gorm.DB) {
	idx := search.Noop{}
	project, _ := helpers.CreateTestProject(t, db, "stats-project")
	channel := helpers.CreateTestChannel(t, db, idx, project.ProjectID, "stats-channel")

	issue, err := services.CreateIssue(db, project.ProjectID, services.IssueInput{Name: "slow search"})
	if err != nil {
		t.Fatalf("Failed to create issue: %v", err)
	}

	for i := 0; i < 2; i++ {
		helpers.CreateTestFeedback(t, db, idx, channel, map[string]interface{}{
			"message":    "search is slow",
			"issueNames": []interface{}{"slow search"},
		})
	}

	var stats []models.FeedbackIssueStatistics
	if err := db.Where("issue_id = ?", issue.IssueID).Find(&stats).Error; err != nil {
		t.Fatalf("Failed to load statistics: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("Expected a single statistics row, got %d", len(stats))
	}
	if stats[0].FeedbackCount != 2 {
		t.Errorf("Expected feedback count 2, got %d", stats[0].FeedbackCount)
	}
}

// testExternalRoutesOverHTTP tests API key auth and submission over HTTP
func testExternalRoutesOverHTTP(t *testing.T, db *gorm.DB) {
	idx := search.Noop{}
	project, apiKey := helpers.CreateTestProject(t, db, "external-project")
	helpers.CreateTestChannel(t, db, idx, project.ProjectID, "widget")

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	externalHandler := &handlers.ExternalHandler{DB: db, Index: idx}
	external := app.Group("/external", middleware.APIKeyAuth(db))
	external.Post("/channels/:channelName/feedbacks", externalHandler.CreateFeedback)

	body, _ := json.Marshal(map[string]interface{}{
		"message": "submitted from the widget",
		"contact": "kim@example.com",
	})

	// Without a key the request never reaches the handler
	req := httptest.NewRequest("POST", "/external/channels/widget/feedbacks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 401)
	helpers.AssertErrorType(t, resp, "external.authorization")

	// With the project key the submission lands
	req = httptest.NewRequest("POST", "/external/channels/widget/feedbacks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	helpers.AssertStatus(t, resp, 201)

	var created map[string]interface{}
	helpers.ParseJSON(t, resp, &created)
	if created["id"] == nil {
		t.Error("Expected feedback id in response")
	}
}

// TestHealthCheck tests the health check functionality
func TestHealthCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Start MariaDB container
	mariadbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("DB_IMAGE"),
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
		DBType:        "mysql",
		DBHost:        host,
		DBPort:        port.Port(),
		DBDatabase:    "testdb",
		DBUser:        "testuser",
		DBPassword:    "testpass",
		SearchUse:     true,
		SearchAddress: "http://localhost:9999", // Non-existent cluster
	}

	time.Sleep(5 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run health check
	result := services.HealthCheck(cfg, db)

	// Database should be healthy
	if result.Database != "ok" {
		t.Errorf("Expected database to be ok, got: %s", result.Database)
	}

	// Search cluster should be unreachable
	if result.Search != "unreachable" {
		t.Errorf("Expected search to be unreachable, got: %s", result.Search)
	}

	// Overall status should be unhealthy
	if result.Status != "unhealthy" {
		t.Errorf("Expected status to be unhealthy, got: %s", result.Status)
	}
}
