package services

import (
	"fmt"
	"log"

	"github.com/feedlane/feedlane/internal/config"
	"github.com/feedlane/feedlane/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Search       string            `json:"search"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck performs a comprehensive health check of the service
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Printf("Health check failed - database connection: %v", err)
	} else {
		if err := sqlDB.Ping(); err != nil {
			result.Status = "unhealthy"
			result.Database = "unreachable"
			result.Details["database_ping_error"] = err.Error()
			result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
			log.Printf("Health check failed - database ping: %v", err)
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	// Check search cluster connectivity when the mirror is enabled
	if !cfg.SearchUse {
		result.Search = "disabled"
	} else if err := utils.PingService(cfg.SearchAddress); err != nil {
		result.Status = "unhealthy"
		result.Search = "unreachable"
		result.Details["search_error"] = err.Error()
		if result.ErrorMessage == "" {
			result.ErrorMessage = fmt.Sprintf("Search ping failed: %v", err)
		} else {
			result.ErrorMessage += fmt.Sprintf("; Search ping failed: %v", err)
		}
		log.Printf("Health check failed - search ping: %v", err)
	} else {
		result.Search = "ok"
		result.Details["search_address"] = cfg.SearchAddress
	}

	if result.Status == "healthy" {
		log.Println("Health check passed - all systems operational")
	}

	return result
}
