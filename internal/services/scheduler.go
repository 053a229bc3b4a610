package services

import (
	"log"
	"sync"

	"github.com/feedlane/feedlane/internal/models"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StatsScheduler runs the nightly statistics rollup, one cron entry per
// project, fired at the project's local midnight.
type StatsScheduler struct {
	db   *gorm.DB
	cron *cron.Cron

	mu      sync.Mutex
	entries map[uint64]cron.EntryID
}

// NewStatsScheduler builds a scheduler over db. Call Start to begin firing.
func NewStatsScheduler(db *gorm.DB) *StatsScheduler {
	return &StatsScheduler{
		db:      db,
		cron:    cron.New(),
		entries: make(map[uint64]cron.EntryID),
	}
}

// Start registers a rollup job for every existing project and starts the
// cron runner.
func (s *StatsScheduler) Start() error {
	var projects []models.Project
	if err := s.db.Find(&projects).Error; err != nil {
		return err
	}

	for _, p := range projects {
		if err := s.Register(p); err != nil {
			log.Printf("scheduler: skipping project %d: %v", p.ProjectID, err)
		}
	}

	s.cron.Start()
	log.Printf("scheduler: started with %d project jobs", len(projects))
	return nil
}

// Register adds (or replaces) the nightly rollup entry for one project.
func (s *StatsScheduler) Register(project models.Project) error {
	offset, err := parseTimezoneOffset(project.TimezoneOffset)
	if err != nil {
		return err
	}

	projectID := project.ProjectID
	entryID, err := s.cron.AddFunc(cronSpec(offset), func() {
		if err := CreateFeedbackIssueStatistics(s.db, projectID, 1); err != nil {
			log.Printf("scheduler: rollup for project %d failed: %v", projectID, err)
		}
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[projectID]; ok {
		s.cron.Remove(old)
	}
	s.entries[projectID] = entryID
	return nil
}

// Unregister drops a project's rollup entry, if any.
func (s *StatsScheduler) Unregister(projectID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entries[projectID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, projectID)
	}
}

// Stop halts the cron runner; running jobs finish first.
func (s *StatsScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
