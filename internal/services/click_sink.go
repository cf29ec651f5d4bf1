package services

import (
	"log"

	"github.com/devlinkhq/devlink/internal/models"
	"gorm.io/gorm"
)

// ClickSink receives best-effort click detail rows. Implementations must not
// let a failed write escape to the caller.
type ClickSink interface {
	Record(entry models.ClickLog)
}

// NewClickSink returns a database-backed sink when the clicks_log table
// exists, otherwise a no-op sink. The table is optional by contract.
func NewClickSink(db *gorm.DB) ClickSink {
	if db.Migrator().HasTable(&models.ClickLog{}) {
		return &gormClickSink{db: db}
	}
	log.Println("clicks_log table not found, detailed click logging disabled")
	return noopClickSink{}
}

type gormClickSink struct {
	db *gorm.DB
}

func (s *gormClickSink) Record(entry models.ClickLog) {
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("click log write failed: %v", err)
	}
}

type noopClickSink struct{}

func (noopClickSink) Record(models.ClickLog) {}
