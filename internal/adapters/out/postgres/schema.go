package postgres

import (
	"context"

	"fulfillment/internal/adapters/out/postgres/agentrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"

	"gorm.io/gorm"
)

// Migrate creates or updates the orders and agents tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&agentrepo.AgentDTO{}, &orderrepo.OrderDTO{})
}

// Pinger reports database readiness for the health endpoint.
type Pinger struct {
	db *gorm.DB
}

func NewPinger(db *gorm.DB) Pinger {
	return Pinger{db: db}
}

// Ping checks that the database answers.
func (p Pinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
