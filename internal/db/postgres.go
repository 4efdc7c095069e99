package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/pathforge-backend/internal/logger"
	"github.com/yungbote/pathforge-backend/internal/types"
	"github.com/yungbote/pathforge-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "pathforge", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrate(s.db); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		table, name, column, refTable string
	}{
		{"user_token", "fk_user_token_user_id", "user_id", "user"},
		{"roadmap", "fk_roadmap_user_id", "user_id", "user"},
		{"roadmap_phase", "fk_roadmap_phase_roadmap_id", "roadmap_id", "roadmap"},
		{"roadmap_topic", "fk_roadmap_topic_phase_id", "phase_id", "roadmap_phase"},
	}
	for _, fk := range constraints {
		stmt := fmt.Sprintf(`
      ALTER TABLE %q
      DROP CONSTRAINT IF EXISTS %q;
    `, fk.table, fk.name)
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("Failed to drop %s: %w", fk.name, err)
		}
		stmt = fmt.Sprintf(`
      ALTER TABLE %q
      ADD CONSTRAINT %q
      FOREIGN KEY (%q)
      REFERENCES %q("id")
      ON DELETE CASCADE;
    `, fk.table, fk.name, fk.column, fk.refTable)
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("Failed to add %s: %w", fk.name, err)
		}
	}
	return nil
}

func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Roadmap{},
		&types.Phase{},
		&types.Topic{},
	)
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
