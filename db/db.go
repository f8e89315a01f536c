package db

import (
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/techagentng/carefront/config"
	"github.com/techagentng/carefront/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	DB *gorm.DB
}

func GetDB(c *config.Config) (*GormDB, error) {
	gormDB := &GormDB{}
	if err := gormDB.Init(c); err != nil {
		return nil, err
	}
	return gormDB, nil
}

func (g *GormDB) Init(c *config.Config) error {
	db, err := getPostgresDB(c)
	if err != nil {
		return err
	}
	g.DB = db

	if err := migrate(g.DB); err != nil {
		return errors.Wrap(err, "unable to run migrations")
	}
	return nil
}

func getPostgresDB(c *config.Config) (*gorm.DB, error) {
	log.Printf("Connecting to postgres: host=%s db=%s port=%d", c.PostgresHost, c.PostgresDB, c.PostgresPort)

	gormConfig := &gorm.Config{}
	if c.Env != "prod" {
		gormConfig.Logger = logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		})
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DSN: c.PostgresDSN(),
	}), gormConfig)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}
	return gormDB, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Message{}, &models.Doctor{}, &models.Appointment{})
}

// Close releases the underlying connection pool.
func (g *GormDB) Close() error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// likePattern escapes LIKE metacharacters so a search term matches literally.
func likePattern(term string) string {
	r := []rune{}
	for _, ch := range term {
		switch ch {
		case '\\', '%', '_':
			r = append(r, '\\')
		}
		r = append(r, ch)
	}
	return "%" + string(r) + "%"
}

// MaxListResults caps every listing query.
const MaxListResults = 200

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxListResults {
		return MaxListResults
	}
	return limit
}
