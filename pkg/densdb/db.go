package densdb

import (
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/materials-commons/partdensity/pkg/config"
	"github.com/materials-commons/partdensity/pkg/densdb/dmodel"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SqliteInMemoryDSN opens a private in-memory database. Callers must limit
// the pool to one connection or each connection sees an empty database.
const SqliteInMemoryDSN = "file::memory:"

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

func MakeMySQLDSN(c config.Configer) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.GetKey("DB_USERNAME"),
		c.GetKey("DB_PASSWORD"),
		c.GetKey("DB_HOST"),
		c.GetKeyWithDefault("DB_PORT", "3306"),
		c.GetKey("DB_DATABASE"))
}

func MakePostgresDSN(c config.Configer) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.GetKey("DB_HOST"),
		c.GetKey("DB_USERNAME"),
		c.GetKey("DB_PASSWORD"),
		c.GetKey("DB_DATABASE"),
		c.GetKeyWithDefault("DB_PORT", "5432"),
		c.GetKeyWithDefault("DB_SSLMODE", "disable"))
}

// Dialector picks the gorm driver named by DB_DRIVER. MySQL is the default.
func Dialector(c config.Configer) (gorm.Dialector, error) {
	switch driver := c.GetKeyWithDefault("DB_DRIVER", DriverMySQL); driver {
	case DriverMySQL:
		return mysql.Open(MakeMySQLDSN(c)), nil
	case DriverPostgres:
		return postgres.Open(MakePostgresDSN(c)), nil
	case DriverSqlite:
		return sqlite.Open(c.GetKeyWithDefault("DB_SQLITE_PATH", "partdensity.db")), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
}

// Open opens the database described by c. Sqlite databases are limited to a
// single connection to avoid table lock errors between goroutines.
func Open(c config.Configer) (*gorm.DB, error) {
	dialector, err := Dialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, err
	}

	if dialector.Name() == DriverSqlite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// OpenSqliteInMemory returns a migrated, empty in-memory database.
func OpenSqliteInMemory() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(SqliteInMemoryDSN), gormConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

const maxDBRetries = 5

// MustConnectToDB will attempt to connect to the database maxDBRetries times. If it isn't successful
// after that number of retries then it will call log.Fatalf(), which will cause the server to exit.
// Between retry attempts it will sleep for 3 seconds.
func MustConnectToDB(c config.Configer) *gorm.DB {
	retryCount := 1
	for {
		db, err := Open(c)
		switch {
		case err == nil:
			return db
		case retryCount >= maxDBRetries:
			log.Fatalf("Failed to open db (driver %s): %s", c.GetKeyWithDefault("DB_DRIVER", DriverMySQL), err)
		default:
			log.Warnf("Unable to open db (attempt %d of %d): %s", retryCount, maxDBRetries, err)
			retryCount++
			time.Sleep(3 * time.Second)
		}
	}
}

func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&dmodel.Element{},
		&dmodel.StandardAlloy{},
		&dmodel.Part{},
		&dmodel.CompositionEntry{},
		&dmodel.LotSerialCounter{},
	)
}
