package std

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase 创建数据库连接
func NewDatabase(c *Config) (*gorm.DB, error) {
	level := logger.Warn
	if c.IsDebug() {
		level = logger.Info
	}
	db, err := gorm.Open(
		buildDialect(c.Database),
		&gorm.Config{PrepareStmt: !c.IsDebug(), Logger: logger.Default.LogMode(level)},
	)
	if err != nil {
		return nil, err
	}
	sqlDb, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDb.SetMaxIdleConns(5)
	sqlDb.SetMaxOpenConns(90)
	sqlDb.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func buildDialect(ds *DataSource) gorm.Dialector {
	args := []interface{}{ds.Username, ds.Password, ds.Host, ds.Port, ds.Name}
	if ds.Dialect == "mysql" {
		return mysql.Open(fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local", args...,
		))
	}
	return postgres.Open(fmt.Sprintf(
		"user=%s password=%s host=%s port=%d dbname=%s", args...,
	))
}
