package db

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/mannsakha/sakha-server/internal/models"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}, &models.Subscriber{}); err != nil {
		log.Fatalf("automigrate: %v", err)
	}
	return gdb
}
