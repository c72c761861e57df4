package models

import "time"

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"size:100;unique;not null"`
	Slug        string    `gorm:"size:120;unique;not null"`
	Description string    `gorm:"type:text"`
	Products    []Product `gorm:"constraint:OnDelete:RESTRICT"`
	CreatedAt   time.Time
}
