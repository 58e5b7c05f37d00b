package model

import "time"

// FoundItem is written once at intake and never updated.
type FoundItem struct {
	ItemID        uint64    `gorm:"column:item_id;primaryKey;autoIncrement"`
	Description   string    `gorm:"column:description;type:text;not null"`
	LocationDesc  *string   `gorm:"column:location_desc;type:text"`
	ContactNo     string    `gorm:"column:contact_no;size:32;not null"`
	City          string    `gorm:"column:city;size:120;not null;default:''"`
	Category      string    `gorm:"column:category;size:64;not null;index:idx_found_items_category"`
	Latitude      *float64  `gorm:"column:latitude"`
	Longitude     *float64  `gorm:"column:longitude"`
	ImagePath     string    `gorm:"column:image_path;size:512;not null"`
	FinderContact string    `gorm:"column:finder_contact;size:32;not null"`
	FoundDate     time.Time `gorm:"column:found_date;not null;autoCreateTime;index:idx_found_items_found_date"`
}

func (FoundItem) TableName() string {
	return "found_items"
}
