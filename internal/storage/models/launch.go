package models

// Launch is one token launch with its curve parameters at creation time.
type Launch struct {
	BaseModel
	Mint       string `gorm:"unique;not null;type:varchar(44)"`
	Creator    string `gorm:"index;not null;type:varchar(44)"`
	Name       string `gorm:"not null;type:varchar(32)"`
	Symbol     string `gorm:"not null;type:varchar(10)"`
	URI        string `gorm:"type:varchar(200)"`
	LaunchTime int64  `gorm:"index;not null"`
}
