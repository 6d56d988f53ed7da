package models

// Completion records the migration of a graduated curve to the external
// liquidity venue.
type Completion struct {
	BaseModel
	Mint           string `gorm:"unique;not null;type:varchar(44)"`
	Authority      string `gorm:"not null;type:varchar(44)"`
	SolRaised      uint64 `gorm:"type:numeric(20,0);not null"`
	CreatorPayout  uint64 `gorm:"type:numeric(20,0);not null"`
	FinalMarketCap uint64 `gorm:"type:numeric(20,0);not null"`
}
