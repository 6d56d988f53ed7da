package models

// Trade is one executed buy or sell against a bonding curve. Amounts are
// raw lamport and base token units.
type Trade struct {
	BaseModel
	Mint        string `gorm:"index;not null;type:varchar(44)"`
	Wallet      string `gorm:"index;not null;type:varchar(44)"`
	IsBuy       bool   `gorm:"not null"`
	SolAmount   uint64 `gorm:"type:numeric(20,0);not null"`
	TokenAmount uint64 `gorm:"type:numeric(20,0);not null"`
	Price       uint64 `gorm:"type:numeric(20,0);not null"`
	MarketCap   uint64 `gorm:"type:numeric(20,0);not null"`

	RealSolReserves   uint64 `gorm:"type:numeric(20,0);not null"`
	RealTokenReserves uint64 `gorm:"type:numeric(20,0);not null"`
}
