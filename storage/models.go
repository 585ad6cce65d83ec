package storage

import "time"

// Guild represents a chat space the bot has been added to. The primary
// key is the platform-assigned chat identifier, not an autoincrement.
type Guild struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	Name      string
	OwnerID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Nicknames []Nickname `gorm:"foreignKey:GuildID"`
}

// Nickname represents a substitutable name template scoped to one guild.
// In chats it appears as "{Nickname} NNN" with a random 3-digit counter.
// Rows are never physically deleted; removal flips IsActive off so the
// history of who added what is preserved.
type Nickname struct {
	ID        uint   `gorm:"primaryKey"`
	GuildID   int64  `gorm:"index"`
	Nickname  string `gorm:"size:50"`
	IsActive  bool   `gorm:"default:true"`
	CreatedBy int64
	CreatedAt time.Time
}
