package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	ErrInvalidNickname   = errors.New("nickname is empty")
	ErrDuplicateNickname = errors.New("nickname already exists")
	ErrNicknameNotFound  = errors.New("nickname not found")
	ErrGuildNotFound     = errors.New("guild not found")
	ErrNotOwner          = errors.New("requester is not the guild owner")
)

type Storage struct {
	db *gorm.DB
}

func New(dbPath string) (*Storage, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		slog.Error("storage: Failed to connect to database", "error", err, "path", dbPath)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) migrate() error {
	err := s.db.AutoMigrate(&Guild{}, &Nickname{})
	if err != nil {
		slog.Error("storage: Failed to migrate database", "error", err)
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// EnsureGuild registers a guild if it is unknown, or refreshes its name
// and owner when the platform reports different values. Re-registration
// with identical data is a no-op.
func (s *Storage) EnsureGuild(guildID int64, name string, ownerID int64) (*Guild, error) {
	var guild Guild
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", guildID).First(&guild)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			guild = Guild{ID: guildID, Name: name, OwnerID: ownerID}
			return tx.Create(&guild).Error
		}
		if result.Error != nil {
			return result.Error
		}
		if guild.Name != name || guild.OwnerID != ownerID {
			guild.Name = name
			guild.OwnerID = ownerID
			return tx.Save(&guild).Error
		}
		return nil
	})
	if err != nil {
		slog.Error("storage: Failed to ensure guild", "error", err, "guild_id", guildID, "name", name)
		return nil, fmt.Errorf("failed to ensure guild: %w", err)
	}
	return &guild, nil
}

// GetGuild retrieves a guild by its platform identifier
func (s *Storage) GetGuild(guildID int64) (*Guild, error) {
	var guild Guild
	result := s.db.Where("id = ?", guildID).First(&guild)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrGuildNotFound
	}
	if result.Error != nil {
		slog.Error("storage: Failed to get guild", "error", result.Error, "guild_id", guildID)
		return nil, fmt.Errorf("failed to get guild: %w", result.Error)
	}
	return &guild, nil
}

// AddNickname adds a new nickname template to a guild. The text is
// trimmed before use; empty input is rejected and duplicates among the
// guild's active nicknames are detected case-insensitively. The check
// and the insert run in one transaction so concurrent adds of the same
// text cannot both succeed.
func (s *Storage) AddNickname(guildID int64, rawText string, createdBy int64) (*Nickname, error) {
	cleaned := strings.TrimSpace(rawText)
	if cleaned == "" {
		return nil, ErrInvalidNickname
	}

	var created Nickname
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&Nickname{}).
			Where("guild_id = ? AND is_active = ? AND LOWER(nickname) = ?", guildID, true, strings.ToLower(cleaned)).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateNickname
		}

		created = Nickname{
			GuildID:   guildID,
			Nickname:  cleaned,
			IsActive:  true,
			CreatedBy: createdBy,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateNickname) {
			return nil, ErrDuplicateNickname
		}
		slog.Error("storage: Failed to add nickname", "error", err, "guild_id", guildID, "nickname", cleaned)
		return nil, fmt.Errorf("failed to add nickname: %w", err)
	}
	return &created, nil
}

// RemoveNickname soft-deletes a nickname template. Only the guild owner
// may remove nicknames. Returns the stored text of the removed entry.
func (s *Storage) RemoveNickname(guildID int64, rawText string, requesterID int64) (string, error) {
	cleaned := strings.TrimSpace(rawText)

	var removed string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var guild Guild
		err := tx.Where("id = ?", guildID).First(&guild).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGuildNotFound
		}
		if err != nil {
			return err
		}
		if guild.OwnerID != requesterID {
			return ErrNotOwner
		}

		var nick Nickname
		err = tx.Where("guild_id = ? AND is_active = ? AND LOWER(nickname) = ?", guildID, true, strings.ToLower(cleaned)).
			First(&nick).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNicknameNotFound
		}
		if err != nil {
			return err
		}

		removed = nick.Nickname
		return tx.Model(&nick).Update("is_active", false).Error
	})
	if err != nil {
		if errors.Is(err, ErrGuildNotFound) || errors.Is(err, ErrNotOwner) || errors.Is(err, ErrNicknameNotFound) {
			return "", err
		}
		slog.Error("storage: Failed to remove nickname", "error", err, "guild_id", guildID, "nickname", cleaned)
		return "", fmt.Errorf("failed to remove nickname: %w", err)
	}
	return removed, nil
}

// ListNicknames retrieves all active nicknames for a guild ordered by
// text ascending, so paginated display stays stable between calls.
func (s *Storage) ListNicknames(guildID int64) ([]Nickname, error) {
	var nicknames []Nickname
	result := s.db.Where("guild_id = ? AND is_active = ?", guildID, true).
		Order("nickname ASC").
		Find(&nicknames)
	if result.Error != nil {
		slog.Error("storage: Failed to list nicknames", "error", result.Error, "guild_id", guildID)
		return nil, fmt.Errorf("failed to list nicknames: %w", result.Error)
	}
	return nicknames, nil
}

// RandomNickname selects one active nickname uniformly at random.
// Returns nil without error when the guild has no active nicknames.
func (s *Storage) RandomNickname(guildID int64) (*Nickname, error) {
	var nick Nickname
	result := s.db.Where("guild_id = ? AND is_active = ?", guildID, true).
		Order("RANDOM()").
		Take(&nick)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		slog.Error("storage: Failed to pick random nickname", "error", result.Error, "guild_id", guildID)
		return nil, fmt.Errorf("failed to pick random nickname: %w", result.Error)
	}
	return &nick, nil
}

// SearchNicknames finds active nicknames containing the given term,
// case-insensitively.
func (s *Storage) SearchNicknames(guildID int64, term string) ([]Nickname, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"

	var nicknames []Nickname
	result := s.db.Where("guild_id = ? AND is_active = ? AND LOWER(nickname) LIKE ?", guildID, true, pattern).
		Order("nickname ASC").
		Find(&nicknames)
	if result.Error != nil {
		slog.Error("storage: Failed to search nicknames", "error", result.Error,
			"guild_id", guildID, "term", term)
		return nil, fmt.Errorf("failed to search nicknames: %w", result.Error)
	}
	return nicknames, nil
}

// CountNicknames returns the number of active nicknames for a guild
func (s *Storage) CountNicknames(guildID int64) (int64, error) {
	var count int64
	result := s.db.Model(&Nickname{}).
		Where("guild_id = ? AND is_active = ?", guildID, true).
		Count(&count)
	if result.Error != nil {
		slog.Error("storage: Failed to count nicknames", "error", result.Error, "guild_id", guildID)
		return 0, fmt.Errorf("failed to count nicknames: %w", result.Error)
	}
	return count, nil
}
