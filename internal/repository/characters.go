package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/greyfable/masterlist/internal/models"
)

// ErrDuplicateNumber is returned when a masterlist number is already taken.
var ErrDuplicateNumber = errors.New("masterlist number already in use")

type CharacterRepository struct {
	db *sql.DB
}

func NewCharacterRepository(db *sql.DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

const characterColumns = `id, masterlist_number, owner, artist, primary_biome,
	COALESCE(secondary_biome, '') as secondary_biome, rarity, status,
	COALESCE(description, '') as description, COALESCE(traits, '') as traits,
	COALESCE(notes, '') as notes, COALESCE(value, '') as value,
	COALESCE(image_url, '') as image_url, deleted, created_at, updated_at, deleted_at`

// Create inserts a new character record
func (r *CharacterRepository) Create(c *models.Character) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := r.db.Exec(`
		INSERT INTO characters (id, masterlist_number, owner, artist, primary_biome,
			secondary_biome, rarity, status, description, traits, notes, value, image_url,
			deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		c.ID, c.MasterlistNumber, c.Owner, c.Artist, c.PrimaryBiome,
		c.SecondaryBiome, c.Rarity, c.Status, c.Description, c.Traits, c.Notes,
		c.Value, c.ImageURL, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateNumber
		}
		return err
	}
	return nil
}

// GetByID returns a character by id, nil if not found
func (r *CharacterRepository) GetByID(id string) (*models.Character, error) {
	return r.scanOne("SELECT "+characterColumns+" FROM characters WHERE id = ?", id)
}

// GetByNumber returns a character by masterlist number, nil if not found
func (r *CharacterRepository) GetByNumber(number string) (*models.Character, error) {
	return r.scanOne("SELECT "+characterColumns+" FROM characters WHERE masterlist_number = ?", number)
}

// List returns characters matching the filter plus the total match count
// before pagination. Soft-deleted records are excluded unless asked for.
func (r *CharacterRepository) List(filter models.CharacterFilter) ([]models.Character, int, error) {
	where := "WHERE 1=1"
	args := []any{}

	if !filter.IncludeDeleted {
		where += " AND deleted = 0"
	}
	if filter.Search != "" {
		where += " AND (masterlist_number LIKE ? OR owner LIKE ? OR artist LIKE ?)"
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Rarity != "" {
		where += " AND rarity = ?"
		args = append(args, filter.Rarity)
	}
	if filter.Biome != "" {
		where += " AND (primary_biome = ? OR secondary_biome = ?)"
		args = append(args, filter.Biome, filter.Biome)
	}
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM characters "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + characterColumns + " FROM characters " + where + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	chars := []models.Character{}
	for rows.Next() {
		var c models.Character
		if err := scanCharacter(rows, &c); err != nil {
			return nil, 0, err
		}
		chars = append(chars, c)
	}
	return chars, total, rows.Err()
}

// Update rewrites the mutable fields of a character
func (r *CharacterRepository) Update(c *models.Character) error {
	c.UpdatedAt = time.Now()
	res, err := r.db.Exec(`
		UPDATE characters SET masterlist_number = ?, owner = ?, artist = ?,
			primary_biome = ?, secondary_biome = ?, rarity = ?, status = ?,
			description = ?, traits = ?, notes = ?, value = ?, image_url = ?, updated_at = ?
		WHERE id = ?`,
		c.MasterlistNumber, c.Owner, c.Artist, c.PrimaryBiome, c.SecondaryBiome,
		c.Rarity, c.Status, c.Description, c.Traits, c.Notes, c.Value, c.ImageURL,
		c.UpdatedAt, c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateNumber
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SoftDelete marks a character deleted without removing the row
func (r *CharacterRepository) SoftDelete(id string) error {
	now := time.Now()
	res, err := r.db.Exec(
		"UPDATE characters SET deleted = 1, deleted_at = ?, updated_at = ? WHERE id = ? AND deleted = 0",
		now, now, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *CharacterRepository) scanOne(query string, args ...any) (*models.Character, error) {
	c := &models.Character{}
	err := scanCharacter(r.db.QueryRow(query, args...), c)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row rowScanner, c *models.Character) error {
	return row.Scan(
		&c.ID, &c.MasterlistNumber, &c.Owner, &c.Artist, &c.PrimaryBiome,
		&c.SecondaryBiome, &c.Rarity, &c.Status, &c.Description, &c.Traits,
		&c.Notes, &c.Value, &c.ImageURL, &c.Deleted, &c.CreatedAt, &c.UpdatedAt,
		&c.DeletedAt,
	)
}
