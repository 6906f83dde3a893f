package models

import "time"

// Character represents one masterlist record
type Character struct {
	ID               string     `json:"id"`
	MasterlistNumber string     `json:"masterlist_number"` // display prefix + numeric suffix, e.g. ML-042
	Owner            string     `json:"owner"`
	Artist           string     `json:"artist"`
	PrimaryBiome     string     `json:"primary_biome"`
	SecondaryBiome   string     `json:"secondary_biome,omitempty"`
	Rarity           string     `json:"rarity"`
	Status           string     `json:"status"`
	Description      string     `json:"description,omitempty"`
	Traits           string     `json:"traits,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	Value            string     `json:"value,omitempty"`
	ImageURL         string     `json:"image_url,omitempty"`
	Deleted          bool       `json:"deleted"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}

// CharacterFilter for listing characters
type CharacterFilter struct {
	Search         string // substring over masterlist number, owner, artist
	Rarity         string
	Biome          string // matches primary or secondary
	Status         string
	IncludeDeleted bool
	Limit          int
	Offset         int
}
