package audit

import "github.com/greyfable/masterlist/internal/models"

// EmptyValue is the sentinel shown for a missing side of a diff.
const EmptyValue = "(empty)"

// trackedFields is the allow-list of diffable character fields. Output
// order follows this list regardless of input; anything not listed is
// never diffed.
var trackedFields = []struct {
	key     string
	display string
	value   func(*models.Character) string
}{
	{"owner", "Owner", func(c *models.Character) string { return c.Owner }},
	{"artist", "Artist", func(c *models.Character) string { return c.Artist }},
	{"primary_biome", "Primary Biome", func(c *models.Character) string { return c.PrimaryBiome }},
	{"secondary_biome", "Secondary Biome", func(c *models.Character) string { return c.SecondaryBiome }},
	{"rarity", "Rarity", func(c *models.Character) string { return c.Rarity }},
	{"status", "Status", func(c *models.Character) string { return c.Status }},
	{"description", "Description", func(c *models.Character) string { return c.Description }},
	{"traits", "Traits", func(c *models.Character) string { return c.Traits }},
	{"notes", "Notes", func(c *models.Character) string { return c.Notes }},
	{"value", "Value", func(c *models.Character) string { return c.Value }},
	{"masterlist_number", "Masterlist Number", func(c *models.Character) string { return c.MasterlistNumber }},
}

// DiffCharacters computes the field-level changes between two snapshots.
// Both sides normalize missing values to the empty string, so
// empty-versus-empty never emits an entry. The result is deterministic for
// any pair of snapshots.
func DiffCharacters(prior, next *models.Character) []models.FieldDiff {
	diffs := []models.FieldDiff{}
	for _, f := range trackedFields {
		from := f.value(prior)
		to := f.value(next)
		if from == to {
			continue
		}
		diffs = append(diffs, models.FieldDiff{
			Field:   f.key,
			Display: f.display,
			From:    orEmpty(from),
			To:      orEmpty(to),
		})
	}
	return diffs
}

func orEmpty(v string) string {
	if v == "" {
		return EmptyValue
	}
	return v
}
