package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/greyfable/masterlist/internal/audit"
	"github.com/greyfable/masterlist/internal/models"
	"github.com/greyfable/masterlist/internal/repository"
)

// Masterlist numbers are a fixed prefix over a numeric suffix, e.g. ML-042.
var masterlistNumberPattern = regexp.MustCompile(`^ML-[0-9]{1,6}$`)

type characterRequest struct {
	MasterlistNumber string `json:"masterlist_number"`
	Owner            string `json:"owner"`
	Artist           string `json:"artist"`
	PrimaryBiome     string `json:"primary_biome"`
	SecondaryBiome   string `json:"secondary_biome"`
	Rarity           string `json:"rarity"`
	Status           string `json:"status"`
	Description      string `json:"description"`
	Traits           string `json:"traits"`
	Notes            string `json:"notes"`
	Value            string `json:"value"`
	ImageURL         string `json:"image_url"`
}

func (req *characterRequest) validate() error {
	if req.MasterlistNumber == "" {
		return errors.New("masterlist_number is required")
	}
	if !masterlistNumberPattern.MatchString(req.MasterlistNumber) {
		return fmt.Errorf("malformed masterlist number %q", req.MasterlistNumber)
	}
	if req.Owner == "" {
		return errors.New("owner is required")
	}
	if req.Artist == "" {
		return errors.New("artist is required")
	}
	if req.PrimaryBiome == "" {
		return errors.New("primary_biome is required")
	}
	if req.Rarity == "" {
		return errors.New("rarity is required")
	}
	return nil
}

func (req *characterRequest) apply(c *models.Character) {
	c.MasterlistNumber = req.MasterlistNumber
	c.Owner = req.Owner
	c.Artist = req.Artist
	c.PrimaryBiome = req.PrimaryBiome
	c.SecondaryBiome = req.SecondaryBiome
	c.Rarity = req.Rarity
	c.Status = req.Status
	if c.Status == "" {
		c.Status = "active"
	}
	c.Description = req.Description
	c.Traits = req.Traits
	c.Notes = req.Notes
	c.Value = req.Value
	c.ImageURL = req.ImageURL
}

// CharacterList returns characters matching the query filters
func (h *Handlers) CharacterList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	filter := models.CharacterFilter{
		Search:         q.Get("search"),
		Rarity:         q.Get("rarity"),
		Biome:          q.Get("biome"),
		Status:         q.Get("status"),
		IncludeDeleted: q.Get("include_deleted") == "true",
		Limit:          pageSize,
		Offset:         (page - 1) * pageSize,
	}

	chars, total, err := h.characters.List(filter)
	if err != nil {
		h.logger.Error("failed to list characters", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to list characters")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"characters": chars,
		"total":      total,
		"page":       page,
		"page_size":  pageSize,
	})
}

// CharacterGet returns one character by id
func (h *Handlers) CharacterGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.characters.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("failed to load character", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to load character")
		return
	}
	if c == nil {
		h.respondError(w, http.StatusNotFound, "Character not found")
		return
	}
	h.respondJSON(w, http.StatusOK, c)
}

// CharacterGetByNumber returns one character by masterlist number
func (h *Handlers) CharacterGetByNumber(w http.ResponseWriter, r *http.Request) {
	c, err := h.characters.GetByNumber(chi.URLParam(r, "number"))
	if err != nil {
		h.logger.Error("failed to load character", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to load character")
		return
	}
	if c == nil {
		h.respondError(w, http.StatusNotFound, "Character not found")
		return
	}
	h.respondJSON(w, http.StatusOK, c)
}

// CharacterCreate uploads a new character
func (h *Handlers) CharacterCreate(w http.ResponseWriter, r *http.Request) {
	var req characterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := &models.Character{ID: uuid.New().String()}
	req.apply(c)

	if err := h.characters.Create(c); err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			h.respondError(w, http.StatusBadRequest, "Masterlist number already in use")
			return
		}
		h.logger.Error("failed to create character", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to create character")
		return
	}

	h.recordActivity(models.ActivityEntry{
		Action:  models.ActionUpload,
		Actor:   userFromContext(r.Context()).Username,
		Subject: c.MasterlistNumber,
		Detail:  fmt.Sprintf("Uploaded %s (owner %s)", c.MasterlistNumber, c.Owner),
	})

	h.respondJSON(w, http.StatusCreated, c)
}

// CharacterUpdate edits an existing character and audits the field diffs
func (h *Handlers) CharacterUpdate(w http.ResponseWriter, r *http.Request) {
	prior, err := h.characters.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("failed to load character", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to load character")
		return
	}
	if prior == nil {
		h.respondError(w, http.StatusNotFound, "Character not found")
		return
	}

	var req characterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	next := *prior
	req.apply(&next)

	changes := audit.DiffCharacters(prior, &next)

	if err := h.characters.Update(&next); err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			h.respondError(w, http.StatusBadRequest, "Masterlist number already in use")
			return
		}
		h.logger.Error("failed to update character", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to update character")
		return
	}

	if len(changes) > 0 {
		h.recordActivity(models.ActivityEntry{
			Action:  models.ActionEdit,
			Actor:   userFromContext(r.Context()).Username,
			Subject: next.MasterlistNumber,
			Detail:  fmt.Sprintf("Edited %s (%d fields)", next.MasterlistNumber, len(changes)),
			Changes: changes,
		})
	}

	h.respondJSON(w, http.StatusOK, &next)
}

// CharacterDelete soft-deletes a character
func (h *Handlers) CharacterDelete(w http.ResponseWriter, r *http.Request) {
	c, err := h.characters.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("failed to load character", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to load character")
		return
	}
	if c == nil {
		h.respondError(w, http.StatusNotFound, "Character not found")
		return
	}

	if err := h.characters.SoftDelete(c.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusBadRequest, "Character already deleted")
			return
		}
		h.logger.Error("failed to delete character", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to delete character")
		return
	}

	h.recordActivity(models.ActivityEntry{
		Action:  models.ActionDelete,
		Actor:   userFromContext(r.Context()).Username,
		Subject: c.MasterlistNumber,
		Detail:  fmt.Sprintf("Deleted %s", c.MasterlistNumber),
	})

	h.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
