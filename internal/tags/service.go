package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service validates input and delegates persistence to a Store.
type Service struct {
	store Store
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("tag store is required")
	}
	return &Service{store: store}, nil
}

// CreateInput is the tag creation payload.
type CreateInput struct {
	SystemEditionID string
	Name            string
	Color           string
	Type            string
	SortOrder       int
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Tag, error) {
	in.SystemEditionID = strings.TrimSpace(in.SystemEditionID)
	if in.SystemEditionID == "" {
		return Tag{}, fmt.Errorf("%w: system_edition_id is required", ErrInvalidInput)
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Tag{}, fmt.Errorf("%w: tag name is required", ErrInvalidInput)
	}
	tagType, ok := ParseType(in.Type)
	if !ok {
		return Tag{}, fmt.Errorf("%w: unsupported tag type %q", ErrInvalidInput, in.Type)
	}
	if in.SortOrder < 0 {
		return Tag{}, fmt.Errorf("%w: sort_order must be >= 0", ErrInvalidInput)
	}

	now := time.Now().UTC()
	tag := Tag{
		ID:              uuid.NewString(),
		SystemEditionID: in.SystemEditionID,
		Name:            in.Name,
		Color:           strings.TrimSpace(in.Color),
		Type:            tagType,
		IsActive:        true,
		SortOrder:       in.SortOrder,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, &tag); err != nil {
		return Tag{}, err
	}
	return tag, nil
}

func (s *Service) Get(ctx context.Context, id string) (Tag, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Tag{}, fmt.Errorf("%w: tag_id is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, id)
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Tag, int, error) {
	q.SystemEditionID = strings.TrimSpace(q.SystemEditionID)
	if q.SystemEditionID == "" {
		return nil, 0, fmt.Errorf("%w: system_edition_id is required", ErrInvalidInput)
	}
	q.Filter = q.Filter.Normalized()
	return s.store.List(ctx, q)
}

func (s *Service) Update(ctx context.Context, id string, upd Update) (Tag, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Tag{}, fmt.Errorf("%w: tag_id is required", ErrInvalidInput)
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return Tag{}, fmt.Errorf("%w: tag name is required", ErrInvalidInput)
		}
		upd.Name = &name
	}
	if upd.Color != nil {
		color := strings.TrimSpace(*upd.Color)
		upd.Color = &color
	}
	if upd.SortOrder != nil && *upd.SortOrder < 0 {
		return Tag{}, fmt.Errorf("%w: sort_order must be >= 0", ErrInvalidInput)
	}
	return s.store.Update(ctx, id, upd)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: tag_id is required", ErrInvalidInput)
	}
	return s.store.SoftDelete(ctx, id)
}

// MergeInput consolidates source tags into a target. Exactly one of
// TargetTagID (existing tag) or TargetName (new tag) must be set.
type MergeInput struct {
	SystemEditionID string
	SourceTagIDs    []string
	TargetTagID     string
	TargetName      string
}

// Merge removes the source tags and leaves the target as the sole survivor.
// The target's type is never changed; a newly created target inherits the
// type of the first source.
func (s *Service) Merge(ctx context.Context, in MergeInput) (Tag, error) {
	in.SystemEditionID = strings.TrimSpace(in.SystemEditionID)
	if in.SystemEditionID == "" {
		return Tag{}, fmt.Errorf("%w: system_edition_id is required", ErrInvalidInput)
	}
	sources := dedupeIDs(in.SourceTagIDs)
	if len(sources) == 0 {
		return Tag{}, fmt.Errorf("%w: source_tag_ids are required", ErrInvalidInput)
	}
	in.TargetTagID = strings.TrimSpace(in.TargetTagID)
	in.TargetName = strings.TrimSpace(in.TargetName)
	if (in.TargetTagID == "") == (in.TargetName == "") {
		return Tag{}, fmt.Errorf("%w: exactly one of target_tag_id or target_name is required", ErrInvalidInput)
	}

	for _, src := range sources {
		tag, err := s.store.Find(ctx, src)
		if err != nil {
			return Tag{}, err
		}
		if tag.SystemEditionID != in.SystemEditionID {
			return Tag{}, fmt.Errorf("%w: tag %s belongs to another edition", ErrInvalidInput, src)
		}
	}

	var target Tag
	if in.TargetTagID != "" {
		for _, src := range sources {
			if src == in.TargetTagID {
				return Tag{}, fmt.Errorf("%w: target tag cannot be a merge source", ErrInvalidInput)
			}
		}
		existing, err := s.store.Find(ctx, in.TargetTagID)
		if err != nil {
			return Tag{}, err
		}
		if existing.SystemEditionID != in.SystemEditionID {
			return Tag{}, fmt.Errorf("%w: target tag belongs to another edition", ErrInvalidInput)
		}
		target = existing
	} else {
		first, err := s.store.Find(ctx, sources[0])
		if err != nil {
			return Tag{}, err
		}
		created, err := s.Create(ctx, CreateInput{
			SystemEditionID: in.SystemEditionID,
			Name:            in.TargetName,
			Color:           first.Color,
			Type:            string(first.Type),
			SortOrder:       first.SortOrder,
		})
		if err != nil {
			return Tag{}, err
		}
		target = created
	}

	if err := s.store.Merge(ctx, in.SystemEditionID, sources, target.ID); err != nil {
		return Tag{}, err
	}
	return s.store.Find(ctx, target.ID)
}

// Reorder applies a batch of {id, sort_order} updates atomically.
func (s *Service) Reorder(ctx context.Context, editionID string, updates []OrderUpdate) error {
	editionID = strings.TrimSpace(editionID)
	if editionID == "" {
		return fmt.Errorf("%w: system_edition_id is required", ErrInvalidInput)
	}
	if len(updates) == 0 {
		return fmt.Errorf("%w: order updates are required", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(updates))
	for i := range updates {
		updates[i].ID = strings.TrimSpace(updates[i].ID)
		if updates[i].ID == "" {
			return fmt.Errorf("%w: order update %d is missing an id", ErrInvalidInput, i)
		}
		if updates[i].SortOrder < 0 {
			return fmt.Errorf("%w: sort_order must be >= 0", ErrInvalidInput)
		}
		if _, dup := seen[updates[i].ID]; dup {
			return fmt.Errorf("%w: duplicate tag id %s", ErrInvalidInput, updates[i].ID)
		}
		seen[updates[i].ID] = struct{}{}
	}
	return s.store.Reorder(ctx, editionID, updates)
}

func (s *Service) Stats(ctx context.Context, editionID string) (Stats, error) {
	editionID = strings.TrimSpace(editionID)
	if editionID == "" {
		return Stats{}, fmt.Errorf("%w: system_edition_id is required", ErrInvalidInput)
	}
	return s.store.Stats(ctx, editionID)
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
