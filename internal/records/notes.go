package records

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	opCreateNote = "records.create_note"
	opListNotes  = "records.list_notes"
	opGetNote    = "records.get_note"
	opUpdateNote = "records.update_note"
)

// CreateNote stores a new note and returns its id. Title and content are both required.
func (s *Service) CreateNote(ctx context.Context, fields NoteFields) (string, error) {
	title := strings.TrimSpace(fields.Title)
	if title == "" {
		return "", newServiceError(opCreateNote, reasonMissingTitle, ErrValidation, nil)
	}
	if strings.TrimSpace(fields.Content) == "" {
		return "", newServiceError(opCreateNote, reasonMissingContent, ErrValidation, nil)
	}
	category, err := ParseCategory(fields.Category)
	if err != nil {
		return "", newServiceError(opCreateNote, reasonInvalidCategory, ErrValidation, err)
	}
	date, err := s.resolveDate(opCreateNote, fields.Date)
	if err != nil {
		return "", err
	}
	id, createdAt, err := s.newRecordStamp(opCreateNote)
	if err != nil {
		return "", err
	}

	record := Note{
		ID:        id,
		Title:     title,
		Content:   fields.Content,
		Category:  category,
		Date:      date,
		CreatedAt: createdAt,
	}
	if err := s.createRecord(ctx, opCreateNote, &record, zap.String("record_id", id)); err != nil {
		return "", err
	}
	return id, nil
}

// ListNotes returns every note, newest creation first.
func (s *Service) ListNotes(ctx context.Context) ([]Note, error) {
	var notes []Note
	if err := s.listRecords(ctx, opListNotes, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// GetNote loads a single note or fails with ErrNotFound.
func (s *Service) GetNote(ctx context.Context, id string) (Note, error) {
	var note Note
	if err := s.getRecord(ctx, opGetNote, strings.TrimSpace(id), &note); err != nil {
		return Note{}, err
	}
	return note, nil
}

// UpdateNote changes the content or category of an existing note.
func (s *Service) UpdateNote(ctx context.Context, id string, update NoteUpdate) error {
	updates := map[string]any{}
	if update.Content != nil {
		if strings.TrimSpace(*update.Content) == "" {
			return newServiceError(opUpdateNote, reasonMissingContent, ErrValidation, nil)
		}
		updates["content"] = *update.Content
	}
	if update.Category != nil {
		category, err := ParseCategory(*update.Category)
		if err != nil {
			return newServiceError(opUpdateNote, reasonInvalidCategory, ErrValidation, err)
		}
		updates["category"] = string(category)
	}
	return s.updateRecord(ctx, opUpdateNote, &Note{}, strings.TrimSpace(id), updates)
}

// SaveNote persists an edited note, creating a new note when createNew is set.
func (s *Service) SaveNote(ctx context.Context, id string, fields NoteFields, createNew bool) (string, error) {
	if createNew {
		return s.CreateNote(ctx, fields)
	}
	update := NoteUpdate{
		Content:  &fields.Content,
		Category: &fields.Category,
	}
	if err := s.UpdateNote(ctx, id, update); err != nil {
		return "", err
	}
	return strings.TrimSpace(id), nil
}
