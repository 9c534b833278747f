package records

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	opCreateSymptom = "records.create_symptom"
	opListSymptoms  = "records.list_symptoms"
	opGetSymptom    = "records.get_symptom"
	opUpdateSymptom = "records.update_symptom"
)

// CreateSymptom stores a new symptom record and returns its id.
func (s *Service) CreateSymptom(ctx context.Context, fields SymptomFields) (string, error) {
	name := strings.TrimSpace(fields.Name)
	if name == "" {
		return "", newServiceError(opCreateSymptom, reasonMissingName, ErrValidation, nil)
	}
	date, err := s.resolveDate(opCreateSymptom, fields.Date)
	if err != nil {
		return "", err
	}
	id, createdAt, err := s.newRecordStamp(opCreateSymptom)
	if err != nil {
		return "", err
	}

	record := Symptom{
		ID:        id,
		Name:      name,
		Severity:  fields.Severity,
		Notes:     fields.Notes,
		Date:      date,
		CreatedAt: createdAt,
	}
	if err := s.createRecord(ctx, opCreateSymptom, &record, zap.String("record_id", id)); err != nil {
		return "", err
	}
	return id, nil
}

// ListSymptoms returns every symptom record, newest creation first.
func (s *Service) ListSymptoms(ctx context.Context) ([]Symptom, error) {
	var symptoms []Symptom
	if err := s.listRecords(ctx, opListSymptoms, &symptoms); err != nil {
		return nil, err
	}
	return symptoms, nil
}

// GetSymptom loads a single symptom record or fails with ErrNotFound.
func (s *Service) GetSymptom(ctx context.Context, id string) (Symptom, error) {
	var symptom Symptom
	if err := s.getRecord(ctx, opGetSymptom, strings.TrimSpace(id), &symptom); err != nil {
		return Symptom{}, err
	}
	return symptom, nil
}

// UpdateSymptom changes the severity and notes of an existing record.
func (s *Service) UpdateSymptom(ctx context.Context, id string, update SymptomUpdate) error {
	updates := map[string]any{}
	if update.Severity != nil {
		updates["severity"] = *update.Severity
	}
	if update.Notes != nil {
		updates["notes"] = *update.Notes
	}
	return s.updateRecord(ctx, opUpdateSymptom, &Symptom{}, strings.TrimSpace(id), updates)
}

// SaveSymptom persists an edited symptom. With createNew the edit becomes a new record on
// fields.Date; otherwise only the mutable fields of id are updated. The returned id is the
// record that now holds the edit.
func (s *Service) SaveSymptom(ctx context.Context, id string, fields SymptomFields, createNew bool) (string, error) {
	if createNew {
		return s.CreateSymptom(ctx, fields)
	}
	severity := fields.Severity
	notes := fields.Notes
	if err := s.UpdateSymptom(ctx, id, SymptomUpdate{Severity: &severity, Notes: &notes}); err != nil {
		return "", err
	}
	return strings.TrimSpace(id), nil
}
