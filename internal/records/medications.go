package records

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	opCreateMedication = "records.create_medication"
	opListMedications  = "records.list_medications"
	opGetMedication    = "records.get_medication"
	opUpdateMedication = "records.update_medication"
	opSetTaken         = "records.set_medication_taken"
)

// CreateMedication stores a new medication record and returns its id.
func (s *Service) CreateMedication(ctx context.Context, fields MedicationFields) (string, error) {
	name := strings.TrimSpace(fields.Name)
	if name == "" {
		return "", newServiceError(opCreateMedication, reasonMissingName, ErrValidation, nil)
	}
	date, err := s.resolveDate(opCreateMedication, fields.Date)
	if err != nil {
		return "", err
	}
	id, createdAt, err := s.newRecordStamp(opCreateMedication)
	if err != nil {
		return "", err
	}

	record := Medication{
		ID:        id,
		Name:      name,
		Dosage:    strings.TrimSpace(fields.Dosage),
		Frequency: strings.TrimSpace(fields.Frequency),
		Purpose:   strings.TrimSpace(fields.Purpose),
		Date:      date,
		CreatedAt: createdAt,
	}
	if err := s.createRecord(ctx, opCreateMedication, &record, zap.String("record_id", id)); err != nil {
		return "", err
	}
	return id, nil
}

// ListMedications returns every medication record, newest creation first.
func (s *Service) ListMedications(ctx context.Context) ([]Medication, error) {
	var medications []Medication
	if err := s.listRecords(ctx, opListMedications, &medications); err != nil {
		return nil, err
	}
	return medications, nil
}

// GetMedication loads a single medication record or fails with ErrNotFound.
func (s *Service) GetMedication(ctx context.Context, id string) (Medication, error) {
	var medication Medication
	if err := s.getRecord(ctx, opGetMedication, strings.TrimSpace(id), &medication); err != nil {
		return Medication{}, err
	}
	return medication, nil
}

// UpdateMedication changes dosage, frequency, purpose or the taken flag of an existing record.
func (s *Service) UpdateMedication(ctx context.Context, id string, update MedicationUpdate) error {
	updates := map[string]any{}
	if update.Dosage != nil {
		updates["dosage"] = strings.TrimSpace(*update.Dosage)
	}
	if update.Frequency != nil {
		updates["frequency"] = strings.TrimSpace(*update.Frequency)
	}
	if update.Purpose != nil {
		updates["purpose"] = strings.TrimSpace(*update.Purpose)
	}
	if update.Taken != nil {
		updates["taken"] = *update.Taken
	}
	return s.updateRecord(ctx, opUpdateMedication, &Medication{}, strings.TrimSpace(id), updates)
}

// SetMedicationTaken toggles whether a logged dose was taken.
func (s *Service) SetMedicationTaken(ctx context.Context, id string, taken bool) error {
	return s.updateRecord(ctx, opSetTaken, &Medication{}, strings.TrimSpace(id), map[string]any{"taken": taken})
}

// SaveMedication persists an edited medication, creating a new record when createNew is set.
func (s *Service) SaveMedication(ctx context.Context, id string, fields MedicationFields, createNew bool) (string, error) {
	if createNew {
		return s.CreateMedication(ctx, fields)
	}
	update := MedicationUpdate{
		Dosage:    &fields.Dosage,
		Frequency: &fields.Frequency,
		Purpose:   &fields.Purpose,
	}
	if err := s.UpdateMedication(ctx, id, update); err != nil {
		return "", err
	}
	return strings.TrimSpace(id), nil
}
