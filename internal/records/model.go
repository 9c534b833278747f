package records

import (
	"fmt"
	"strings"
	"time"
)

// Collection names a record collection.
type Collection string

const (
	// CollectionSymptoms holds daily symptom severities.
	CollectionSymptoms Collection = "symptoms"
	// CollectionMedications holds medication dosages.
	CollectionMedications Collection = "medications"
	// CollectionNotes holds free-form notes.
	CollectionNotes Collection = "notes"
)

// Category classifies a note.
type Category string

const (
	// CategoryLife marks everyday life notes.
	CategoryLife Category = "life"
	// CategoryTreatment marks treatment plan notes.
	CategoryTreatment Category = "treatment"
)

const (
	// DateLayout is the calendar-day format stored on every record.
	DateLayout = "2006-01-02"
	// CreatedAtLayout is a fixed-width ISO-8601 layout; lexicographic order matches time order.
	CreatedAtLayout = "2006-01-02T15:04:05.000Z"

	looseDateLayout = "2006-1-2"
)

// ParseCategory validates a note category, defaulting empty input to CategoryLife.
func ParseCategory(raw string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case "", CategoryLife:
		return CategoryLife, nil
	case CategoryTreatment:
		return CategoryTreatment, nil
	default:
		return "", fmt.Errorf("%w: unknown category %q", ErrValidation, raw)
	}
}

// NormalizeDate returns the zero-padded YYYY-MM-DD form of a calendar day.
func NormalizeDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: date is required", ErrValidation)
	}
	parsed, err := time.Parse(looseDateLayout, trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: invalid date %q", ErrValidation, raw)
	}
	return parsed.Format(DateLayout), nil
}

// DateChanged reports whether an edit moved a record to another day. Editors create a new
// record in that case instead of updating the original.
func DateChanged(original, edited string) bool {
	originalDate, originalErr := NormalizeDate(original)
	editedDate, editedErr := NormalizeDate(edited)
	if originalErr != nil || editedErr != nil {
		return strings.TrimSpace(original) != strings.TrimSpace(edited)
	}
	return originalDate != editedDate
}

// Symptom is one logged symptom severity for a day.
type Symptom struct {
	ID        string `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	Name      string `gorm:"column:name;size:320;not null;index:idx_symptoms_name" json:"name"`
	Severity  int    `gorm:"column:severity;not null" json:"severity"`
	Notes     string `gorm:"column:notes;type:text;not null;default:''" json:"notes"`
	Date      string `gorm:"column:date;size:10;not null;index:idx_symptoms_date" json:"date"`
	CreatedAt string `gorm:"column:created_at;size:32;not null;index:idx_symptoms_created" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (Symptom) TableName() string {
	return string(CollectionSymptoms)
}

// RecordDate returns the calendar day of the record.
func (s Symptom) RecordDate() string { return s.Date }

// RecordCreatedAt returns the creation timestamp of the record.
func (s Symptom) RecordCreatedAt() string { return s.CreatedAt }

// Medication is one logged medication dosage for a day. Dosage is free text such as "500mg".
type Medication struct {
	ID        string `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	Name      string `gorm:"column:name;size:320;not null;index:idx_medications_name" json:"name"`
	Dosage    string `gorm:"column:dosage;size:190;not null;default:''" json:"dosage"`
	Frequency string `gorm:"column:frequency;size:190;not null;default:''" json:"frequency"`
	Purpose   string `gorm:"column:purpose;size:320;not null;default:''" json:"purpose"`
	Taken     bool   `gorm:"column:taken;not null;default:false" json:"taken"`
	Date      string `gorm:"column:date;size:10;not null;index:idx_medications_date" json:"date"`
	CreatedAt string `gorm:"column:created_at;size:32;not null;index:idx_medications_created" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (Medication) TableName() string {
	return string(CollectionMedications)
}

// RecordDate returns the calendar day of the record.
func (m Medication) RecordDate() string { return m.Date }

// RecordCreatedAt returns the creation timestamp of the record.
func (m Medication) RecordCreatedAt() string { return m.CreatedAt }

// Note is a titled free-form note for a day.
type Note struct {
	ID        string   `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	Title     string   `gorm:"column:title;size:320;not null;index:idx_notes_title" json:"title"`
	Content   string   `gorm:"column:content;type:text;not null" json:"content"`
	Category  Category `gorm:"column:category;size:32;not null;default:'life'" json:"category"`
	Date      string   `gorm:"column:date;size:10;not null;index:idx_notes_date" json:"date"`
	CreatedAt string   `gorm:"column:created_at;size:32;not null;index:idx_notes_created" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (Note) TableName() string {
	return string(CollectionNotes)
}

// RecordDate returns the calendar day of the record.
func (n Note) RecordDate() string { return n.Date }

// RecordCreatedAt returns the creation timestamp of the record.
func (n Note) RecordCreatedAt() string { return n.CreatedAt }

// SymptomFields carries the user supplied values of a new symptom record.
type SymptomFields struct {
	Name     string
	Severity int
	Notes    string
	Date     string
}

// SymptomUpdate lists the mutable symptom fields; nil fields are left untouched.
type SymptomUpdate struct {
	Severity *int
	Notes    *string
}

// MedicationFields carries the user supplied values of a new medication record.
type MedicationFields struct {
	Name      string
	Dosage    string
	Frequency string
	Purpose   string
	Date      string
}

// MedicationUpdate lists the mutable medication fields; nil fields are left untouched.
type MedicationUpdate struct {
	Dosage    *string
	Frequency *string
	Purpose   *string
	Taken     *bool
}

// NoteFields carries the user supplied values of a new note.
type NoteFields struct {
	Title    string
	Content  string
	Category string
	Date     string
}

// NoteUpdate lists the mutable note fields; nil fields are left untouched.
type NoteUpdate struct {
	Content  *string
	Category *string
}
