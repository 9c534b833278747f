package server

import (
	"net/http"
	"strings"

	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/history"
	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/records"
	"github.com/gin-gonic/gin"
)

const viewLatest = "latest"

type symptomRequest struct {
	Name     string `json:"name"`
	Severity int    `json:"severity"`
	Notes    string `json:"notes"`
	Date     string `json:"date"`
}

func (r symptomRequest) fields() records.SymptomFields {
	return records.SymptomFields{Name: r.Name, Severity: r.Severity, Notes: r.Notes, Date: r.Date}
}

type symptomPatchRequest struct {
	Severity *int    `json:"severity"`
	Notes    *string `json:"notes"`
}

type medicationRequest struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Purpose   string `json:"purpose"`
	Date      string `json:"date"`
}

func (r medicationRequest) fields() records.MedicationFields {
	return records.MedicationFields{
		Name:      r.Name,
		Dosage:    r.Dosage,
		Frequency: r.Frequency,
		Purpose:   r.Purpose,
		Date:      r.Date,
	}
}

type medicationPatchRequest struct {
	Dosage    *string `json:"dosage"`
	Frequency *string `json:"frequency"`
	Purpose   *string `json:"purpose"`
	Taken     *bool   `json:"taken"`
}

type medicationTakenRequest struct {
	Taken *bool `json:"taken"`
}

type noteRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

func (r noteRequest) fields() records.NoteFields {
	return records.NoteFields{Title: r.Title, Content: r.Content, Category: r.Category, Date: r.Date}
}

type notePatchRequest struct {
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

type createdResponse struct {
	ID string `json:"id"`
}

type saveResponse struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

// bindJSON decodes the request body and answers 400 on malformed input.
func bindJSON(c *gin.Context, destination any) bool {
	if err := c.ShouldBindJSON(destination); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return false
	}
	return true
}

func wantsLatest(c *gin.Context) bool {
	return strings.EqualFold(strings.TrimSpace(c.Query("view")), viewLatest)
}

func (h *httpHandler) handleCreateSymptom(c *gin.Context) {
	var request symptomRequest
	if !bindJSON(c, &request) {
		return
	}
	id, err := h.store.CreateSymptom(c.Request.Context(), request.fields())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(records.CollectionSymptoms, id)
	c.JSON(http.StatusCreated, createdResponse{ID: id})
}

func (h *httpHandler) handleListSymptoms(c *gin.Context) {
	symptoms, err := h.store.ListSymptoms(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if wantsLatest(c) {
		symptoms = history.LatestSymptoms(symptoms)
	}
	if symptoms == nil {
		symptoms = []records.Symptom{}
	}
	c.JSON(http.StatusOK, gin.H{"symptoms": symptoms})
}

func (h *httpHandler) handleGetSymptom(c *gin.Context) {
	symptom, err := h.store.GetSymptom(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, symptom)
}

func (h *httpHandler) handleUpdateSymptom(c *gin.Context) {
	var request symptomPatchRequest
	if !bindJSON(c, &request) {
		return
	}
	id := c.Param("id")
	update := records.SymptomUpdate{Severity: request.Severity, Notes: request.Notes}
	if err := h.store.UpdateSymptom(c.Request.Context(), id, update); err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(records.CollectionSymptoms, id)
	c.Status(http.StatusNoContent)
}

// handleSaveSymptom applies an edit form. Moving the record to another day creates a new
// record and leaves the original untouched.
func (h *httpHandler) handleSaveSymptom(c *gin.Context) {
	var request symptomRequest
	if !bindJSON(c, &request) {
		return
	}
	ctx := c.Request.Context()
	original, err := h.store.GetSymptom(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	fields := request.fields()
	if strings.TrimSpace(fields.Name) == "" {
		fields.Name = original.Name
	}
	createNew := request.Date != "" && records.DateChanged(original.Date, request.Date)
	id, err := h.store.SaveSymptom(ctx, original.ID, fields, createNew)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(records.CollectionSymptoms, id)
	c.JSON(http.StatusOK, saveResponse{ID: id, Created: createNew})
}

func (h *httpHandler) handleCreateMedication(c *gin.Context) {
	var request medicationRequest
	if !bindJSON(c, &request) {
		return
	}
	id, err := h.store.CreateMedication(c.Request.Context(), request.fields())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(records.CollectionMedications, id)
	c.JSON(http.StatusCreated, createdResponse{ID: id})
}

func (h *httpHandler) handleListMedications(c *gin.Context) {
	medications, err := h.store.ListMedications(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if wantsLatest(c) {
		medications = history.LatestMedications(medications)
	}
	if medications == nil {
		medications = []records.Medication{}
	}
	c.JSON(http.StatusOK, gin.H{"medications": medications})
}

func (h *httpHandler) handleGetMedication(c *gin.Context) {
	medication, err := h.store.GetMedication(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, medication)
}

func (h *httpHandler) handleUpdateMedication(c *gin.Context) {
	var request medicationPatchRequest
	if !bindJSON(c, &request) {
		return
	}
	id := c.Param("id")
	update := records.MedicationUpdate{
		Dosage:    request.Dosage,
		Frequency: request.Frequency,
		Purpose:   request.Purpose,
		Taken:     request.Taken,
	}
	if err := h.store.UpdateMedication(c.Request.Context(), id, update); err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(records.CollectionMedications, id)
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleSetMedicationTaken(c *gin.Context) {
	var request medicationTakenRequest
	if !bindJSON(c, &request) {
		return
	}
	if request.Taken == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	id := c.Param("id")
	if err := h.store.SetMedicationTaken(c.Request.Context(), id, *request.Taken); err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(records.CollectionMedications, id)
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleSaveMedication(c *gin.Context) {
	var request medicationRequest
	if !bindJSON(c, &request) {
		return
	}
	ctx := c.Request.Context()
	original, err := h.store.GetMedication(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	fields := request.fields()
	if strings.TrimSpace(fields.Name) == "" {
		fields.Name = original.Name
	}
	createNew := request.Date != "" && records.DateChanged(original.Date, request.Date)
	id, err := h.store.SaveMedication(ctx, original.ID, fields, createNew)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(records.CollectionMedications, id)
	c.JSON(http.StatusOK, saveResponse{ID: id, Created: createNew})
}

func (h *httpHandler) handleCreateNote(c *gin.Context) {
	var request noteRequest
	if !bindJSON(c, &request) {
		return
	}
	id, err := h.store.CreateNote(c.Request.Context(), request.fields())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(records.CollectionNotes, id)
	c.JSON(http.StatusCreated, createdResponse{ID: id})
}

func (h *httpHandler) handleListNotes(c *gin.Context) {
	notes, err := h.store.ListNotes(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if wantsLatest(c) {
		notes = history.LatestNotes(notes)
	}
	if notes == nil {
		notes = []records.Note{}
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

func (h *httpHandler) handleGetNote(c *gin.Context) {
	note, err := h.store.GetNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *httpHandler) handleUpdateNote(c *gin.Context) {
	var request notePatchRequest
	if !bindJSON(c, &request) {
		return
	}
	id := c.Param("id")
	update := records.NoteUpdate{Content: request.Content, Category: request.Category}
	if err := h.store.UpdateNote(c.Request.Context(), id, update); err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(records.CollectionNotes, id)
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) handleSaveNote(c *gin.Context) {
	var request noteRequest
	if !bindJSON(c, &request) {
		return
	}
	ctx := c.Request.Context()
	original, err := h.store.GetNote(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	fields := request.fields()
	if strings.TrimSpace(fields.Title) == "" {
		fields.Title = original.Title
	}
	createNew := request.Date != "" && records.DateChanged(original.Date, request.Date)
	id, err := h.store.SaveNote(ctx, original.ID, fields, createNew)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(records.CollectionNotes, id)
	c.JSON(http.StatusOK, saveResponse{ID: id, Created: createNew})
}
