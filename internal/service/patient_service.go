package service

import (
	"context"
	"time"

	"clinicpanel/internal/apperror"
	"clinicpanel/internal/model"
	"clinicpanel/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type PatientRequest struct {
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone"`
	Document  string `json:"document"`
	Address   string `json:"address"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD, optional
	Notes     string `json:"notes"`
}

type PatientResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Document  string `json:"document"`
	Address   string `json:"address"`
	BirthDate string `json:"birth_date,omitempty"`
	IsOrtho   bool   `json:"is_ortho"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// --- Interface ---

type PatientService interface {
	Create(ctx context.Context, req PatientRequest) (PatientResponse, error)
	Update(ctx context.Context, id string, req PatientRequest) (PatientResponse, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (PatientResponse, error)
	List(ctx context.Context, search string, page, limit int) (PatientListResponse, error)
}

type patientService struct {
	patientRepo repository.PatientRepository
}

func NewPatientService(patientRepo repository.PatientRepository) PatientService {
	return &patientService{patientRepo: patientRepo}
}

// --- Implementation ---

func (s *patientService) Create(ctx context.Context, req PatientRequest) (PatientResponse, error) {
	patient := model.Patient{}
	if err := applyPatientRequest(&patient, req); err != nil {
		return PatientResponse{}, err
	}
	if err := s.patientRepo.Create(ctx, &patient); err != nil {
		return PatientResponse{}, apperror.Integrity("failed to create patient", err)
	}
	return toPatientResponse(patient), nil
}

func (s *patientService) Update(ctx context.Context, id string, req PatientRequest) (PatientResponse, error) {
	patient, err := s.findPatient(ctx, id)
	if err != nil {
		return PatientResponse{}, err
	}
	if err := applyPatientRequest(patient, req); err != nil {
		return PatientResponse{}, err
	}
	if err := s.patientRepo.Update(ctx, patient); err != nil {
		return PatientResponse{}, apperror.Integrity("failed to update patient", err)
	}
	return toPatientResponse(*patient), nil
}

// Delete soft-deletes the registry record. Ledger entries keep their
// patient_id so historical reports stay intact.
func (s *patientService) Delete(ctx context.Context, id string) error {
	patient, err := s.findPatient(ctx, id)
	if err != nil {
		return err
	}
	if err := s.patientRepo.Delete(ctx, patient.ID); err != nil {
		return apperror.Integrity("failed to delete patient", err)
	}
	return nil
}

func (s *patientService) Get(ctx context.Context, id string) (PatientResponse, error) {
	patient, err := s.findPatient(ctx, id)
	if err != nil {
		return PatientResponse{}, err
	}
	return toPatientResponse(*patient), nil
}

func (s *patientService) List(ctx context.Context, search string, page, limit int) (PatientListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	patients, total, err := s.patientRepo.List(ctx, search, page, limit)
	if err != nil {
		return PatientListResponse{}, apperror.Integrity("failed to list patients", err)
	}
	out := make([]PatientResponse, 0, len(patients))
	for _, p := range patients {
		out = append(out, toPatientResponse(p))
	}
	return PatientListResponse{Patients: out, Total: total, Page: page, Limit: limit}, nil
}

func (s *patientService) findPatient(ctx context.Context, id string) (*model.Patient, error) {
	patientID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid patient id")
	}
	patient, err := s.patientRepo.FindByID(ctx, patientID)
	if err != nil {
		return nil, apperror.NotFound("patient not found")
	}
	return patient, nil
}

func applyPatientRequest(patient *model.Patient, req PatientRequest) error {
	if req.Name == "" {
		return apperror.Validation("name is required")
	}
	patient.Name = req.Name
	patient.Phone = req.Phone
	patient.Document = req.Document
	patient.Address = req.Address
	patient.Notes = req.Notes
	if req.BirthDate != "" {
		birth, err := time.Parse(dateLayout, req.BirthDate)
		if err != nil {
			return apperror.Validation("birth_date must be YYYY-MM-DD")
		}
		patient.BirthDate = &birth
	} else {
		patient.BirthDate = nil
	}
	return nil
}

func toPatientResponse(p model.Patient) PatientResponse {
	resp := PatientResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Phone:     p.Phone,
		Document:  p.Document,
		Address:   p.Address,
		IsOrtho:   p.IsOrtho,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
	if p.BirthDate != nil {
		resp.BirthDate = p.BirthDate.Format(dateLayout)
	}
	return resp
}
