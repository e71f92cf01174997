package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/availability"
	"github.com/clinicdesk/clinic-scheduling/internal/professional"
)

func createProfessionalHandler(svc *professional.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())

		var req CreateProfessionalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "validation_error", "name is required")
			return
		}

		window, err := windowFromRequest(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}

		p, err := svc.Create(r.Context(), sess.ClinicID, req.Name, req.Specialty, window)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toProfessionalResponse(p))
	}
}

func updateProfessionalHandler(svc *professional.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional_id", "id must be a valid UUID")
			return
		}

		var req CreateProfessionalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		window, err := windowFromRequest(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}

		p, err := svc.Update(r.Context(), sess.ClinicID, id, req.Name, req.Specialty, window)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toProfessionalResponse(p))
	}
}

func listProfessionalsHandler(svc *professional.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())

		ps, err := svc.List(r.Context(), sess.ClinicID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]ProfessionalResponse, 0, len(ps))
		for i := range ps {
			out = append(out, toProfessionalResponse(&ps[i]))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func availabilityHandler(svc *availability.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional_id", "id must be a valid UUID")
			return
		}

		slots, err := svc.ForProfessional(r.Context(), sess.ClinicID, id, time.Now())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if slots == nil {
			slots = []availability.DaySlots{}
		}

		writeJSON(w, http.StatusOK, slots)
	}
}

func windowFromRequest(req CreateProfessionalRequest) (professional.WeeklyWindow, error) {
	start, err := professional.ParseDayTime(req.StartTime)
	if err != nil {
		return professional.WeeklyWindow{}, err
	}
	end, err := professional.ParseDayTime(req.EndTime)
	if err != nil {
		return professional.WeeklyWindow{}, err
	}

	w := professional.WeeklyWindow{
		StartWeekday: time.Weekday(req.StartWeekday),
		EndWeekday:   time.Weekday(req.EndWeekday),
		StartTime:    start,
		EndTime:      end,
	}
	if err := w.Validate(); err != nil {
		return professional.WeeklyWindow{}, err
	}
	return w, nil
}
