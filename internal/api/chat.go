package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/chat"
	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
)

func startConversationHandler(svc *chat.Service, gate *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())

		var req StartConversationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		if err := gate.RequireFeature(r.Context(), sess.ClinicID, clinic.FeatureChat); err != nil {
			writeDomainError(w, err)
			return
		}

		opener := chat.PartyReceptionist
		openerID := sess.UserID
		if sess.Role == "patient" {
			opener = chat.PartyPatient
			openerID = patientID
		}

		conv, err := svc.Start(r.Context(), sess.ClinicID, patientID, opener, openerID, req.Message)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toConversationResponse(conv))
	}
}

func sendMessageHandler(svc *chat.Service, gate *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())

		conversationID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_conversation_id", "id must be a valid UUID")
			return
		}

		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		senderID, err := uuid.Parse(req.SenderID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_sender_id", "sender_id must be a valid UUID")
			return
		}

		if err := gate.RequireFeature(r.Context(), sess.ClinicID, clinic.FeatureChat); err != nil {
			writeDomainError(w, err)
			return
		}

		msg, err := svc.SendMessage(r.Context(), sess.ClinicID, conversationID, chat.Party(req.Sender), senderID, req.Body)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toMessageResponse(msg))
	}
}

func markReadHandler(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())

		conversationID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_conversation_id", "id must be a valid UUID")
			return
		}

		var req MarkReadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		var readerID *uuid.UUID
		if req.ReaderID != nil {
			id, err := uuid.Parse(*req.ReaderID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_reader_id", "reader_id must be a valid UUID")
				return
			}
			readerID = &id
		}

		if err := svc.MarkRead(r.Context(), sess.ClinicID, conversationID, chat.Party(req.Reader), readerID); err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func getConversationHandler(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())

		conversationID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_conversation_id", "id must be a valid UUID")
			return
		}

		conv, err := svc.Get(r.Context(), sess.ClinicID, conversationID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toConversationResponse(conv))
	}
}

func unreadHandler(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())

		conversationID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_conversation_id", "id must be a valid UUID")
			return
		}

		party := chat.Party(r.URL.Query().Get("party"))
		if !party.Valid() {
			writeError(w, http.StatusBadRequest, "validation_error", "party must be patient or receptionist")
			return
		}

		counter, err := svc.Unread(r.Context(), sess.ClinicID, conversationID, party)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]int{"count": counter.Count})
	}
}

func listConversationsHandler(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())

		var status *chat.ConversationStatus
		if v := r.URL.Query().Get("status"); v != "" {
			s := chat.ConversationStatus(v)
			if s != chat.ConversationActive && s != chat.ConversationArchived {
				writeError(w, http.StatusBadRequest, "validation_error", "status must be active or archived")
				return
			}
			status = &s
		}

		convs, err := svc.List(r.Context(), sess.ClinicID, status)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]ConversationResponse, 0, len(convs))
		for i := range convs {
			out = append(out, toConversationResponse(&convs[i]))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func listMessagesHandler(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())

		conversationID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_conversation_id", "id must be a valid UUID")
			return
		}

		msgs, err := svc.ListMessages(r.Context(), sess.ClinicID, conversationID, intQuery(r, "limit"), intQuery(r, "offset"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]MessageResponse, 0, len(msgs))
		for i := range msgs {
			out = append(out, toMessageResponse(&msgs[i]))
		}

		writeJSON(w, http.StatusOK, out)
	}
}
