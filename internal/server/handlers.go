package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/esnunes/featurechat/internal/interview"
	"github.com/esnunes/featurechat/internal/logger"
	"github.com/esnunes/featurechat/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createRequest struct {
	Title string `json:"title"`
}

type promptResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

type createResponse struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Prompt  promptResponse `json:"prompt"`
	Message string         `json:"message"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	out, err := s.engine.Begin(r.Context(), req.Title)
	if err != nil {
		s.internalError(w, r, "creating discussion", err)
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{
		ID:      out.ID,
		Title:   out.Title,
		Prompt:  toPromptResponse(out.Prompt),
		Message: out.Message(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.List(r.Context())
	if err != nil {
		s.internalError(w, r, "listing discussions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"discussions": list})
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	d, c, err := s.engine.Read(r.Context(), r.PathValue("id"))
	if errors.Is(err, interview.ErrNotFound) {
		writeError(w, http.StatusNotFound, "discussion not found")
		return
	}
	if err != nil {
		s.internalError(w, r, "reading discussion", err)
		return
	}
	writeJSON(w, http.StatusOK, models.Document{Discussion: d, Context: c})
}

type answerRequest struct {
	Response string `json:"response"`
}

type answerResponse struct {
	Message  string          `json:"message"`
	Next     *promptResponse `json:"next,omitempty"`
	Complete bool            `json:"complete"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	out, err := s.engine.Answer(r.Context(), r.PathValue("id"), req.Response)
	switch {
	case errors.Is(err, interview.ErrNotFound):
		writeError(w, http.StatusNotFound, "discussion not found")
		return
	case errors.Is(err, interview.ErrInvalidState):
		writeError(w, http.StatusConflict, "discussion is already complete")
		return
	case err != nil:
		s.internalError(w, r, "answering discussion", err)
		return
	}

	resp := answerResponse{Message: out.Message, Complete: out.Complete}
	if out.Next != nil {
		p := toPromptResponse(*out.Next)
		resp.Next = &p
	}
	writeJSON(w, http.StatusOK, resp)
}

func toPromptResponse(p interview.Prompt) promptResponse {
	return promptResponse{ID: p.ID, Message: p.Message, Field: p.Field.String()}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger.FromContext(r.Context(), s.log).Error(op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
