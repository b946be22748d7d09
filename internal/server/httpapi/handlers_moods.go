package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/go-chi/chi/v5"
)

// moodID parses the {id} path segment. Anything but a positive integer is a
// validation failure.
func moodID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

// listFilter reads the list query. Out-of-range numbers are left for the
// service to reject.
func listFilter(r *http.Request) (api.MoodFilter, error) {
	q := r.URL.Query()
	f := api.MoodFilter{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, common.NewValidationError("limit", "must be an integer")
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, common.NewValidationError("offset", "must be an integer")
		}
		f.Offset = n
	}
	return f, nil
}

func (s *Server) CreateMood(w http.ResponseWriter, r *http.Request) {
	var req api.MoodRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := s.moodService.Create(r.Context(), userIDFrom(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, "Mood entry created successfully", api.MoodCreated{ID: id})
}

func (s *Server) ListMoods(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	moods, err := s.moodService.List(r.Context(), userIDFrom(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]api.MoodResponse, 0, len(moods))
	for _, m := range moods {
		out = append(out, toMoodResponse(m))
	}
	writeData(w, http.StatusOK, "", out)
}

func (s *Server) GetMood(w http.ResponseWriter, r *http.Request) {
	id, err := moodID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	m, err := s.moodService.Get(r.Context(), userIDFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "", toMoodResponse(m))
}

func (s *Server) UpdateMood(w http.ResponseWriter, r *http.Request) {
	id, err := moodID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req api.MoodUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.moodService.Update(r.Context(), userIDFrom(r.Context()), id, req); err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Mood entry updated successfully")
}

func (s *Server) DeleteMood(w http.ResponseWriter, r *http.Request) {
	id, err := moodID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.moodService.Delete(r.Context(), userIDFrom(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "Mood entry deleted successfully")
}

func (s *Server) PhotoUploadURL(w http.ResponseWriter, r *http.Request) {
	up, err := s.moodService.PresignPhotoUpload(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "", *up)
}
