package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/dmitrijs2005/moodkeeper/internal/logging"
)

const healthTimeout = 2 * time.Second

func (s *Server) Banner(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Moodkeeper API is running")
}

// Health reports 200 while the database answers a ping, 503 otherwise.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeData(w, http.StatusOK, "", api.Health{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		logging.FromContext(r.Context(), s.logger).Warn(r.Context(), "database ping failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, api.Envelope[api.Health]{
			Success: false,
			Message: "Database unavailable",
			Data:    api.Health{Status: "error", Database: "unreachable"},
		})
		return
	}

	writeData(w, http.StatusOK, "", api.Health{Status: "ok", Database: "ok"})
}

func (s *Server) MoodStats(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = common.DefaultPeriod
	}

	st, err := s.statsService.MoodStats(r.Context(), userIDFrom(r.Context()), period)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "", toMoodStats(st))
}

func (s *Server) Activities(w http.ResponseWriter, r *http.Request) {
	list, err := s.statsService.Activities(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]api.Activity, 0, len(list))
	for _, a := range list {
		out = append(out, api.Activity{ID: a.ID, Name: a.Name, Icon: a.Icon})
	}
	writeData(w, http.StatusOK, "", out)
}

func (s *Server) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.statsService.Summary(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, "", toSummary(sum))
}
