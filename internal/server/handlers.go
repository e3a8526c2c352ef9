package server

import (
	"encoding/json"
	"net/http"

	"github.com/signalscope/signalscope/pkg/detectors"
)

// stateResponse is the engine snapshot plus the runner's running flag.
type stateResponse struct {
	Running   bool        `json:"running"`
	TimeStep  int         `json:"time_step"`
	Values    []float64   `json:"values"`
	Anomalies interface{} `json:"anomalies"`
	Log       []string    `json:"log"`
	Settings  interface{} `json:"settings"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	state := s.engine.State()
	writeJSON(w, http.StatusOK, stateResponse{
		Running:   s.runner.Running(),
		TimeStep:  state.TimeStep,
		Values:    state.Values,
		Anomalies: state.Anomalies,
		Log:       state.Log,
		Settings:  state.Settings,
	})
}

// settingsRequest supports partial updates: absent fields are left alone.
type settingsRequest struct {
	Method          *string  `json:"method,omitempty"`
	ZScoreThreshold *float64 `json:"zscore_threshold,omitempty"`
	MADThreshold    *float64 `json:"mad_threshold,omitempty"`
	Contamination   *float64 `json:"contamination,omitempty"`
	WindowCapacity  *int     `json:"window_capacity,omitempty"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Validate everything up front so a request either applies completely
	// or not at all.
	if req.Method != nil {
		if _, err := detectors.ParseMethod(*req.Method); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.ZScoreThreshold != nil {
		if err := detectors.ValidateThreshold(*req.ZScoreThreshold); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.MADThreshold != nil {
		if err := detectors.ValidateThreshold(*req.MADThreshold); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Contamination != nil {
		if err := detectors.ValidateContamination(*req.Contamination); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.WindowCapacity != nil && *req.WindowCapacity < 1 {
		writeError(w, http.StatusBadRequest, "window_capacity must be positive")
		return
	}

	if req.Method != nil {
		s.engine.SetMethod(detectors.Method(*req.Method))
	}
	if req.ZScoreThreshold != nil {
		s.engine.SetZScoreThreshold(*req.ZScoreThreshold)
	}
	if req.MADThreshold != nil {
		s.engine.SetMADThreshold(*req.MADThreshold)
	}
	if req.Contamination != nil {
		s.engine.SetContamination(*req.Contamination)
	}
	if req.WindowCapacity != nil {
		if err := s.engine.SetWindowCapacity(*req.WindowCapacity); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, s.engine.Settings())
}

func (s *Server) handleStart(w http.ResponseWriter, _ *http.Request) {
	s.runner.Start()
	writeJSON(w, http.StatusOK, map[string]bool{"running": true})
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.runner.Stop()
	writeJSON(w, http.StatusOK, map[string]bool{"running": false})
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	// Stopping first mirrors the dashboard's reset button; the reset itself
	// is also safe mid-run.
	s.runner.Stop()
	s.engine.Reset()
	writeJSON(w, http.StatusOK, map[string]bool{"running": false})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
