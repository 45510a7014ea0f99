package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gluk-w/tabshell/internal/localshell"
	"github.com/gluk-w/tabshell/internal/session"
	"github.com/gluk-w/tabshell/internal/sshkeys"
	"github.com/gluk-w/tabshell/internal/sshsession"
	"github.com/gluk-w/tabshell/internal/store"
)

type sessionView struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	DisplayName string `json:"display_name"`
	ShellType   string `json:"shell_type"`
	State       string `json:"state"`
	CWD         string `json:"current_directory"`
	Selected    bool   `json:"selected"`
}

func toSessionView(s session.Session, selectedID string) sessionView {
	return sessionView{
		ID:          s.ID(),
		Kind:        string(s.Kind()),
		DisplayName: s.DisplayName(),
		ShellType:   s.ShellType(),
		State:       string(s.State()),
		CWD:         s.CurrentDirectory(),
		Selected:    s.ID() == selectedID,
	}
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	selected := s.Manager.SelectedID()
	sessions := s.Manager.List()
	views := make([]sessionView, len(sessions))
	for i, sess := range sessions {
		views[i] = toSessionView(sess, selected)
	}
	writeJSON(w, http.StatusOK, views)
}

type createSessionRequest struct {
	Kind       string `json:"kind"` // "local" or "ssh"
	Title      string `json:"title"`
	Shell      string `json:"shell,omitempty"`
	WorkingDir string `json:"working_dir,omitempty"`

	Host           string `json:"host,omitempty"`
	Port           int    `json:"port,omitempty"`
	User           string `json:"user,omitempty"`
	AuthMethod     string `json:"auth_method,omitempty"`
	PrivateKeyPath string `json:"private_key_path,omitempty"`
	Connect        bool   `json:"connect"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := uuid.NewString()
	var sess session.Session
	switch req.Kind {
	case "local":
		shell := req.Shell
		if shell == "" {
			shell = "/bin/sh"
		}
		sess = localshell.New(id, req.Title, shell, nil, req.WorkingDir)
	case "ssh":
		cfg := sshsession.Config{
			Host:     req.Host,
			Port:     req.Port,
			Username: req.User,
		}
		if req.AuthMethod == "key" {
			cfg.AuthMethod = sshsession.AuthPrivateKey
			cfg.PrivateKeyPath = req.PrivateKeyPath
			if cfg.PrivateKeyPath == "" {
				privPath, _, err := sshkeys.EnsureIdentity(identityDir())
				if err != nil {
					writeError(w, http.StatusInternalServerError, "ensure identity: "+err.Error())
					return
				}
				cfg.PrivateKeyPath = privPath
			}
		} else {
			cfg.AuthMethod = sshsession.AuthPassword
		}
		sess = sshsession.New(id, req.Title, cfg)
	default:
		writeError(w, http.StatusBadRequest, "kind must be \"local\" or \"ssh\"")
		return
	}

	if req.Connect {
		if err := sess.Connect(); err != nil {
			sess.Dispose()
			writeError(w, http.StatusBadGateway, "connect: "+err.Error())
			return
		}
	}

	s.Manager.Add(sess)
	s.Manager.Select(id)

	_ = store.SaveSessionDescriptor(&store.SessionDescriptor{
		ID:           id,
		Title:        sess.DisplayName(),
		Kind:         req.Kind,
		LastActiveAt: time.Now(),
	})

	writeJSON(w, http.StatusCreated, toSessionView(sess, s.Manager.SelectedID()))
}

func (s *Server) handleRemoveSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.Manager.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no such session")
		return
	}
	s.Manager.Remove(id)
	sess.Dispose()
	_ = store.DeleteSessionDescriptor(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.Manager.Get(id); !ok {
		writeError(w, http.StatusNotFound, "no such session")
		return
	}
	s.Manager.Select(id)
	w.WriteHeader(http.StatusNoContent)
}

type executeRequest struct {
	Command string `json:"command"`
	Timeout string `json:"timeout,omitempty"`
}

type executeResponse struct {
	Output           string `json:"output"`
	Error            string `json:"error"`
	ExitCode         int    `json:"exit_code"`
	DurationMS       int64  `json:"duration_ms"`
	CurrentDirectory string `json:"current_directory"`
	IsTimeout        bool   `json:"is_timeout"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.Manager.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no such session")
		return
	}

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var timeout time.Duration
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid timeout")
			return
		}
		timeout = d
	}

	if s.Timers != nil {
		s.Timers.RecordActivity(id)
	}
	result := sess.Execute(req.Command, timeout)
	writeJSON(w, http.StatusOK, executeResponse{
		Output:           result.Output,
		Error:            result.Error,
		ExitCode:         result.ExitCode,
		DurationMS:       result.Duration.Milliseconds(),
		CurrentDirectory: result.CurrentDirectory,
		IsTimeout:        result.IsTimeout,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
