package api

import (
	"net/http"
	"path/filepath"

	"github.com/gluk-w/tabshell/internal/config"
	"github.com/gluk-w/tabshell/internal/sshkeys"
)

// identityDir is where a session profile's auto-provisioned local SSH
// identity lives when it doesn't name its own private key.
func identityDir() string {
	return filepath.Join(config.Cfg.DataPath, "identity")
}

type identityResponse struct {
	PrivateKeyPath string `json:"private_key_path"`
	PublicKey      string `json:"public_key"`
}

// handleGetIdentity returns this installation's default SSH identity,
// generating one on first call, so a user can copy the public half into a
// remote host's authorized_keys before creating a key-auth profile that
// leaves private_key_path unset.
func (s *Server) handleGetIdentity(w http.ResponseWriter, r *http.Request) {
	privPath, pub, err := sshkeys.EnsureIdentity(identityDir())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "ensure identity: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, identityResponse{PrivateKeyPath: privPath, PublicKey: pub})
}
