package store

import "time"

// Setting is a single key/value configuration row, used for anything that
// must survive a restart but doesn't deserve its own column: the lazily
// generated secret-store key, the scheduler's selected session ID, and
// similar bookkeeping.
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SessionProfile is a saved connection target: either a local shell
// configuration or a remote SSH host. Kind discriminates which fields apply.
type SessionProfile struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Kind      string    `gorm:"not null" json:"kind"` // "local" or "ssh"
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// local
	Shell      string `json:"shell,omitempty"`
	WorkingDir string `json:"working_dir,omitempty"`
	EnvJSON    string `gorm:"type:text;default:'{}'" json:"-"`

	// ssh
	Host           string `json:"host,omitempty"`
	Port           int    `gorm:"default:22" json:"port,omitempty"`
	User           string `json:"user,omitempty"`
	AuthMethod     string `json:"auth_method,omitempty"` // "password", "key"
	PrivateKeyPath string `json:"private_key_path,omitempty"`
	PasswordEnc    string `json:"-"` // fernet-encrypted
	PassphraseEnc  string `json:"-"` // fernet-encrypted, for encrypted private keys

	Forwards []PortForward `gorm:"foreignKey:ProfileID" json:"forwards,omitempty"`
}

// PortForward is a saved tunnel configuration attached to an SSH profile.
type PortForward struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProfileID  uint   `gorm:"not null;index" json:"profile_id"`
	Type       string `gorm:"not null" json:"type"` // "local", "remote", "dynamic"
	BindHost   string `gorm:"default:'127.0.0.1'" json:"bind_host"`
	BindPort   int    `gorm:"not null" json:"bind_port"`
	TargetHost string `json:"target_host,omitempty"` // empty for dynamic
	TargetPort int    `json:"target_port,omitempty"` // 0 for dynamic
	AutoStart  bool   `gorm:"default:true" json:"auto_start"`
}

// SessionDescriptor records enough state about an open tab to restore it the
// next time the host process starts, when restore-on-start is enabled.
type SessionDescriptor struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	ProfileID      uint      `gorm:"index" json:"profile_id"`
	Title          string    `json:"title"`
	Kind           string    `gorm:"not null" json:"kind"`
	ScrollbackPath string    `json:"scrollback_path,omitempty"`
	LastActiveAt   time.Time `json:"last_active_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
