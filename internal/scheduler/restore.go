package scheduler

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gluk-w/tabshell/internal/localshell"
	"github.com/gluk-w/tabshell/internal/session"
	"github.com/gluk-w/tabshell/internal/sshsession"
	"github.com/gluk-w/tabshell/internal/store"
)

const selectedSessionSettingKey = "scheduler.selected_session_id"

// HostFactory builds a not-yet-connected Session from a persisted profile
// and descriptor. Local sessions returned here are connected by Restore
// when the profile has a working directory; SSH sessions are left
// disconnected regardless.
type HostFactory interface {
	NewLocal(profile store.SessionProfile, descriptor store.SessionDescriptor) session.Session
	NewSSH(profile store.SessionProfile, descriptor store.SessionDescriptor) session.Session
}

// DefaultHostFactory builds real localshell.Host / sshsession.Host
// instances from stored profiles.
type DefaultHostFactory struct{}

func (DefaultHostFactory) NewLocal(p store.SessionProfile, d store.SessionDescriptor) session.Session {
	shell := p.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	return localshell.New(d.ID, d.Title, shell, nil, p.WorkingDir)
}

func (DefaultHostFactory) NewSSH(p store.SessionProfile, d store.SessionDescriptor) session.Session {
	cfg := sshsession.Config{
		Host:           p.Host,
		Port:           p.Port,
		Username:       p.User,
		ExpectedHostKeyFingerprint: "",
	}
	switch p.AuthMethod {
	case "key":
		cfg.AuthMethod = sshsession.AuthPrivateKey
		cfg.PrivateKeyPath = p.PrivateKeyPath
	default:
		cfg.AuthMethod = sshsession.AuthPassword
	}
	return sshsession.New(d.ID, d.Title, cfg)
}

// Restore reconstructs every persisted session descriptor. Local sessions
// with a working directory are connected immediately; SSH sessions are
// recreated but left disconnected, per the spec's restore-on-start rule.
// It returns the ID that was selected before the last shutdown, if any.
func Restore(manager *Manager, factory HostFactory) (selectedID string, err error) {
	descriptors, err := store.ListSessionDescriptors()
	if err != nil {
		return "", fmt.Errorf("list session descriptors: %w", err)
	}

	for _, d := range descriptors {
		profile, err := store.GetProfile(d.ProfileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return "", fmt.Errorf("load profile %d for descriptor %s: %w", d.ProfileID, d.ID, err)
		}

		var s session.Session
		switch d.Kind {
		case "local":
			s = factory.NewLocal(*profile, d)
			if profile.WorkingDir != "" {
				if connErr := s.Connect(); connErr != nil {
					s.Dispose()
					continue
				}
			}
		case "ssh":
			s = factory.NewSSH(*profile, d)
		default:
			continue
		}

		manager.Add(s)
	}

	selectedID, err = store.GetSetting(selectedSessionSettingKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load selected session setting: %w", err)
	}
	if _, ok := manager.Get(selectedID); ok {
		manager.Select(selectedID)
	}
	return selectedID, nil
}

// Persist writes a descriptor for every live session plus the current
// selection, so the next startup can call Restore.
func Persist(manager *Manager) error {
	if err := store.ClearSessionDescriptors(); err != nil {
		return fmt.Errorf("clear session descriptors: %w", err)
	}
	for _, s := range manager.List() {
		kind := "local"
		if s.Kind() == session.KindSSH {
			kind = "ssh"
		}
		d := &store.SessionDescriptor{
			ID:    s.ID(),
			Title: s.DisplayName(),
			Kind:  kind,
		}
		if err := store.SaveSessionDescriptor(d); err != nil {
			return fmt.Errorf("save session descriptor %s: %w", s.ID(), err)
		}
	}
	if selected := manager.SelectedID(); selected != "" {
		if err := store.SetSetting(selectedSessionSettingKey, selected); err != nil {
			return fmt.Errorf("save selected session id: %w", err)
		}
	}
	return nil
}
