package service

import (
	"discovrr/internal/observability"
	"discovrr/internal/store"
	"discovrr/internal/thunk"
)

// SessionService holds app-level actions: version migration and settings.
type SessionService struct {
	d *thunk.Dispatcher
}

// NewSessionService creates a new session service
func NewSessionService(d *thunk.Dispatcher) *SessionService {
	return &SessionService{d: d}
}

// ResetForVersion purges cached entities when the persisted state was written
// by a different app version. The push token flag survives. It reports
// whether a reset happened.
func (s *SessionService) ResetForVersion(version string) bool {
	previous := s.d.State().Settings.AppVersion
	if previous == version {
		return false
	}
	s.d.Dispatch(store.ResetAllData{ShouldResetFCMRegistrationToken: false})
	s.d.Dispatch(store.SetAppVersion{Version: version})
	observability.GlobalLogger.Info("app version changed, cached data reset",
		"previous_version", previous, "version", version)
	return true
}

func (s *SessionService) SetLocationQueryPrefs(prefs *store.LocationQueryPrefs) {
	s.d.Dispatch(store.SetLocationQueryPrefs{Prefs: prefs})
}

func (s *SessionService) SetExploreLayout(layout string) {
	s.d.Dispatch(store.SetExploreLayout{Layout: layout})
}
