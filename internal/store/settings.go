package store

func reduceSettings(s SettingsState, action Action) SettingsState {
	switch a := action.(type) {
	case SetAppVersion:
		s.AppVersion = a.Version
	case SetLocationQueryPrefs:
		s.LocationQueryPrefs = a.Prefs
	case SetExploreLayout:
		s.ExploreLayout = a.Layout
	}
	return s
}
