package store

import "discovrr/internal/models"

func reduceAuth(s AuthState, action Action) AuthState {
	switch a := action.(type) {
	case SignInPending:
		s.Status = AuthStatusSigningIn
		s.Err = nil
	case RegisterPending:
		s.Status = AuthStatusRegistering
		s.Err = nil
	case AuthFulfilled:
		user := a.User
		s = AuthState{
			Status:    AuthStatusFulfilled,
			User:      &user,
			SessionID: a.SessionID,
		}
	case AuthRejected:
		s.Status = AuthStatusRejected
		s.User = nil
		s.SessionID = ""
		s.Err = a.Err
	case SignOutPending:
		s.Status = AuthStatusSigningOut
	case SignOutFulfilled:
		s = initialAuth()
	case SignOutRejected:
		s.Status = AuthStatusRejected
		s.Err = a.Err
	case AbortSignOutRejected:
		s = initialAuth()
		s.Status = AuthStatusRejected
		s.Err = a.Err
		s.DidAbortSignOut = true
		authLog.LogReset(map[string]interface{}{"did_abort_sign_out": true})
	}
	return s
}

// CurrentUser returns the signed-in user, if any.
func (s State) CurrentUser() (models.User, bool) {
	if s.Auth.User == nil {
		return models.User{}, false
	}
	return *s.Auth.User, true
}
