package store

import (
	"strconv"

	"discovrr/internal/observability"
)

// reset replaces every entity slice with its initial state. Auth and
// settings are kept. The push token flag survives unless the action asks
// for it to be cleared.
func reset(s State, a ResetAllData) State {
	didRegister := s.Notifications.DidRegisterFCMToken

	s.Posts = emptySlice(PostAdapter)
	s.Comments = emptySlice(CommentAdapter)
	s.CommentReplies = emptySlice(ReplyAdapter)
	s.Profiles = emptySlice(ProfileAdapter)
	s.Products = emptySlice(ProductAdapter)
	s.Merchants = emptySlice(MerchantAdapter)
	s.Notifications = initialNotifications()
	if !a.ShouldResetFCMRegistrationToken {
		s.Notifications.DidRegisterFCMToken = didRegister
	}

	observability.StoreResets.WithLabelValues(strconv.FormatBool(a.ShouldResetFCMRegistrationToken)).Inc()
	notificationsLog.LogReset(map[string]interface{}{
		"did_register_fcm_token": s.Notifications.DidRegisterFCMToken,
	})
	return s
}
