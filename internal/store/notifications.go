package store

import (
	"discovrr/internal/models"
	"discovrr/internal/observability"
)

func reduceNotifications(s NotificationsState, action Action) NotificationsState {
	s.Items = reduceEntities(NotificationAdapter, nil, notificationsLog, s.Items, action)

	switch a := action.(type) {
	case DidReceiveNotification:
		s.Items.Table = NotificationAdapter.UpsertOne(s.Items.Table, a.Notification)
		observability.PushNotificationsReceived.Inc()
	case MarkNotificationRead:
		t, ok := NotificationAdapter.UpdateOne(s.Items.Table, a.ID, func(n models.Notification) models.Notification {
			n.Read = true
			return n
		})
		if !ok {
			notificationsLog.LogSkipped(a.Type(), "notification not loaded", map[string]interface{}{"id": a.ID})
		}
		s.Items.Table = t
	case ClearNotifications:
		s.Items = emptySlice(NotificationAdapter)
	case FCMTokenRegistered:
		s.DidRegisterFCMToken = true
	}
	return s
}
