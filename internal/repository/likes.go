package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"discovrr/internal/models"
)

// selectWithDidLike selects every column of table plus stat_did_like for viewerID.
func selectWithDidLike(db *gorm.DB, table string, kind models.SubjectKind, viewerID string) *gorm.DB {
	if viewerID == "" {
		return db.Select(table + ".*, false AS stat_did_like")
	}
	return db.Select(
		table+".*, EXISTS(SELECT 1 FROM likes WHERE likes.subject_kind = ? AND likes.subject_id = "+table+".id AND likes.profile_id = ?) AS stat_did_like",
		kind, viewerID,
	)
}

// setLike records or removes a like and keeps the denormalized counter in
// step. Repeating the current state is a no-op, and the counter never goes
// below zero.
func setLike(ctx context.Context, db *gorm.DB, kind models.SubjectKind, table, profileID, subjectID string, didLike bool) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table(table).Where("id = ?", subjectID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return models.NewNotFoundError(string(kind), subjectID)
		}

		if didLike {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Like{
				ProfileID:   profileID,
				SubjectKind: kind,
				SubjectID:   subjectID,
			})
			if res.Error != nil || res.RowsAffected == 0 {
				return res.Error
			}
			return tx.Table(table).Where("id = ?", subjectID).
				UpdateColumn("stat_total_likes", gorm.Expr("stat_total_likes + 1")).Error
		}

		res := tx.Where("profile_id = ? AND subject_kind = ? AND subject_id = ?", profileID, kind, subjectID).
			Delete(&models.Like{})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		return tx.Table(table).Where("id = ?", subjectID).
			UpdateColumn("stat_total_likes", gorm.Expr("CASE WHEN stat_total_likes > 0 THEN stat_total_likes - 1 ELSE 0 END")).Error
	})
}
