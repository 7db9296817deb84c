package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/product_hub/internal/models"
)

// BlacklistJTI is idempotent: blacklisting the same jti twice is not an error.
func (r *GormRepo) BlacklistJTI(ctx context.Context, jti string, userID uint, expiresAt time.Time) error {
	entry := models.BlacklistedToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Create(&entry).Error
}

func (r *GormRepo) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.BlacklistedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PruneBlacklist removes entries whose token had already expired by before.
func (r *GormRepo) PruneBlacklist(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expires_at < ?", before.UTC()).
		Delete(&models.BlacklistedToken{})
	return res.RowsAffected, res.Error
}
