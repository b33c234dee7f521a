package repository

import (
	"errors"

	"github.com/casarossa/casarossa-backend/internal/app/model"
	"github.com/casarossa/casarossa-backend/pkg/logger"
	"gorm.io/gorm"
)

// AdminRepository reads the admin membership relation. Membership is
// checked by row existence, never cached here.
type AdminRepository interface {
	IsMember(userID uint) (bool, error)
	AddMember(userID uint) error
	RemoveMember(userID uint) error
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) IsMember(userID uint) (bool, error) {
	var membership model.AdminUser
	err := r.db.Where("user_id = ?", userID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		logger.Error("Failed to check admin membership in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return false, err
	}
	return true, nil
}

func (r *adminRepository) AddMember(userID uint) error {
	membership := &model.AdminUser{UserID: userID}
	if err := r.db.Create(membership).Error; err != nil {
		logger.Error("Failed to add admin membership in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}

func (r *adminRepository) RemoveMember(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.AdminUser{}).Error; err != nil {
		logger.Error("Failed to remove admin membership in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
