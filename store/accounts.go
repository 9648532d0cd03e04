package store

import (
	"context"
	"time"

	"gameflix/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func withProfiles(db *gorm.DB) *gorm.DB {
	return db.Preload("Customer").Preload("Developer")
}

// EmailExists reports whether any account, of either kind, uses email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.conn(ctx).Model(&models.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "check email")
	}
	return count > 0, nil
}

// CreateAccount inserts acc together with its profile. The pre-check gives
// the common case a clean ErrEmailTaken; the unique index catches the race.
func (s *Store) CreateAccount(ctx context.Context, acc *models.Account) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("email = ?", acc.Email).Count(&count).Error; err != nil {
			return errors.Wrap(err, "check email")
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(acc).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return errors.Wrap(err, "create account")
		}
		return nil
	})
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var acc models.Account
	if err := withProfiles(s.conn(ctx)).Where("email = ?", email).First(&acc).Error; err != nil {
		return nil, notFound(err, ErrAccountNotFound, "find account by email")
	}
	return &acc, nil
}

func (s *Store) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	var acc models.Account
	if err := withProfiles(s.conn(ctx)).Where("id = ?", id).First(&acc).Error; err != nil {
		return nil, notFound(err, ErrAccountNotFound, "find account")
	}
	return &acc, nil
}

// FindCustomer is FindAccountByID restricted to customer accounts.
func (s *Store) FindCustomer(ctx context.Context, id string) (*models.Account, error) {
	acc, err := s.FindAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !acc.IsCustomer() {
		return nil, ErrAccountNotFound
	}
	return acc, nil
}

func (s *Store) SetResetToken(ctx context.Context, accountID, token string, expires time.Time) error {
	res := s.conn(ctx).Model(&models.Account{}).Where("id = ?", accountID).Updates(map[string]interface{}{
		"reset_password_token":   token,
		"reset_password_expires": expires,
	})
	if res.Error != nil {
		return errors.Wrap(res.Error, "store reset token")
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ResetPassword swaps the password hash of the account holding a live
// token and clears the token. Tokens are single use.
func (s *Store) ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var acc models.Account
		err := tx.Where("reset_password_token = ? AND reset_password_expires > ?", token, now).First(&acc).Error
		if err != nil {
			return notFound(err, ErrInvalidResetToken, "find reset token")
		}
		err = tx.Model(&models.Account{}).Where("id = ?", acc.ID).Updates(map[string]interface{}{
			"password_hash":          passwordHash,
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		}).Error
		return errors.Wrap(err, "reset password")
	})
}
