package database

import (
	"errors"

	"kvadrat-backend/internal/models"

	"gorm.io/gorm"
)

// Field-level registration errors, mapped to a field-keyed 400 by handlers.
var (
	ErrUsernameTaken = errors.New("a user with that username already exists")
	ErrEmailTaken    = errors.New("a user with that email already exists")
)

// CreateUser inserts a user and its empty profile in one transaction after
// checking username/email uniqueness. No row is created on failure.
func (gdb *GormDB) CreateUser(u *models.User) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		if err := tx.Model(&models.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		profile := models.Profile{UserID: u.ID}
		return tx.Create(&profile).Error
	})
}

// GetUserByID retrieves a user.
func (gdb *GormDB) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := gdb.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (gdb *GormDB) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := gdb.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (gdb *GormDB) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := gdb.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users.
func (gdb *GormDB) ListUsers() ([]models.User, error) {
	var users []models.User
	err := gdb.db.Order("id ASC").Find(&users).Error
	return users, err
}

// SaveUser persists field changes on an existing user.
func (gdb *GormDB) SaveUser(u *models.User) error {
	return gdb.db.Save(u).Error
}

// UpdatePasswordHash replaces the stored password hash.
func (gdb *GormDB) UpdatePasswordHash(userID uint, hash string) error {
	res := gdb.db.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteUser removes a user and cascades to its profile.
func (gdb *GormDB) DeleteUser(id uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// EnsureProfile returns the user's profile, creating an empty one if it
// does not exist yet. Idempotent.
func (gdb *GormDB) EnsureProfile(userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := gdb.db.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = models.Profile{UserID: userID}
	if err := gdb.db.Create(&profile).Error; err != nil {
		return nil, err
	}
	if err := gdb.db.Preload("User").First(&profile, profile.ID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveProfile persists profile changes. The embedded user is read-only
// here and never written back.
func (gdb *GormDB) SaveProfile(p *models.Profile) error {
	return gdb.db.Omit("User").Save(p).Error
}

// ListProfiles returns all profiles with their users embedded.
func (gdb *GormDB) ListProfiles() ([]models.Profile, error) {
	var profiles []models.Profile
	err := gdb.db.Preload("User").Order("id ASC").Find(&profiles).Error
	return profiles, err
}

// GetProfileByID retrieves a profile.
func (gdb *GormDB) GetProfileByID(id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := gdb.db.Preload("User").First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
