package models

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Address struct {
	City    string `json:"city" gorm:"not null"`
	State   string `json:"state" gorm:"not null"`
	Pincode string `json:"pincode" gorm:"not null"`
}

type Contact struct {
	BaseModel
	Title       string     `json:"title" gorm:"not null"`
	FirstName   string     `json:"firstName" gorm:"not null;index"`
	LastName    string     `json:"lastName" gorm:"not null"`
	Mobile1     string     `json:"mobile1" gorm:"not null;uniqueIndex"`
	Mobile2     string     `json:"mobile2,omitempty"`
	Address     Address    `json:"address" gorm:"embedded"`
	IsFavorite  bool       `json:"isFavorite" gorm:"not null;index"`
	FavoritedAt *time.Time `json:"favoritedAt"`
	Groups      []Group    `json:"-" gorm:"many2many:contact_groups;"`
	GroupIDs    []uint     `json:"groups" gorm:"-"`
}

// ContactGroup is a row of the contacts <-> groups join table
type ContactGroup struct {
	ContactID uint `gorm:"primaryKey"`
	GroupID   uint `gorm:"primaryKey;index"`
}

func (ContactGroup) TableName() string {
	return "contact_groups"
}

// ContactChanges holds a partial contact update; nil fields are left untouched
type ContactChanges struct {
	Title      *string
	FirstName  *string
	LastName   *string
	Mobile1    *string
	Mobile2    *string
	City       *string
	State      *string
	Pincode    *string
	IsFavorite *bool
	GroupIDs   *[]uint
}

// AfterFind exposes the loaded groups as a list of ids
func (contact *Contact) AfterFind(tx *gorm.DB) error {
	contact.syncGroupIDs()
	return nil
}

func (contact *Contact) syncGroupIDs() {
	contact.GroupIDs = make([]uint, 0, len(contact.Groups))
	for _, group := range contact.Groups {
		contact.GroupIDs = append(contact.GroupIDs, group.ID)
	}
}

// DBContactStore persists contacts in the package database
type DBContactStore struct{}

func (DBContactStore) CreateContact(ctx context.Context, contact *Contact) error {
	return CreateContact(ctx, contact)
}

// CreateContact inserts contact and links it to contact.GroupIDs, which must exist
func CreateContact(ctx context.Context, contact *Contact) error {
	if contact.IsFavorite && contact.FavoritedAt == nil {
		now := time.Now()
		contact.FavoritedAt = &now
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		groups, err := groupsByIDs(tx, contact.GroupIDs)
		if err != nil {
			return err
		}

		err = tx.Omit(clause.Associations).Create(contact).Error
		if isUniqueViolation(err) {
			return ErrDuplicateMobile
		}
		if err != nil {
			return errors.Wrap(err, "create contact")
		}

		contact.Groups = groups
		return linkGroups(tx, contact.ID, groups)
	})
	if err != nil {
		return err
	}

	contact.syncGroupIDs()
	return nil
}

func FindContact(ctx context.Context, id uint) (*Contact, error) {
	contact := Contact{}
	err := db.WithContext(ctx).Preload("Groups").First(&contact, id).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	return &contact, nil
}

// UpdateContact applies changes to the contact with the given id
func UpdateContact(ctx context.Context, id uint, changes ContactChanges) (*Contact, error) {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&Contact{}, id).Error; err != nil {
			return notFoundOr(err)
		}

		columns := changes.columns()
		if len(columns) > 0 {
			err := tx.Model(&Contact{}).Where("id = ?", id).Updates(columns).Error
			if isUniqueViolation(err) {
				return ErrDuplicateMobile
			}
			if err != nil {
				return errors.Wrap(err, "update contact")
			}
		}

		if changes.GroupIDs == nil {
			return nil
		}

		groups, err := groupsByIDs(tx, *changes.GroupIDs)
		if err != nil {
			return err
		}

		if err := tx.Where("contact_id = ?", id).Delete(&ContactGroup{}).Error; err != nil {
			return errors.Wrap(err, "unlink contact groups")
		}

		return linkGroups(tx, id, groups)
	})
	if err != nil {
		return nil, err
	}

	return FindContact(ctx, id)
}

func DeleteContact(ctx context.Context, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Contact{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete contact")
		}

		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return tx.Where("contact_id = ?", id).Delete(&ContactGroup{}).Error
	})
}

// DeleteContacts deletes every contact in ids and returns how many existed
func DeleteContacts(ctx context.Context, ids []uint) (int64, error) {
	var deleted int64

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id IN ?", ids).Delete(&Contact{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete contacts")
		}
		deleted = res.RowsAffected

		return tx.Where("contact_id IN ?", ids).Delete(&ContactGroup{}).Error
	})

	return deleted, err
}

// SetFavorite marks or un-marks a contact as favorite & returns the updated record
func SetFavorite(ctx context.Context, id uint, isFavorite bool) (*Contact, error) {
	res := db.WithContext(ctx).Model(&Contact{}).Where("id = ?", id).Updates(favoriteColumns(isFavorite))
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "set favorite")
	}

	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return FindContact(ctx, id)
}

// SetFavorites marks or un-marks every contact in ids and returns how many were updated
func SetFavorites(ctx context.Context, ids []uint, isFavorite bool) (int64, error) {
	res := db.WithContext(ctx).Model(&Contact{}).Where("id IN ?", ids).Updates(favoriteColumns(isFavorite))
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "set favorites")
	}

	return res.RowsAffected, nil
}

// AssignGroup adds the group to every existing contact in ids and returns how
// many contacts gained it
func AssignGroup(ctx context.Context, ids []uint, groupID uint) (int64, error) {
	var assigned int64

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&Group{}, groupID).Error; err != nil {
			return notFoundOr(err)
		}

		existingIDs := []uint{}
		err := tx.Model(&Contact{}).Where("id IN ?", ids).Pluck("id", &existingIDs).Error
		if err != nil {
			return errors.Wrap(err, "find contacts")
		}

		if len(existingIDs) == 0 {
			return nil
		}

		rows := make([]ContactGroup, 0, len(existingIDs))
		for _, contactID := range existingIDs {
			rows = append(rows, ContactGroup{ContactID: contactID, GroupID: groupID})
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
		if res.Error != nil {
			return errors.Wrap(res.Error, "assign group")
		}
		assigned = res.RowsAffected

		return nil
	})

	return assigned, err
}

// AllContacts returns every contact ordered by id, groups included
func AllContacts(ctx context.Context) ([]Contact, error) {
	contacts := []Contact{}
	err := db.WithContext(ctx).Preload("Groups").Order("id").Find(&contacts).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetch contacts")
	}

	return contacts, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (changes ContactChanges) columns() map[string]interface{} {
	columns := map[string]interface{}{}

	setIfPresent := func(column string, value *string) {
		if value != nil {
			columns[column] = *value
		}
	}

	setIfPresent("title", changes.Title)
	setIfPresent("first_name", changes.FirstName)
	setIfPresent("last_name", changes.LastName)
	setIfPresent("mobile1", changes.Mobile1)
	setIfPresent("mobile2", changes.Mobile2)
	setIfPresent("city", changes.City)
	setIfPresent("state", changes.State)
	setIfPresent("pincode", changes.Pincode)

	if changes.IsFavorite != nil {
		for column, value := range favoriteColumns(*changes.IsFavorite) {
			columns[column] = value
		}
	}

	return columns
}

func favoriteColumns(isFavorite bool) map[string]interface{} {
	columns := map[string]interface{}{"is_favorite": isFavorite, "favorited_at": nil}
	if isFavorite {
		columns["favorited_at"] = time.Now()
	}

	return columns
}

func groupsByIDs(tx *gorm.DB, ids []uint) ([]Group, error) {
	groups := []Group{}
	if len(ids) == 0 {
		return groups, nil
	}

	unique := map[uint]bool{}
	for _, id := range ids {
		unique[id] = true
	}

	err := tx.Where("id IN ?", ids).Order("id").Find(&groups).Error
	if err != nil {
		return nil, errors.Wrap(err, "find groups")
	}

	if len(groups) != len(unique) {
		return nil, invalidParam("groups", "unknown group id")
	}

	return groups, nil
}

func linkGroups(tx *gorm.DB, contactID uint, groups []Group) error {
	if len(groups) == 0 {
		return nil
	}

	rows := make([]ContactGroup, 0, len(groups))
	for _, group := range groups {
		rows = append(rows, ContactGroup{ContactID: contactID, GroupID: group.ID})
	}

	return errors.Wrap(tx.Create(&rows).Error, "link contact groups")
}
