package models

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	DEFAULT_GROUP_COLOR = "#3B82F6"
	DEFAULT_GROUP_ICON  = "label"
	DEFAULT_GROUP_OWNER = "default-user"
)

type Group struct {
	BaseModel
	Name  string `json:"name" gorm:"not null;uniqueIndex:idx_groups_owner_name"`
	Color string `json:"color" gorm:"not null"`
	Icon  string `json:"icon"`
	Owner string `json:"userId" gorm:"not null;uniqueIndex:idx_groups_owner_name"`
}

// GroupWithCount is a group plus the number of contacts referencing it
type GroupWithCount struct {
	ID           uint   `json:"_id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	Icon         string `json:"icon"`
	ContactCount int64  `json:"contactCount"`
}

// GroupChanges holds a partial group update; empty fields are left untouched
type GroupChanges struct {
	Name  string
	Color string
	Icon  string
}

// ListGroups returns the owner's groups sorted by name with their contact counts
func ListGroups(ctx context.Context, owner string) ([]GroupWithCount, error) {
	groups := []Group{}
	err := db.WithContext(ctx).Where("owner = ?", owner).Order("name").Find(&groups).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetch groups")
	}

	counts, err := contactCountsByGroup(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]GroupWithCount, 0, len(groups))
	for _, group := range groups {
		results = append(results, GroupWithCount{
			ID:           group.ID,
			Name:         group.Name,
			Color:        group.Color,
			Icon:         group.Icon,
			ContactCount: counts[group.ID],
		})
	}

	return results, nil
}

func FindGroup(ctx context.Context, id uint) (*Group, error) {
	group := Group{}
	err := db.WithContext(ctx).First(&group, id).Error
	if err != nil {
		return nil, notFoundOr(err)
	}

	return &group, nil
}

// CreateGroup inserts group, filling in the default color, icon & owner
func CreateGroup(ctx context.Context, group *Group) error {
	group.Name = strings.TrimSpace(group.Name)
	if group.Color == "" {
		group.Color = DEFAULT_GROUP_COLOR
	}
	if group.Icon == "" {
		group.Icon = DEFAULT_GROUP_ICON
	}
	if group.Owner == "" {
		group.Owner = DEFAULT_GROUP_OWNER
	}

	err := db.WithContext(ctx).Create(group).Error
	if isUniqueViolation(err) {
		return ErrDuplicateGroupName
	}

	return errors.Wrap(err, "create group")
}

func UpdateGroup(ctx context.Context, id uint, changes GroupChanges) (*Group, error) {
	columns := map[string]interface{}{}
	if name := strings.TrimSpace(changes.Name); name != "" {
		columns["name"] = name
	}
	if changes.Color != "" {
		columns["color"] = changes.Color
	}
	if changes.Icon != "" {
		columns["icon"] = changes.Icon
	}

	if len(columns) > 0 {
		res := db.WithContext(ctx).Model(&Group{}).Where("id = ?", id).Updates(columns)
		if isUniqueViolation(res.Error) {
			return nil, ErrDuplicateGroupName
		}
		if res.Error != nil {
			return nil, errors.Wrap(res.Error, "update group")
		}
	}

	return FindGroup(ctx, id)
}

// DeleteGroup removes the group and its references from every contact.
// Both steps share one transaction.
func DeleteGroup(ctx context.Context, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("group_id = ?", id).Delete(&ContactGroup{}).Error
		if err != nil {
			return errors.Wrap(err, "unlink group from contacts")
		}

		res := tx.Delete(&Group{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete group")
		}

		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return nil
	})
}

// RepairGroupReferences removes contact references to groups that no longer
// exist and returns how many were removed. Safe to run repeatedly.
func RepairGroupReferences(ctx context.Context) (int64, error) {
	res := db.WithContext(ctx).
		Where("group_id NOT IN (?)", db.Model(&Group{}).Select("id")).
		Delete(&ContactGroup{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "repair group references")
	}

	return res.RowsAffected, nil
}

func contactCountsByGroup(ctx context.Context) (map[uint]int64, error) {
	rows := []struct {
		GroupID uint
		Total   int64
	}{}

	err := db.WithContext(ctx).Model(&ContactGroup{}).
		Select("group_id, count(*) as total").
		Group("group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "count group contacts")
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.GroupID] = row.Total
	}

	return counts, nil
}
