package models

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// sortableFields maps the sort keys accepted from clients to contact columns
var sortableFields = map[string]string{
	"title":           "title",
	"firstName":       "first_name",
	"lastName":        "last_name",
	"mobile1":         "mobile1",
	"city":            "city",
	"address.city":    "city",
	"state":           "state",
	"address.state":   "state",
	"pincode":         "pincode",
	"address.pincode": "pincode",
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
	"favoritedAt":     "favorited_at",
}

// OrderingPolicy decides the order contacts are listed in.
//
// FavoritesFirstThen floats favorites to the top and orders each half by the
// requested field. PlainThen orders by the requested field only. Both end
// with the contact id so pages never overlap.
type OrderingPolicy struct {
	favoritesFirst bool
	field          string
	direction      SortDirection
}

func FavoritesFirstThen(field string, direction SortDirection) OrderingPolicy {
	return OrderingPolicy{favoritesFirst: true, field: field, direction: direction}
}

func PlainThen(field string, direction SortDirection) OrderingPolicy {
	return OrderingPolicy{field: field, direction: direction}
}

// PolicyFor picks the policy list views use: a favorites-only list has nothing
// to float, every other list shows favorites first.
func PolicyFor(favoritesOnly bool, field string, direction SortDirection) OrderingPolicy {
	if favoritesOnly {
		return PlainThen(field, direction)
	}
	return FavoritesFirstThen(field, direction)
}

func (p OrderingPolicy) FavoritesFirst() bool {
	return p.favoritesFirst
}

func (p OrderingPolicy) Validate() error {
	if _, ok := sortableFields[p.field]; !ok {
		return invalidParam("sortBy", "unsupported sort field "+p.field)
	}

	if p.direction != Ascending && p.direction != Descending {
		return invalidParam("sortOrder", "must be 'asc' or 'desc'")
	}

	return nil
}

// OrderBy returns the ORDER BY clause for the policy. Call Validate first.
func (p OrderingPolicy) OrderBy() clause.OrderBy {
	columns := []clause.OrderByColumn{}

	if p.favoritesFirst {
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: "is_favorite"}, Desc: true})
	}

	columns = append(columns,
		clause.OrderByColumn{Column: clause.Column{Name: sortableFields[p.field]}, Desc: p.direction == Descending},
		clause.OrderByColumn{Column: clause.Column{Name: "id"}},
	)

	return clause.OrderBy{Columns: columns}
}

type ListParams struct {
	Page          int
	Limit         int
	Search        string
	SortBy        string
	SortOrder     SortDirection
	FavoritesOnly bool
	GroupID       uint
}

type ContactPage struct {
	Contacts      []Contact `json:"contacts"`
	CurrentPage   int       `json:"currentPage"`
	TotalPages    int64     `json:"totalPages"`
	TotalContacts int64     `json:"totalContacts"`
}

// DefaultListParams are the values list views start from
func DefaultListParams() ListParams {
	return ListParams{Page: 1, Limit: DEFAULT_PAGE_SIZE, SortBy: "firstName", SortOrder: Ascending}
}

func (p ListParams) Policy() OrderingPolicy {
	return PolicyFor(p.FavoritesOnly, p.SortBy, p.SortOrder)
}

func (p ListParams) Validate() error {
	if p.Page < 1 {
		return invalidParam("page", "must be a positive integer")
	}

	if p.Limit < 1 || p.Limit > MAX_PAGE_SIZE {
		return invalidParam("limit", "must be between 1 and 100")
	}

	return p.Policy().Validate()
}

// ListContacts returns one page of contacts matching p, with counts taken
// from the same filter
func ListContacts(ctx context.Context, p ListParams) (*ContactPage, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var total int64
	err := db.WithContext(ctx).Model(&Contact{}).Scopes(filterContacts(p)).Count(&total).Error
	if err != nil {
		return nil, errors.Wrap(err, "count contacts")
	}

	contacts := []Contact{}
	err = db.WithContext(ctx).
		Scopes(filterContacts(p), paginate(p.Page, p.Limit)).
		Order(p.Policy().OrderBy()).
		Preload("Groups").
		Find(&contacts).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetch contacts")
	}

	return &ContactPage{
		Contacts:      contacts,
		CurrentPage:   p.Page,
		TotalPages:    totalPages(total, p.Limit),
		TotalContacts: total,
	}, nil
}

// ---------------------------------------------------------------------------------//
// Scopes
// --------------------------------------------------------------------------------//

func filterContacts(p ListParams) func(tx *gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if p.GroupID != 0 {
			members := tx.Session(&gorm.Session{NewDB: true}).
				Model(&ContactGroup{}).Select("contact_id").Where("group_id = ?", p.GroupID)
			tx = tx.Where("id IN (?)", members)
		}

		if search := strings.TrimSpace(p.Search); search != "" {
			pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
			tx = tx.Where(
				`(LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\' OR `+
					`LOWER(mobile1) LIKE ? ESCAPE '\' OR LOWER(city) LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern, pattern,
			)
		}

		if p.FavoritesOnly {
			tx = tx.Where("is_favorite = ?", true)
		}

		return tx
	}
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
