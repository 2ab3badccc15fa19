package member

import (
	"context"
	"strings"

	"github.com/memberhub/registry-api/internal/model"
	"gorm.io/gorm"
)

// searchColumns are the fields matched by free-text search, combined with OR.
var searchColumns = []string{"full_name", "email", "phone", "id_number"}

type MemberRepository struct{}

func NewMemberRepository() *MemberRepository {
	return &MemberRepository{}
}

func (m *MemberRepository) ExistsByEmail(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&model.Member{}).
		Where("email = ?", email).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (m *MemberRepository) Create(ctx context.Context, db *gorm.DB, member *model.Member) error {
	return db.WithContext(ctx).Create(member).Error
}

func (m *MemberRepository) Save(ctx context.Context, db *gorm.DB, member *model.Member) error {
	return db.WithContext(ctx).Save(member).Error
}

func (m *MemberRepository) FindByID(ctx context.Context, db *gorm.DB, id uint32) (*model.Member, error) {
	var member model.Member
	err := db.WithContext(ctx).Where("id = ?", id).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Delete removes a member record and reports how many rows were affected.
func (m *MemberRepository) Delete(ctx context.Context, db *gorm.DB, id uint32) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&model.Member{})
	return result.RowsAffected, result.Error
}

// searchScope applies the case-insensitive OR substring filter. It is the
// single query-building step shared by List, CountFiltered and both response
// shapes; an empty search leaves the query untouched.
func searchScope(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}

		pattern := "%" + strings.ToLower(search) + "%"
		conds := make([]string, len(searchColumns))
		args := make([]interface{}, len(searchColumns))
		for i, col := range searchColumns {
			conds[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = pattern
		}
		return db.Where(strings.Join(conds, " OR "), args...)
	}
}

// List returns one sorted page of members. order must be a vetted column
// expression (see sortExpression), never raw request input.
func (m *MemberRepository) List(ctx context.Context, db *gorm.DB, search, order string, offset, limit int) ([]model.Member, error) {
	var members []model.Member
	err := db.WithContext(ctx).
		Scopes(searchScope(search)).
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// CountAll counts every member, ignoring any filter.
func (m *MemberRepository) CountAll(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.Member{}).Count(&count).Error
	return count, err
}

// CountFiltered counts members matching the search filter.
func (m *MemberRepository) CountFiltered(ctx context.Context, db *gorm.DB, search string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&model.Member{}).
		Scopes(searchScope(search)).
		Count(&count).Error
	return count, err
}
