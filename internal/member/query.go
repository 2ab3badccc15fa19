package member

import (
	"context"
	"fmt"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// sortColumns whitelists the request-facing sort fields against real
// columns. Raw request input never reaches the ORDER BY clause.
var sortColumns = map[string]string{
	"memberId":  "member_id",
	"fullName":  "full_name",
	"email":     "email",
	"phone":     "phone",
	"idNumber":  "id_number",
	"status":    "status",
	"createdAt": "created_at",
}

// sortExpression resolves the requested sort into a safe ORDER BY
// expression. Unknown columns and directions fall back to the default:
// creation time, descending.
func sortExpression(column, direction string) string {
	col, ok := sortColumns[column]
	if !ok {
		return "created_at DESC"
	}

	dir := "DESC"
	switch direction {
	case "ascending", "asc":
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s", col, dir)
}

// List runs one paginated query per the request. When q.Grid is set the
// grid-widget shape is returned with the unfiltered and filtered totals,
// each counted independently of the page slice; otherwise the plain shape
// reports only the page's own count. Both shapes share the repository's
// search scope so the filter logic exists once.
func (s *MemberService) List(ctx context.Context, q *ListQuery) (interface{}, error) {
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	if q.PageOffset < 0 {
		q.PageOffset = 0
	}

	order := sortExpression(q.SortColumn, q.SortDir)

	members, err := s.memberRepository.List(ctx, s.db, q.Search, order, q.PageOffset, q.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	items := make([]MemberResponse, len(members))
	for i := range members {
		items[i] = NewMemberResponse(&members[i])
	}

	if !q.Grid {
		return &PlainListResponse{
			Count: len(items),
			Data:  items,
		}, nil
	}

	total, err := s.memberRepository.CountAll(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}

	filtered, err := s.memberRepository.CountFiltered(ctx, s.db, q.Search)
	if err != nil {
		return nil, fmt.Errorf("count filtered members: %w", err)
	}

	return &GridListResponse{
		RecordsTotal:    total,
		RecordsFiltered: filtered,
		Data:            items,
	}, nil
}
