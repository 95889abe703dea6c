package shared

import (
	"fmt"
	"strings"

	"suitesync/shared/dto"
)

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

func BuildCacheKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}

	return fmt.Sprintf("%s:%s", prefix, strings.Join(parts, ":"))
}
