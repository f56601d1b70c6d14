package repository

import "testing"

func TestNewsQueryNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   NewsQuery
		want NewsQuery
	}{
		{
			"zero values get defaults",
			NewsQuery{},
			NewsQuery{Page: 1, Limit: 10, SortBy: "createdAt", Order: "desc"},
		},
		{
			"negative page clamps",
			NewsQuery{Page: -3, Limit: 20, SortBy: "title", Order: "asc"},
			NewsQuery{Page: 1, Limit: 20, SortBy: "title", Order: "asc"},
		},
		{
			"limit capped at max",
			NewsQuery{Page: 2, Limit: 500},
			NewsQuery{Page: 2, Limit: 50, SortBy: "createdAt", Order: "desc"},
		},
		{
			"unknown sort falls back",
			NewsQuery{Page: 1, Limit: 10, SortBy: "password_hash; DROP TABLE users", Order: "asc"},
			NewsQuery{Page: 1, Limit: 10, SortBy: "createdAt", Order: "asc"},
		},
		{
			"unknown order falls back",
			NewsQuery{Page: 1, Limit: 10, SortBy: "updatedAt", Order: "sideways"},
			NewsQuery{Page: 1, Limit: 10, SortBy: "updatedAt", Order: "desc"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.in
			q.Normalize()
			if q.Page != tt.want.Page || q.Limit != tt.want.Limit ||
				q.SortBy != tt.want.SortBy || q.Order != tt.want.Order {
				t.Errorf("Normalize() = %+v, want %+v", q, tt.want)
			}
		})
	}
}

func TestSortColumnsAreWhitelisted(t *testing.T) {
	for key, col := range sortColumns {
		if col == "" {
			t.Errorf("sort key %q maps to empty column", key)
		}
	}
	q := NewsQuery{SortBy: "createdAt"}
	q.Normalize()
	if _, ok := sortColumns[q.SortBy]; !ok {
		t.Error("normalized SortBy must always resolve in the whitelist")
	}
}
