package models

// OrderBy is the backend sort key; a leading "-" means descending.
type OrderBy string

const (
	OrderNewest OrderBy = "-created_at"
	OrderOldest OrderBy = "created_at"
)

var OrderByMapping = map[string]OrderBy{
	"newest": OrderNewest,
	"oldest": OrderOldest,
}

var OrderByDisplayNames = map[OrderBy]string{
	OrderNewest: "Newest",
	OrderOldest: "Oldest",
}

func (o OrderBy) IsValid() bool {
	_, ok := OrderByDisplayNames[o]
	return ok
}

// ParseOrderBy accepts either a display alias (newest/oldest) or a raw key.
func ParseOrderBy(s string) (OrderBy, bool) {
	if o, ok := OrderByMapping[s]; ok {
		return o, true
	}
	o := OrderBy(s)
	return o, o.IsValid()
}

func GetOrderByDisplayName(o OrderBy) string {
	if name, ok := OrderByDisplayNames[o]; ok {
		return name
	}
	return string(o)
}
