package listings

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/secosha/marketplace/pkg/enums"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
)

// Limit is the hard cap on listings returned by one search. There is no paging beyond it.
const Limit = 48

const (
	ParamTerm      = "q"
	ParamCategory  = "category"
	ParamSize      = "size"
	ParamColor     = "color"
	ParamCondition = "condition"
	ParamMinPrice  = "min_price"
	ParamMaxPrice  = "max_price"
	ParamSort      = "sort"
)

// FilterSet holds the optional structured constraints of a search. A nil
// field means no constraint. MinPrice may exceed MaxPrice, which matches nothing.
type FilterSet struct {
	Category  *string
	Size      *string
	Color     *string
	Condition *string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
}

// Query is the full browse request.
type Query struct {
	Term    string
	Filters FilterSet
	Sort    enums.SortKey
}

// ActiveCount reports how many filters constrain the search.
func (f FilterSet) ActiveCount() int {
	count := 0
	for _, set := range []bool{
		f.Category != nil,
		f.Size != nil,
		f.Color != nil,
		f.Condition != nil,
		f.MinPrice != nil,
		f.MaxPrice != nil,
	} {
		if set {
			count++
		}
	}
	return count
}

// Clear drops every filter.
func (f *FilterSet) Clear() {
	*f = FilterSet{}
}

// Equal reports whether both sets carry the same constraints.
func (f FilterSet) Equal(other FilterSet) bool {
	return equalString(f.Category, other.Category) &&
		equalString(f.Size, other.Size) &&
		equalString(f.Color, other.Color) &&
		equalString(f.Condition, other.Condition) &&
		equalDecimal(f.MinPrice, other.MinPrice) &&
		equalDecimal(f.MaxPrice, other.MaxPrice)
}

// ActiveCount counts the active filters plus one for a non-empty term.
func (q Query) ActiveCount() int {
	count := q.Filters.ActiveCount()
	if strings.TrimSpace(q.Term) != "" {
		count++
	}
	return count
}

// SortOrDefault returns the sort key, defaulting to newest.
func (q Query) SortOrDefault() enums.SortKey {
	if q.Sort == "" {
		return enums.SortNewest
	}
	return q.Sort
}

// Values encodes the query for the listings endpoint.
func (q Query) Values() url.Values {
	v := url.Values{}
	if term := strings.TrimSpace(q.Term); term != "" {
		v.Set(ParamTerm, term)
	}
	setString(v, ParamCategory, q.Filters.Category)
	setString(v, ParamSize, q.Filters.Size)
	setString(v, ParamColor, q.Filters.Color)
	setString(v, ParamCondition, q.Filters.Condition)
	if q.Filters.MinPrice != nil {
		v.Set(ParamMinPrice, q.Filters.MinPrice.String())
	}
	if q.Filters.MaxPrice != nil {
		v.Set(ParamMaxPrice, q.Filters.MaxPrice.String())
	}
	v.Set(ParamSort, q.SortOrDefault().String())
	return v
}

// ParseQuery decodes and validates the listings endpoint parameters.
func ParseQuery(v url.Values) (Query, error) {
	details := map[string]string{}
	q := Query{Term: strings.TrimSpace(v.Get(ParamTerm))}

	if raw := strings.TrimSpace(v.Get(ParamCategory)); raw != "" {
		if _, err := enums.ParseCategory(raw); err != nil {
			details[ParamCategory] = "must be a known category"
		}
		q.Filters.Category = &raw
	}
	if raw := strings.TrimSpace(v.Get(ParamSize)); raw != "" {
		if _, err := enums.ParseSize(raw); err != nil {
			details[ParamSize] = "must be a known size"
		}
		q.Filters.Size = &raw
	}
	if raw := strings.TrimSpace(v.Get(ParamColor)); raw != "" {
		q.Filters.Color = &raw
	}
	if raw := strings.TrimSpace(v.Get(ParamCondition)); raw != "" {
		if _, err := enums.ParseCondition(raw); err != nil {
			details[ParamCondition] = "must be a known condition"
		}
		q.Filters.Condition = &raw
	}
	q.Filters.MinPrice = parsePriceParam(v, ParamMinPrice, details)
	q.Filters.MaxPrice = parsePriceParam(v, ParamMaxPrice, details)

	sortKey, err := enums.ParseSortKey(strings.TrimSpace(v.Get(ParamSort)))
	if err != nil {
		details[ParamSort] = "must be newest, price_asc or price_desc"
	}
	q.Sort = sortKey

	if len(details) > 0 {
		return Query{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid listing query").WithDetails(details)
	}
	return q, nil
}

func parsePriceParam(v url.Values, key string, details map[string]string) *decimal.Decimal {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		details[key] = "must be a number"
		return nil
	}
	if value.IsNegative() {
		details[key] = "must not be negative"
		return nil
	}
	return &value
}

func setString(v url.Values, key string, value *string) {
	if value != nil && *value != "" {
		v.Set(key, *value)
	}
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalDecimal(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
