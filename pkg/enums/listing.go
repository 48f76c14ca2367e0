package enums

import "fmt"

// Category is the garment category a listing is filed under.
type Category string

const (
	CategoryTops        Category = "Tops"
	CategoryBottoms     Category = "Bottoms"
	CategoryDresses     Category = "Dresses"
	CategoryOuterwear   Category = "Outerwear"
	CategoryShoes       Category = "Shoes"
	CategoryAccessories Category = "Accessories"
)

var validCategories = []Category{
	CategoryTops,
	CategoryBottoms,
	CategoryDresses,
	CategoryOuterwear,
	CategoryShoes,
	CategoryAccessories,
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Category.
func (c Category) IsValid() bool {
	for _, candidate := range validCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCategory converts raw input into a Category.
func ParseCategory(value string) (Category, error) {
	for _, candidate := range validCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", value)
}

// Categories returns the catalog in display order.
func Categories() []Category {
	return append([]Category(nil), validCategories...)
}

// Size is the labelled garment size.
type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

var validSizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

// String implements fmt.Stringer.
func (s Size) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Size.
func (s Size) IsValid() bool {
	for _, candidate := range validSizes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSize converts raw input into a Size.
func ParseSize(value string) (Size, error) {
	for _, candidate := range validSizes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid size %q", value)
}

// Sizes returns the catalog in display order.
func Sizes() []Size {
	return append([]Size(nil), validSizes...)
}

// Color is the dominant garment color offered by the listing form.
type Color string

const (
	ColorBlack Color = "Black"
	ColorWhite Color = "White"
	ColorGray  Color = "Gray"
	ColorNavy  Color = "Navy"
	ColorBrown Color = "Brown"
	ColorRed   Color = "Red"
	ColorBlue  Color = "Blue"
	ColorGreen Color = "Green"
	ColorPink  Color = "Pink"
	ColorBeige Color = "Beige"
)

var validColors = []Color{
	ColorBlack,
	ColorWhite,
	ColorGray,
	ColorNavy,
	ColorBrown,
	ColorRed,
	ColorBlue,
	ColorGreen,
	ColorPink,
	ColorBeige,
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Color.
func (c Color) IsValid() bool {
	for _, candidate := range validColors {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseColor converts raw input into a Color.
func ParseColor(value string) (Color, error) {
	for _, candidate := range validColors {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid color %q", value)
}

// Colors returns the catalog in display order.
func Colors() []Color {
	return append([]Color(nil), validColors...)
}

// Condition describes the wear state of a second-hand item.
type Condition string

const (
	ConditionNewWithTags Condition = "New with tags"
	ConditionLikeNew     Condition = "Like new"
	ConditionGood        Condition = "Good"
	ConditionFair        Condition = "Fair"
)

var validConditions = []Condition{
	ConditionNewWithTags,
	ConditionLikeNew,
	ConditionGood,
	ConditionFair,
}

// String implements fmt.Stringer.
func (c Condition) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Condition.
func (c Condition) IsValid() bool {
	for _, candidate := range validConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCondition converts raw input into a Condition.
func ParseCondition(value string) (Condition, error) {
	for _, candidate := range validConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid condition %q", value)
}

// Conditions returns the catalog in display order.
func Conditions() []Condition {
	return append([]Condition(nil), validConditions...)
}
