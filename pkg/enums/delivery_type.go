package enums

import "fmt"

// DeliveryType is a fulfilment option a seller offers on their profile.
type DeliveryType string

const (
	DeliveryLocalPickup   DeliveryType = "Local pickup"
	DeliveryStandard      DeliveryType = "Standard shipping"
	DeliveryExpress       DeliveryType = "Express shipping"
	DeliveryInternational DeliveryType = "International shipping"
)

var validDeliveryTypes = []DeliveryType{
	DeliveryLocalPickup,
	DeliveryStandard,
	DeliveryExpress,
	DeliveryInternational,
}

// String implements fmt.Stringer.
func (d DeliveryType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryType.
func (d DeliveryType) IsValid() bool {
	for _, candidate := range validDeliveryTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryType converts raw input into a DeliveryType.
func ParseDeliveryType(value string) (DeliveryType, error) {
	for _, candidate := range validDeliveryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery type %q", value)
}

// DeliveryTypes returns the catalog in display order.
func DeliveryTypes() []DeliveryType {
	return append([]DeliveryType(nil), validDeliveryTypes...)
}
