package validation

import (
	"testing"

	pkgerrors "github.com/secosha/marketplace/pkg/errors"
)

type listingInput struct {
	Title     string   `json:"title" validate:"required,max=120"`
	Price     string   `json:"price" validate:"required,price"`
	Category  string   `json:"category" validate:"required,category"`
	Color     string   `json:"color" validate:"omitempty,color"`
	Delivery  []string `json:"delivery_types" validate:"dive,delivery_type"`
	Condition string   `json:"condition" validate:"required,condition"`
}

func TestStructReportsFieldsByJSONName(t *testing.T) {
	err := Struct(&listingInput{Price: "-1", Category: "Hats", Color: "Teal", Delivery: []string{"Drone"}})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected map details, got %T", typed.Details())
	}
	for field, msg := range map[string]string{
		"title":     "is required",
		"price":     "must be a non-negative number",
		"category":  "must be a known category",
		"color":     "must be a known color",
		"condition": "is required",
	} {
		if details[field] != msg {
			t.Fatalf("field %s: expected %q, got %q (all=%v)", field, msg, details[field], details)
		}
	}
	if details["delivery_types[0]"] != "must be a known delivery type" {
		t.Fatalf("expected delivery type error, got %v", details)
	}
}

func TestStructAcceptsValidInput(t *testing.T) {
	in := &listingInput{
		Title:     "Denim jacket",
		Price:     "45.50",
		Category:  "Outerwear",
		Condition: "Like new",
		Delivery:  []string{"Local pickup"},
	}
	if err := Struct(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParsePrice(t *testing.T) {
	if v, err := ParsePrice(" 12.5 "); err != nil || v.String() != "12.5" {
		t.Fatalf("expected 12.5, got %v err=%v", v, err)
	}
	if v, err := ParsePrice("0"); err != nil || !v.IsZero() {
		t.Fatalf("expected zero price to be accepted, got %v err=%v", v, err)
	}
	if _, err := ParsePrice("-0.01"); err == nil {
		t.Fatal("expected negative price to fail")
	}
	if _, err := ParsePrice("ten"); err == nil {
		t.Fatal("expected non-numeric price to fail")
	}
}
