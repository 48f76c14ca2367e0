package enums

import "testing"

func TestParseCatalogValues(t *testing.T) {
	if c, err := ParseCategory("Shoes"); err != nil || c != CategoryShoes {
		t.Fatalf("expected Shoes, got %q err=%v", c, err)
	}
	if _, err := ParseCategory("shoes"); err == nil {
		t.Fatal("category parsing must be exact")
	}
	if s, err := ParseSize("XXL"); err != nil || s != SizeXXL {
		t.Fatalf("expected XXL, got %q err=%v", s, err)
	}
	if c, err := ParseCondition("New with tags"); err != nil || c != ConditionNewWithTags {
		t.Fatalf("expected New with tags, got %q err=%v", c, err)
	}
	if !ColorBeige.IsValid() || Color("Teal").IsValid() {
		t.Fatal("unexpected color validity")
	}
	if d, err := ParseDeliveryType("Local pickup"); err != nil || d != DeliveryLocalPickup {
		t.Fatalf("expected Local pickup, got %q err=%v", d, err)
	}
}

func TestParseSortKeyDefaultsToNewest(t *testing.T) {
	key, err := ParseSortKey("")
	if err != nil || key != SortNewest {
		t.Fatalf("expected newest default, got %q err=%v", key, err)
	}
	if _, err := ParseSortKey("price"); err == nil {
		t.Fatal("expected unknown sort key to fail")
	}
}

func TestCatalogAccessorsReturnCopies(t *testing.T) {
	cats := Categories()
	if len(cats) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(cats))
	}
	cats[0] = "Mutated"
	if Categories()[0] != CategoryTops {
		t.Fatal("catalog accessor must not expose backing slice")
	}
	if len(Sizes()) != 6 || len(Colors()) != 10 || len(Conditions()) != 4 || len(DeliveryTypes()) != 4 || len(SortKeys()) != 3 {
		t.Fatal("unexpected catalog sizes")
	}
}
