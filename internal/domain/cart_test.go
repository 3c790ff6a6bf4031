package domain

import (
	"testing"
)

func sampleProduct() *Product {
	return &Product{
		ID:       "p1",
		Name:     "Ração Premium",
		Price:    100,
		ImageURL: "https://img.example/p1.png",
		Sizes: []SizeOption{
			{Name: "x", Price: 60},
			{Name: "M", Price: 80},
		},
		Colors: []ColorOption{
			{Name: "Azul", ImageURL: "https://img.example/p1-azul.png"},
		},
	}
}

func TestCartItemID(t *testing.T) {
	tests := []struct {
		name  string
		size  string
		color string
		want  string
	}{
		{name: "both variants", size: "M", color: "Azul", want: "p1-M-Azul"},
		{name: "size only", size: "M", color: "", want: "p1-M-nocolor"},
		{name: "color only", size: "", color: "Azul", want: "p1-nosize-Azul"},
		{name: "no variants", size: "", color: "", want: "p1-nosize-nocolor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CartItemID("p1", tt.size, tt.color); got != tt.want {
				t.Errorf("CartItemID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolvePrice(t *testing.T) {
	p := sampleProduct()

	tests := []struct {
		name string
		size string
		want float64
	}{
		{name: "matching size overrides base price", size: "x", want: 60},
		{name: "other matching size", size: "M", want: 80},
		{name: "unknown size falls back to base price", size: "XL", want: 100},
		{name: "no size uses base price", size: "", want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePrice(p, tt.size); got != tt.want {
				t.Errorf("ResolvePrice() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCart_Add_MergesSameVariant(t *testing.T) {
	p := sampleProduct()
	cart := &Cart{}

	// Adding the same product with the same variant twice must merge
	// into a single line with quantity 2.
	cart.Add(p, "M", p.ColorByName("Azul"))
	cart.Add(p, "M", p.ColorByName("Azul"))

	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", cart.Items[0].Quantity)
	}
	if cart.Items[0].Price != 80 {
		t.Errorf("price = %v, want 80", cart.Items[0].Price)
	}
	if cart.Items[0].ImageURL != "https://img.example/p1-azul.png" {
		t.Errorf("imageURL = %v, want color variant image", cart.Items[0].ImageURL)
	}
}

func TestCart_Add_DifferentVariantsAreSeparateLines(t *testing.T) {
	p := sampleProduct()
	cart := &Cart{}

	cart.Add(p, "x", nil)
	cart.Add(p, "M", nil)
	cart.Add(p, "M", p.ColorByName("Azul"))

	if len(cart.Items) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(cart.Items))
	}
}

func TestCart_UpdateQuantity(t *testing.T) {
	p := sampleProduct()

	tests := []struct {
		name      string
		quantity  int
		wantLines int
		wantQty   int
	}{
		{name: "positive quantity replaces", quantity: 5, wantLines: 1, wantQty: 5},
		{name: "zero removes the line", quantity: 0, wantLines: 0},
		{name: "negative removes the line", quantity: -3, wantLines: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := &Cart{}
			item := cart.Add(p, "M", nil)
			cart.UpdateQuantity(item.CartItemID, tt.quantity)
			if len(cart.Items) != tt.wantLines {
				t.Fatalf("lines = %d, want %d", len(cart.Items), tt.wantLines)
			}
			if tt.wantLines > 0 && cart.Items[0].Quantity != tt.wantQty {
				t.Errorf("quantity = %d, want %d", cart.Items[0].Quantity, tt.wantQty)
			}
		})
	}
}

func TestCart_RemoveMissingIsNoop(t *testing.T) {
	p := sampleProduct()
	cart := &Cart{}
	cart.Add(p, "", nil)

	cart.Remove("does-not-exist")

	if len(cart.Items) != 1 {
		t.Errorf("lines = %d, want 1", len(cart.Items))
	}
}

func TestCart_TotalIsDerived(t *testing.T) {
	p := sampleProduct()
	cart := &Cart{}

	cart.Add(p, "x", nil) // 60
	cart.Add(p, "x", nil) // merge, qty 2
	cart.Add(p, "M", nil) // 80

	if got := cart.Total(); got != 200 {
		t.Errorf("Total() = %v, want 200", got)
	}
	if got := cart.ItemCount(); got != 3 {
		t.Errorf("ItemCount() = %v, want 3", got)
	}

	cart.UpdateQuantity(CartItemID("p1", "x", ""), 1)
	if got := cart.Total(); got != 140 {
		t.Errorf("Total() after update = %v, want 140", got)
	}

	cart.Clear()
	if got := cart.Total(); got != 0 {
		t.Errorf("Total() after clear = %v, want 0", got)
	}
}
