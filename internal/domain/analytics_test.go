package domain

import (
	"encoding/json"
	"testing"
)

func TestStringSet_MarshalJSON(t *testing.T) {
	s := NewStringSet("b", "a")

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"__dataType":"Set","value":["a","b"]}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestStringSet_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "tagged envelope",
			input: `{"__dataType":"Set","value":["s1","s2"]}`,
			want:  []string{"s1", "s2"},
		},
		{
			name:  "bare array",
			input: `["s1"]`,
			want:  []string{"s1"},
		},
		{
			name:  "empty envelope",
			input: `{"__dataType":"Set","value":[]}`,
			want:  nil,
		},
		{
			name:    "invalid encoding",
			input:   `42`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StringSet
			err := json.Unmarshal([]byte(tt.input), &s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if s.Len() != len(tt.want) {
				t.Fatalf("Len() = %d, want %d", s.Len(), len(tt.want))
			}
			for _, m := range tt.want {
				if !s.Contains(m) {
					t.Errorf("missing member %s", m)
				}
			}
		})
	}
}

func TestAnalyticsData_RecordAddToCart(t *testing.T) {
	a := NewAnalyticsData()

	a.RecordAddToCart("p1", "Ração", "s1")
	a.RecordAddToCart("p1", "Ração Renamed", "s2")
	a.RecordAddToCart("p2", "Coleira", "s1")

	if a.ProductStats["p1"].AddedToCart != 2 {
		t.Errorf("p1 count = %d, want 2", a.ProductStats["p1"].AddedToCart)
	}
	// The name is captured on first sight, later adds do not rename.
	if a.ProductStats["p1"].Name != "Ração" {
		t.Errorf("p1 name = %s, want Ração", a.ProductStats["p1"].Name)
	}
	if a.SessionsWithCartItems.Len() != 2 {
		t.Errorf("sessions = %d, want 2", a.SessionsWithCartItems.Len())
	}
}

func TestAnalyticsData_ConversionRate(t *testing.T) {
	a := NewAnalyticsData()

	if got := a.ConversionRate(); got != 0 {
		t.Errorf("ConversionRate() with no sessions = %v, want 0", got)
	}

	a.RecordAddToCart("p1", "Ração", "s1")
	a.RecordAddToCart("p1", "Ração", "s2")
	a.RecordQuoteCompletion()

	if got := a.ConversionRate(); got != 0.5 {
		t.Errorf("ConversionRate() = %v, want 0.5", got)
	}
}

func TestAnalyticsData_JSONRoundTrip(t *testing.T) {
	a := NewAnalyticsData()
	a.RecordVisit()
	a.RecordVisit()
	a.RecordAddToCart("p1", "Ração", "s1")
	a.RecordQuoteCompletion()

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	got := NewAnalyticsData()
	if err := json.Unmarshal(data, got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got.TotalVisits != 2 {
		t.Errorf("TotalVisits = %d, want 2", got.TotalVisits)
	}
	if got.QuotesCompleted != 1 {
		t.Errorf("QuotesCompleted = %d, want 1", got.QuotesCompleted)
	}
	if !got.SessionsWithCartItems.Contains("s1") {
		t.Errorf("session set lost member s1")
	}
	if got.ProductStats["p1"] == nil || got.ProductStats["p1"].AddedToCart != 1 {
		t.Errorf("product stats lost p1 count")
	}
}

func TestAnalyticsData_Clone(t *testing.T) {
	a := NewAnalyticsData()
	a.RecordVisit()
	a.RecordAddToCart("p1", "Ração", "s1")
	a.RecordQuoteCompletion()

	c := a.Clone()

	// Mutations after the clone stay on the original.
	a.RecordAddToCart("p1", "Ração", "s2")
	a.RecordAddToCart("p2", "Coleira", "s2")
	a.RecordVisit()

	if c.TotalVisits != 1 {
		t.Errorf("clone TotalVisits = %d, want 1", c.TotalVisits)
	}
	if c.ProductStats["p1"].AddedToCart != 1 {
		t.Errorf("clone addedToCart = %d, want 1", c.ProductStats["p1"].AddedToCart)
	}
	if _, ok := c.ProductStats["p2"]; ok {
		t.Error("clone picked up an entry added to the original")
	}
	if c.SessionsWithCartItems.Contains("s2") {
		t.Error("clone session set shares storage with the original")
	}

	// And the other way around.
	c.SessionsWithCartItems.Add("s9")
	if a.SessionsWithCartItems.Contains("s9") {
		t.Error("original session set shares storage with the clone")
	}
}
