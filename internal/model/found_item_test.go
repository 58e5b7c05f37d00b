package model

import (
	"sync"
	"testing"

	"gorm.io/gorm/schema"
)

func TestFoundItemColumnWidths(t *testing.T) {
	s, err := schema.Parse(&FoundItem{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatal(err)
	}
	for col, want := range map[string]int{
		"contact_no":     32,
		"finder_contact": 32,
		"city":           120,
		"category":       64,
		"image_path":     512,
	} {
		f := s.LookUpField(col)
		if f == nil {
			t.Fatalf("no field for column %s", col)
		}
		if f.Size != want {
			t.Errorf("%s size = %d, want %d", col, f.Size, want)
		}
	}
}
