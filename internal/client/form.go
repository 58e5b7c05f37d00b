package client

import (
	"errors"
	"strconv"
	"strings"
)

const (
	MsgRequiredFields = "Please fill in all required fields (including the City field)."
	maxLocationDesc   = 150
)

var ErrRequiredFields = errors.New(MsgRequiredFields)

type Field string

const (
	FieldDescription  Field = "description"
	FieldLocationDesc Field = "location_desc"
	FieldContactNo    Field = "contact_no"
	FieldCity         Field = "city"
	FieldCategory     Field = "category"
)

// ReportForm is the found-item report being composed. It is a value: every edit
// returns a new form and leaves the old one untouched.
type ReportForm struct {
	Description  string
	LocationDesc string
	ContactNo    string
	City         string
	Category     string
	Latitude     *float64
	Longitude    *float64
	ImagePath    string
}

// FormEdit is one state transition.
type FormEdit func(ReportForm) ReportForm

// Apply runs edits in order.
func (f ReportForm) Apply(edits ...FormEdit) ReportForm {
	for _, e := range edits {
		f = e(f)
	}
	return f
}

func SetField(field Field, value string) FormEdit {
	return func(f ReportForm) ReportForm {
		switch field {
		case FieldDescription:
			f.Description = value
		case FieldLocationDesc:
			f.LocationDesc = value
		case FieldContactNo:
			f.ContactNo = value
		case FieldCity:
			f.City = value
		case FieldCategory:
			f.Category = value
		}
		return f
	}
}

func SetImage(path string) FormEdit {
	return func(f ReportForm) ReportForm {
		f.ImagePath = path
		return f
	}
}

func SetCoordinates(lat, lon float64) FormEdit {
	return func(f ReportForm) ReportForm {
		f.Latitude, f.Longitude = &lat, &lon
		return f
	}
}

// SetPlace autofills city and location description from a reverse-geocoded place.
func SetPlace(p Place) FormEdit {
	return func(f ReportForm) ReportForm {
		f.City = p.City
		f.LocationDesc = truncateRunes(p.DisplayName, maxLocationDesc)
		return f
	}
}

// Validate requires image, category, description, contact number and city.
func (f ReportForm) Validate() error {
	if f.ImagePath == "" || blank(f.Category) || blank(f.Description) || blank(f.ContactNo) || blank(f.City) {
		return ErrRequiredFields
	}
	return nil
}

// fields lists the text parts of the multipart upload in a stable order.
func (f ReportForm) fields() [][2]string {
	out := [][2]string{
		{"description", f.Description},
		{"location_desc", f.LocationDesc},
		{"contact_no", f.ContactNo},
		{"city", f.City},
		{"category", f.Category},
		{"latitude", ""},
		{"longitude", ""},
	}
	if f.Latitude != nil && f.Longitude != nil {
		out[5][1] = strconv.FormatFloat(*f.Latitude, 'f', -1, 64)
		out[6][1] = strconv.FormatFloat(*f.Longitude, 'f', -1, 64)
	}
	return out
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
