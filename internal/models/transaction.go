package models

import "time"

// PropertyType is the DVF "type_local" category of a sale.
type PropertyType int

const (
	PropertyOther PropertyType = iota
	PropertyHouse
	PropertyApartment
)

// String returns the string representation of a PropertyType
func (t PropertyType) String() string {
	switch t {
	case PropertyHouse:
		return "house"
	case PropertyApartment:
		return "apartment"
	default:
		return "other"
	}
}

func (t PropertyType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *PropertyType) UnmarshalText(text []byte) error {
	*t = ParsePropertyType(string(text))
	return nil
}

// ParsePropertyType maps both the DVF labels ("Maison", "Appartement") and
// the English names to a PropertyType. Anything else is PropertyOther.
func ParsePropertyType(s string) PropertyType {
	switch Fold(s) {
	case "MAISON", "HOUSE":
		return PropertyHouse
	case "APPARTEMENT", "APARTMENT", "APPART":
		return PropertyApartment
	default:
		return PropertyOther
	}
}

// Transaction is one DVF sale record.
type Transaction struct {
	ID           string       `json:"id"`
	DeptCode     string       `json:"dept_code"`
	CommuneCode  string       `json:"commune_code"`
	CommuneName  string       `json:"commune_name"`
	SectionCode  string       `json:"section_code"`
	PropertyType PropertyType `json:"property_type"`
	Value        float64      `json:"value"`
	Surface      float64      `json:"surface"`
	Rooms        *int         `json:"rooms"`
	Date         time.Time    `json:"date"`
	Address      string       `json:"address"`
}

// IsValid reports whether the record can be used in statistics.
func (t Transaction) IsValid() bool {
	return t.Surface > 0 && t.Value > 0
}

// PricePerM2 returns Value/Surface, or 0 when the surface is not positive.
func (t Transaction) PricePerM2() float64 {
	if t.Surface <= 0 {
		return 0
	}
	return t.Value / t.Surface
}

// SectionFromParcel derives the cadastral section code from a DVF parcel
// id by stripping the 4-character parcel number, e.g. "75056000AB0123"
// gives "75056000AB".
func SectionFromParcel(parcelID string) string {
	if len(parcelID) <= 4 {
		return ""
	}
	return parcelID[:len(parcelID)-4]
}

// TerritoryStats aggregates a set of transactions. Medians are nil when no
// usable transaction exists.
type TerritoryStats struct {
	Count                int      `json:"count"`
	MedianPrice          *float64 `json:"median_price"`
	HouseCount           int      `json:"house_count"`
	ApartmentCount       int      `json:"apartment_count"`
	MedianHousePrice     *float64 `json:"median_house_price"`
	MedianApartmentPrice *float64 `json:"median_apartment_price"`
}

// Clone returns a copy that shares no pointers with s.
func (s TerritoryStats) Clone() TerritoryStats {
	s.MedianPrice = cloneFloat(s.MedianPrice)
	s.MedianHousePrice = cloneFloat(s.MedianHousePrice)
	s.MedianApartmentPrice = cloneFloat(s.MedianApartmentPrice)
	return s
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
