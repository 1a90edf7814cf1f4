package txflow

import (
	"errors"
	"fmt"
)

// Offering status values.
const (
	StatusActive   = "active"
	StatusUpcoming = "upcoming"
)

var (
	ErrOfferingNotFound = errors.New("offering not found")
	ErrOfferingClosed   = errors.New("offering is not open for investment")
)

// Offering is a launchpad OPR token offering.
type Offering struct {
	ID          int
	Name        string
	Symbol      string
	FaceValue   string
	Yield       string
	Maturity    string
	RaisedPct   int
	Target      string
	MinInvest   string
	Status      string
	Description string
}

// Offerings is the launchpad catalog.
var Offerings = []Offering{
	{
		ID: 1, Name: "Dubai Commercial Real Estate Fund", Symbol: "DCRE-OPR",
		FaceValue: "1,000", Yield: "8.5%", Maturity: "24 months", RaisedPct: 75,
		Target: "$500,000", MinInvest: "$100", Status: StatusActive,
		Description: "Tokenized ownership in Grade-A commercial real estate in Dubai Business Bay.",
	},
	{
		ID: 2, Name: "Singapore Trade Finance Pool", Symbol: "STFP-OPR",
		FaceValue: "500", Yield: "6.2%", Maturity: "12 months", RaisedPct: 92,
		Target: "$300,000", MinInvest: "$50", Status: StatusActive,
		Description: "Short-term trade finance receivables from verified Singapore exporters.",
	},
	{
		ID: 3, Name: "Green Energy Infrastructure", Symbol: "GEI-OPR",
		FaceValue: "2,000", Yield: "10.0%", Maturity: "36 months", RaisedPct: 45,
		Target: "$1,000,000", MinInvest: "$250", Status: StatusUpcoming,
		Description: "Solar and wind farm infrastructure financing across Southeast Asia.",
	},
}

// OfferingByID looks up an offering in the catalog.
func OfferingByID(id int) (Offering, error) {
	for _, o := range Offerings {
		if o.ID == id {
			return o, nil
		}
	}
	return Offering{}, fmt.Errorf("%w: %d", ErrOfferingNotFound, id)
}
