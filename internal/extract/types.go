package extract

// PropertyTypeSingleBuilding is the only property type these forms describe.
const PropertyTypeSingleBuilding = "single_building"

// AddressRecord holds a located address and its decomposed components.
type AddressRecord struct {
	FullAddress      string `json:"full_address"`
	StreetAddress    string `json:"street_address"`
	SecondaryAddress string `json:"secondary_address"`
	ZipCode          string `json:"zip_code"`
	PropertyType     string `json:"property_type"`
}

// Found reports whether an address was located.
func (a AddressRecord) Found() bool {
	return a.FullAddress != ""
}

// PropertyInfo holds unit counts and checkbox flags. Nil pointers mean the
// field was not found; IsVacantLot is false unless its checkbox is marked.
type PropertyInfo struct {
	TotalUnits        *int  `json:"total_units,omitempty"`
	ResidentialUnits  *int  `json:"residential_units,omitempty"`
	VacantResidential *int  `json:"vacant_residential,omitempty"`
	CommercialUnits   *int  `json:"commercial_units,omitempty"`
	VacantCommercial  *int  `json:"vacant_commercial,omitempty"`
	IsVacantLot       bool  `json:"is_vacant_lot"`
	SoftStoryRequired *bool `json:"soft_story_required,omitempty"`
}

// HasCounts reports whether any unit count was extracted.
func (p PropertyInfo) HasCounts() bool {
	return p.TotalUnits != nil || p.ResidentialUnits != nil || p.VacantResidential != nil ||
		p.CommercialUnits != nil || p.VacantCommercial != nil
}

// SellerInfo identifies the selling party.
type SellerInfo struct {
	SellerName string `json:"seller_name,omitempty"`
}

// RentRollEntry is one unit of a rent roll.
type RentRollEntry struct {
	Unit    string   `json:"unit"`
	Rent    *float64 `json:"rent,omitempty"`
	Vacant  bool     `json:"vacant"`
	Tenancy string   `json:"tenancy,omitempty"`
}

// FinancialInfo holds the dollar figures and rates printed on the form.
// RentRoll is never populated by the regex extractors.
type FinancialInfo struct {
	AskingPrice             *float64        `json:"asking_price,omitempty"`
	MonthlyIncome           *float64        `json:"monthly_income,omitempty"`
	TotalRents              *float64        `json:"total_rents,omitempty"`
	OtherIncome             *float64        `json:"other_income,omitempty"`
	TotalMonthlyIncome      *float64        `json:"total_monthly_income,omitempty"`
	TotalAnnualIncome       *float64        `json:"total_annual_income,omitempty"`
	AnnualExpenses          *float64        `json:"annual_expenses,omitempty"`
	LessTotalAnnualExpenses *float64        `json:"less_total_annual_expenses,omitempty"`
	NetOperatingIncome      *float64        `json:"net_operating_income,omitempty"`
	PropertyTaxRate         *float64        `json:"property_tax_rate,omitempty"`
	PropertyTaxAmount       *float64        `json:"property_tax_amount,omitempty"`
	ManagementRate          *float64        `json:"management_rate,omitempty"`
	ManagementAmount        *float64        `json:"management_amount,omitempty"`
	Insurance               *float64        `json:"insurance,omitempty"`
	Utilities               *float64        `json:"utilities,omitempty"`
	Maintenance             *float64        `json:"maintenance,omitempty"`
	OtherExpenses           *float64        `json:"other_expenses,omitempty"`
	RentRoll                []RentRollEntry `json:"rent_roll"`
}

// FormData is everything extracted from one form page.
type FormData struct {
	Address   AddressRecord `json:"address"`
	Property  PropertyInfo  `json:"property_info"`
	Seller    SellerInfo    `json:"seller_info"`
	Financial FinancialInfo `json:"financial_info"`
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func floatPtr(v float64) *float64 { return &v }
