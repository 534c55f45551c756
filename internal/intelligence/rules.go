package intelligence

// defaultRules returns the built-in variants in priority order.
func defaultRules() []VariantRule {
	return []VariantRule{
		{
			Variant: VariantCOPA3,
			Markers: []string{
				"Property Address:",
				"Total # of units",
				"# of residential units",
				"# currently vacant",
				"Soft Story work required",
				"Check if a vacant lot",
				"Seller:",
			},
			Threshold: DefaultMarkerThreshold,
			Enabled:   true,
		},
		{
			Variant: VariantCOPA4,
			Markers: []string{
				"Notice of Intent to Sell",
				"Qualified Nonprofit",
				"Right of First Offer",
				"Offer Period",
				"Sales Price",
			},
			Threshold: DefaultMarkerThreshold,
			Enabled:   true,
		},
	}
}
