package core

// SeedRecords returns the fixed demonstration dataset: three locations and
// one branch under each of them. IDs are left empty for the store to assign.
func SeedRecords() []Record {
	return []Record{
		{
			Location:                   "Colorado",
			PotentialRevenue:           Metric{Value: 624596, Percentage: 33.48},
			CompetitorProcessingVolume: Metric{Value: 52049666, Percentage: 33.33},
			CompetitorMerchant:         195,
			RevenuePerAccount:          3203,
			MarketShareByRevenue:       33.33,
			CommercialDDAs:             220,
			Type:                       TypeLocation,
		},
		{
			Location:                   "Florida",
			PotentialRevenue:           Metric{Value: 600628, Percentage: 32.19},
			CompetitorProcessingVolume: Metric{Value: 52049666, Percentage: 33.33},
			CompetitorMerchant:         195,
			RevenuePerAccount:          3203,
			MarketShareByRevenue:       33.33,
			CommercialDDAs:             220,
			Type:                       TypeLocation,
		},
		{
			Location:                   "Mississippi",
			PotentialRevenue:           Metric{Value: 640596, Percentage: 34.33},
			CompetitorProcessingVolume: Metric{Value: 51385666, Percentage: 33.33},
			CompetitorMerchant:         198,
			RevenuePerAccount:          3114,
			MarketShareByRevenue:       33.33,
			CommercialDDAs:             792,
			Type:                       TypeLocation,
		},
		{
			Location:                   "Branch 1",
			PotentialRevenue:           Metric{Value: 878269, Percentage: 34.96},
			CompetitorProcessingVolume: Metric{Value: 73189083, Percentage: 33.33},
			CompetitorMerchant:         287,
			RevenuePerAccount:          3060,
			MarketShareByRevenue:       33.33,
			CommercialDDAs:             1148,
			Type:                       TypeBranch,
			ParentLocation:             "Colorado",
		},
		{
			Location:                   "Branch 2",
			PotentialRevenue:           Metric{Value: 822775, Percentage: 33.33},
			CompetitorProcessingVolume: Metric{Value: 68564583, Percentage: 33.33},
			CompetitorMerchant:         257,
			RevenuePerAccount:          3201,
			MarketShareByRevenue:       33.33,
			CommercialDDAs:             1028,
			Type:                       TypeBranch,
			ParentLocation:             "Florida",
		},
		{
			Location:                   "Branch 3",
			PotentialRevenue:           Metric{Value: 817009, Percentage: 32.52},
			CompetitorProcessingVolume: Metric{Value: 68084083, Percentage: 33.33},
			CompetitorMerchant:         252,
			RevenuePerAccount:          3242,
			MarketShareByRevenue:       33.33,
			CommercialDDAs:             1008,
			Type:                       TypeBranch,
			ParentLocation:             "Mississippi",
		},
	}
}
