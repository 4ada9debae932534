package parse

import (
	"freshops/internal"
	"freshops/internal/config"
)

func testConfig() config.Config {
	cfg, _ := config.Load()
	return cfg
}

func testProducts() []internal.ProductRecord {
	return []internal.ProductRecord{
		{Code: "MANGO-01", Name: "Mango Gold Susu", BaseUOM: "ctn"},
		{Code: "AVO-01", Name: "Avocado", BaseUOM: "pcs"},
		{Code: "CAR-01", Name: "Carrot", BaseUOM: "kg"},
		{Code: "RAD-01", Name: "White Radish", BaseUOM: "kg"},
		{Code: "TOM-01", Name: "Tomato", BaseUOM: "kg"},
		{Code: "LET-01", Name: "Butterhead Lettuce", BaseUOM: "pcs"},
	}
}

func testCustomers() []internal.CustomerRecord {
	return []internal.CustomerRecord{
		{ID: 1, CompanyName: "HeyTea", Branch: "Genting"},
		{ID: 2, CompanyName: "HeyTea", Branch: "Pavilion"},
		{ID: 3, CompanyName: "Grand Imperial Restaurant"},
	}
}
