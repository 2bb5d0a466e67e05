package main

import (
	"github.com/shopspring/decimal"
	"github.com/vorsorge/rentenplan/internal/domain"
)

// exampleConfiguration compares an ETF savings plan with the state-subsidised products
func exampleConfiguration() *domain.Configuration {
	return &domain.Configuration{
		TaxYear: 2024,
		Profile: domain.Profile{
			Name:          "Erika Mustermann",
			CurrentAge:    35,
			RetirementAge: 67,
			FinalAge:      90,
			IncomeTax: domain.TaxCalculationInput{
				GrossIncome:   decimal.NewFromInt(55000),
				MaritalStatus: domain.Single,
				Children:      1,
			},
		},
		Defaults: domain.SimulationParams{
			MonthlyContribution: decimal.NewFromInt(200),
			ExpectedReturn:      decimal.RequireFromString("0.05"),
			ManagementFee:       decimal.RequireFromString("0.004"),
			FrontLoadMode:       domain.FrontLoadFirstYear,
		},
		Milestones: []int{67, 80, 90},
		Plans: []domain.SimulationParams{
			{
				Name:          "ETF-Sparplan",
				Product:       domain.ProductSpec{Type: domain.ProductFund},
				ManagementFee: decimal.RequireFromString("0.002"),
			},
			{
				Name:         "Private Rentenversicherung",
				Product:      domain.ProductSpec{Type: domain.ProductInsurancePension},
				FrontLoadFee: decimal.RequireFromString("0.025"),
			},
			{
				Name:                "Riester",
				Product:             domain.ProductSpec{Type: domain.ProductRiester, Children: 1},
				MonthlyContribution: decimal.NewFromInt(150),
			},
			{
				Name:    "Rürup",
				Product: domain.ProductSpec{Type: domain.ProductRuerup},
			},
			{
				Name:    "bAV Entgeltumwandlung",
				Product: domain.ProductSpec{Type: domain.ProductOccupational, EmployerSubsidyRate: decimal.RequireFromString("0.15")},
			},
		},
	}
}
