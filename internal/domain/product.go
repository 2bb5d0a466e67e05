package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductType identifies one of the supported retirement vehicles
type ProductType string

const (
	ProductFund             ProductType = "fund"
	ProductInsurancePension ProductType = "insurance_pension"
	ProductRiester          ProductType = "riester"
	ProductRuerup           ProductType = "ruerup"
	ProductOccupational     ProductType = "occupational"
)

// ProductTypes lists the supported product identifiers in display order
var ProductTypes = []ProductType{
	ProductFund,
	ProductInsurancePension,
	ProductRiester,
	ProductRuerup,
	ProductOccupational,
}

// DefaultAnnuityFactor is the monthly pension per 10,000 EUR of capital (Rentenfaktor)
var DefaultAnnuityFactor = decimal.NewFromInt(28)

// ProductSpec is the wire form of a product. Only the fields relevant to Type are read.
type ProductSpec struct {
	Type ProductType `json:"type" yaml:"type"`

	// Annuity products
	AnnuityFactor decimal.Decimal `json:"annuityFactor,omitempty" yaml:"annuity_factor,omitempty"`

	// Insurance pension: pay out capital instead of a pension
	LumpSum bool `json:"lumpSum,omitempty" yaml:"lump_sum,omitempty"`

	// Riester
	Children int `json:"children,omitempty" yaml:"children,omitempty"`

	// Occupational: employer subsidy as a fraction of the employee contribution
	EmployerSubsidyRate decimal.Decimal `json:"employerSubsidyRate,omitempty" yaml:"employer_subsidy_rate,omitempty"`
}

// Product is the tagged union over the supported vehicles.
// Every implementation lives in this file; switch statements over Product are exhaustive.
type Product interface {
	Type() ProductType
	// TaxDeferred reports whether gains accumulate without annual taxation
	TaxDeferred() bool
	isProduct()
}

// FundPlan is a fund savings plan held in a regular custody account
type FundPlan struct{}

// InsurancePension is a private pension insurance (fund-linked or classic)
type InsurancePension struct {
	AnnuityFactor decimal.Decimal
	LumpSum       bool
}

// RiesterPension is a state-subsidised Riester contract
type RiesterPension struct {
	AnnuityFactor decimal.Decimal
	Children      int
}

// RuerupPension is a basic pension (Basisrente)
type RuerupPension struct {
	AnnuityFactor decimal.Decimal
}

// OccupationalPension is a company pension via salary conversion
type OccupationalPension struct {
	AnnuityFactor       decimal.Decimal
	EmployerSubsidyRate decimal.Decimal
}

// UnknownProduct carries an unrecognised identifier. It is taxed like a classic
// private annuity; callers should log the fallback.
type UnknownProduct struct {
	Identifier string
}

func (FundPlan) Type() ProductType            { return ProductFund }
func (InsurancePension) Type() ProductType    { return ProductInsurancePension }
func (RiesterPension) Type() ProductType      { return ProductRiester }
func (RuerupPension) Type() ProductType       { return ProductRuerup }
func (OccupationalPension) Type() ProductType { return ProductOccupational }
func (u UnknownProduct) Type() ProductType    { return ProductType(u.Identifier) }

func (FundPlan) TaxDeferred() bool            { return false }
func (InsurancePension) TaxDeferred() bool    { return true }
func (RiesterPension) TaxDeferred() bool      { return true }
func (RuerupPension) TaxDeferred() bool       { return true }
func (OccupationalPension) TaxDeferred() bool { return true }
func (UnknownProduct) TaxDeferred() bool      { return true }

func (FundPlan) isProduct()            {}
func (InsurancePension) isProduct()    {}
func (RiesterPension) isProduct()      {}
func (RuerupPension) isProduct()       {}
func (OccupationalPension) isProduct() {}
func (UnknownProduct) isProduct()      {}

// Resolve converts the wire form into the tagged union. An empty type means a fund plan.
// Unknown identifiers resolve to UnknownProduct with ok=false.
func (ps ProductSpec) Resolve() (p Product, ok bool) {
	factor := ps.AnnuityFactor
	if factor.LessThanOrEqual(decimal.Zero) {
		factor = DefaultAnnuityFactor
	}
	children := ps.Children
	if children < 0 {
		children = 0
	}

	switch ProductType(strings.ToLower(strings.TrimSpace(string(ps.Type)))) {
	case "", ProductFund:
		return FundPlan{}, true
	case ProductInsurancePension:
		return InsurancePension{AnnuityFactor: factor, LumpSum: ps.LumpSum}, true
	case ProductRiester:
		return RiesterPension{AnnuityFactor: factor, Children: children}, true
	case ProductRuerup:
		return RuerupPension{AnnuityFactor: factor}, true
	case ProductOccupational:
		rate := ps.EmployerSubsidyRate
		if rate.IsNegative() {
			rate = decimal.Zero
		}
		return OccupationalPension{AnnuityFactor: factor, EmployerSubsidyRate: rate}, true
	default:
		return UnknownProduct{Identifier: string(ps.Type)}, false
	}
}

// AnnuityFactorOf returns the conversion factor for annuity products, zero for fund plans
func AnnuityFactorOf(p Product) decimal.Decimal {
	switch v := p.(type) {
	case InsurancePension:
		return v.AnnuityFactor
	case RiesterPension:
		return v.AnnuityFactor
	case RuerupPension:
		return v.AnnuityFactor
	case OccupationalPension:
		return v.AnnuityFactor
	case UnknownProduct:
		return DefaultAnnuityFactor
	case FundPlan:
		return decimal.Zero
	default:
		panic(fmt.Sprintf("unhandled product %T", p))
	}
}

// DisplayName returns a German label for a product type
func (t ProductType) DisplayName() string {
	switch t {
	case ProductFund:
		return "Fondssparplan"
	case ProductInsurancePension:
		return "Private Rentenversicherung"
	case ProductRiester:
		return "Riester-Rente"
	case ProductRuerup:
		return "Rürup-Rente"
	case ProductOccupational:
		return "Betriebsrente"
	default:
		return string(t)
	}
}
