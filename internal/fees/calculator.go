// Package fees models Mercado Libre Mexico selling costs: category
// commission, Mercado Envios shipping, and tax retention. It answers "what
// do I actually keep at this selling price", the downstream interpretation
// of a recommended price.
package fees

import (
	"math"
	"sort"
)

// freeShippingThreshold is the listing price above which the seller pays
// shipping (with a reputation discount); below it the buyer pays.
const freeShippingThreshold = 299.0

// lowValueFixedFee is added to the commission for listings under the free
// shipping threshold.
const lowValueFixedFee = 25.0

// premiumListingSurchargePercent is the commission surcharge of Premium
// listings over Clasica.
const premiumListingSurchargePercent = 5.0

// Tax retention rates applied by the marketplace on the sale price.
const (
	vatRetentionRate = 0.08
	isrRetentionRate = 0.025
)

// extrapolationRatePerKg prices weight beyond the last shipping tier.
const extrapolationRatePerKg = 25.0

// shippingRates maps the upper bound of a weight tier (kg) to the standard
// Mercado Envios cost (MXN).
var shippingRates = map[float64]float64{
	0.5:  95.0,
	1.0:  110.0,
	2.0:  135.0,
	3.0:  155.0,
	5.0:  195.0,
	10.0: 300.0,
	15.0: 400.0,
	20.0: 500.0,
}

// reputationDiscount maps seller reputation to the free-shipping cost
// discount.
var reputationDiscount = map[string]float64{
	"MercadoLider": 0.50,
	"Green":        0.40,
	"Yellow":       0.0,
	"Orange":       0.0,
	"Red":          0.0,
	"None":         0.0,
}

// ListingType is the marketplace listing tier.
type ListingType string

// Listing tiers.
const (
	ListingClasica ListingType = "Clasica"
	ListingPremium ListingType = "Premium"
)

// Input describes one sale scenario.
type Input struct {
	SellingPrice       float64
	CostOfGoods        float64
	WeightKg           float64
	CategoryFeePercent float64
	Reputation         string
	ListingType        ListingType
}

// Breakdown is the fee/tax/profit decomposition of a sale.
type Breakdown struct {
	SellingPrice       float64 `json:"selling_price"`
	GrossCommission    float64 `json:"gross_commission"`
	ShippingCost       float64 `json:"shipping_cost"`
	TaxesISR           float64 `json:"taxes_isr"`
	TaxesVAT           float64 `json:"taxes_vat"`
	CostOfGoods        float64 `json:"cost_of_goods"`
	NetProfit          float64 `json:"net_profit"`
	NetMarginPercent   float64 `json:"net_margin_percent"`
	ReturnOnInvestment float64 `json:"return_on_investment"`
}

// Shipping computes the seller's shipping cost. Under the free-shipping
// threshold the buyer pays and the seller cost is zero.
func Shipping(price, weightKg float64, reputation string) float64 {
	if price < freeShippingThreshold {
		return 0.0
	}

	tiers := make([]float64, 0, len(shippingRates))
	for w := range shippingRates {
		tiers = append(tiers, w)
	}
	sort.Float64s(tiers)

	maxTier := tiers[len(tiers)-1]
	baseRate := shippingRates[maxTier]
	if weightKg > maxTier {
		baseRate += (weightKg - maxTier) * extrapolationRatePerKg
	} else {
		for _, w := range tiers {
			if weightKg <= w {
				baseRate = shippingRates[w]
				break
			}
		}
	}

	return round2(baseRate * (1 - reputationDiscount[reputation]))
}

// Commission computes the selling fee: the category percentage (plus the
// Premium surcharge) and a fixed fee for low-value listings.
func Commission(price, categoryFeePercent float64, listingType ListingType) float64 {
	effectivePercent := categoryFeePercent
	if listingType == ListingPremium {
		effectivePercent += premiumListingSurchargePercent
	}

	fee := price * effectivePercent / 100
	if price < freeShippingThreshold {
		fee += lowValueFixedFee
	}
	return round2(fee)
}

// Taxes computes the VAT and ISR retention on a sale price.
func Taxes(price float64) (vat, isr float64) {
	return round2(price * vatRetentionRate), round2(price * isrRetentionRate)
}

// Profit builds the full breakdown for a sale scenario. Zero-valued Input
// fields get pragmatic defaults (1 kg, 15% electronics fee, Green
// reputation, Clasica listing).
func Profit(in Input) Breakdown {
	if in.WeightKg == 0 {
		in.WeightKg = 1.0
	}
	if in.CategoryFeePercent == 0 {
		in.CategoryFeePercent = 15.0
	}
	if in.Reputation == "" {
		in.Reputation = "Green"
	}
	if in.ListingType == "" {
		in.ListingType = ListingClasica
	}

	commission := Commission(in.SellingPrice, in.CategoryFeePercent, in.ListingType)
	shipping := Shipping(in.SellingPrice, in.WeightKg, in.Reputation)
	vat, isr := Taxes(in.SellingPrice)

	netProfit := in.SellingPrice - commission - shipping - vat - isr - in.CostOfGoods

	netMargin := 0.0
	if in.SellingPrice > 0 {
		netMargin = netProfit / in.SellingPrice * 100
	}
	roi := 0.0
	if in.CostOfGoods > 0 {
		roi = netProfit / in.CostOfGoods * 100
	}

	return Breakdown{
		SellingPrice:       in.SellingPrice,
		GrossCommission:    commission,
		ShippingCost:       shipping,
		TaxesISR:           isr,
		TaxesVAT:           vat,
		CostOfGoods:        in.CostOfGoods,
		NetProfit:          round2(netProfit),
		NetMarginPercent:   round2(netMargin),
		ReturnOnInvestment: round2(roi),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
