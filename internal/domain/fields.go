package domain

import "fmt"

// Field names a numeric column of a FinancialReport.
// The registry below is the single place where field presence is resolved.
type Field string

const (
	FieldRevenue                     Field = "revenue"
	FieldGrossProfit                 Field = "gross_profit"
	FieldEBIT                        Field = "ebit"
	FieldNetIncome                   Field = "net_income"
	FieldTaxProvision                Field = "tax_provision"
	FieldInterestExpense             Field = "interest_expense"
	FieldDilutedEPS                  Field = "diluted_eps"
	FieldBasicEPS                    Field = "basic_eps"
	FieldOperatingCashFlow           Field = "operating_cash_flow"
	FieldCapitalExpenditure          Field = "capital_expenditure"
	FieldFreeCashFlow                Field = "free_cash_flow"
	FieldCashDividendsPaid           Field = "cash_dividends_paid"
	FieldBasicAverageShares          Field = "basic_average_shares"
	FieldDilutedAverageShares        Field = "diluted_average_shares"
	FieldShareIssued                 Field = "share_issued"
	FieldTotalAssets                 Field = "total_assets"
	FieldTotalCurrentLiabilities     Field = "total_current_liabilities"
	FieldTotalEquity                 Field = "total_equity"
	FieldLongTermDebt                Field = "long_term_debt"
	FieldShortTermDebt               Field = "short_term_debt"
	FieldTotalDebt                   Field = "total_debt"
	FieldCashAndEquivalents          Field = "cash_and_equivalents"
	FieldGoodwill                    Field = "goodwill"
	FieldIntangibleAssets            Field = "intangible_assets"
	FieldGoodwillAndIntangibleAssets Field = "goodwill_and_intangible_assets"
)

// AllFields lists every numeric report field in statement order
var AllFields = []Field{
	FieldRevenue, FieldGrossProfit, FieldEBIT, FieldNetIncome, FieldTaxProvision, FieldInterestExpense,
	FieldDilutedEPS, FieldBasicEPS,
	FieldOperatingCashFlow, FieldCapitalExpenditure, FieldFreeCashFlow, FieldCashDividendsPaid,
	FieldBasicAverageShares, FieldDilutedAverageShares, FieldShareIssued,
	FieldTotalAssets, FieldTotalCurrentLiabilities, FieldTotalEquity,
	FieldLongTermDebt, FieldShortTermDebt, FieldTotalDebt, FieldCashAndEquivalents,
	FieldGoodwill, FieldIntangibleAssets, FieldGoodwillAndIntangibleAssets,
}

// ParseField validates a field name
func ParseField(name string) (Field, error) {
	f := Field(name)
	if (&FinancialReport{}).slot(f) == nil {
		return "", fmt.Errorf("unknown report field: %s", name)
	}
	return f, nil
}

// Value returns the value of field f, nil when absent or unknown
func (r *FinancialReport) Value(f Field) *float64 {
	if p := r.slot(f); p != nil {
		return *p
	}
	return nil
}

// SetValue stores v in field f. Unknown fields are ignored.
func (r *FinancialReport) SetValue(f Field, v *float64) {
	if p := r.slot(f); p != nil {
		*p = v
	}
}

func (r *FinancialReport) slot(f Field) **float64 {
	switch f {
	case FieldRevenue:
		return &r.Revenue
	case FieldGrossProfit:
		return &r.GrossProfit
	case FieldEBIT:
		return &r.EBIT
	case FieldNetIncome:
		return &r.NetIncome
	case FieldTaxProvision:
		return &r.TaxProvision
	case FieldInterestExpense:
		return &r.InterestExpense
	case FieldDilutedEPS:
		return &r.DilutedEPS
	case FieldBasicEPS:
		return &r.BasicEPS
	case FieldOperatingCashFlow:
		return &r.OperatingCashFlow
	case FieldCapitalExpenditure:
		return &r.CapitalExpenditure
	case FieldFreeCashFlow:
		return &r.FreeCashFlow
	case FieldCashDividendsPaid:
		return &r.CashDividendsPaid
	case FieldBasicAverageShares:
		return &r.BasicAverageShares
	case FieldDilutedAverageShares:
		return &r.DilutedAverageShares
	case FieldShareIssued:
		return &r.ShareIssued
	case FieldTotalAssets:
		return &r.TotalAssets
	case FieldTotalCurrentLiabilities:
		return &r.TotalCurrentLiabilities
	case FieldTotalEquity:
		return &r.TotalEquity
	case FieldLongTermDebt:
		return &r.LongTermDebt
	case FieldShortTermDebt:
		return &r.ShortTermDebt
	case FieldTotalDebt:
		return &r.TotalDebt
	case FieldCashAndEquivalents:
		return &r.CashAndEquivalents
	case FieldGoodwill:
		return &r.Goodwill
	case FieldIntangibleAssets:
		return &r.IntangibleAssets
	case FieldGoodwillAndIntangibleAssets:
		return &r.GoodwillAndIntangibleAssets
	}
	return nil
}
