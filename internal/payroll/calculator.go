package payroll

// StatutoryRates holds the structural formula percentages in basis
// points of basic salary. The zero value is invalid; use
// DefaultStatutoryRates or the frozen copy on a PayrollRun.
type StatutoryRates struct {
	HousingBps     int64 `gorm:"type:bigint;not null" json:"housing_bps"`
	TransportBps   int64 `gorm:"type:bigint;not null" json:"transport_bps"`
	MedicalBps     int64 `gorm:"type:bigint;not null" json:"medical_bps"`
	PensionBps     int64 `gorm:"type:bigint;not null" json:"pension_bps"`
	TaxBps         int64 `gorm:"type:bigint;not null" json:"tax_bps"`
	HousingFundBps int64 `gorm:"type:bigint;not null" json:"housing_fund_bps"`
}

// DefaultStatutoryRates returns the rates currently mandated: housing
// 40%, transport 20%, medical 10% of basic as allowances; pension 8%,
// tax 7.5%, housing fund 2.5% as deductions.
func DefaultStatutoryRates() StatutoryRates {
	return StatutoryRates{
		HousingBps:     4000,
		TransportBps:   2000,
		MedicalBps:     1000,
		PensionBps:     800,
		TaxBps:         750,
		HousingFundBps: 250,
	}
}

type StructuralBreakdown struct {
	Housing     int64
	Transport   int64
	Medical     int64
	Pension     int64
	Tax         int64
	HousingFund int64
}

func (b StructuralBreakdown) TotalAllowances() int64 {
	return b.Housing + b.Transport + b.Medical
}

func (b StructuralBreakdown) TotalDeductions() int64 {
	return b.Pension + b.Tax + b.HousingFund
}

// ComputeStructural applies the statutory rates to a basic salary.
// Pure integer math on minor currency units; each line is rounded
// half-up independently.
func ComputeStructural(basicSalary int64, rates StatutoryRates) StructuralBreakdown {
	return StructuralBreakdown{
		Housing:     applyRate(basicSalary, rates.HousingBps),
		Transport:   applyRate(basicSalary, rates.TransportBps),
		Medical:     applyRate(basicSalary, rates.MedicalBps),
		Pension:     applyRate(basicSalary, rates.PensionBps),
		Tax:         applyRate(basicSalary, rates.TaxBps),
		HousingFund: applyRate(basicSalary, rates.HousingFundBps),
	}
}

// applyRate rounds half-up: adding half the divisor before the integer
// division lands x.5 on the next unit.
func applyRate(amount, bps int64) int64 {
	return (amount*bps + 5000) / 10000
}
