package schema

// Canonical field names for the model point schema. Validation rules and
// downstream consumers refer to these, never to upstream spellings.
const (
	FieldPolicyNumber     = "policy_number"
	FieldPolicyTerm       = "policy_term"
	FieldDateOfBirth      = "date_of_birth"
	FieldEntryDate        = "entry_date"
	FieldSex              = "sex"
	FieldSmokerStatus     = "smoker_status"
	FieldProduct          = "product"
	FieldOccupation       = "occupation"
	FieldPremiumFrequency = "premium_frequency"
	FieldBenefitPeriod    = "benefit_period"
	FieldWaitingPeriod    = "waiting_period"
	FieldSumAssuredDeath  = "sum_assured_death"
	FieldSumAssuredTPD    = "sum_assured_tpd"
	FieldSumAssuredTrauma = "sum_assured_trauma"
	FieldAnnualPremium    = "annual_premium"
	FieldMonthlyBenefit   = "monthly_benefit"
)

// DefaultAliases is the process-wide alias table for model point files.
// Upstream producers are inconsistent about case, separators and wording;
// every spelling seen in production files gets an entry here.
func DefaultAliases() AliasTable {
	return AliasTable{
		FieldPolicyNumber:     {"Policy number", "policy_id", "P_Number", "policy no"},
		FieldPolicyTerm:       {"policy_term", "Policy Term", "term"},
		FieldDateOfBirth:      {"DOB", "date of birth", "birth_date"},
		FieldEntryDate:        {"Entry date", "entry_dt", "commencement date"},
		FieldSex:              {"sex", "gender"},
		FieldSmokerStatus:     {"Smoker status", "smoker", "smoking status"},
		FieldProduct:          {"Product", "product_code"},
		FieldOccupation:       {"Occupation", "occupation_class"},
		FieldPremiumFrequency: {"Prem Freq", "premium freq", "prem_frequency"},
		FieldBenefitPeriod:    {"Benefit Period", "benefit_period"},
		FieldWaitingPeriod:    {"Waiting Period", "waiting_period"},
		FieldSumAssuredDeath:  {"sum_assured_dth", "sum assured death", "death sum assured"},
		FieldSumAssuredTPD:    {"sum_assured_tpd", "sum assured tpd", "tpd sum assured"},
		FieldSumAssuredTrauma: {"sum_assured_trm", "sum assured trauma", "trauma sum assured"},
		FieldAnnualPremium:    {"Annual Prem", "annual premium", "annual_prem_amt"},
		FieldMonthlyBenefit:   {"Monthly Benefit", "monthly_benefit", "monthly ben"},
	}
}
