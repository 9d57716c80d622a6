package services

import (
	"strconv"
	"strings"
)

// ApplicationIntake is the raw application payload as clients send it. The
// web and mobile clients disagree on field names, so most fields have an
// alias; NormalizeIntake resolves them into a single shape.
type ApplicationIntake struct {
	ListingID string `json:"listing_id"`
	Message   string `json:"message"`

	ApplicationType string `json:"application_type"` // "Buy" or "Rent"

	EmploymentStatusDirect string `json:"employment_status_direct"`
	EmploymentStatus       string `json:"employment_status"`

	MonthlyIncomeRange string `json:"monthly_income_range"`
	MonthlyIncome      string `json:"monthly_income"`

	PurchaseBudgetRange string `json:"purchase_budget_range"`
	PurchaseBudget      string `json:"purchase_budget"`

	BudgetRange string `json:"budget_range"`

	IntendedMoveInTimeframe string `json:"intended_move_in_timeframe"`
	IntendedIncome          string `json:"intended_income"`

	DeclarationApplicationNotApproval *bool `json:"declaration_application_not_approval"`
	DeclarationPreparedToProvideDocs  *bool `json:"declaration_prepared_to_provide_docs"`
	DeclarationActivelyLooking        *bool `json:"declaration_actively_looking"`
	Checkbox1                         bool  `json:"checkbox1"`
	Checkbox2                         bool  `json:"checkbox2"`
	Checkbox3                         bool  `json:"checkbox3"`

	Documents          []string `json:"documents"`
	GovernmentApproved string   `json:"government_approved"`
	JobLetter          string   `json:"job_letter"`

	// Profile fields merged into the buyer's account as a side effect.
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Phone              string `json:"phone"`
	CountryOfResidence string `json:"country_of_residence"`
	Parish             string `json:"parish"`
}

// NormalizedIntake is the resolved application payload: one name per field,
// the Buy/Rent budget split applied, documents flattened into one list.
type NormalizedIntake struct {
	Message                 string
	EmploymentStatus        string
	MonthlyIncomeRange      string
	BudgetRange             string
	PurchaseBudgetRange     string
	IntendedMoveInTimeframe string

	DeclarationApplicationNotApproval bool
	DeclarationPreparedToProvideDocs  bool
	DeclarationActivelyLooking        bool

	Documents []string
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// NormalizeIntake resolves client field aliases into the canonical shape.
// Direct/underscore variants win over legacy names; explicit declaration
// fields win over the bare checkboxes. Exactly one of the two budget fields
// survives, picked by application type: "Buy" keeps the purchase budget,
// anything else keeps the rental budget.
func NormalizeIntake(in ApplicationIntake) NormalizedIntake {
	out := NormalizedIntake{
		Message:                 in.Message,
		EmploymentStatus:        firstNonEmpty(in.EmploymentStatusDirect, in.EmploymentStatus),
		MonthlyIncomeRange:      firstNonEmpty(in.MonthlyIncomeRange, in.MonthlyIncome),
		IntendedMoveInTimeframe: firstNonEmpty(in.IntendedMoveInTimeframe, in.IntendedIncome),
	}

	if in.ApplicationType == "Buy" {
		out.PurchaseBudgetRange = firstNonEmpty(in.PurchaseBudgetRange, in.PurchaseBudget)
		out.BudgetRange = ""
	} else {
		out.BudgetRange = in.BudgetRange
		out.PurchaseBudgetRange = ""
	}

	out.DeclarationApplicationNotApproval = boolOr(in.DeclarationApplicationNotApproval, in.Checkbox1)
	out.DeclarationPreparedToProvideDocs = boolOr(in.DeclarationPreparedToProvideDocs, in.Checkbox2)
	out.DeclarationActivelyLooking = boolOr(in.DeclarationActivelyLooking, in.Checkbox3)

	docs := append([]string{}, in.Documents...)
	if strings.TrimSpace(in.GovernmentApproved) != "" {
		docs = append(docs, in.GovernmentApproved)
	}
	if strings.TrimSpace(in.JobLetter) != "" {
		docs = append(docs, in.JobLetter)
	}
	out.Documents = docs

	return out
}

func boolOr(explicit *bool, fallback bool) bool {
	if explicit != nil {
		return *explicit
	}
	return fallback
}

// ParseBudgetEstimate extracts a rough price from a free-text budget range
// like "JMD 30,000 - 50,000" or "Under $25k". It takes the first number in
// the string, scales a trailing k/K or m/M suffix, and returns 0 when no
// number is present.
func ParseBudgetEstimate(budget string) float64 {
	runes := []rune(budget)
	for i := 0; i < len(runes); i++ {
		if runes[i] < '0' || runes[i] > '9' {
			continue
		}
		j := i
		var digits strings.Builder
		for j < len(runes) {
			r := runes[j]
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			} else if r != ',' {
				break
			}
			j++
		}
		value, err := strconv.ParseFloat(digits.String(), 64)
		if err != nil {
			return 0
		}
		if j < len(runes) {
			switch runes[j] {
			case 'k', 'K':
				value *= 1_000
			case 'm', 'M':
				value *= 1_000_000
			}
		}
		return value
	}
	return 0
}
