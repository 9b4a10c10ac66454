package collection

import (
	"fmt"

	"github.com/hyperjump/kujo/internal/models"
)

type sampleComplaint struct {
	text, product, issue, company, state, date string
}

var sampleComplaints = []sampleComplaint{
	{
		"Customer reported unauthorized credit card charges totaling $500 from an online retailer. The charges appeared over the weekend without any notification.",
		"Credit card", "Unauthorized transaction", "Bank of America", "CA", "2024-01-15",
	},
	{
		"Mortgage application delayed for 45 days due to missing documentation requests that were never clearly communicated by the loan officer.",
		"Mortgage", "Application delay", "Wells Fargo", "NY", "2024-01-10",
	},
	{
		"Monthly checking account maintenance fee increased from $10 to $15 without proper notification 30 days in advance as required by regulation.",
		"Checking account", "Hidden fees", "Chase", "TX", "2024-01-05",
	},
	{
		"Personal loan application rejected despite having excellent credit score of 780 and stable employment for 5+ years.",
		"Personal loan", "Application rejection", "Citibank", "FL", "2024-01-20",
	},
	{
		"International money transfer delayed by 7 business days causing significant financial loss due to exchange rate fluctuations.",
		"Money transfer", "Transfer delay", "Western Union", "IL", "2024-01-12",
	},
	{
		"Credit card interest rate increased from 15.99% to 22.99% without clear explanation or proper notice as required by law.",
		"Credit card", "Interest rate increase", "Capital One", "OH", "2024-01-18",
	},
	{
		"Savings account withdrawal blocked for 3 days despite sufficient funds, causing bill payment failures and resulting in late fees.",
		"Savings account", "Account access", "Bank of America", "CA", "2024-01-08",
	},
	{
		"Auto loan payment applied incorrectly to principal instead of interest, causing miscalculation of remaining balance.",
		"Auto loan", "Payment processing", "Ally Bank", "MI", "2024-01-22",
	},
	{
		"Overdraft protection not activated despite customer request, resulting in $35 overdraft fees on 3 separate transactions.",
		"Checking account", "Overdraft fees", "Chase", "TX", "2024-01-14",
	},
	{
		"Credit limit decreased from $10,000 to $2,000 without explanation, negatively impacting credit score and utilization ratio.",
		"Credit card", "Credit limit decrease", "Discover", "GA", "2024-01-25",
	},
}

// SampleComplaints returns the demonstration corpus used to bootstrap an
// empty store, as records complaint_0 through complaint_9 without embeddings.
func SampleComplaints() []*models.Record {
	out := make([]*models.Record, len(sampleComplaints))
	for i, s := range sampleComplaints {
		out[i] = &models.Record{
			ID:   fmt.Sprintf("complaint_%d", i),
			Text: s.text,
			Metadata: models.Metadata{
				models.FieldProduct: s.product,
				models.FieldIssue:   s.issue,
				models.FieldCompany: s.company,
				models.FieldState:   s.state,
				models.FieldDate:    s.date,
				models.FieldSource:  "sample",
			},
		}
	}
	return out
}
