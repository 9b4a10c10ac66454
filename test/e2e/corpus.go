// Package e2e provides end-to-end tests over a synthetic complaint corpus
// dropped into a folder in every supported tabular format.
package e2e

import (
	"fmt"
	"strings"
)

// Complaint is one row of the E2E corpus.
type Complaint struct {
	ComplaintID string
	Text        string
	Product     string
	Issue       string
	Company     string
	State       string
	Date        string
}

// QueryTestCase defines a query and the complaint id(s), at least one of
// which must appear in the retrieved hits.
type QueryTestCase struct {
	Query                string
	ExpectedComplaintIDs []string
	Description          string
}

// Corpus holds complaints and query test cases for E2E tests.
type Corpus struct {
	Complaints   []Complaint
	TestCases    []QueryTestCase
	TotalRows    int
	TotalQueries int
}

type theme struct {
	product, issue, phrase, text string
}

var themes = []theme{
	{"Credit card", "Unauthorized transaction", "skimmer gas pump", "A skimmer gas pump device copied my card and several charges followed within an hour."},
	{"Credit card", "Billing dispute", "duplicate hotel folio", "The issuer refused to reverse a duplicate hotel folio charge even after I sent the receipt."},
	{"Credit card", "Rewards", "cashback points forfeited", "My cashback points forfeited after a system migration without any notice from the bank."},
	{"Mortgage", "Escrow", "escrow shortage homeowners insurance", "An escrow shortage homeowners insurance recalculation doubled my monthly payment."},
	{"Mortgage", "Loan modification", "forbearance modification paperwork", "They lost my forbearance modification paperwork three times and started foreclosure anyway."},
	{"Mortgage", "Closing", "appraisal gap closing", "An appraisal gap closing fee appeared on the final statement that was never disclosed."},
	{"Checking account", "Overdraft fees", "overdraft reordering transactions", "The bank used overdraft reordering transactions so one purchase created five fees."},
	{"Checking account", "Account closure", "frozen paycheck deposit", "A frozen paycheck deposit left me unable to pay rent while the account was under review."},
	{"Checking account", "Check hold", "cashier check hold", "A cashier check hold lasted twelve business days with no explanation."},
	{"Savings account", "Interest", "promotional apy bonus", "The promotional apy bonus was never credited although I met every requirement."},
	{"Student loan", "Servicing", "income driven repayment recertification", "My income driven repayment recertification was ignored and the payment tripled."},
	{"Student loan", "Forgiveness", "public service forgiveness count", "The servicer reset my public service forgiveness count after a transfer."},
	{"Auto loan", "Repossession", "repossession without notice", "The lender ordered a repossession without notice from my driveway while I was current."},
	{"Auto loan", "Gap insurance", "gap insurance refund dealer", "The gap insurance refund dealer owes me after payoff has not arrived in six months."},
	{"Personal loan", "Fees", "origination fee deducted twice", "An origination fee deducted twice shrank the loan proceeds I received."},
	{"Payday loan", "Collection", "payday rollover electronic withdrawals", "Repeated payday rollover electronic withdrawals drained my account each week."},
	{"Debt collection", "Harassment", "collector calls workplace", "A collector calls workplace numbers daily after I asked them to stop."},
	{"Debt collection", "Validation", "debt validation letter ignored", "My debt validation letter ignored request was followed by a lawsuit threat."},
	{"Credit reporting", "Incorrect information", "mixed credit file stranger", "My report contains a mixed credit file stranger with accounts I never opened."},
	{"Credit reporting", "Dispute process", "dispute frivolous form letter", "Every dispute frivolous form letter came back without any investigation."},
	{"Money transfer", "Fraud", "wire transfer romance scam", "I reported a wire transfer romance scam within minutes but the bank did nothing."},
	{"Money transfer", "Exchange rate", "remittance exchange markup", "The remittance exchange markup was far higher than the rate quoted at checkout."},
	{"Prepaid card", "Access", "prepaid card locked balance", "My prepaid card locked balance cannot be accessed and support never answers."},
	{"Mobile wallet", "Fraud", "peer payment app impostor", "A peer payment app impostor posing as the bank tricked me into sending money."},
	{"Virtual currency", "Withdrawal", "crypto exchange withdrawal halted", "The crypto exchange withdrawal halted for weeks with funds stuck on the platform."},
	{"Vehicle lease", "End of lease", "lease turn in damage charges", "The lease turn in damage charges were billed for wear that was in the original inspection."},
	{"Credit repair", "Advance fees", "credit repair upfront retainer", "A credit repair upfront retainer was charged and no disputes were ever filed."},
	{"Title loan", "Interest", "title loan balloon payment", "The title loan balloon payment was hidden in the fine print of the contract."},
	{"Bank account", "Identity theft", "synthetic identity new account", "A synthetic identity new account was opened in my name using my social security number."},
	{"Home equity", "Line freeze", "heloc line frozen suddenly", "My heloc line frozen suddenly in the middle of a renovation project."},
}

var (
	companies = []string{"Bank of America", "Wells Fargo", "Chase", "Citibank", "Capital One", "Discover"}
	states    = []string{"CA", "NY", "TX", "FL", "IL", "OH", "GA", "MI"}
)

// BuildCorpus returns a corpus of n complaints cycling through the themes,
// with one query test case per theme.
func BuildCorpus(n int) *Corpus {
	out := make([]Complaint, n)
	for i := range out {
		th := themes[i%len(themes)]
		out[i] = Complaint{
			ComplaintID: fmt.Sprintf("%07d", 4000000+i),
			Text:        th.text,
			Product:     th.product,
			Issue:       th.issue,
			Company:     companies[i%len(companies)],
			State:       states[i%len(states)],
			Date:        fmt.Sprintf("2024-%02d-%02d", i%12+1, i%28+1),
		}
	}
	cases := buildQueryTestCases(out)
	return &Corpus{
		Complaints:   out,
		TestCases:    cases,
		TotalRows:    len(out),
		TotalQueries: len(cases),
	}
}

func buildQueryTestCases(complaints []Complaint) []QueryTestCase {
	var cases []QueryTestCase
	for _, th := range themes {
		var ids []string
		for _, c := range complaints {
			if strings.Contains(c.Text, th.phrase) {
				ids = append(ids, c.ComplaintID)
			}
		}
		if len(ids) == 0 {
			continue
		}
		cases = append(cases, QueryTestCase{
			Query:                th.phrase,
			ExpectedComplaintIDs: ids,
			Description:          fmt.Sprintf("query %q should retrieve a %s complaint", th.phrase, th.product),
		})
	}
	return cases
}

// Split deals the complaints round-robin into n parts.
func (c *Corpus) Split(n int) [][]Complaint {
	parts := make([][]Complaint, n)
	for i, row := range c.Complaints {
		parts[i%n] = append(parts[i%n], row)
	}
	return parts
}
