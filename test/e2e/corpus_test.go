package e2e

import (
	"strings"
	"testing"
)

func TestBuildCorpus_rows(t *testing.T) {
	c := BuildCorpus(90)
	if c.TotalRows != 90 || len(c.Complaints) != 90 {
		t.Errorf("expected 90 complaints, got %d", len(c.Complaints))
	}
	seen := make(map[string]bool)
	for _, row := range c.Complaints {
		if seen[row.ComplaintID] {
			t.Errorf("duplicate complaint id %s", row.ComplaintID)
		}
		seen[row.ComplaintID] = true
	}
}

func TestBuildCorpus_QueryTestCasesExist(t *testing.T) {
	c := BuildCorpus(len(themes))
	if c.TotalQueries != len(themes) {
		t.Fatalf("queries = %d, want %d", c.TotalQueries, len(themes))
	}
	byID := make(map[string]Complaint)
	for _, row := range c.Complaints {
		byID[row.ComplaintID] = row
	}
	for _, tc := range c.TestCases {
		if len(tc.ExpectedComplaintIDs) != 1 {
			t.Errorf("%s: expected ids %v", tc.Query, tc.ExpectedComplaintIDs)
		}
		for _, id := range tc.ExpectedComplaintIDs {
			if !strings.Contains(byID[id].Text, tc.Query) {
				t.Errorf("complaint %s does not contain %q", id, tc.Query)
			}
		}
	}
}

func TestCorpus_Split(t *testing.T) {
	c := BuildCorpus(10)
	parts := c.Split(4)
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	if total != 10 || len(parts[0]) != 3 || len(parts[3]) != 2 {
		t.Errorf("split sizes: %d %d %d %d", len(parts[0]), len(parts[1]), len(parts[2]), len(parts[3]))
	}
}
