package search

import (
	"fmt"

	"github.com/hyperjump/kujo/internal/models"
	"github.com/hyperjump/kujo/pkg/utils"
)

// ProcessQuery collapses whitespace in query and rejects it when nothing remains.
func ProcessQuery(query string) (string, error) {
	q := utils.CollapseWhitespace(query)
	if q == "" {
		return "", fmt.Errorf("%w: query cannot be empty", models.ErrInvalidQuery)
	}
	return q, nil
}
