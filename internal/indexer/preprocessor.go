package indexer

import "github.com/hyperjump/kujo/pkg/utils"

// Preprocess normalizes complaint text for indexing (trim, collapse whitespace).
func Preprocess(text string) string {
	return utils.CollapseWhitespace(text)
}
