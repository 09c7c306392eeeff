package catalog

import "frictionstudy/internal/model"

// Default is a small placeholder catalog for local runs. Real deployments
// point CATALOG_PATH at the study's item file.
func Default() *Catalog {
	c, err := New([]model.Item{
		{ID: 1, Text: "Her colleague is a disabled person.", AISuggestion: model.SuggestionKeep},
		{ID: 2, Text: "The economy is so broken right now.", AISuggestion: model.SuggestionKeep},
		{ID: 3, Text: "People like you should not be allowed to vote.", AISuggestion: model.SuggestionBlock},
		{ID: 4, Text: "Are there any immigrants on your course?", AISuggestion: model.SuggestionKeep},
		{ID: 5, Text: "Never trust a single word said by a woman.", AISuggestion: model.SuggestionKeep},
		{ID: 6, Text: "Why are aspirins white? Because they work.", AISuggestion: model.SuggestionKeep},
	})
	if err != nil {
		panic(err)
	}
	return c
}
