package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"frictionstudy/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "items.yaml", strings.TrimSpace(`
items:
  - id: 10
    text: first
    aiSuggestion: Block
  - id: 3
    text: second
    aiSuggestion: Keep
`))
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", c.Len())
	}
	ids := c.IDs()
	if ids[0] != 10 || ids[1] != 3 {
		t.Fatalf("order not preserved: %v", ids)
	}
	if pos, ok := c.Position(3); !ok || pos != 1 {
		t.Fatalf("Position(3) = %d, %v", pos, ok)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "items.json", `{"items":[{"id":1,"text":"hello","aiSuggestion":"Keep"}]}`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	item, ok := c.At(0)
	if !ok || item.AISuggestion != model.SuggestionKeep {
		t.Fatalf("unexpected item %+v", item)
	}
	if _, ok := c.At(1); ok {
		t.Fatal("At past the end should report false")
	}
}

func TestNewRejectsBadCatalogs(t *testing.T) {
	tests := []struct {
		name  string
		items []model.Item
	}{
		{"duplicate id", []model.Item{{ID: 1, Text: "a", AISuggestion: "Keep"}, {ID: 1, Text: "b", AISuggestion: "Block"}}},
		{"empty text", []model.Item{{ID: 1, Text: " ", AISuggestion: "Keep"}}},
		{"bad suggestion", []model.Item{{ID: 1, Text: "a", AISuggestion: "Maybe"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.items); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
	if _, err := New(nil); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "items.csv", "id,text\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for .csv")
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	c := Default()
	items := c.Items()
	items[0].Text = "changed"
	if first, _ := c.At(0); first.Text == "changed" {
		t.Fatal("catalog mutated through Items()")
	}
}
