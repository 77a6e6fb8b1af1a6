package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchBaseTable(t *testing.T) {
	m := NewMatcher(Default(), UnknownReport)

	results := m.Match([]string{"Whey Powder", "Agar Agar", "Unknown Starch"})
	require.Len(t, results, 3)

	assert.Equal(t, "Whey Powder", results[0].Ingredient)
	assert.Equal(t, StatusNonVegan, results[0].Status)
	assert.False(t, results[0].IsVegan)
	assert.Equal(t, "Milk", results[0].Source)
	assert.Equal(t, "whey", results[0].Key)

	assert.Equal(t, "Agar Agar", results[1].Ingredient)
	assert.Equal(t, StatusVegan, results[1].Status)
	assert.True(t, results[1].IsVegan)
	assert.Equal(t, "Seaweed", results[1].Source)

	assert.Equal(t, "Unknown Starch", results[2].Ingredient)
	assert.Equal(t, StatusUnknown, results[2].Status)
	assert.Equal(t, UnknownSource, results[2].Source)
	assert.Empty(t, results[2].Key)
}

func TestMatchUnknownPolicy(t *testing.T) {
	items := []string{"Whey Powder", "Unknown Starch", "Modified Maize"}

	tests := []struct {
		name      string
		policy    UnknownPolicy
		wantItems []string
	}{
		{
			name:      "omit drops unmatched",
			policy:    UnknownOmit,
			wantItems: []string{"Whey Powder"},
		},
		{
			name:      "report keeps unmatched",
			policy:    UnknownReport,
			wantItems: []string{"Whey Powder", "Unknown Starch", "Modified Maize"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := NewMatcher(Default(), tt.policy).Match(items)
			got := make([]string, 0, len(results))
			for _, r := range results {
				got = append(got, r.Ingredient)
			}
			assert.Equal(t, tt.wantItems, got)
		})
	}
}

func TestMatchFirstKeyInTableOrderWins(t *testing.T) {
	table := NewTable([]Entry{
		{Key: "carmine", Record: Record{IsVegan: false, Source: "Insects"}},
		{Key: "e120", Record: Record{IsVegan: false, Source: "Colour code"}},
	})
	results := NewMatcher(table, UnknownOmit).Match([]string{"colour: carmine (e120)"})
	require.Len(t, results, 1)
	assert.Equal(t, "carmine", results[0].Key)
	assert.Equal(t, "Insects", results[0].Source)

	reversed := NewTable([]Entry{
		{Key: "e120", Record: Record{IsVegan: false, Source: "Colour code"}},
		{Key: "carmine", Record: Record{IsVegan: false, Source: "Insects"}},
	})
	results = NewMatcher(reversed, UnknownOmit).Match([]string{"colour: carmine (e120)"})
	require.Len(t, results, 1)
	assert.Equal(t, "e120", results[0].Key)
}

func TestMatchNormalizesInput(t *testing.T) {
	m := NewMatcher(Default(), UnknownOmit)

	results := m.Match([]string{"   GELATIN  ", "\tHoney\n"})
	require.Len(t, results, 2)
	assert.Equal(t, "   GELATIN  ", results[0].Ingredient, "original string is kept")
	assert.Equal(t, "gelatin", results[0].Key)
	assert.Equal(t, "honey", results[1].Key)
}

func TestMatchSkipsBlankItems(t *testing.T) {
	for _, policy := range []UnknownPolicy{UnknownOmit, UnknownReport} {
		results := NewMatcher(Default(), policy).Match([]string{"", "   ", "milk"})
		require.Len(t, results, 1, string(policy))
		assert.Equal(t, "milk", results[0].Key)
	}
}

func TestDefaultTablePlantLookAlikes(t *testing.T) {
	m := NewMatcher(Default(), UnknownOmit)

	tests := []struct {
		item      string
		wantVegan bool
		wantKey   string
	}{
		{"Cocoa Butter", true, "cocoa butter"},
		{"Butter", false, "butter"},
		{"Coconut Milk", true, "coconut milk"},
		{"Skimmed Milk Powder", false, "milk"},
		{"Roasted Eggplant", true, "eggplant"},
		{"Whole Egg", false, "egg"},
		{"Veggie stock", true, "veggie"},
		{"Carmine (E120)", false, "carmine"},
		{"Colour E120", false, "e120"},
		{"Emulsifier E471", false, "e471"},
	}

	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			results := m.Match([]string{tt.item})
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantKey, results[0].Key)
			assert.Equal(t, tt.wantVegan, results[0].IsVegan)
		})
	}
}

func TestDefaultTableIsRebuiltPerCall(t *testing.T) {
	a := Default()
	entries := a.Entries()
	entries[0].Record.Source = "tampered"

	fresh := Default()
	rec, ok := fresh.Get(entries[0].Key)
	require.True(t, ok)
	assert.NotEqual(t, "tampered", rec.Source)

	rec, ok = a.Get(entries[0].Key)
	require.True(t, ok)
	assert.NotEqual(t, "tampered", rec.Source, "Entries returns a copy")
}

func TestNewTableKeepsFirstDuplicate(t *testing.T) {
	table := NewTable([]Entry{
		{Key: "Milk", Record: Record{Source: "first"}},
		{Key: "milk ", Record: Record{Source: "second"}},
	})
	assert.Equal(t, 1, table.Len())
	rec, ok := table.Get("MILK")
	require.True(t, ok)
	assert.Equal(t, "first", rec.Source)
}

func TestParseUnknownPolicy(t *testing.T) {
	p, err := ParseUnknownPolicy(" Report ")
	require.NoError(t, err)
	assert.Equal(t, UnknownReport, p)

	p, err = ParseUnknownPolicy("omit")
	require.NoError(t, err)
	assert.Equal(t, UnknownOmit, p)

	_, err = ParseUnknownPolicy("guess")
	assert.Error(t, err)
}

func TestSplitIngredients(t *testing.T) {
	got := SplitIngredients("Ingredients: Sugar, Wheat Flour (Gluten); Whey Powder,\nColour (E120).")
	assert.Equal(t, []string{"Sugar", "Wheat Flour", "Gluten", "Whey Powder", "Colour", "E120"}, got)
}
