package ingredient

// RiskLevel describes how likely a flagged fragment is to be animal-derived
// in practice. Empty means the table has no opinion.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Record is what the knowledge table knows about one ingredient fragment.
type Record struct {
	IsVegan bool      `json:"is_vegan"`
	Source  string    `json:"source"`
	Risk    RiskLevel `json:"risk_level,omitempty"`
}

// Entry pairs a lowercase fragment with its record.
type Entry struct {
	Key    string `json:"key"`
	Record Record `json:"record"`
}

// Table is an ordered knowledge table. Order is the match priority:
// the matcher stops at the first key contained in an ingredient.
type Table struct {
	entries []Entry
}

// NewTable builds a table from entries in priority order. Later entries
// with a key that already exists are ignored so each key maps to one record.
func NewTable(entries []Entry) *Table {
	seen := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		key := normalize(e.Key)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Entry{Key: key, Record: e.Record})
	}
	return &Table{entries: out}
}

// Entries returns a copy of the table in priority order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Table) Len() int {
	return len(t.entries)
}

// Get returns the record stored under an exact key.
func (t *Table) Get(key string) (Record, bool) {
	key = normalize(key)
	for _, e := range t.entries {
		if e.Key == key {
			return e.Record, true
		}
	}
	return Record{}, false
}

func animal(source string, risk RiskLevel) Record {
	return Record{IsVegan: false, Source: source, Risk: risk}
}

func plant(source string) Record {
	return Record{IsVegan: true, Source: source, Risk: RiskLow}
}

// Default returns the built-in knowledge table. It is rebuilt on every call.
//
// Plant ingredients whose names contain an animal fragment ("cocoa butter",
// "coconut milk", "eggplant") must stay above that fragment.
func Default() *Table {
	return NewTable([]Entry{
		// plant look-alikes first
		{"cocoa butter", plant("Cocoa bean fat")},
		{"shea butter", plant("Shea nut fat")},
		{"peanut butter", plant("Peanuts")},
		{"nut butter", plant("Nuts")},
		{"coconut milk", plant("Coconut")},
		{"coconut cream", plant("Coconut")},
		{"soy milk", plant("Soybeans")},
		{"oat milk", plant("Oats")},
		{"almond milk", plant("Almonds")},
		{"rice milk", plant("Rice")},
		{"eggplant", plant("Vegetable")},
		{"cream of tartar", plant("Grape fermentation")},
		{"milk thistle", plant("Plant")},
		{"butternut", plant("Squash")},
		{"veggie", plant("Vegetables")},
		{"honeydew", plant("Melon")},
		{"collard", plant("Leafy greens")},

		// insects
		{"carmine", animal("Crushed cochineal insects", RiskHigh)},
		{"e120", animal("Carmine (insects)", RiskHigh)},
		{"cochineal", animal("Insects", RiskHigh)},
		{"shellac", animal("Lac insect resin", RiskHigh)},
		{"e904", animal("Shellac (insects)", RiskHigh)},
		{"beeswax", animal("Bees", RiskHigh)},
		{"e901", animal("Beeswax (bees)", RiskHigh)},
		{"honey", animal("Bees", RiskHigh)},
		{"propolis", animal("Bees", RiskHigh)},
		{"royal jelly", animal("Bees", RiskHigh)},

		// slaughter by-products
		{"gelatin", animal("Animal bones and skin", RiskHigh)},
		{"e441", animal("Gelatin (animal bones and skin)", RiskHigh)},
		{"collagen", animal("Animal connective tissue", RiskHigh)},
		{"isinglass", animal("Fish bladder", RiskHigh)},
		{"lard", animal("Pig fat", RiskHigh)},
		{"tallow", animal("Beef or mutton fat", RiskHigh)},
		{"suet", animal("Beef fat", RiskHigh)},
		{"rennet", animal("Calf stomach", RiskHigh)},
		{"pepsin", animal("Pig stomach", RiskHigh)},
		{"bone char", animal("Animal bones", RiskHigh)},
		{"e542", animal("Bone phosphate", RiskHigh)},
		{"anchovy", animal("Fish", RiskHigh)},
		{"fish", animal("Fish", RiskHigh)},
		{"chicken", animal("Poultry", RiskHigh)},
		{"beef", animal("Cattle", RiskHigh)},
		{"pork", animal("Pig", RiskHigh)},

		// dairy
		{"whey", animal("Milk", RiskHigh)},
		{"casein", animal("Milk", RiskHigh)},
		{"lactose", animal("Milk", RiskMedium)},
		{"ghee", animal("Milk", RiskHigh)},
		{"butter", animal("Milk", RiskHigh)},
		{"milk", animal("Milk", RiskHigh)},
		{"cream", animal("Milk", RiskHigh)},
		{"cheese", animal("Milk", RiskHigh)},
		{"yogurt", animal("Milk", RiskHigh)},
		{"paneer", animal("Milk", RiskHigh)},
		{"khoa", animal("Milk", RiskHigh)},

		// eggs
		{"albumin", animal("Eggs", RiskHigh)},
		{"egg", animal("Eggs", RiskHigh)},
		{"lysozyme", animal("Eggs", RiskMedium)},
		{"e1105", animal("Lysozyme (eggs)", RiskMedium)},

		// other animal sources
		{"lanolin", animal("Sheep wool", RiskHigh)},
		{"vitamin d3", animal("Lanolin or fish oil", RiskMedium)},
		{"cholecalciferol", animal("Lanolin or fish oil", RiskMedium)},
		{"omega-3", animal("Often fish oil", RiskMedium)},
		{"l-cysteine", animal("Feathers or hair", RiskMedium)},
		{"e920", animal("L-cysteine (feathers or hair)", RiskMedium)},
		{"mono- and diglycerides", animal("May be animal fat", RiskMedium)},
		{"mono and diglycerides", animal("May be animal fat", RiskMedium)},
		{"e471", animal("Mono- and diglycerides (may be animal fat)", RiskMedium)},
		{"natural flavour", animal("May be animal-derived", RiskLow)},
		{"natural flavor", animal("May be animal-derived", RiskLow)},

		// plant thickeners, emulsifiers and colours
		{"agar", plant("Seaweed")},
		{"e406", plant("Agar (seaweed)")},
		{"carrageenan", plant("Seaweed")},
		{"e407", plant("Carrageenan (seaweed)")},
		{"alginate", plant("Seaweed")},
		{"pectin", plant("Fruit")},
		{"e440", plant("Pectin (fruit)")},
		{"guar gum", plant("Guar beans")},
		{"e412", plant("Guar gum (guar beans)")},
		{"locust bean gum", plant("Carob seeds")},
		{"xanthan gum", plant("Bacterial fermentation")},
		{"e415", plant("Xanthan gum (fermentation)")},
		{"soy lecithin", plant("Soybeans")},
		{"sunflower lecithin", plant("Sunflower")},
		{"lactic acid", plant("Usually fermented sugar")},
		{"citric acid", plant("Fermentation")},
		{"beetroot", plant("Vegetable")},
		{"turmeric", plant("Spice")},
		{"paprika extract", plant("Pepper")},
	})
}
