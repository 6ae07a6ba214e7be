package categorize

import (
	"context"
	"strings"

	"github.com/dukerupert/shoplist/internal/model"
)

// Keywords categorises from a built-in German keyword table. It needs no
// network and is used when no categorisation API is configured.
type Keywords struct{}

// Categorize matches case-insensitively: exact match first, then substring
// match. No match is ErrUnavailable.
func (Keywords) Categorize(_ context.Context, name string) (model.Category, error) {
	if cat, ok := Lookup(name); ok {
		return cat, nil
	}
	return "", ErrUnavailable
}

// Lookup returns the keyword category for name, if any.
func Lookup(name string) (model.Category, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", false
	}

	if cat, ok := exactMatch[name]; ok {
		return cat, true
	}

	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category, true
		}
	}
	return "", false
}

var exactMatch = map[string]model.Category{
	"eis":     model.CategoryFrozen,
	"eier":    model.CategoryDairy,
	"ei":      model.CategoryDairy,
	"tee":     model.CategoryBeverages,
	"mehl":    model.CategoryOther,
	"reis":    model.CategoryOther,
	"nudeln":  model.CategoryOther,
	"zucker":  model.CategoryOther,
	"salz":    model.CategoryOther,
	"öl":      model.CategoryOther,
	"essig":   model.CategoryOther,
	"senf":    model.CategoryOther,
	"honig":   model.CategoryOther,
	"müsli":   model.CategoryOther,
	"schwamm": model.CategoryHousehold,
	"windeln": model.CategoryHygiene,
}

type substringEntry struct {
	keyword  string
	category model.Category
}

// Order matters: longer and more specific keywords come first, and groups
// whose keywords hide inside others' words ("schwein" holds "wein") come
// before the groups they would shadow.
var substringMatches = []substringEntry{
	// Konserven, ahead of produce so canned tomatoes are not fresh ones
	{"dosentomaten", model.CategoryCanned},
	{"tomatenmark", model.CategoryCanned},
	{"passierte tomaten", model.CategoryCanned},
	{"konserve", model.CategoryCanned},
	{"dose", model.CategoryCanned},
	{"bohnen", model.CategoryCanned},
	{"mais", model.CategoryCanned},

	// Tiefkühl
	{"tiefkühl", model.CategoryFrozen},
	{"speiseeis", model.CategoryFrozen},
	{"frozen", model.CategoryFrozen},
	{"pizza", model.CategoryFrozen},
	{"pommes", model.CategoryFrozen},

	// Obst & Gemüse
	{"süßkartoffel", model.CategoryProduce},
	{"kartoffel", model.CategoryProduce},
	{"apfel", model.CategoryProduce},
	{"äpfel", model.CategoryProduce},
	{"banane", model.CategoryProduce},
	{"orange", model.CategoryProduce},
	{"zitrone", model.CategoryProduce},
	{"tomate", model.CategoryProduce},
	{"gurke", model.CategoryProduce},
	{"salat", model.CategoryProduce},
	{"karotte", model.CategoryProduce},
	{"möhre", model.CategoryProduce},
	{"zwiebel", model.CategoryProduce},
	{"knoblauch", model.CategoryProduce},
	{"paprika", model.CategoryProduce},
	{"zucchini", model.CategoryProduce},
	{"brokkoli", model.CategoryProduce},
	{"beeren", model.CategoryProduce},
	{"trauben", model.CategoryProduce},
	{"obst", model.CategoryProduce},
	{"gemüse", model.CategoryProduce},

	// Milchprodukte
	{"frischkäse", model.CategoryDairy},
	{"milch", model.CategoryDairy},
	{"käse", model.CategoryDairy},
	{"joghurt", model.CategoryDairy},
	{"butter", model.CategoryDairy},
	{"quark", model.CategoryDairy},
	{"sahne", model.CategoryDairy},
	{"schmand", model.CategoryDairy},

	// Fleisch & Fisch
	{"hackfleisch", model.CategoryMeat},
	{"fleisch", model.CategoryMeat},
	{"wurst", model.CategoryMeat},
	{"schinken", model.CategoryMeat},
	{"hähnchen", model.CategoryMeat},
	{"huhn", model.CategoryMeat},
	{"rind", model.CategoryMeat},
	{"schwein", model.CategoryMeat},
	{"thunfisch", model.CategoryMeat},
	{"lachs", model.CategoryMeat},
	{"fisch", model.CategoryMeat},

	// Brot & Backwaren
	{"brötchen", model.CategoryBakery},
	{"brot", model.CategoryBakery},
	{"toast", model.CategoryBakery},
	{"croissant", model.CategoryBakery},
	{"brezel", model.CategoryBakery},
	{"kuchen", model.CategoryBakery},

	// Getränke
	{"mineralwasser", model.CategoryBeverages},
	{"wasser", model.CategoryBeverages},
	{"saft", model.CategoryBeverages},
	{"cola", model.CategoryBeverages},
	{"limo", model.CategoryBeverages},
	{"bier", model.CategoryBeverages},
	{"wein", model.CategoryBeverages},
	{"kaffee", model.CategoryBeverages},
	{"tee", model.CategoryBeverages},

	// Süßwaren & Snacks
	{"schokolade", model.CategorySnacks},
	{"gummibär", model.CategorySnacks},
	{"chips", model.CategorySnacks},
	{"keks", model.CategorySnacks},
	{"nüsse", model.CategorySnacks},
	{"süß", model.CategorySnacks},

	// Hygiene & Kosmetik
	{"toilettenpapier", model.CategoryHousehold},
	{"zahnpasta", model.CategoryHygiene},
	{"zahnbürste", model.CategoryHygiene},
	{"shampoo", model.CategoryHygiene},
	{"duschgel", model.CategoryHygiene},
	{"seife", model.CategoryHygiene},
	{"deo", model.CategoryHygiene},
	{"creme", model.CategoryHygiene},
	{"kosmetik", model.CategoryHygiene},

	// Haushalt & Reinigung
	{"putzmittel", model.CategoryHousehold},
	{"waschmittel", model.CategoryHousehold},
	{"spülmittel", model.CategoryHousehold},
	{"küchentuch", model.CategoryHousehold},
	{"küchenrolle", model.CategoryHousehold},
	{"müllbeutel", model.CategoryHousehold},
	{"reiniger", model.CategoryHousehold},
}
