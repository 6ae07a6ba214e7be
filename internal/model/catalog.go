package model

type Category string

const (
	CategoryProduce   Category = "Obst & Gemüse"
	CategoryDairy     Category = "Milchprodukte"
	CategoryMeat      Category = "Fleisch & Fisch"
	CategoryBakery    Category = "Brot & Backwaren"
	CategoryFrozen    Category = "Tiefkühlprodukte"
	CategoryCanned    Category = "Konserven"
	CategoryBeverages Category = "Getränke"
	CategorySnacks    Category = "Süßwaren & Snacks"
	CategoryHygiene   Category = "Hygiene & Kosmetik"
	CategoryHousehold Category = "Haushalt & Reinigung"
	CategoryOther     Category = "Sonstiges"
)

type CategoryInfo struct {
	Name  Category
	Icon  string
	Order int
}

// Categories is the fixed display order.
var Categories = []CategoryInfo{
	{CategoryProduce, "🥕", 1},
	{CategoryDairy, "🥛", 2},
	{CategoryMeat, "🍖", 3},
	{CategoryBakery, "🍞", 4},
	{CategoryFrozen, "❄️", 5},
	{CategoryCanned, "🥫", 6},
	{CategoryBeverages, "🥤", 7},
	{CategorySnacks, "🍫", 8},
	{CategoryHygiene, "🧴", 9},
	{CategoryHousehold, "🧽", 10},
	{CategoryOther, "📦", 11},
}

// UnknownCategoryOrder sorts unknown categories after every known one.
const UnknownCategoryOrder = 999

func categoryInfo(c Category) (CategoryInfo, bool) {
	for _, info := range Categories {
		if info.Name == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}

func (c Category) Valid() bool {
	_, ok := categoryInfo(c)
	return ok
}

func (c Category) Order() int {
	if info, ok := categoryInfo(c); ok {
		return info.Order
	}
	return UnknownCategoryOrder
}

func (c Category) Icon() string {
	if info, ok := categoryInfo(c); ok {
		return info.Icon
	}
	return "📦"
}

type Store string

const (
	StoreEdeka    Store = "Edeka"
	StoreLidl     Store = "Lidl"
	StoreAldi     Store = "Aldi"
	StorePenny    Store = "Penny"
	StoreRossmann Store = "Rossmann"
	StoreDM       Store = "DM"
	StoreOther    Store = "Andere"
)

var Stores = []Store{StoreEdeka, StoreLidl, StoreAldi, StorePenny, StoreRossmann, StoreDM, StoreOther}

func (s Store) Valid() bool {
	for _, known := range Stores {
		if s == known {
			return true
		}
	}
	return false
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Users is the small fixed set items can be assigned to.
var Users = []User{
	{ID: "jana-uuid", Name: "Jana"},
	{ID: "nico-uuid", Name: "Nico"},
}

func KnownUser(id string) bool {
	_, ok := UserByID(id)
	return ok
}

func UserByID(id string) (User, bool) {
	for _, u := range Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// Favorite is a name→category suggestion, keyed by name.
type Favorite struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}
