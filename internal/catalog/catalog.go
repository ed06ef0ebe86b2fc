// Package catalog serves the static menu: pizzas, toppings and crusts.
package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"pizza-service/internal/apperr"
	"pizza-service/internal/domain"
)

// ImageAllowList is the fixed set of pizza images. Generated pizzas must pick
// one of these.
var ImageAllowList = []string{
	"https://images.unsplash.com/photo-1574071318508-1cdbab80d002?auto=format&fit=crop&w=800&q=80",
	"https://images.unsplash.com/photo-1513104890138-7c749659a591?auto=format&fit=crop&w=800&q=80",
	"https://images.unsplash.com/photo-1628840042765-356cda07504e?auto=format&fit=crop&w=800&q=80",
	"https://images.unsplash.com/photo-1506354453686-faa599790f12?auto=format&fit=crop&w=800&q=80",
	"https://images.unsplash.com/photo-1593560708920-63219413ca75?auto=format&fit=crop&w=800&q=80",
	"https://images.unsplash.com/photo-1565299624946-b28f40a0ae38?auto=format&fit=crop&w=800&q=80",
	"https://images.unsplash.com/photo-1571407970349-bc487d77399f?auto=format&fit=crop&w=800&q=80",
	"https://images.unsplash.com/photo-1565299585323-38d6b0865b47?auto=format&fit=crop&w=800&q=80",
}

var crusts = []string{domain.CrustThin, domain.CrustRegular, domain.CrustCheeseBurst}

var toppings = []domain.Topping{
	{ID: "1", Name: "Pepperoni", Price: decimal.NewFromInt(60), Color: "#D9534F", Type: domain.ToppingNonVeg},
	{ID: "2", Name: "Mushrooms", Price: decimal.NewFromInt(45), Color: "#8D6E63", Type: domain.ToppingVeg},
	{ID: "3", Name: "Onions", Price: decimal.NewFromInt(30), Color: "#F48FB1", Type: domain.ToppingVeg},
	{ID: "4", Name: "Olives", Price: decimal.NewFromInt(45), Color: "#3E2723", Type: domain.ToppingVeg},
	{ID: "5", Name: "Basil", Price: decimal.NewFromInt(30), Color: "#4CAF50", Type: domain.ToppingVeg},
	{ID: "6", Name: "Ex. Cheese", Price: decimal.NewFromInt(75), Color: "#FFF59D", Type: domain.ToppingVeg},
	{ID: "7", Name: "Chicken", Price: decimal.NewFromInt(80), Color: "#E0E0E0", Type: domain.ToppingNonVeg},
	{ID: "8", Name: "Peppers", Price: decimal.NewFromInt(40), Color: "#FF9800", Type: domain.ToppingVeg},
	{ID: "9", Name: "Bacon", Price: decimal.NewFromInt(70), Color: "#A1887F", Type: domain.ToppingNonVeg},
	{ID: "10", Name: "Spinach", Price: decimal.NewFromInt(30), Color: "#2E7D32", Type: domain.ToppingVeg},
}

var pizzas = []domain.Pizza{
	{
		ID:          "p1",
		Name:        "Margherita Bliss",
		Description: "Classic delight with 100% real mozzarella cheese.",
		Price:       decimal.NewFromInt(299),
		Image:       ImageAllowList[0],
		Category:    domain.CategoryVeg,
		Rating:      4.8,
		Ingredients: []string{"Mozzarella", "Basil", "Tomato Sauce"},
		Calories:    calories(250),
	},
	{
		ID:          "p2",
		Name:        "Farmhouse Feast",
		Description: "Delightful combination of onion, capsicum, tomato & grilled mushroom.",
		Price:       decimal.NewFromInt(399),
		Image:       ImageAllowList[1],
		Category:    domain.CategoryVeg,
		Rating:      4.6,
		Ingredients: []string{"Onion", "Capsicum", "Mushroom", "Corn"},
		Calories:    calories(280),
	},
	{
		ID:          "p3",
		Name:        "Pepperoni Passion",
		Description: "American classic! Spicy pepperoni, extra cheese.",
		Price:       decimal.NewFromInt(499),
		Image:       ImageAllowList[2],
		Category:    domain.CategoryNonVeg,
		Rating:      4.9,
		Ingredients: []string{"Pepperoni", "Mozzarella", "Spicy Sauce"},
		Calories:    calories(320),
	},
	{
		ID:          "p4",
		Name:        "Truffle Mushroom",
		Description: "Premium truffle oil with sautéed wild mushrooms.",
		Price:       decimal.NewFromInt(699),
		Image:       ImageAllowList[3],
		Category:    domain.CategoryPremium,
		Rating:      5.0,
		Ingredients: []string{"Truffle Oil", "Wild Mushrooms", "Parmesan"},
		Calories:    calories(300),
	},
	{
		ID:          "p5",
		Name:        "Veggie Paradise",
		Description: "Gold corn, black olives, capsicum & red paprika.",
		Price:       decimal.NewFromInt(379),
		Image:       ImageAllowList[4],
		Category:    domain.CategoryVeg,
		Rating:      4.5,
		Ingredients: []string{"Corn", "Olives", "Paprika"},
		Calories:    calories(260),
	},
	{
		ID:          "p6",
		Name:        "BBQ Chicken",
		Description: "Smokey BBQ sauce with grilled chicken and onions.",
		Price:       decimal.NewFromInt(549),
		Image:       ImageAllowList[5],
		Category:    domain.CategoryNonVeg,
		Rating:      4.7,
		Ingredients: []string{"Chicken", "BBQ Sauce", "Onion"},
		Calories:    calories(310),
	},
	{
		ID:          "p7",
		Name:        "Pesto Primavera",
		Description: "Fresh basil pesto with cherry tomatoes and arugula.",
		Price:       decimal.NewFromInt(599),
		Image:       ImageAllowList[6],
		Category:    domain.CategoryPremium,
		Rating:      4.9,
		Ingredients: []string{"Pesto", "Cherry Tomatoes", "Arugula"},
		Calories:    calories(290),
	},
	{
		ID:          "p8",
		Name:        "Spicy Hawaiian",
		Description: "Pineapple, jalapenos, and roast ham.",
		Price:       decimal.NewFromInt(449),
		Image:       ImageAllowList[7],
		Category:    domain.CategoryNonVeg,
		Rating:      4.2,
		Ingredients: []string{"Pineapple", "Ham", "Jalapeno"},
		Calories:    calories(275),
	},
}

func calories(n int) *int { return &n }

// ListPizzas returns the whole menu in display order.
func ListPizzas() []domain.Pizza {
	out := make([]domain.Pizza, 0, len(pizzas))
	for _, p := range pizzas {
		out = append(out, p.Clone())
	}
	return out
}

func ListToppings() []domain.Topping {
	return append([]domain.Topping(nil), toppings...)
}

func Crusts() []string {
	return append([]string(nil), crusts...)
}

func IsCrust(c string) bool {
	for _, known := range crusts {
		if known == c {
			return true
		}
	}
	return false
}

// FilterByCategory returns the pizzas of one category. "All" or an empty
// category returns the full menu; an unknown category returns nothing.
func FilterByCategory(category string) []domain.Pizza {
	if category == "" || category == "All" {
		return ListPizzas()
	}
	out := make([]domain.Pizza, 0)
	for _, p := range pizzas {
		if string(p.Category) == category {
			out = append(out, p.Clone())
		}
	}
	return out
}

func FindPizza(id string) (domain.Pizza, bool) {
	for _, p := range pizzas {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return domain.Pizza{}, false
}

func FindTopping(id string) (domain.Topping, bool) {
	for _, t := range toppings {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Topping{}, false
}

// ResolveToppings maps topping ids onto catalog toppings, keeping the first
// occurrence of a repeated id.
func ResolveToppings(ids []string) ([]domain.Topping, error) {
	out := make([]domain.Topping, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		t, ok := FindTopping(id)
		if !ok {
			return nil, fmt.Errorf("topping %q: %w", id, apperr.ErrToppingNotFound)
		}
		seen[id] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

func IsAllowedImage(url string) bool {
	for _, allowed := range ImageAllowList {
		if allowed == url {
			return true
		}
	}
	return false
}
