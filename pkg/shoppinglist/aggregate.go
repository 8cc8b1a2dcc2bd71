package shoppinglist

import (
	"github.com/Notemat/foodgram/domain"
	"github.com/Notemat/foodgram/entities"
)

// Aggregate sums amounts per ingredient name. Items keep the order in which
// each name was first seen; the unit is taken from that first line.
func Aggregate(lines []*entities.RecipeIngredient) []domain.ShoppingListItem {
	items := make([]domain.ShoppingListItem, 0, len(lines))
	index := make(map[string]int, len(lines))

	for _, line := range lines {
		if line.Ingredient == nil {
			continue
		}
		name := line.Ingredient.Name
		if i, ok := index[name]; ok {
			items[i].Amount += line.Amount
			continue
		}
		index[name] = len(items)
		items = append(items, domain.ShoppingListItem{
			Name:            name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}
	return items
}
