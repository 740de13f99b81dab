package skills

import "github.com/wolfman30/careai-platform/internal/compliance"

type inventoryForecastHandler struct {
	base
}

func newInventoryForecastHandler() inventoryForecastHandler {
	return inventoryForecastHandler{base{
		id:          InventoryForecast,
		disclaimer:  compliance.DisclaimerInventory,
		temperature: 0.2,
		maxTokens:   1500,
		required:    []string{"forecasts", "recommendations"},
		roles: map[compliance.Language]string{
			compliance.LanguageEnglish: "You are a pharmacy stock analyst. From current stock levels and recent sales you estimate when each product will run out and how much to reorder.",
			compliance.LanguageFrench:  "Vous êtes un analyste des stocks en pharmacie. À partir des niveaux de stock actuels et des ventes récentes, vous estimez quand chaque produit sera épuisé et la quantité à recommander.",
			compliance.LanguageArabic:  "أنت محلل مخزون صيدلية. انطلاقًا من مستويات المخزون الحالية والمبيعات الأخيرة، تقدّر متى سينفد كل منتج والكمية التي يجب إعادة طلبها.",
		},
		task: "Forecast stock depletion for every item below and recommend reorder quantities. Base numbers only on the data given.",
		schema: `{
  "forecasts": [
    {"name": "item name", "currentStock": 0, "estimatedDailyUsage": 0, "daysUntilStockout": 0, "reorderQuantity": 0, "priority": "low|medium|high"}
  ],
  "recommendations": ["short actionable recommendation"],
  "assumptions": ["assumption made"]
}`,
	}}
}

const maxForecastItems = 500

func (h inventoryForecastHandler) ValidateInput(input map[string]any) error {
	items, ok := nonEmptyArray(input, "items")
	if !ok {
		return invalidInput("items must be a non-empty array")
	}
	if len(items) > maxForecastItems {
		return invalidInput("at most %d items can be forecast at once", maxForecastItems)
	}
	for i, it := range items {
		row, ok := it.(map[string]any)
		if !ok || !nonEmptyString(row, "name") {
			return invalidInput("items[%d].name is required", i)
		}
	}
	return nil
}
