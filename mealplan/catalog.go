package mealplan

import "budgetbite/models"

// MealOption 菜品库条目
type MealOption struct {
	Name     string  `json:"name"`
	Cost     float64 `json:"cost"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Score    float64 `json:"score"`
	Source   string  `json:"source"`
}

// Slots 自动排餐的餐次顺序
var Slots = []string{models.MealBreakfast, models.MealLunch, models.MealSnack, models.MealDinner}

// catalog 饮食偏好 -> 餐次 -> 菜品
var catalog = map[string]map[string][]MealOption{
	models.FoodVegetarian: {
		models.MealBreakfast: {
			{"Poha + Chai", 30, 280, 8, 7.5, "Mess"},
			{"Idli Sambar", 35, 300, 10, 8.0, "Mess"},
			{"Upma + Coffee", 25, 250, 6, 7.0, "Mess"},
			{"Bread Butter + Milk", 20, 320, 9, 6.5, "Self"},
			{"Paratha + Curd", 40, 380, 11, 7.5, "Canteen"},
			{"Oats + Banana", 15, 230, 7, 8.5, "Self"},
		},
		models.MealLunch: {
			{"Dal Rice + Sabzi + Roti", 60, 550, 18, 8.0, "Mess"},
			{"Rajma Chawal", 50, 520, 20, 8.5, "Mess"},
			{"Chole Bhature", 55, 600, 16, 6.5, "Canteen"},
			{"Thali (Full)", 70, 650, 22, 8.0, "Mess"},
			{"Veg Biryani", 65, 480, 12, 7.0, "Canteen"},
		},
		models.MealDinner: {
			{"Roti + Paneer + Dal", 70, 480, 20, 8.5, "Mess"},
			{"Dal Khichdi", 40, 400, 14, 8.0, "Mess"},
			{"Roti + Mix Veg", 55, 420, 12, 7.5, "Mess"},
			{"Pav Bhaji", 50, 450, 10, 7.0, "Canteen"},
		},
		models.MealSnack: {
			{"Banana + Biscuits", 25, 180, 3, 6.0, "Self"},
			{"Samosa + Chai", 20, 250, 4, 5.0, "Canteen"},
			{"Fruit Chaat", 30, 120, 2, 8.5, "Self"},
			{"Peanut Chikki", 15, 200, 7, 7.0, "Self"},
			{"Sprout Salad", 20, 150, 9, 9.0, "Self"},
		},
	},
	models.FoodNonVegetarian: {
		models.MealBreakfast: {
			{"Egg Bhurji + Toast", 35, 350, 18, 8.0, "Mess"},
			{"Omelette + Bread", 30, 320, 16, 7.5, "Mess"},
			{"Boiled Eggs + Chai", 25, 250, 14, 8.5, "Self"},
		},
		models.MealLunch: {
			{"Chicken Curry + Rice", 80, 600, 30, 8.0, "Mess"},
			{"Egg Fried Rice", 60, 500, 18, 7.0, "Canteen"},
			{"Fish Curry + Rice", 90, 550, 28, 8.5, "Mess"},
		},
		models.MealDinner: {
			{"Chicken Biryani", 100, 650, 32, 7.5, "Canteen"},
			{"Egg Curry + Roti", 55, 420, 18, 8.0, "Mess"},
			{"Chicken + Dal + Roti", 85, 550, 28, 8.5, "Mess"},
		},
		models.MealSnack: {
			{"Egg Roll", 40, 300, 14, 6.5, "Canteen"},
			{"Chicken Sandwich", 50, 350, 18, 7.0, "Canteen"},
		},
	},
}

// Catalog 按饮食偏好取菜品库，未收录的偏好回落到素食
func Catalog(preference string) map[string][]MealOption {
	if c, ok := catalog[preference]; ok {
		return c
	}
	return catalog[models.FoodVegetarian]
}

// SourceAverage 某来源（Mess/Canteen）菜品的平均价格
func SourceAverage(preference, source string) float64 {
	var sum float64
	var n int
	for _, options := range Catalog(preference) {
		for _, o := range options {
			if o.Source == source {
				sum += o.Cost
				n++
			}
		}
	}
	return sum / float64(max(1, n))
}
