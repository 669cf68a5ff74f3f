package gamification

// BadgeDefinition 徽章定义，Condition 只是标签，不做自动判定
type BadgeDefinition struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Condition   string `json:"condition"`
}

// Badges 固定的徽章目录
var Badges = []BadgeDefinition{
	{"first_expense", "First Step", "Log your first expense", "🎯", "first_txn"},
	{"week_streak", "Week Warrior", "7-day under-budget streak", "🔥", "streak_7"},
	{"month_streak", "Monthly Master", "30-day under-budget streak", "👑", "streak_30"},
	{"meal_planner", "Meal Master", "Plan meals for a full week", "🍽️", "meal_plan"},
	{"budget_setter", "Budget Boss", "Set up your monthly budget", "💰", "budget_set"},
	{"saver_100", "Penny Pincher", "Save ₹100 in a day", "🪙", "daily_save_100"},
	{"saver_500", "Smart Saver", "Save ₹500 in a week", "💎", "weekly_save_500"},
	{"goal_complete", "Goal Getter", "Complete a savings goal", "🏆", "goal_done"},
	{"social_butterfly", "Social Butterfly", "Split your first bill", "🦋", "first_split"},
	{"food_tracker", "Food Tracker", "Log 50 food expenses", "📝", "food_50"},
}

// LookupBadge 按类型查找徽章定义
func LookupBadge(badgeType string) (BadgeDefinition, bool) {
	for _, b := range Badges {
		if b.Type == badgeType {
			return b, true
		}
	}
	return BadgeDefinition{}, false
}
