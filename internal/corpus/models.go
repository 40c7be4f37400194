package corpus

// Recipe is one reference recipe in the retrieval corpus.
type Recipe struct {
	ID          uint   `gorm:"primary_key" json:"id"`
	Name        string `gorm:"index" json:"name"`
	Ingredients string `gorm:"type:text" json:"ingredients"`
	Steps       string `gorm:"type:text" json:"steps"`
}

// SafetyRule is one food-safety rule in the retrieval corpus.
type SafetyRule struct {
	ID   uint   `gorm:"primary_key" json:"id"`
	Rule string `gorm:"type:text" json:"rule"`
}

// Constant is one culinary lookup fact: a conversion, a substitution, or
// a nutrition entry. Matched lexically, never embedded.
type Constant struct {
	ID    uint   `gorm:"primary_key" json:"id"`
	Key   string `gorm:"unique_index" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}
