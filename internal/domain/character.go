package domain

// Character is a dictionary entry for a single Hanzi.
type Character struct {
	Character         string `json:"character" db:"character"`
	Traditional       string `json:"traditional,omitempty" db:"traditional"`
	Pinyin            string `json:"pinyin,omitempty" db:"pinyin"`
	Meaning           string `json:"meaning,omitempty" db:"meaning"`
	Difficulty        string `json:"difficulty,omitempty" db:"difficulty"`
	TypeOfWord        string `json:"typeOfWord,omitempty" db:"type_of_word"`
	Frequency         string `json:"frequency,omitempty" db:"frequency"`
	RadicalsJSON      string `json:"radicals,omitempty" db:"radicals_json"`
	StrokeOrderVisual string `json:"strokeOrderVisual,omitempty" db:"stroke_order_visual_json"`
	StrokeOrderSVG    string `json:"strokeOrderSvg,omitempty" db:"stroke_order_svg_json"`
	StrokeCount       int    `json:"strokeCount,omitempty" db:"stroke_count"`
	HSKLevel          int    `json:"hskLevel,omitempty" db:"hsk_level"`
	IsFavorite        bool   `json:"isFavorite" db:"is_favorite"`
}

// RelatedWord is a multi-character word built from dictionary characters.
type RelatedWord struct {
	ID          int64  `json:"id" db:"id"`
	Simplified  string `json:"simplified" db:"simplified"`
	Traditional string `json:"traditional,omitempty" db:"traditional"`
	Pinyin      string `json:"pinyin,omitempty" db:"pinyin"`
	Meaning     string `json:"meaning,omitempty" db:"meaning"`
	TypeOfWord  string `json:"typeOfWord,omitempty" db:"type_of_word"`
}

// ExampleSentence is a usage example with its translation.
type ExampleSentence struct {
	ID          int64  `json:"id" db:"id"`
	Simplified  string `json:"simplified" db:"chinese_simplified"`
	Traditional string `json:"traditional,omitempty" db:"chinese_traditional"`
	Pinyin      string `json:"pinyin,omitempty" db:"pinyin"`
	Translation string `json:"translation" db:"translation"`
}

// Dataset is the unit of a bulk import.
type Dataset struct {
	Characters []Character
	Words      []RelatedWord
	Sentences  []ExampleSentence
}

// Progress summarizes the review state of the whole deck.
type Progress struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Due      int `json:"due"`
	Learning int `json:"learning"`
	Mature   int `json:"mature"`
}
