package enums

import "fmt"

// CardCondition follows the common trading-card grading ladder.
type CardCondition string

const (
	CardConditionMint        CardCondition = "mint"
	CardConditionNearMint    CardCondition = "near_mint"
	CardConditionLightPlayed CardCondition = "lightly_played"
	CardConditionModPlayed   CardCondition = "moderately_played"
	CardConditionHeavyPlayed CardCondition = "heavily_played"
	CardConditionDamaged     CardCondition = "damaged"
	CardConditionGraded      CardCondition = "graded"
)

var validCardConditions = []CardCondition{
	CardConditionMint,
	CardConditionNearMint,
	CardConditionLightPlayed,
	CardConditionModPlayed,
	CardConditionHeavyPlayed,
	CardConditionDamaged,
	CardConditionGraded,
}

// String implements fmt.Stringer.
func (c CardCondition) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CardCondition.
func (c CardCondition) IsValid() bool {
	for _, candidate := range validCardConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCardCondition converts raw input into a CardCondition.
func ParseCardCondition(value string) (CardCondition, error) {
	for _, candidate := range validCardConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid card condition %q", value)
}

// GameCategory enumerates the card games CardBinder supports.
type GameCategory string

const (
	GameCategoryPokemon   GameCategory = "pokemon"
	GameCategoryMagic     GameCategory = "mtg"
	GameCategoryYugioh    GameCategory = "yugioh"
	GameCategoryOnePiece  GameCategory = "one_piece"
	GameCategoryLorcana   GameCategory = "lorcana"
	GameCategorySports    GameCategory = "sports"
	GameCategoryDBZ       GameCategory = "dbz"
	GameCategoryFleshBlood GameCategory = "flesh_and_blood"
	GameCategoryDigimon   GameCategory = "digimon"
	GameCategoryOther     GameCategory = "other"
)

var validGameCategories = []GameCategory{
	GameCategoryPokemon,
	GameCategoryMagic,
	GameCategoryYugioh,
	GameCategoryOnePiece,
	GameCategoryLorcana,
	GameCategorySports,
	GameCategoryDBZ,
	GameCategoryFleshBlood,
	GameCategoryDigimon,
	GameCategoryOther,
}

// String implements fmt.Stringer.
func (g GameCategory) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GameCategory.
func (g GameCategory) IsValid() bool {
	for _, candidate := range validGameCategories {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGameCategory converts raw input into a GameCategory.
func ParseGameCategory(value string) (GameCategory, error) {
	for _, candidate := range validGameCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid game category %q", value)
}
