package wanted

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
)

func legacyRow(path, key string) models.LegacyWantedPost {
	return models.LegacyWantedPost{
		ID:            uuid.New(),
		SourcePath:    path,
		DocumentKey:   key,
		UserID:        uuid.New(),
		Game:          "pokemon",
		CardName:      "Charizard",
		SourceCreated: time.Now().UTC(),
	}
}

func TestPickCanonicalPrefersPrimaryPath(t *testing.T) {
	secondary := legacyRow("wantedPosts", "doc-1")
	primary := legacyRow("wanted-posts", "doc-1")
	other := legacyRow("wanted-posts", "doc-2")

	winners := pickCanonical([]models.LegacyWantedPost{secondary, primary, other})

	if len(winners) != 2 {
		t.Fatalf("expected 2 winners, got %d", len(winners))
	}
	if winners["doc-1"] != primary.ID {
		t.Fatalf("expected primary path row to win for doc-1")
	}
	if winners["doc-2"] != other.ID {
		t.Fatalf("expected sole row to win for doc-2")
	}
}

func TestPickCanonicalUnknownPathLoses(t *testing.T) {
	unknown := legacyRow("some/old/export", "doc-1")
	known := legacyRow("users/wanted-posts", "doc-1")

	winners := pickCanonical([]models.LegacyWantedPost{unknown, known})

	if winners["doc-1"] != known.ID {
		t.Fatalf("expected known path row to win over unknown path")
	}
}

func TestLegacyToPostParsesEnums(t *testing.T) {
	condition := "near_mint"
	row := legacyRow("wanted-posts", "doc-9")
	row.MinCondition = &condition

	post, err := legacyToPost(&row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Game != enums.GameCategoryPokemon {
		t.Fatalf("expected pokemon, got %s", post.Game)
	}
	if post.MinCondition == nil || *post.MinCondition != enums.CardConditionNearMint {
		t.Fatalf("expected near_mint condition, got %v", post.MinCondition)
	}
	if post.Status != enums.WantedPostActive {
		t.Fatalf("expected active status, got %s", post.Status)
	}
	if post.LegacyKey == nil || *post.LegacyKey != "doc-9" {
		t.Fatalf("expected legacy key doc-9, got %v", post.LegacyKey)
	}
}

func TestLegacyToPostFallsBackToOtherGame(t *testing.T) {
	row := legacyRow("wanted-posts", "doc-3")
	row.Game = "beyblade"

	post, err := legacyToPost(&row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Game != enums.GameCategoryOther {
		t.Fatalf("expected other, got %s", post.Game)
	}
}
