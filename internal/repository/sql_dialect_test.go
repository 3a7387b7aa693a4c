package repository

import "testing"

func TestSearchCondition(t *testing.T) {
	got := searchCondition("LIKE", []string{"slug", " title ", ""})
	want := `(slug LIKE @keyword ESCAPE '\' OR title LIKE @keyword ESCAPE '\')`
	if got != want {
		t.Fatalf("condition mismatch, want %s got %s", want, got)
	}
	if got := searchCondition("ILIKE", []string{"shop_name"}); got != `(shop_name ILIKE @keyword ESCAPE '\')` {
		t.Fatalf("unexpected postgres condition %s", got)
	}
	if got := searchCondition("LIKE", nil); got != "" {
		t.Fatalf("empty columns should produce no condition, got %q", got)
	}
}

func TestLikeOperatorDefaultsToLike(t *testing.T) {
	if got := likeOperator(nil); got != "LIKE" {
		t.Fatalf("nil db want LIKE got %s", got)
	}
}

func TestLikeEscaper(t *testing.T) {
	if got := likeEscaper.Replace(`50%_off\`); got != `50\%\_off\\` {
		t.Fatalf("unexpected escape: %s", got)
	}
}
