package roles

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestParse(t *testing.T) {
	cases := map[string]Role{
		"husband":    Husband,
		"  Husband ": Husband,
		"WIFE":       Wife,
		"زوجة":       Wife,
		"رب الأسرة":  HeadOfHousehold,
		"ولي أمر":    Guardian,
		"بنت":        Daughter,
	}
	for raw, want := range cases {
		got, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := Parse("cousin")
	assert.True(t, errors.Is(err, ErrUnknownRole))
	_, err = Parse("   ")
	assert.True(t, errors.Is(err, ErrUnknownRole))
}

func TestCategory(t *testing.T) {
	assert.Equal(t, CategoryHeadEligible, Husband.Category())
	assert.Equal(t, CategoryHeadEligible, SecondWife.Category())
	assert.Equal(t, CategoryHeadEligible, Other.Category())
	assert.Equal(t, CategorySpouse, Wife.Category())
	assert.Equal(t, CategoryChild, Son.Category())
	assert.Equal(t, CategoryChild, CategoryOf("ابنة"))
	assert.Equal(t, CategoryOther, CategoryOf("cousin"))
}

func TestHeadEligibleSet(t *testing.T) {
	for _, raw := range []string{
		"husband", "widower", "widow", "divorced", "abandoned", "second_wife",
		"guardian", "other", "father", "head", "head_of_household", " Father ",
		"زوج", "أرملة", "رب",
	} {
		assert.True(t, IsHeadEligible(raw), raw)
	}
	for _, raw := range []string{"wife", "son", "daughter", "", "cousin", "زوجة"} {
		assert.False(t, IsHeadEligible(raw), raw)
	}
}

func TestFemaleHeadSynonymsAreFeminine(t *testing.T) {
	for _, raw := range []string{"مطلقة", "مهجورة", "أرملة", "زوجة ثانية"} {
		assert.True(t, IsFemaleHeadRole(raw), raw)
	}
	// masculine spellings are not folded into female-head roles
	for _, raw := range []string{"مطلق", "مهجور", "أرمل"} {
		assert.False(t, IsFemaleHeadRole(raw), raw)
	}
	assert.False(t, Valid("مطلق"))
	assert.False(t, Valid("مهجور"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "زوجة", Label("wife", ""))
	assert.Equal(t, "Wife", LabelIn(language.English, "wife", ""))
	assert.Equal(t, "Wife", LabelIn(language.BritishEnglish, "wife", ""))
	assert.Equal(t, "جدة", Label("other", "جدة"))
	assert.Equal(t, "أخرى", Label("other", "  "))
	assert.Equal(t, "cousin", Label("cousin", "ignored"))
	// description is only honoured for "other"
	assert.Equal(t, "ابن", Label("son", "eldest"))
}

func TestLoadRejectsIncompleteTables(t *testing.T) {
	_, err := load([]byte("labels:\n  en:\n    husband: Husband\n  ar:\n    husband: زوج\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing a label")

	_, err = load([]byte("labels:\n  ar:\n    uncle: عم\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")

	_, err = load(append(append([]byte{}, vocabularyYAML...), []byte("  عم: uncle\n")...))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestEmbeddedVocabularyCoversEveryRole(t *testing.T) {
	for _, r := range All() {
		for _, tag := range supported {
			assert.NotEmpty(t, vocab.labels[tag][r], "%s in %s", r, tag)
		}
	}
}
