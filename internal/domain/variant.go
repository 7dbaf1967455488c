package domain

import (
	"fmt"
	"strings"
)

// Variant is the repository category an archive belongs to.
type Variant string

const (
	VariantStandard      Variant = "standard"
	VariantAntichess     Variant = "antichess"
	VariantAtomic        Variant = "atomic"
	VariantChess960      Variant = "chess960"
	VariantHorde         Variant = "horde"
	VariantKingOfTheHill Variant = "kingOfTheHill"
	VariantThreeCheck    Variant = "threeCheck"
	VariantRacingKings   Variant = "racingKings"
	VariantCrazyhouse    Variant = "crazyhouse"
)

var knownVariants = []Variant{
	VariantStandard,
	VariantAntichess,
	VariantAtomic,
	VariantChess960,
	VariantHorde,
	VariantKingOfTheHill,
	VariantThreeCheck,
	VariantRacingKings,
	VariantCrazyhouse,
}

// Variants returns every published variant in repository order.
func Variants() []Variant {
	out := make([]Variant, len(knownVariants))
	copy(out, knownVariants)
	return out
}

// ParseVariant resolves a variant name case-insensitively. The short
// aliases koth, zh and racing are accepted as well.
func ParseVariant(name string) (Variant, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "koth":
		return VariantKingOfTheHill, nil
	case "zh":
		return VariantCrazyhouse, nil
	case "racing":
		return VariantRacingKings, nil
	}
	for _, v := range knownVariants {
		if strings.ToLower(string(v)) == key {
			return v, nil
		}
	}
	return "", fmt.Errorf("variant %q is not published by the archive repository", name)
}
