package pick

import (
	"maps"
	"slices"

	"github.com/roach88/pickaxe/internal/op"
)

// A level set maps names to minimum levels, e.g. the skills of a user
// {"go": 3, "sql": 2}. Stored level sets are records of numbers; the
// helpers below compare a stored set against a stored key or against a
// set known when the query is built.
type LevelSet = map[string]float64

// LevelSetHasValue holds when set has key at level value or above.
func LevelSetHasValue(set Record, key string, value any) Bool {
	return set.Some(func(v, k Pick) any {
		return And(AsValue(k).Eq(key), AsValue(v).Gte(value))
	})
}

// levelSetCovers holds when the constant set grants key at least the
// level value, both read from the query.
func levelSetCovers(set LevelSet, key, value Pick) Bool {
	if len(set) == 0 {
		return boolOf(op.Val(false))
	}
	conditions := make([]any, 0, len(set))
	for _, name := range slices.Sorted(maps.Keys(set)) {
		conditions = append(conditions, And(AsValue(key).Eq(name), AsValue(value).Lte(set[name])))
	}
	return Or(conditions...)
}

// LevelSetIsEmpty holds when the stored set has no entry.
func LevelSetIsEmpty(set Record) Bool {
	return set.Keys().Length().Eq(0)
}

// LevelSetIsSubsetOf holds when every entry of set1 is covered by set2.
func LevelSetIsSubsetOf(set1 Record, set2 LevelSet) Bool {
	return set1.Every(func(v, k Pick) any {
		return levelSetCovers(set2, k, v)
	})
}

// LevelSetIsSupersetOf holds when set1 covers every entry of set2.
func LevelSetIsSupersetOf(set1 Record, set2 LevelSet) Bool {
	if len(set2) == 0 {
		return boolOf(op.Val(true))
	}
	conditions := make([]any, 0, len(set2))
	for _, name := range slices.Sorted(maps.Keys(set2)) {
		conditions = append(conditions, LevelSetHasValue(set1, name, set2[name]))
	}
	return And(conditions...)
}

// LevelSetHasIntersectionWith holds when either set is empty or they share
// an entry at a compatible level.
func LevelSetHasIntersectionWith(set1 Record, set2 LevelSet) Bool {
	return Or(
		LevelSetIsEmpty(set1),
		len(set2) == 0,
		set1.Some(func(v, k Pick) any {
			return levelSetCovers(set2, k, v)
		}),
	)
}

// LevelSetIsEqualTo holds when set1 and set2 hold the same entries.
func LevelSetIsEqualTo(set1 Record, set2 LevelSet) Bool {
	return And(
		LevelSetIsSubsetOf(set1, set2),
		LevelSetIsSupersetOf(set1, set2),
	)
}
