package value

import (
	"github.com/honelang/hone/internal/herrors"
	"github.com/honelang/hone/internal/span"
)

// Strategy selects one of the three key-assignment merge rules (§4.2.4).
type Strategy int

const (
	Normal  Strategy = iota // `:`  — recursive merge, overlay wins on conflicts
	Append                  // `+:` — both sides must be arrays; base ++ overlay
	Replace                 // `!:` — overlay unconditionally
)

// Merge combines base b and overlay o under strategy, at loc (used only for
// error reporting) for field key. Normal recursion between nested objects
// always uses Normal regardless of the outer strategy — Append/Replace
// apply only at the single key where they were declared (§4.3).
func Merge(b, o Value, strategy Strategy, key string, loc span.Location) (Value, error) {
	switch strategy {
	case Append:
		return mergeAppend(b, o, key, loc)
	case Replace:
		return o, nil
	default:
		return mergeNormal(b, o, loc)
	}
}

func mergeAppend(b, o Value, key string, loc span.Location) (Value, error) {
	ob, ok := b.(Array)
	if !ok {
		if _, isNull := b.(Null); !isNull {
			return nil, herrors.NewAppendToNonArray(loc, key)
		}
		ob = nil
	}
	oo, ok := o.(Array)
	if !ok {
		return nil, herrors.NewAppendToNonArray(loc, key)
	}
	result := make(Array, 0, len(ob)+len(oo))
	result = append(result, ob...)
	result = append(result, oo...)
	return result, nil
}

// mergeNormal implements the Normal strategy of §4.2.4: object/object
// merges recursively (base key order preserved, then overlay-only keys
// appended); array/array is a full replace (no concat); any other
// combination is a scalar replace, except when both sides are objects vs.
// non-objects (or vice versa) — the original spec's "TypeConflict" only
// fires inside a `from`-overlay merge, where base and overlay are both
// expected to describe the same schema position; a plain Normal merge at
// the evaluator level simply lets the overlay's type win, matching the
// merge table's "overlay type replaces base" rule.
func mergeNormal(b, o Value, loc span.Location) (Value, error) {
	bo, bIsObj := b.(*Object)
	oo, oIsObj := o.(*Object)
	if bIsObj && oIsObj {
		return mergeObjects(bo, oo, loc)
	}
	return o, nil
}

func mergeObjects(b, o *Object, loc span.Location) (Value, error) {
	result := NewObject()
	for _, k := range b.Keys() {
		bv, _ := b.Get(k)
		if ov, ok := o.Get(k); ok {
			merged, err := mergeNormal(bv, ov, loc)
			if err != nil {
				return nil, err
			}
			result.Set(k, merged)
		} else {
			result.Set(k, bv)
		}
	}
	for _, k := range o.Keys() {
		if _, already := b.Get(k); already {
			continue
		}
		ov, _ := o.Get(k)
		result.Set(k, ov)
	}
	return result, nil
}

// MergeFrom implements §4.5.2: merge(base_value, own_value, Normal), used
// by the pipeline driver to apply a `from` base to a compiled file's own
// value. Unlike a plain body-level Normal merge, a `from`-overlay holds
// both sides to the same shape at every path: an object merging against a
// non-object (or vice versa) is a TypeConflict rather than a silent
// overlay-wins replace (§4.2.4).
func MergeFrom(base, own Value, loc span.Location) (Value, error) {
	return mergeFromStrict(base, own, loc)
}

func mergeFromStrict(b, o Value, loc span.Location) (Value, error) {
	bo, bIsObj := b.(*Object)
	oo, oIsObj := o.(*Object)
	switch {
	case bIsObj && oIsObj:
		result := NewObject()
		for _, k := range bo.Keys() {
			bv, _ := bo.Get(k)
			if ov, ok := oo.Get(k); ok {
				merged, err := mergeFromStrict(bv, ov, loc)
				if err != nil {
					return nil, err
				}
				result.Set(k, merged)
			} else {
				result.Set(k, bv)
			}
		}
		for _, k := range oo.Keys() {
			if _, already := bo.Get(k); already {
				continue
			}
			ov, _ := oo.Get(k)
			result.Set(k, ov)
		}
		return result, nil
	case bIsObj != oIsObj:
		if _, baseNull := b.(Null); baseNull {
			return o, nil
		}
		if _, overNull := o.(Null); overNull {
			return nil, herrors.NewTypeConflict(loc, "")
		}
		return nil, herrors.NewTypeConflict(loc, "")
	default:
		if ba, bIsArr := b.(Array); bIsArr {
			if _, oIsArr := o.(Array); oIsArr {
				return o, nil
			}
			if _, oNull := o.(Null); oNull {
				return ba, nil
			}
			return nil, herrors.NewTypeConflict(loc, "")
		}
		return o, nil
	}
}
