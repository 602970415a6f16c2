package operations_test

import (
	"errors"
	"strings"
	"testing"

	ds "github.com/web-mev/mev-backend-sub002/pkg/datastructures"
	"github.com/web-mev/mev-backend-sub002/pkg/operations"
	"github.com/web-mev/mev-backend-sub002/pkg/utils/cmp"
	"github.com/web-mev/mev-backend-sub002/pkg/utils/try"
)

func intEntry(required any) map[string]any {
	return map[string]any{
		"required":  required,
		"converter": "api.converters.basic.IntegerConverter",
		"spec": map[string]any{
			"attribute_type": "PositiveInteger",
		},
	}
}

func TestIOEntry_New(t *testing.T) {
	t.Run("an entry is required, converter and spec", func(t *testing.T) {
		e := try.To(operations.NewIOEntry(intEntry(true))).OrFatal(t)

		if !e.Required {
			t.Error("the entry is not required, unexpectedly")
		}
		if e.Converter != "api.converters.basic.IntegerConverter" {
			t.Errorf("unexpected converter: %s", e.Converter)
		}
		if e.Spec.TypeName() != ds.TypePositiveInteger {
			t.Errorf("unexpected spec type: %s (expected: PositiveInteger)", e.Spec.TypeName())
		}
	})

	t.Run("required accepts the boolean wire encodings", func(t *testing.T) {
		e := try.To(operations.NewIOEntry(intEntry("false"))).OrFatal(t)
		if e.Required {
			t.Error("the entry is required, unexpectedly")
		}
	})

	t.Run("exactly the fixed keys are accepted", func(t *testing.T) {
		raw := intEntry(true)
		delete(raw, "converter")
		raw["handler"] = "x"

		_, err := operations.NewIOEntry(raw)
		structural := new(ds.StructuralError)
		if !errors.As(err, &structural) {
			t.Fatalf("unexpected error: %v (expected: StructuralError)", err)
		}
		if !cmp.SliceEq(structural.Missing, []string{"converter"}) {
			t.Errorf("unexpected missing keys: %v (expected: [converter])", structural.Missing)
		}
		if !cmp.SliceEq(structural.Extra, []string{"handler"}) {
			t.Errorf("unexpected extra keys: %v (expected: [handler])", structural.Extra)
		}
	})

	t.Run("a broken spec fails the entry, named", func(t *testing.T) {
		raw := intEntry(true)
		raw["spec"] = map[string]any{"attribute_type": "NoSuchType"}

		_, err := operations.NewIOEntry(raw)
		unknown := new(ds.UnknownTypeError)
		if !errors.As(err, &unknown) {
			t.Fatalf("unexpected error: %v (expected: UnknownTypeError)", err)
		}
		if !strings.Contains(err.Error(), `"spec"`) {
			t.Errorf("the failing key is not named: %v", err)
		}
	})

	t.Run("a non-mapping is refused", func(t *testing.T) {
		_, err := operations.NewIOEntry("whatever")
		structural := new(ds.StructuralError)
		if !errors.As(err, &structural) {
			t.Errorf("unexpected error: %v (expected: StructuralError)", err)
		}
	})
}

func TestIOEntry_CheckValue(t *testing.T) {
	t.Run("a required entry refuses null", func(t *testing.T) {
		e := try.To(operations.NewIOEntry(intEntry(true))).OrFatal(t)
		err := e.CheckValue(nil, false)
		null := new(ds.NullValueError)
		if !errors.As(err, &null) {
			t.Errorf("unexpected error: %v (expected: NullValueError)", err)
		}
	})

	t.Run("an optional entry accepts null", func(t *testing.T) {
		e := try.To(operations.NewIOEntry(intEntry(false))).OrFatal(t)
		if err := e.CheckValue(nil, false); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("a non-null candidate is validated by the spec either way", func(t *testing.T) {
		e := try.To(operations.NewIOEntry(intEntry(false))).OrFatal(t)
		err := e.CheckValue(-1, false)
		invalid := new(ds.InvalidValueError)
		if !errors.As(err, &invalid) {
			t.Errorf("unexpected error: %v (expected: InvalidValueError)", err)
		}
	})
}

func TestIOCollection(t *testing.T) {
	t.Run("every entry is parsed under its name", func(t *testing.T) {
		c := try.To(operations.NewIOCollection(map[string]any{
			"count":  intEntry(true),
			"offset": intEntry(false),
		})).OrFatal(t)

		if len(c) != 2 {
			t.Fatalf("unexpected size: %d (expected: 2)", len(c))
		}
		if !c["count"].Required || c["offset"].Required {
			t.Errorf("unexpected required flags: %v", c)
		}
	})

	t.Run("a broken entry fails the collection, with its name", func(t *testing.T) {
		_, err := operations.NewIOCollection(map[string]any{
			"count":  intEntry(true),
			"offset": "not an entry",
		})
		structural := new(ds.StructuralError)
		if !errors.As(err, &structural) {
			t.Fatalf("unexpected error: %v (expected: StructuralError)", err)
		}
		if !strings.Contains(err.Error(), `"offset"`) {
			t.Errorf("the failing entry is not named: %v", err)
		}
	})

	t.Run("a non-mapping is refused", func(t *testing.T) {
		_, err := operations.NewIOCollection([]any{intEntry(true)})
		structural := new(ds.StructuralError)
		if !errors.As(err, &structural) {
			t.Errorf("unexpected error: %v (expected: StructuralError)", err)
		}
	})

	t.Run("an empty collection is valid", func(t *testing.T) {
		c := try.To(operations.NewIOCollection(map[string]any{})).OrFatal(t)
		if len(c) != 0 {
			t.Errorf("unexpected size: %d (expected: 0)", len(c))
		}
	})

	t.Run("equality is name-by-name", func(t *testing.T) {
		a := try.To(operations.NewIOCollection(map[string]any{"count": intEntry(true)})).OrFatal(t)
		b := try.To(operations.NewIOCollection(map[string]any{"count": intEntry(true)})).OrFatal(t)
		c := try.To(operations.NewIOCollection(map[string]any{"count": intEntry(false)})).OrFatal(t)

		if !a.Equal(b) {
			t.Error("equal collections compare unequal, unexpectedly")
		}
		if a.Equal(c) {
			t.Error("collections with different entries compare equal, unexpectedly")
		}
	})
}
