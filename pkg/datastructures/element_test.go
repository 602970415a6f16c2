package datastructures_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	ds "github.com/web-mev/mev-backend-sub002/pkg/datastructures"
	"github.com/web-mev/mev-backend-sub002/pkg/utils/cmp"
	"github.com/web-mev/mev-backend-sub002/pkg/utils/try"
)

func TestElement_New(t *testing.T) {
	t.Run("an element is its id plus validated attributes", func(t *testing.T) {
		el := try.To(ds.NewObservation(map[string]any{
			"id": "sampleA",
			"attributes": map[string]any{
				"stage":     map[string]any{"attribute_type": "String", "value": "IV"},
				"age_years": map[string]any{"attribute_type": "PositiveInteger", "value": 63},
			},
		})).OrFatal(t)

		if el.Id() != "sampleA" {
			t.Errorf("unexpected id: %s (expected: sampleA)", el.Id())
		}
		stage, ok := el.GetAttribute("stage")
		if !ok || stage.Value() != "IV" {
			t.Errorf("unexpected attribute stage: %v (expected: IV)", stage)
		}
		age, ok := el.GetAttribute("age_years")
		if !ok || age.Value() != int64(63) {
			t.Errorf("unexpected attribute age_years: %v (expected: 63)", age)
		}
	})

	t.Run("the id is normalized like any String", func(t *testing.T) {
		el := try.To(ds.NewObservation(map[string]any{"id": "my sample"})).OrFatal(t)
		if el.Id() != "my_sample" {
			t.Errorf("unexpected id: %s (expected: my_sample)", el.Id())
		}
	})

	t.Run("attributes may be omitted entirely", func(t *testing.T) {
		el := try.To(ds.NewFeature(map[string]any{"id": "geneA"})).OrFatal(t)
		if len(el.Attributes()) != 0 {
			t.Errorf("unexpected attributes: %v (expected: none)", el.Attributes())
		}
	})

	t.Run("a missing id is refused", func(t *testing.T) {
		_, err := ds.NewObservation(map[string]any{
			"attributes": map[string]any{},
		})
		structural := new(ds.StructuralError)
		if !errors.As(err, &structural) {
			t.Fatalf("unexpected error: %v (expected: StructuralError)", err)
		}
		if !cmp.SliceEq(structural.Missing, []string{"id"}) {
			t.Errorf("unexpected missing keys: %v (expected: [id])", structural.Missing)
		}
	})

	t.Run("an invalid id is refused", func(t *testing.T) {
		_, err := ds.NewObservation(map[string]any{"id": "1bad"})
		invalid := new(ds.InvalidValueError)
		if !errors.As(err, &invalid) {
			t.Errorf("unexpected error: %v (expected: InvalidValueError)", err)
		}
	})

	t.Run("a null attribute value is acceptable inside an element", func(t *testing.T) {
		el := try.To(ds.NewObservation(map[string]any{
			"id": "sampleA",
			"attributes": map[string]any{
				"stage": map[string]any{"attribute_type": "String", "value": nil},
			},
		})).OrFatal(t)
		stage, ok := el.GetAttribute("stage")
		if !ok || stage.Value() != nil {
			t.Errorf("unexpected attribute stage: %v (expected: null)", stage)
		}
	})

	t.Run("a broken attribute fails the element, named", func(t *testing.T) {
		_, err := ds.NewObservation(map[string]any{
			"id": "sampleA",
			"attributes": map[string]any{
				"age_years": map[string]any{"attribute_type": "PositiveInteger", "value": -3},
			},
		})
		invalid := new(ds.InvalidValueError)
		if !errors.As(err, &invalid) {
			t.Fatalf("unexpected error: %v (expected: InvalidValueError)", err)
		}
		if !strings.Contains(err.Error(), `"age_years"`) {
			t.Errorf("the failing attribute is not named: %v", err)
		}
	})

	t.Run("unrecognized keys are refused", func(t *testing.T) {
		_, err := ds.NewObservation(map[string]any{
			"id":    "sampleA",
			"color": "#ff0000",
		})
		structural := new(ds.StructuralError)
		if !errors.As(err, &structural) {
			t.Fatalf("unexpected error: %v (expected: StructuralError)", err)
		}
		if !cmp.SliceEq(structural.Extra, []string{"color"}) {
			t.Errorf("unexpected extra keys: %v (expected: [color])", structural.Extra)
		}
	})

	t.Run("a non-mapping is refused", func(t *testing.T) {
		_, err := ds.NewObservation("sampleA")
		structural := new(ds.StructuralError)
		if !errors.As(err, &structural) {
			t.Errorf("unexpected error: %v (expected: StructuralError)", err)
		}
	})
}

func TestElement_AddAttribute(t *testing.T) {
	t.Run("a new attribute is validated and stored", func(t *testing.T) {
		el := try.To(ds.NewObservation(map[string]any{"id": "sampleA"})).OrFatal(t)

		if err := el.AddAttribute(
			"stage", map[string]any{"attribute_type": "String", "value": "IV"}, false,
		); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stage, ok := el.GetAttribute("stage")
		if !ok || stage.Value() != "IV" {
			t.Errorf("unexpected attribute stage: %v (expected: IV)", stage)
		}
	})

	t.Run("an existing name is refused without overwrite", func(t *testing.T) {
		el := try.To(ds.NewObservation(map[string]any{
			"id": "sampleA",
			"attributes": map[string]any{
				"stage": map[string]any{"attribute_type": "String", "value": "IV"},
			},
		})).OrFatal(t)

		err := el.AddAttribute("stage", map[string]any{"attribute_type": "String", "value": "II"}, false)
		structural := new(ds.StructuralError)
		if !errors.As(err, &structural) {
			t.Errorf("unexpected error: %v (expected: StructuralError)", err)
		}
		if stage, _ := el.GetAttribute("stage"); stage.Value() != "IV" {
			t.Errorf("the attribute changed despite the refusal: %v", stage)
		}
	})

	t.Run("overwrite replaces the existing attribute", func(t *testing.T) {
		el := try.To(ds.NewObservation(map[string]any{
			"id": "sampleA",
			"attributes": map[string]any{
				"stage": map[string]any{"attribute_type": "String", "value": "IV"},
			},
		})).OrFatal(t)

		if err := el.AddAttribute(
			"stage", map[string]any{"attribute_type": "String", "value": "II"}, true,
		); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stage, _ := el.GetAttribute("stage"); stage.Value() != "II" {
			t.Errorf("unexpected attribute stage: %v (expected: II)", stage)
		}
	})

	t.Run("an invalid attribute leaves the element untouched", func(t *testing.T) {
		el := try.To(ds.NewObservation(map[string]any{"id": "sampleA"})).OrFatal(t)

		err := el.AddAttribute("bad", map[string]any{"attribute_type": "NoSuchType", "value": 3}, false)
		unknown := new(ds.UnknownTypeError)
		if !errors.As(err, &unknown) {
			t.Errorf("unexpected error: %v (expected: UnknownTypeError)", err)
		}
		if _, ok := el.GetAttribute("bad"); ok {
			t.Error("the broken attribute was stored, unexpectedly")
		}
	})
}

func TestElement_Identity(t *testing.T) {
	build := func(t *testing.T, raw map[string]any) *ds.Element {
		return try.To(ds.NewObservation(raw)).OrFatal(t)
	}

	t.Run("equality is the id alone", func(t *testing.T) {
		a := build(t, map[string]any{
			"id": "sampleA",
			"attributes": map[string]any{
				"stage": map[string]any{"attribute_type": "String", "value": "IV"},
			},
		})
		b := build(t, map[string]any{"id": "sampleA"})

		if !a.Equal(b) {
			t.Error("same-id elements compare unequal, unexpectedly")
		}
		if a.Equiv(b) {
			t.Error("elements with different attributes are equivalent, unexpectedly")
		}
	})

	t.Run("different ids are different elements", func(t *testing.T) {
		a := build(t, map[string]any{"id": "sampleA"})
		b := build(t, map[string]any{"id": "sampleB"})
		if a.Equal(b) {
			t.Error("different-id elements compare equal, unexpectedly")
		}
	})

	t.Run("an Observation is never a Feature", func(t *testing.T) {
		obs := try.To(ds.NewObservation(map[string]any{"id": "x"})).OrFatal(t)
		feat := try.To(ds.NewFeature(map[string]any{"id": "x"})).OrFatal(t)
		if obs.Equal(feat) {
			t.Error("an observation equals a feature, unexpectedly")
		}
	})
}

func TestElement_WireForms(t *testing.T) {
	el := func(t *testing.T) *ds.Element {
		return try.To(ds.NewObservation(map[string]any{
			"id": "sampleA",
			"attributes": map[string]any{
				"stage": map[string]any{"attribute_type": "String", "value": "IV"},
			},
		})).OrFatal(t)
	}

	t.Run("ToMap wraps the body in the attribute envelope", func(t *testing.T) {
		m := el(t).ToMap()
		if m["attribute_type"] != ds.TypeObservation {
			t.Errorf("unexpected discriminator: %v", m["attribute_type"])
		}
		body, ok := m["value"].(map[string]any)
		if !ok || body["id"] != "sampleA" {
			t.Errorf("unexpected body: %v", m["value"])
		}
	})

	t.Run("JSON is the bare body, as elements appear inside a set", func(t *testing.T) {
		marshalled := try.To(json.Marshal(el(t))).OrFatal(t)

		var decoded map[string]any
		if err := json.Unmarshal(marshalled, &decoded); err != nil {
			t.Fatal(err)
		}
		if decoded["id"] != "sampleA" {
			t.Errorf("unexpected JSON body: %s", marshalled)
		}
		if _, wrapped := decoded["attribute_type"]; wrapped {
			t.Errorf("the JSON body carries the envelope, unexpectedly: %s", marshalled)
		}
	})

	t.Run("the envelope reconstructs the element", func(t *testing.T) {
		a := el(t)
		got := try.To(ds.Construct(a.ToMap())).OrFatal(t)
		b, ok := got.(*ds.Element)
		if !ok || !a.Equiv(b) {
			t.Errorf("round trip broke equivalence: %v != %v", a, got)
		}
	})
}
