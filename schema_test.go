package marshkit_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	marshkit "github.com/marshkit/marshkit"
	"github.com/marshkit/marshkit/fields"
)

func TestBuild_RejectsEmptyName(t *testing.T) {
	_, err := marshkit.NewBuilder().Field("", fields.String()).Build()
	var ce *marshkit.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestBuild_RejectsNilType(t *testing.T) {
	_, err := marshkit.NewBuilder().Field("x", nil).Build()
	var ce *marshkit.ConfigError
	if !errors.As(err, &ce) || ce.Field != "x" {
		t.Fatalf("want ConfigError for x, got %v", err)
	}
}

func TestBuild_RejectsDuplicateName(t *testing.T) {
	_, err := marshkit.NewBuilder().
		Field("x", fields.String()).
		Field("x", fields.Int()).
		Build()
	var ce *marshkit.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestBuild_RejectsDumpOnlyAndLoadOnly(t *testing.T) {
	_, err := marshkit.NewBuilder().
		Field("x", fields.String(), marshkit.DumpOnly(), marshkit.LoadOnly()).
		Build()
	var ce *marshkit.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestBuild_RejectsAttributeCollision(t *testing.T) {
	_, err := marshkit.NewBuilder().
		Field("a", fields.String(), marshkit.Attribute("shared")).
		Field("b", fields.String(), marshkit.Attribute("shared")).
		Build()
	var ce *marshkit.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestBuild_AttributeCollisionAllowedWithDumpOnly(t *testing.T) {
	// a dump-only projection of the same attribute never competes on load
	_, err := marshkit.NewBuilder().
		Field("a", fields.String(), marshkit.Attribute("shared")).
		Field("b", fields.String(), marshkit.Attribute("shared"), marshkit.DumpOnly(), marshkit.DataKey("bb")).
		Build()
	if err != nil {
		t.Fatalf("build err: %v", err)
	}
}

func TestBuild_RejectsDataKeyCollision(t *testing.T) {
	_, err := marshkit.NewBuilder().
		Field("a", fields.String(), marshkit.DataKey("k")).
		Field("b", fields.String(), marshkit.DataKey("k")).
		Build()
	var ce *marshkit.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestMustBuild_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	marshkit.NewBuilder().Field("", fields.String()).MustBuild()
}

func TestSchema_FieldNamesInDeclarationOrder(t *testing.T) {
	s := marshkit.NewBuilder().
		Field("z", fields.Int()).
		Field("a", fields.Int()).
		MustBuild()
	if got := s.FieldNames(); !reflect.DeepEqual(got, []string{"z", "a"}) {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestSchema_SpecResolvesAliases(t *testing.T) {
	s := marshkit.NewBuilder().
		Field("email", fields.String(), marshkit.DataKey("emailAddress")).
		MustBuild()
	spec, ok := s.Spec("email")
	if !ok {
		t.Fatalf("spec not found")
	}
	if spec.Attribute != "email" || spec.DataKey != "emailAddress" {
		t.Fatalf("aliases not resolved: %+v", spec)
	}
}

func TestWithUnknown_DoesNotMutateOriginal(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("a", fields.Int()).
		MustBuild()
	lax := s.WithUnknown(marshkit.UnknownExclude)

	if _, err := lax.Load(ctx, map[string]any{"junk": 1}); err != nil {
		t.Fatalf("derived schema should drop unknowns: %v", err)
	}
	if _, err := s.Load(ctx, map[string]any{"junk": 1}); err == nil {
		t.Fatalf("original schema should still raise")
	}
}

func TestProject_Only(t *testing.T) {
	s := marshkit.NewBuilder().
		Field("a", fields.Int()).
		Field("b", fields.Int()).
		Field("c", fields.Int()).
		MustBuild()

	p, err := s.Project([]string{"a", "c"}, nil)
	if err != nil {
		t.Fatalf("project err: %v", err)
	}
	if got := p.FieldNames(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("unexpected fields: %v", got)
	}
}

func TestProject_Exclude(t *testing.T) {
	s := marshkit.NewBuilder().
		Field("a", fields.Int()).
		Field("b", fields.Int()).
		MustBuild()

	p, err := s.Project(nil, []string{"b"})
	if err != nil {
		t.Fatalf("project err: %v", err)
	}
	if got := p.FieldNames(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("unexpected fields: %v", got)
	}
}

func TestProject_UnknownPathRejected(t *testing.T) {
	s := marshkit.NewBuilder().
		Field("a", fields.Int()).
		MustBuild()

	_, err := s.Project([]string{"nope"}, nil)
	var ce *marshkit.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestProject_DottedPathOnScalarRejected(t *testing.T) {
	s := marshkit.NewBuilder().
		Field("a", fields.Int()).
		MustBuild()

	_, err := s.Project([]string{"a.b"}, nil)
	var ce *marshkit.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestProject_EmptyIsIdentity(t *testing.T) {
	s := marshkit.NewBuilder().
		Field("a", fields.Int()).
		MustBuild()
	p, err := s.Project(nil, nil)
	if err != nil {
		t.Fatalf("project err: %v", err)
	}
	if p != s {
		t.Fatalf("empty projection should return the same schema")
	}
}

func TestSchema_ConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("n", fields.Int(), marshkit.Required()).
		MustBuild()

	done := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func(i int) {
			_, err := s.Load(ctx, map[string]any{"n": i})
			done <- err
		}(i)
	}
	for i := 0; i < 16; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent load err: %v", err)
		}
	}
}
