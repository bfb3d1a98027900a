package marshkit_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	marshkit "github.com/marshkit/marshkit"
	"github.com/marshkit/marshkit/fields"
)

func TestDump_Basic(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("name", fields.String()).
		Field("age", fields.Int()).
		MustBuild()

	out, err := s.Dump(ctx, map[string]any{"name": "Ada", "age": int64(36)})
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	want := map[string]any{"name": "Ada", "age": int64(36)}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %#v want %#v", out, want)
	}
}

func TestDump_MissingAttributeOmitted(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("name", fields.String()).
		Field("nick", fields.String()).
		MustBuild()

	out, err := s.Dump(ctx, map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	if _, present := out["nick"]; present {
		t.Fatalf("absent attribute must be omitted, not emitted as null: %#v", out)
	}
}

func TestDump_ExplicitNullSurvives(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("nick", fields.String()).
		MustBuild()

	out, err := s.Dump(ctx, map[string]any{"nick": nil})
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	if v, present := out["nick"]; !present || v != nil {
		t.Fatalf("explicit null must dump as null: %#v", out)
	}
}

func TestDump_DumpDefault(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("role", fields.String(), marshkit.DumpDefault("user")).
		MustBuild()

	out, err := s.Dump(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	if out["role"] != "user" {
		t.Fatalf("dump default expected: %#v", out)
	}
}

func TestDump_LoadOnlySkipped_DumpOnlyIncluded(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("password", fields.String(), marshkit.LoadOnly()).
		Field("id", fields.Int(), marshkit.DumpOnly()).
		MustBuild()

	out, err := s.Dump(ctx, map[string]any{"password": "secret", "id": int64(7)})
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	if _, present := out["password"]; present {
		t.Fatalf("load-only field must not dump: %#v", out)
	}
	if out["id"] != int64(7) {
		t.Fatalf("dump-only field must dump: %#v", out)
	}
}

func TestDump_DataKeyRename(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("email", fields.String(), marshkit.DataKey("emailAddress")).
		MustBuild()

	out, err := s.Dump(ctx, map[string]any{"email": "a@b.example"})
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	if out["emailAddress"] != "a@b.example" {
		t.Fatalf("output keyed by data key expected: %#v", out)
	}
}

func TestDump_CoercionFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("a", fields.Int()).
		Field("b", fields.Int()).
		MustBuild()

	_, err := s.Dump(ctx, map[string]any{"a": "not a number", "b": int64(1)})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), `"a"`) {
		t.Fatalf("error should name the failing field: %v", err)
	}
}

func TestDump_StructSource(t *testing.T) {
	ctx := context.Background()
	type user struct {
		Name string `json:"name"`
		Age  int64  `json:"age"`
		Note string `marshkit:"name=remark"`
	}
	s := marshkit.NewBuilder().
		Field("name", fields.String()).
		Field("age", fields.Int()).
		Field("remark", fields.String()).
		MustBuild()

	out, err := s.Dump(ctx, user{Name: "Ada", Age: 36, Note: "hi"})
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	want := map[string]any{"name": "Ada", "age": int64(36), "remark": "hi"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %#v want %#v", out, want)
	}
}

func TestDump_FunctionFieldSeesWholeObject(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("first", fields.String()).
		Field("last", fields.String()).
		Field("full", fields.Function(func(ctx context.Context, obj any) (any, error) {
			m := obj.(map[string]any)
			return m["first"].(string) + " " + m["last"].(string), nil
		}), marshkit.DumpOnly()).
		MustBuild()

	out, err := s.Dump(ctx, map[string]any{"first": "Ada", "last": "Lovelace"})
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	if out["full"] != "Ada Lovelace" {
		t.Fatalf("unexpected: %#v", out)
	}
}

func TestDump_PrePostHooks(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("name", fields.String()).
		PreDump(func(ctx context.Context, v any) (any, error) {
			m := v.(map[string]any)
			return map[string]any{"name": strings.ToUpper(m["name"].(string))}, nil
		}).
		PostDump(func(ctx context.Context, v any) (any, error) {
			m := v.(map[string]any)
			m["stamped"] = true
			return m, nil
		}).
		MustBuild()

	out, err := s.Dump(ctx, map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	if out["name"] != "ADA" || out["stamped"] != true {
		t.Fatalf("unexpected: %#v", out)
	}
}

func TestDumpMany(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("name", fields.String()).
		MustBuild()

	out, err := s.DumpMany(ctx, []any{
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
	})
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	if len(out) != 2 || out[0]["name"] != "a" || out[1]["name"] != "b" {
		t.Fatalf("unexpected: %#v", out)
	}
}

func TestDumpMany_NonSequence(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("name", fields.String()).
		MustBuild()

	if _, err := s.DumpMany(ctx, map[string]any{"name": "a"}); err == nil {
		t.Fatalf("expected error for non-sequence input")
	}
}

func TestDumpOrdered_DeclarationOrder(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Ordered().
		Field("z", fields.Int()).
		Field("a", fields.Int()).
		Field("m", fields.Int()).
		MustBuild()

	om, err := s.DumpOrdered(ctx, map[string]any{"z": int64(1), "a": int64(2), "m": int64(3)})
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	var keys []string
	for p := om.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	if !reflect.DeepEqual(keys, []string{"z", "a", "m"}) {
		t.Fatalf("declaration order expected, got %v", keys)
	}
}

func TestDumpManyOrdered(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("b", fields.Int()).
		Field("a", fields.Int()).
		MustBuild()

	oms, err := s.DumpManyOrdered(ctx, []any{
		map[string]any{"b": int64(1), "a": int64(2)},
	})
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	if len(oms) != 1 {
		t.Fatalf("unexpected: %#v", oms)
	}
	first := oms[0].Oldest()
	if first == nil || first.Key != "b" {
		t.Fatalf("declaration order expected, got %v", first)
	}
}
