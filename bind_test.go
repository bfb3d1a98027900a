package marshkit_test

import (
	"context"
	"reflect"
	"testing"

	marshkit "github.com/marshkit/marshkit"
	"github.com/marshkit/marshkit/fields"
)

type account struct {
	Name   string   `json:"name"`
	Age    int64    `json:"age"`
	Note   string   `marshkit:"name=remark"`
	Tags   []string `json:"tags"`
	Hidden string   `json:"-"`
}

func TestBind_Struct(t *testing.T) {
	got, err := marshkit.Bind[account](map[string]any{
		"name":   "Ada",
		"age":    int64(36),
		"remark": "hi",
		"Hidden": "nope",
	})
	if err != nil {
		t.Fatalf("bind err: %v", err)
	}
	want := account{Name: "Ada", Age: 36, Note: "hi"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestBind_Convertible(t *testing.T) {
	type narrow struct {
		N int     `json:"n"`
		F float32 `json:"f"`
	}
	got, err := marshkit.Bind[narrow](map[string]any{"n": int64(7), "f": float64(1.5)})
	if err != nil {
		t.Fatalf("bind err: %v", err)
	}
	if got.N != 7 || got.F != 1.5 {
		t.Fatalf("got %+v", got)
	}
}

func TestBind_NilClearsNillableField(t *testing.T) {
	got, err := marshkit.Bind[account](map[string]any{"tags": nil})
	if err != nil {
		t.Fatalf("bind err: %v", err)
	}
	if got.Tags != nil {
		t.Fatalf("got %+v", got)
	}
}

func TestBind_TypeMismatch(t *testing.T) {
	// int into a string field would "convert" to a one-rune string; it
	// must be rejected instead
	if _, err := marshkit.Bind[account](map[string]any{"name": 5}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := marshkit.Bind[account](map[string]any{"age": "36"}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := marshkit.Bind[account](map[string]any{"tags": "x"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBind_RejectsNonStruct(t *testing.T) {
	if _, err := marshkit.Bind[int](map[string]any{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBind_PointerTarget(t *testing.T) {
	got, err := marshkit.Bind[*account](map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("bind err: %v", err)
	}
	if got == nil || got.Name != "Ada" {
		t.Fatalf("got %+v", got)
	}
}

func TestBind_AsPostLoadHook(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("name", fields.String(), marshkit.Required()).
		Field("age", fields.Int()).
		PostLoad(func(ctx context.Context, v any) (any, error) {
			return marshkit.Bind[account](v.(map[string]any))
		}).
		MustBuild()

	out, err := s.Load(ctx, map[string]any{"name": "Ada", "age": 36})
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	acc, ok := out.(account)
	if !ok || acc.Name != "Ada" || acc.Age != 36 {
		t.Fatalf("unexpected: %#v", out)
	}
}

func TestStructAccessor_PointerSource(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("name", fields.String()).
		MustBuild()

	out, err := s.Dump(ctx, &account{Name: "Ada"})
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	if out["name"] != "Ada" {
		t.Fatalf("unexpected: %#v", out)
	}

	var nilAcc *account
	out, err = s.Dump(ctx, nilAcc)
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	if _, present := out["name"]; present {
		t.Fatalf("nil source has no attributes: %#v", out)
	}
}

func TestFuncAccessor(t *testing.T) {
	ctx := context.Background()
	s := marshkit.NewBuilder().
		Field("n", fields.Int()).
		Accessor(marshkit.FuncAccessor(func(obj any, name string) (any, bool) {
			if name == "n" {
				return int64(9), true
			}
			return nil, false
		})).
		MustBuild()

	out, err := s.Dump(ctx, struct{}{})
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	if out["n"] != int64(9) {
		t.Fatalf("unexpected: %#v", out)
	}
}
