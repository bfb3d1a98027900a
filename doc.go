// Package marshkit provides:
//
// - Declarative, compiled schemas converting between application objects and
//   plain mappings (Dump/Load/Validate)
// - A structured, mergeable error model via ErrorTree/ValidationError that
//   preserves field paths, collection indices, and the valid subset of data
// - Lazy nested schema resolution (concrete, deferred, or registry-named)
//   with dotted only/exclude projection, pluck, and many
// - Call-scoped context propagation for hooks and validators
//
// Design policy:
// - Keep the pipeline core and public contracts in the root package.
// - Place field types under fields/, validators under validate/, the text
//   boundary under codec/, and the CLI under cmd/marshkit.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	user := marshkit.NewBuilder().
//		Field("name", fields.String(), marshkit.Required()).
//		Field("email", fields.String(), marshkit.Validate(validate.Email())).
//		MustBuild()
//
//	out, err := user.Dump(ctx, obj)
//	res, err := user.Load(ctx, raw, marshkit.Partial("email"))
package marshkit
