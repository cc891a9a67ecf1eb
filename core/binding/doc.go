// Package binding ties the model catalog, the adapter registry and the
// client pool together.
//
// A [Binder] is built once from a loaded catalog and registry. It resolves
// every registry name against a static binding table up front, so later
// calls only perform map lookups:
//
//	cat, _ := catalog.LoadDefault()
//	reg, _ := registry.LoadDefault()
//	b, err := binding.New(cat, reg)
//	...
//	req, err := b.Prepare(ctx, "openai", "gpt-4o", messages, binding.PrepareOptions{})
//
// [Binder.Prepare] checks the requested features against the catalog entry
// and converts the conversation into the provider's message type.
package binding
