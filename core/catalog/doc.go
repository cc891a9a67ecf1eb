// Package catalog loads the model catalog: for every provider, the ordered
// list of model descriptors with their alias, accepted version strings,
// capability flags and token pricing.
//
// A catalog is validated in full when it is parsed and never changes
// afterwards, so a *Catalog can be shared between goroutines without
// locking. Lookups accept either the alias ("gpt-4o") or any version string
// listed under model_names ("gpt-4o-2024-08-06") and always return the same
// descriptor for both.
//
//	cat, err := catalog.LoadDefault()
//	if err != nil {
//	    return err
//	}
//	model, err := cat.Resolve("openai", "gpt-4o-2024-08-06")
//	// model.Alias == "gpt-4o"
package catalog
