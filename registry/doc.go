/*
Package registry provides the boot-once type registry used to attach observers
to model types.

A registry is described by a boot function. The function runs exactly once, on
first use, and the resulting content never changes:

	observers := registry.New(func(b *registry.Builder[model.Observer]) {
	    b.Register("User", auditObserver{})
	    registry.RegisterType[Order](b, totalsObserver{}, mailObserver{})
	})

	list := observers.Lookup("user") // same entry as "User" or "user"

Type identifiers are normalised to PascalCase, so snake, camel and Pascal
spellings of a name share one entry. Lookup returns a copy of the stored list.
Registering after boot panics.
*/
package registry
