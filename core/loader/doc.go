// Package loader registers the reconciliation engines as HTTP features.
//
// Each engine package exposes a Feature that knows its name, whether it can run with
// the current configuration, and how to mount its routes. The Manager loads the enabled
// ones in registration order.
//
//	mgr := loader.NewManager()
//	mgr.Register(fieldcopy.NewFeature(svc, logg))
//	loaded, err := mgr.LoadAll(app)
package loader
