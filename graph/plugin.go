package graph

import "plugin"

// PluginEntryPoint is the symbol name a.so plugin must export :
//
//	func Register(system *graph.NodeSystem) (int, error)
//
// LoadPlugin calls it once, letting the plugin register any number of node
// types and modules against the shared system before handing control back.
const PluginEntryPoint = "Register"

// registerFunc is the signature LoadPlugin expects behind PluginEntryPoint.
type registerFunc func(system *NodeSystem) (int, error)

// LoadPlugin opens the shared object at path, looks up its PluginEntryPoint
// symbol, and calls it against system. It returns the number of node types
// the plugin registered, or an error if the file cannot be opened, the
// symbol is missing, or it does not have the expected signature.
//
// LoadPlugin is only usable on platforms the Go plugin package supports
// (ELF-based Linux); it is a thin wrapper, not a cross-platform ABI.
func LoadPlugin(path string, system *NodeSystem) (int, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return 0, &BadConfigError{Message: "failed to open plugin " + path + ": " + err.Error()}
	}
	sym, err := p.Lookup(PluginEntryPoint)
	if err != nil {
		return 0, &BadConfigError{Message: "plugin " + path + " missing " + PluginEntryPoint + " symbol: " + err.Error()}
	}
	register, ok := sym.(func(*NodeSystem) (int, error))
	if !ok {
		return 0, &BadConfigError{Message: "plugin " + path + "'s " + PluginEntryPoint + " has the wrong signature"}
	}
	var fn registerFunc = register
	return fn(system)
}
