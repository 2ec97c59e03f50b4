package graph

// ConfigFlag is a bit in the flag set a NodeConfig declares for its node
// type. These seed the subset of Node flags that are fixed at
// construction time.
type ConfigFlag uint8

const (
	// HasState marks a node type that carries state across executions and
	// must be restarted between streaming sessions (GLOSSARY "State node").
	HasState ConfigFlag = 1 << iota
	// AutoTag marks a node type whose instances are re-tagged after every
	// NotifyFinish (GLOSSARY "AutoTag"), typically a stream source.
	AutoTag
	// OverridesTimeComputation marks a node type whose ExecutionStatus.TimeMS
	// replaces the engine's wall-clock measurement.
	OverridesTimeComputation
)

// Has reports whether bit is set in the flag set f.
func (f ConfigFlag) Has(bit ConfigFlag) bool { return f&bit != 0 }

// SocketDesc describes one input or output socket of a node type: its id
// (assigned sequentially from 0 by NodeConfigBuilder), a name unique within its
// list, and a declared, non-Invalid FlowKind.
type SocketDesc struct {
	ID SocketID
	Name string
	Kind FlowKind
}

// NodeConfig is the immutable-per-instance description of a node type
// : its socket lists, property list, human-readable description,
// optional required module name, and flag set. NodeConfig values are built
// once per node type (typically as a package-level value returned by the
// type's Config method) and shared by every instance of that type.
type NodeConfig struct {
	Description string
	ModuleName string
	Flags ConfigFlag
	inputs []SocketDesc
	outputs []SocketDesc
	properties []PropertyConfig
}

// Inputs returns the ordered input socket descriptors.
func (c *NodeConfig) Inputs() []SocketDesc { return c.inputs }

// Outputs returns the ordered output socket descriptors.
func (c *NodeConfig) Outputs() []SocketDesc { return c.outputs }

// Properties returns the ordered property configs.
func (c *NodeConfig) Properties() []PropertyConfig { return c.properties }

// InputByName returns the input socket descriptor with the given name, or
// (zero, false) if none matches.
func (c *NodeConfig) InputByName(name string) (SocketDesc, bool) {
	for _, s := range c.inputs {
		if s.Name == name {
			return s, true
		}
	}
	return SocketDesc{}, false
}

// OutputByName returns the output socket descriptor with the given name, or
// (zero, false) if none matches.
func (c *NodeConfig) OutputByName(name string) (SocketDesc, bool) {
	for _, s := range c.outputs {
		if s.Name == name {
			return s, true
		}
	}
	return SocketDesc{}, false
}

// PropertyByName returns the property config with the given name, or (zero,
// false) if none matches.
func (c *NodeConfig) PropertyByName(name string) (PropertyConfig, bool) {
	for _, p := range c.properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyConfig{}, false
}

// PropertyByID returns the property config with the given id, or (zero,
// false) if id is out of range.
func (c *NodeConfig) PropertyByID(id PropertyID) (PropertyConfig, bool) {
	if id < 0 || int(id) >= len(c.properties) {
		return PropertyConfig{}, false
	}
	return c.properties[id], true
}

// NodeConfigBuilder assembles a NodeConfig. Socket/property ids are
// assigned sequentially as entries are added; name uniqueness within each
// list is enforced at Build time.
type NodeConfigBuilder struct {
	cfg NodeConfig
}

// NewNodeConfigBuilder starts a builder with the given human-readable
// description.
func NewNodeConfigBuilder(description string) *NodeConfigBuilder {
	return &NodeConfigBuilder{cfg: NodeConfig{Description: description}}
}

// Input appends an input socket with the given name and kind.
func (b *NodeConfigBuilder) Input(name string, kind FlowKind) *NodeConfigBuilder {
	b.cfg.inputs = append(b.cfg.inputs, SocketDesc{
		ID: SocketID(len(b.cfg.inputs)), Name: name, Kind: kind,
	})
	return b
}

// Output appends an output socket with the given name and kind.
func (b *NodeConfigBuilder) Output(name string, kind FlowKind) *NodeConfigBuilder {
	b.cfg.outputs = append(b.cfg.outputs, SocketDesc{
		ID: SocketID(len(b.cfg.outputs)), Name: name, Kind: kind,
	})
	return b
}

// Property appends a property config, filling in its id from the current
// property count.
func (b *NodeConfigBuilder) Property(p PropertyConfig) *NodeConfigBuilder {
	p.ID = PropertyID(len(b.cfg.properties))
	b.cfg.properties = append(b.cfg.properties, p)
	return b
}

// Module sets the module tag required before a node of this type can
// initialize; empty means no module is required.
func (b *NodeConfigBuilder) Module(name string) *NodeConfigBuilder {
	b.cfg.ModuleName = name
	return b
}

// Flag ORs additional flag bits into the config's flag set.
func (b *NodeConfigBuilder) Flag(f ConfigFlag) *NodeConfigBuilder {
	b.cfg.Flags |= f
	return b
}

// Build validates name uniqueness within the input list, the output list,
// and the property list independently, and returns the finished,
// thereafter-immutable NodeConfig. A duplicate name in any one list raises
// BadConfigError.
func (b *NodeConfigBuilder) Build() (*NodeConfig, error) {
	if dup := firstDuplicateSocket(b.cfg.inputs); dup != "" {
		return nil, &BadConfigError{Message: "duplicate input socket name: " + dup}
	}
	if dup := firstDuplicateSocket(b.cfg.outputs); dup != "" {
		return nil, &BadConfigError{Message: "duplicate output socket name: " + dup}
	}
	if dup := firstDuplicateProperty(b.cfg.properties); dup != "" {
		return nil, &BadConfigError{Message: "duplicate property name: " + dup}
	}
	cfg := b.cfg
	return &cfg, nil
}

func firstDuplicateSocket(sockets []SocketDesc) string {
	seen := make(map[string]struct{}, len(sockets))
	for _, s := range sockets {
		if _, ok := seen[s.Name]; ok {
			return s.Name
		}
		seen[s.Name] = struct{}{}
	}
	return ""
}

func firstDuplicateProperty(props []PropertyConfig) string {
	seen := make(map[string]struct{}, len(props))
	for _, p := range props {
		if _, ok := seen[p.Name]; ok {
			return p.Name
		}
		seen[p.Name] = struct{}{}
	}
	return ""
}
