package attrs

// Flags describe how an attribute participates in the rest of the system.
type Flags uint8

const (
	// FlagDAG marks attributes whose change invalidates derived results;
	// only these set the dirty flag when a schema is attached.
	FlagDAG Flags = 1 << iota
	FlagDisplay
	FlagKeyable
	FlagReadOnly
	FlagInternal
)

// Def declares one attribute of a schema.
type Def struct {
	Name  string
	Kind  Kind
	Flags Flags
}

func (d Def) IsDAG() bool      { return d.Flags&FlagDAG != 0 }
func (d Def) IsDisplay() bool  { return d.Flags&FlagDisplay != 0 }
func (d Def) IsReadOnly() bool { return d.Flags&FlagReadOnly != 0 }
func (d Def) IsInternal() bool { return d.Flags&FlagInternal != 0 }

// Schema is an immutable, shareable set of definitions. Build it once at
// package init and attach the same pointer to many containers.
type Schema struct {
	name string
	defs map[string]Def
}

// NewSchema builds a schema from one or more definition slices. Later
// slices override earlier ones on name collisions.
func NewSchema(name string, slices ...[]Def) *Schema {
	s := &Schema{name: name, defs: make(map[string]Def)}
	for _, defs := range slices {
		for _, d := range defs {
			s.defs[d.Name] = d
		}
	}
	return s
}

func (s *Schema) Name() string { return s.name }

func (s *Schema) Get(name string) (Def, bool) {
	d, ok := s.defs[name]
	return d, ok
}

// IsDAG reports whether name is declared and graph-contributing.
// Undeclared keys never mark a schema-gated container dirty.
func (s *Schema) IsDAG(name string) bool {
	d, ok := s.defs[name]
	return ok && d.IsDAG()
}

func (s *Schema) IsReadOnly(name string) bool {
	d, ok := s.defs[name]
	return ok && d.IsReadOnly()
}

func (s *Schema) Len() int { return len(s.defs) }
