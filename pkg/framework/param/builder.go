package param

// Builder configures a Parameter before it is registered.
type Builder struct {
	param *Parameter
}

// New starts an automatable 0-1 parameter.
func New(id uint32, name string) *Builder {
	return &Builder{param: &Parameter{
		ID:        id,
		Name:      name,
		ShortName: name,
		Max:       1,
		Flags:     CanAutomate,
	}}
}

func (b *Builder) ShortName(name string) *Builder {
	b.param.ShortName = name
	return b
}

// Range sets the plain value range. Call it before Default.
func (b *Builder) Range(lo, hi float64) *Builder {
	b.param.Min, b.param.Max = lo, hi
	return b
}

// Default sets the default as a plain value.
func (b *Builder) Default(plain float64) *Builder {
	b.param.DefaultValue = b.param.Normalize(plain)
	return b
}

func (b *Builder) Unit(unit string) *Builder {
	b.param.Unit = unit
	return b
}

// Steps makes the parameter discrete with count steps above the minimum.
func (b *Builder) Steps(count int32) *Builder {
	b.param.StepCount = count
	return b
}

// ReadOnly marks a value the processor reports rather than reads.
func (b *Builder) ReadOnly() *Builder {
	b.param.Flags = b.param.Flags&^CanAutomate | IsReadOnly
	return b
}

// Formatter sets the text conversion of plain values. A nil parse keeps
// the numeric parser.
func (b *Builder) Formatter(format func(float64) string, parse func(string) (float64, error)) *Builder {
	b.param.formatFunc = format
	b.param.parseFunc = parse
	return b
}

// Build sets the parameter to its default and returns it.
func (b *Builder) Build() *Parameter {
	b.param.SetValue(b.param.DefaultValue)
	return b.param
}
